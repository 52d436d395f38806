package control

import (
	"errors"
	"fmt"
	"sort"

	"github.com/example/formcraft/internal/ports/secondary"
)

// Direction is the direction of a single-step move within a section.
type Direction string

const (
	// Up moves a control to the previous ordinal.
	Up Direction = "up"
	// Down moves a control to the next ordinal.
	Down Direction = "down"
)

// ParseDirection validates a textual direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q (want up or down)", s)
}

// ErrIndexOutOfRange is returned by PlanReorder for indices outside the section view.
var ErrIndexOutOfRange = errors.New("index out of range")

// SortByPosition orders controls by y, then x, keeping input order on ties.
func SortByPosition(controls []*secondary.ControlRecord) {
	sort.SliceStable(controls, func(i, j int) bool {
		if controls[i].Position.Y != controls[j].Position.Y {
			return controls[i].Position.Y < controls[j].Position.Y
		}
		return controls[i].Position.X < controls[j].Position.X
	})
}

// SectionView returns the controls of one section in display order.
// The input slice is not modified.
func SectionView(controls []*secondary.ControlRecord, sectionID string) []*secondary.ControlRecord {
	var view []*secondary.ControlRecord
	for _, c := range controls {
		if c.SectionID == sectionID {
			view = append(view, c)
		}
	}
	SortByPosition(view)
	return view
}

// NextPosition returns the y for a control appended to the section:
// the number of controls already in it.
func NextPosition(controls []*secondary.ControlRecord, sectionID string) int {
	n := 0
	for _, c := range controls {
		if c.SectionID == sectionID {
			n++
		}
	}
	return n
}

// CompactAfterRemove returns the updates that close the gap left by removed:
// every other control of the same section with a greater y moves up by one.
// Controls in other sections are never touched.
func CompactAfterRemove(controls []*secondary.ControlRecord, removed *secondary.ControlRecord) []secondary.PositionUpdate {
	var updates []secondary.PositionUpdate
	for _, c := range controls {
		if c.ID == removed.ID || c.SectionID != removed.SectionID {
			continue
		}
		if c.Position.Y > removed.Position.Y {
			updates = append(updates, secondary.PositionUpdate{ID: c.ID, Y: c.Position.Y - 1})
		}
	}
	return updates
}

// PlanMove returns the updates swapping the control with its section
// neighbour in the given direction. ok is false when the control is not in
// the view or already sits at the boundary.
func PlanMove(view []*secondary.ControlRecord, id string, dir Direction) (updates []secondary.PositionUpdate, ok bool) {
	idx := -1
	for i, c := range view {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if target < 0 || target >= len(view) {
		return nil, false
	}

	a, b := view[idx], view[target]
	ay, by := a.Position.Y, b.Position.Y
	if ay == by {
		// Duplicate ordinals: fall back to view indices so the swap is visible.
		ay, by = idx, target
	}
	return []secondary.PositionUpdate{
		{ID: a.ID, Y: by},
		{ID: b.ID, Y: ay},
	}, true
}

// PlanReorder moves the control at dragIndex of the section view to
// hoverIndex and renumbers the section 0..n-1. Only controls whose y
// changes are returned. Dropping a control where it was picked up plans
// nothing, even when the section has gaps.
func PlanReorder(view []*secondary.ControlRecord, dragIndex, hoverIndex int) ([]secondary.PositionUpdate, error) {
	if dragIndex < 0 || dragIndex >= len(view) {
		return nil, fmt.Errorf("drag index %d: %w", dragIndex, ErrIndexOutOfRange)
	}
	if hoverIndex < 0 || hoverIndex >= len(view) {
		return nil, fmt.Errorf("hover index %d: %w", hoverIndex, ErrIndexOutOfRange)
	}
	if dragIndex == hoverIndex {
		return nil, nil
	}

	ordered := make([]*secondary.ControlRecord, 0, len(view))
	ordered = append(ordered, view[:dragIndex]...)
	ordered = append(ordered, view[dragIndex+1:]...)

	moved := view[dragIndex]
	ordered = append(ordered[:hoverIndex], append([]*secondary.ControlRecord{moved}, ordered[hoverIndex:]...)...)

	var updates []secondary.PositionUpdate
	for i, c := range ordered {
		if c.Position.Y != i {
			updates = append(updates, secondary.PositionUpdate{ID: c.ID, Y: i})
		}
	}
	return updates, nil
}

// Diverged reports whether the projection length and a fresh store count
// differ by more than tolerance.
func Diverged(projected, stored, tolerance int) bool {
	diff := projected - stored
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}

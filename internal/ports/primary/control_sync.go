package primary

import (
	"context"
	"time"
)

// ControlSyncService is the synchronization core for one questionnaire:
// it owns the in-memory projection of the questionnaire's controls and keeps
// it consistent with the store. Every mutation writes through to the store
// and is then reflected by reconciliation.
type ControlSyncService interface {
	// Add appends a control of the given catalog type to the end of a section.
	// An unknown section falls back to the default section.
	Add(ctx context.Context, controlType, sectionID string) (*Control, error)

	// Update applies a partial update to a control.
	Update(ctx context.Context, id string, req UpdateControlRequest) error

	// Remove deletes a control and compacts its section's ordering.
	Remove(ctx context.Context, id string) error

	// Move swaps a control with its neighbour ("up" or "down") in its section.
	// At the section boundary it is a no-op.
	Move(ctx context.Context, id, direction string) error

	// Reorder moves the control at dragIndex to hoverIndex within one
	// section's ordered view and renumbers that section.
	Reorder(ctx context.Context, sectionID string, dragIndex, hoverIndex int) error

	// Select marks a projected control as selected. Local only.
	Select(id string) error

	// ClearSelection clears the selection. Local only.
	ClearSelection()

	// Selected returns the selected control, or nil.
	Selected() *Control

	// Reconcile reads the store and replaces the projection if it differs.
	// It reports whether the projection was replaced.
	Reconcile(ctx context.Context) (bool, error)

	// ForceRefresh forces a projection replacement, retrying once after a
	// short delay when the content did not change.
	ForceRefresh(ctx context.Context) error

	// ForceReload clears the projection and reloads it after a short delay.
	ForceReload(ctx context.Context) error

	// NuclearReset stops background syncing, clears all state, reloads after
	// a short delay and restarts background syncing.
	NuclearReset(ctx context.Context) error

	// Controls returns the current projection.
	Controls() []*Control

	// Snapshot returns the current synchronization snapshot.
	Snapshot() Snapshot

	// State returns the current synchronization state.
	State() SyncState

	// Subscribe returns a channel receiving the latest snapshot after each
	// projection replacement, and a function that ends the subscription.
	Subscribe() (<-chan Snapshot, func())
}

// SyncState is the synchronization state of the projection.
type SyncState string

// Synchronization states.
const (
	SyncStateUninitialized SyncState = "UNINITIALIZED"
	SyncStateSyncing       SyncState = "SYNCING"
	SyncStateStable        SyncState = "STABLE"
	SyncStateResetting     SyncState = "RESETTING"
)

// Snapshot is a consistent view of the projection.
type Snapshot struct {
	QuestionnaireID string
	Controls        []*Control
	Hash            string
	Version         uint64
	LastSync        time.Time
	StableStreak    int
	State           SyncState
}

// Position is the placement of a control; Y is its ordinal in its section.
type Position struct {
	X int
	Y int
}

// Size is the rendered size of a control.
type Size struct {
	Width  int
	Height int
}

// Control represents a placed control at the port boundary.
type Control struct {
	ID              string
	QuestionnaireID string
	SectionID       string
	Type            string
	Name            string
	Position        Position
	Size            Size
	Properties      map[string]any
}

// UpdateControlRequest is a partial control update. Nil fields are untouched;
// a non-nil Properties map replaces the control's properties.
type UpdateControlRequest struct {
	Type       *string
	Name       *string
	SectionID  *string
	Position   *Position
	Size       *Size
	Properties map[string]any
}

// Move directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/example/formcraft/internal/ports/primary"
)

// ControlAdapter translates CLI operations to ControlSyncService calls.
type ControlAdapter struct {
	service primary.ControlSyncService
	out     io.Writer
}

// NewControlAdapter creates a new ControlAdapter with the given service.
func NewControlAdapter(service primary.ControlSyncService, out io.Writer) *ControlAdapter {
	return &ControlAdapter{
		service: service,
		out:     out,
	}
}

// Add places a control of controlType at the end of a section.
func (a *ControlAdapter) Add(ctx context.Context, controlType, sectionID string) (*primary.Control, error) {
	c, err := a.service.Add(ctx, controlType, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to add control: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Added %s %s\n", c.Type, c.ID)
	fmt.Fprintf(a.out, "  Section: %s, position %d\n", c.SectionID, c.Position.Y)
	return c, nil
}

// List prints the projection grouped by section.
func (a *ControlAdapter) List(ctx context.Context) ([]*primary.Control, error) {
	if _, err := a.service.Reconcile(ctx); err != nil {
		return nil, fmt.Errorf("failed to sync controls: %w", err)
	}
	controls := a.service.Controls()

	if len(controls) == 0 {
		fmt.Fprintln(a.out, "No controls yet.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Add one from the catalog:")
		fmt.Fprintln(a.out, "  formcraft control add textInput")
		return controls, nil
	}

	sorted := append([]*primary.Control(nil), controls...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SectionID != sorted[j].SectionID {
			return sorted[i].SectionID < sorted[j].SectionID
		}
		return sorted[i].Position.Y < sorted[j].Position.Y
	})

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SECTION\tPOS\tID\tTYPE\tNAME")
	fmt.Fprintln(w, "-------\t---\t--\t----\t----")
	for _, c := range sorted {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", c.SectionID, c.Position.Y, c.ID, c.Type, c.Name)
	}
	w.Flush()
	return controls, nil
}

// Update applies a partial update to a control.
func (a *ControlAdapter) Update(ctx context.Context, id string, req primary.UpdateControlRequest) error {
	if err := a.service.Update(ctx, id, req); err != nil {
		return fmt.Errorf("failed to update control: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Control %s updated\n", id)
	return nil
}

// Remove deletes a control.
func (a *ControlAdapter) Remove(ctx context.Context, id string) error {
	if err := a.service.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove control: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Removed control %s\n", id)
	return nil
}

// Move swaps a control with its neighbour.
func (a *ControlAdapter) Move(ctx context.Context, id, direction string) error {
	if err := a.service.Move(ctx, id, direction); err != nil {
		return fmt.Errorf("failed to move control: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Moved control %s %s\n", id, direction)
	return nil
}

// Reorder moves the control at from to to within a section.
func (a *ControlAdapter) Reorder(ctx context.Context, sectionID string, from, to int) error {
	if err := a.service.Reorder(ctx, sectionID, from, to); err != nil {
		return fmt.Errorf("failed to reorder section: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Section %s reordered (%d → %d)\n", sectionID, from, to)
	return nil
}

// Status prints the current synchronization snapshot.
func (a *ControlAdapter) Status() primary.Snapshot {
	snap := a.service.Snapshot()
	fmt.Fprintf(a.out, "State:    %s\n", snap.State)
	fmt.Fprintf(a.out, "Version:  %d\n", snap.Version)
	fmt.Fprintf(a.out, "Controls: %d\n", len(snap.Controls))
	fmt.Fprintf(a.out, "Hash:     %s\n", shortHash(snap.Hash))
	if !snap.LastSync.IsZero() {
		fmt.Fprintf(a.out, "Synced:   %s (stable for %d checks)\n", snap.LastSync.Format("15:04:05"), snap.StableStreak)
	}
	return snap
}

func shortHash(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

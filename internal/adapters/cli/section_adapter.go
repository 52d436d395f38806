package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/formcraft/internal/ports/primary"
)

// SectionAdapter translates CLI operations to SectionService calls.
type SectionAdapter struct {
	service primary.SectionService
	out     io.Writer
}

// NewSectionAdapter creates a new SectionAdapter with the given service.
func NewSectionAdapter(service primary.SectionService, out io.Writer) *SectionAdapter {
	return &SectionAdapter{
		service: service,
		out:     out,
	}
}

// Create appends a section to a questionnaire.
func (a *SectionAdapter) Create(ctx context.Context, req primary.CreateSectionRequest) (*primary.Section, error) {
	sec, err := a.service.CreateSection(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created section %s: %s (order %d)\n", sec.ID, sec.Name, sec.Order)
	return sec, nil
}

// List lists a questionnaire's sections in display order.
func (a *SectionAdapter) List(ctx context.Context, questionnaireID string) ([]*primary.Section, error) {
	sections, err := a.service.ListSections(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ORDER\tID\tNAME\tCONTROLS")
	fmt.Fprintln(w, "-----\t--\t----\t--------")
	for _, s := range sections {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", s.Order, s.ID, s.Name, s.ControlCount)
	}
	w.Flush()
	return sections, nil
}

// Update updates section metadata.
func (a *SectionAdapter) Update(ctx context.Context, req primary.UpdateSectionRequest) error {
	if err := a.service.UpdateSection(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Section %s updated\n", req.SectionID)
	return nil
}

// Delete deletes a section; its controls move to the default section.
func (a *SectionAdapter) Delete(ctx context.Context, questionnaireID, sectionID string) (*primary.DeleteSectionResult, error) {
	result, err := a.service.DeleteSection(ctx, questionnaireID, sectionID)
	if err != nil {
		return nil, err
	}

	if !result.Deleted {
		fmt.Fprintf(a.out, "Section %s is permanent, nothing deleted\n", sectionID)
		return result, nil
	}

	fmt.Fprintf(a.out, "✓ Deleted section %s\n", sectionID)
	if result.Reassigned > 0 {
		fmt.Fprintf(a.out, "  %d control(s) moved to the default section\n", result.Reassigned)
	}
	return result, nil
}

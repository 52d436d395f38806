package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/formcraft/internal/ports/primary"
)

// QuestionnaireAdapter is a thin adapter that translates CLI operations to QuestionnaireService calls.
// It depends only on the QuestionnaireService interface, enabling easy testing with mocks.
type QuestionnaireAdapter struct {
	service primary.QuestionnaireService
	out     io.Writer
}

// NewQuestionnaireAdapter creates a new QuestionnaireAdapter with the given service.
func NewQuestionnaireAdapter(service primary.QuestionnaireService, out io.Writer) *QuestionnaireAdapter {
	return &QuestionnaireAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a questionnaire and prints its ID.
func (a *QuestionnaireAdapter) Create(ctx context.Context, req primary.CreateQuestionnaireRequest) (*primary.Questionnaire, error) {
	q, err := a.service.CreateQuestionnaire(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created questionnaire %s: %s\n", q.ID, q.Name)
	fmt.Fprintf(a.out, "  Tier: %s\n", q.Tier)
	return q, nil
}

// List lists questionnaires, newest first.
func (a *QuestionnaireAdapter) List(ctx context.Context, filters primary.QuestionnaireFilters) ([]*primary.Questionnaire, error) {
	list, err := a.service.ListQuestionnaires(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No questionnaires found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first questionnaire:")
		fmt.Fprintln(a.out, "  formcraft questionnaire create \"Customer feedback\"")
		return list, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTIER\tVERSION")
	fmt.Fprintln(w, "--\t----\t------\t----\t-------")
	for _, q := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", q.ID, q.Name, q.Status, q.Tier, q.Version)
	}
	w.Flush()
	return list, nil
}

// Show displays details for a single questionnaire.
func (a *QuestionnaireAdapter) Show(ctx context.Context, id string) (*primary.Questionnaire, error) {
	q, err := a.service.GetQuestionnaire(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	fmt.Fprintf(a.out, "\nQuestionnaire: %s\n", q.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", q.Name)
	if q.Description != "" {
		fmt.Fprintf(a.out, "About:    %s\n", q.Description)
	}
	fmt.Fprintf(a.out, "Status:   %s\n", q.Status)
	fmt.Fprintf(a.out, "Tier:     %s\n", q.Tier)
	fmt.Fprintf(a.out, "Version:  %d\n", q.Version)
	fmt.Fprintf(a.out, "Sections: %d\n", q.SectionCount)
	fmt.Fprintf(a.out, "Controls: %d\n", q.ControlCount)
	fmt.Fprintf(a.out, "Created:  %s\n", q.CreatedAt)
	fmt.Fprintln(a.out)
	return q, nil
}

// Update updates questionnaire metadata.
func (a *QuestionnaireAdapter) Update(ctx context.Context, req primary.UpdateQuestionnaireRequest) error {
	if err := a.service.UpdateQuestionnaire(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Questionnaire %s updated\n", req.ID)
	return nil
}

// Delete deletes a questionnaire with everything in it.
func (a *QuestionnaireAdapter) Delete(ctx context.Context, id string) error {
	q, err := a.service.GetQuestionnaire(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get questionnaire: %w", err)
	}
	if err := a.service.DeleteQuestionnaire(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Deleted questionnaire %s: %s\n", q.ID, q.Name)
	if q.ControlCount > 0 {
		fmt.Fprintf(a.out, "  %d control(s) removed\n", q.ControlCount)
	}
	return nil
}

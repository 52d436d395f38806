package primary

import "context"

// SectionService defines the primary port for section operations.
type SectionService interface {
	// CreateSection appends a section to a questionnaire.
	CreateSection(ctx context.Context, req CreateSectionRequest) (*Section, error)

	// ListSections lists the sections of a questionnaire in display order.
	ListSections(ctx context.Context, questionnaireID string) ([]*Section, error)

	// UpdateSection updates section metadata.
	UpdateSection(ctx context.Context, req UpdateSectionRequest) error

	// DeleteSection deletes a section, moving its controls to the default section.
	// Deleting the default section is a no-op.
	DeleteSection(ctx context.Context, questionnaireID, sectionID string) (*DeleteSectionResult, error)
}

// CreateSectionRequest contains parameters for creating a section.
type CreateSectionRequest struct {
	QuestionnaireID string
	ID              string // Optional; generated when empty
	Name            string
	Description     string
	Color           string
	Icon            string
	Required        bool
}

// UpdateSectionRequest contains parameters for updating a section.
type UpdateSectionRequest struct {
	QuestionnaireID string
	SectionID       string
	Name            string
	Description     string
	Color           string
	Icon            string
	Order           int
	Required        bool
}

// Section represents a section entity at the port boundary.
type Section struct {
	ID              string
	QuestionnaireID string
	Name            string
	Description     string
	Color           string
	Icon            string
	Order           int
	Required        bool
	ControlCount    int
}

// DeleteSectionResult reports the outcome of a section delete.
type DeleteSectionResult struct {
	Deleted    bool
	Reassigned int
}

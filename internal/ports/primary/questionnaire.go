// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI drives the application.
package primary

import "context"

// QuestionnaireService defines the primary port for questionnaire operations.
type QuestionnaireService interface {
	// CreateQuestionnaire creates a questionnaire together with its default section.
	CreateQuestionnaire(ctx context.Context, req CreateQuestionnaireRequest) (*Questionnaire, error)

	// GetQuestionnaire retrieves a questionnaire with section and control counts.
	GetQuestionnaire(ctx context.Context, id string) (*Questionnaire, error)

	// ListQuestionnaires lists questionnaires with optional filters.
	ListQuestionnaires(ctx context.Context, filters QuestionnaireFilters) ([]*Questionnaire, error)

	// UpdateQuestionnaire updates questionnaire metadata.
	UpdateQuestionnaire(ctx context.Context, req UpdateQuestionnaireRequest) error

	// DeleteQuestionnaire deletes a questionnaire with its sections and controls.
	DeleteQuestionnaire(ctx context.Context, id string) error
}

// CreateQuestionnaireRequest contains parameters for creating a questionnaire.
type CreateQuestionnaireRequest struct {
	Name        string
	Description string
	Purpose     string
	Category    string
	Tier        string // basic, professional, enterprise
	CreatedBy   string
}

// UpdateQuestionnaireRequest contains parameters for updating a questionnaire.
// Empty fields are left untouched.
type UpdateQuestionnaireRequest struct {
	ID          string
	Name        string
	Description string
	Purpose     string
	Category    string
	Status      string // draft, published, archived
	Tier        string
}

// QuestionnaireFilters contains filter options for listing questionnaires.
type QuestionnaireFilters struct {
	Status string
	Limit  int
}

// Questionnaire represents a questionnaire entity at the port boundary.
type Questionnaire struct {
	ID             string
	Name           string
	Description    string
	Purpose        string
	Category       string
	Status         string
	Version        int
	Tier           string
	CreatedBy      string
	TotalResponses int
	CompletionRate float64
	AverageTime    float64
	LastResponse   string
	CreatedAt      string
	UpdatedAt      string
	SectionCount   int
	ControlCount   int
}

// Questionnaire statuses.
const (
	QuestionnaireStatusDraft     = "draft"
	QuestionnaireStatusPublished = "published"
	QuestionnaireStatusArchived  = "archived"
)

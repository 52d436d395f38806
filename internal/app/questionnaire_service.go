package app

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/example/formcraft/internal/ctxutil"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

var validTiers = map[string]bool{"basic": true, "professional": true, "enterprise": true}

var validStatuses = map[string]bool{
	primary.QuestionnaireStatusDraft:     true,
	primary.QuestionnaireStatusPublished: true,
	primary.QuestionnaireStatusArchived:  true,
}

// QuestionnaireServiceImpl implements the QuestionnaireService interface.
type QuestionnaireServiceImpl struct {
	questionnaireRepo secondary.QuestionnaireRepository
	sectionRepo       secondary.SectionRepository
	controlRepo       secondary.ControlRepository
	newID             func() string
}

// NewQuestionnaireService creates a new QuestionnaireService with injected dependencies.
// Questionnaire IDs are KSUIDs so they sort by creation time.
func NewQuestionnaireService(
	questionnaireRepo secondary.QuestionnaireRepository,
	sectionRepo secondary.SectionRepository,
	controlRepo secondary.ControlRepository,
) *QuestionnaireServiceImpl {
	return &QuestionnaireServiceImpl{
		questionnaireRepo: questionnaireRepo,
		sectionRepo:       sectionRepo,
		controlRepo:       controlRepo,
		newID:             func() string { return ksuid.New().String() },
	}
}

// CreateQuestionnaire creates a questionnaire and its default section.
func (s *QuestionnaireServiceImpl) CreateQuestionnaire(ctx context.Context, req primary.CreateQuestionnaireRequest) (*primary.Questionnaire, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("questionnaire name is required")
	}
	tier := req.Tier
	if tier == "" {
		tier = "basic"
	}
	if !validTiers[tier] {
		return nil, fmt.Errorf("invalid tier %q (expected basic, professional or enterprise)", tier)
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = ctxutil.ActorFromContext(ctx)
	}

	record := &secondary.QuestionnaireRecord{
		ID:          s.newID(),
		Name:        req.Name,
		Description: req.Description,
		Purpose:     req.Purpose,
		Category:    req.Category,
		Status:      primary.QuestionnaireStatusDraft,
		Version:     1,
		Tier:        tier,
		CreatedBy:   createdBy,
	}

	if err := s.questionnaireRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create questionnaire: %w", err)
	}

	created, err := s.questionnaireRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created questionnaire: %w", err)
	}

	return recordToQuestionnaire(created), nil
}

// GetQuestionnaire retrieves a questionnaire with section and control counts.
func (s *QuestionnaireServiceImpl) GetQuestionnaire(ctx context.Context, id string) (*primary.Questionnaire, error) {
	record, err := s.questionnaireRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	q := recordToQuestionnaire(record)

	q.SectionCount, err = s.sectionRepo.Count(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count sections: %w", err)
	}
	q.ControlCount, err = s.controlRepo.Count(ctx, secondary.ControlFilters{QuestionnaireID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to count controls: %w", err)
	}

	return q, nil
}

// ListQuestionnaires lists questionnaires with optional filters.
func (s *QuestionnaireServiceImpl) ListQuestionnaires(ctx context.Context, filters primary.QuestionnaireFilters) ([]*primary.Questionnaire, error) {
	records, err := s.questionnaireRepo.List(ctx, secondary.QuestionnaireFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}

	out := make([]*primary.Questionnaire, 0, len(records))
	for _, r := range records {
		out = append(out, recordToQuestionnaire(r))
	}
	return out, nil
}

// UpdateQuestionnaire updates questionnaire metadata.
func (s *QuestionnaireServiceImpl) UpdateQuestionnaire(ctx context.Context, req primary.UpdateQuestionnaireRequest) error {
	if req.Status != "" && !validStatuses[req.Status] {
		return fmt.Errorf("invalid status %q (expected draft, published or archived)", req.Status)
	}
	if req.Tier != "" && !validTiers[req.Tier] {
		return fmt.Errorf("invalid tier %q (expected basic, professional or enterprise)", req.Tier)
	}

	return s.questionnaireRepo.Update(ctx, &secondary.QuestionnaireRecord{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Purpose:     req.Purpose,
		Category:    req.Category,
		Status:      req.Status,
		Tier:        req.Tier,
	})
}

// DeleteQuestionnaire deletes a questionnaire with its sections and controls.
func (s *QuestionnaireServiceImpl) DeleteQuestionnaire(ctx context.Context, id string) error {
	return s.questionnaireRepo.Delete(ctx, id)
}

// Ensure QuestionnaireServiceImpl implements the interface
var _ primary.QuestionnaireService = (*QuestionnaireServiceImpl)(nil)

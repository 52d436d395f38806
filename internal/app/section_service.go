package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/formcraft/internal/core/section"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

// SectionServiceImpl implements the SectionService interface.
type SectionServiceImpl struct {
	sectionRepo secondary.SectionRepository
	controlRepo secondary.ControlRepository
	refresh     *RefreshKey
	newID       func() string
}

// NewSectionService creates a new SectionService. Deletes bump refresh so a
// running sync engine picks up the reassigned controls.
func NewSectionService(
	sectionRepo secondary.SectionRepository,
	controlRepo secondary.ControlRepository,
	refresh *RefreshKey,
) *SectionServiceImpl {
	return &SectionServiceImpl{
		sectionRepo: sectionRepo,
		controlRepo: controlRepo,
		refresh:     refresh,
		newID:       uuid.NewString,
	}
}

// CreateSection appends a section after the existing ones.
func (s *SectionServiceImpl) CreateSection(ctx context.Context, req primary.CreateSectionRequest) (*primary.Section, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("section name is required")
	}

	id := req.ID
	if id == "" {
		id = s.newID()
	}
	if err := section.CanCreateWithID(id).Error(); err != nil {
		return nil, err
	}

	count, err := s.sectionRepo.Count(ctx, req.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sections: %w", err)
	}

	record := &secondary.SectionRecord{
		ID:              id,
		QuestionnaireID: req.QuestionnaireID,
		Name:            req.Name,
		Description:     req.Description,
		Color:           req.Color,
		Icon:            req.Icon,
		Order:           section.NextOrder(count),
		Required:        req.Required,
	}
	if err := s.sectionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	created, err := s.sectionRepo.GetByID(ctx, req.QuestionnaireID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created section: %w", err)
	}
	return recordToSection(created), nil
}

// ListSections lists sections in display order with their control counts.
func (s *SectionServiceImpl) ListSections(ctx context.Context, questionnaireID string) ([]*primary.Section, error) {
	records, err := s.sectionRepo.List(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	out := make([]*primary.Section, 0, len(records))
	for _, r := range records {
		sec := recordToSection(r)
		sec.ControlCount, err = s.controlRepo.Count(ctx, secondary.ControlFilters{
			QuestionnaireID: questionnaireID,
			SectionID:       r.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count controls: %w", err)
		}
		out = append(out, sec)
	}
	return out, nil
}

// UpdateSection updates section metadata.
func (s *SectionServiceImpl) UpdateSection(ctx context.Context, req primary.UpdateSectionRequest) error {
	return s.sectionRepo.Update(ctx, &secondary.SectionRecord{
		ID:              req.SectionID,
		QuestionnaireID: req.QuestionnaireID,
		Name:            req.Name,
		Description:     req.Description,
		Color:           req.Color,
		Icon:            req.Icon,
		Order:           req.Order,
		Required:        req.Required,
	})
}

// DeleteSection deletes a section and moves its controls to the default
// section. The default section itself is never deleted.
func (s *SectionServiceImpl) DeleteSection(ctx context.Context, questionnaireID, sectionID string) (*primary.DeleteSectionResult, error) {
	guard := section.CanDeleteSection(section.DeleteContext{
		QuestionnaireID: questionnaireID,
		SectionID:       sectionID,
	})
	if !guard.Allowed {
		return &primary.DeleteSectionResult{Deleted: false}, nil
	}

	moved, err := s.sectionRepo.DeleteAndReassign(ctx, questionnaireID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete section: %w", err)
	}

	if s.refresh != nil {
		s.refresh.Bump()
	}

	return &primary.DeleteSectionResult{Deleted: true, Reassigned: moved}, nil
}

// Ensure SectionServiceImpl implements the interface
var _ primary.SectionService = (*SectionServiceImpl)(nil)

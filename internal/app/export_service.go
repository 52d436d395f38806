package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/example/formcraft/internal/core/export"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

// ControlWriter writes controls in the bulk-import format.
type ControlWriter func(w io.Writer, controls []*secondary.ControlRecord) error

// ExportServiceImpl implements the ExportService interface.
type ExportServiceImpl struct {
	questionnaireRepo secondary.QuestionnaireRepository
	sectionRepo       secondary.SectionRepository
	controlRepo       secondary.ControlRepository
	writeCSV          ControlWriter
	newQuestionnaire  func() string
	newControl        func() string
	now               func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(
	questionnaireRepo secondary.QuestionnaireRepository,
	sectionRepo secondary.SectionRepository,
	controlRepo secondary.ControlRepository,
	writeCSV ControlWriter,
) *ExportServiceImpl {
	return &ExportServiceImpl{
		questionnaireRepo: questionnaireRepo,
		sectionRepo:       sectionRepo,
		controlRepo:       controlRepo,
		writeCSV:          writeCSV,
		newQuestionnaire:  func() string { return ksuid.New().String() },
		newControl:        uuid.NewString,
		now:               time.Now,
	}
}

func (s *ExportServiceImpl) load(ctx context.Context, questionnaireID string) (*secondary.QuestionnaireRecord, []*secondary.SectionRecord, []*secondary.ControlRecord, error) {
	q, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, nil, nil, err
	}
	sections, err := s.sectionRepo.List(ctx, questionnaireID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list sections: %w", err)
	}
	controls, err := s.controlRepo.List(ctx, secondary.ControlFilters{QuestionnaireID: questionnaireID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list controls: %w", err)
	}
	return q, sections, controls, nil
}

// ExportJSON renders the questionnaire's form definition document.
func (s *ExportServiceImpl) ExportJSON(ctx context.Context, questionnaireID string) ([]byte, error) {
	q, sections, controls, err := s.load(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	doc := export.Build(q, sections, controls)
	doc.ExportedAt = s.now().UTC().Format(time.RFC3339)
	return export.Encode(doc)
}

// ExportCSV writes the questionnaire's controls in the bulk-import format.
func (s *ExportServiceImpl) ExportCSV(ctx context.Context, questionnaireID string, w io.Writer) error {
	if _, err := s.questionnaireRepo.GetByID(ctx, questionnaireID); err != nil {
		return err
	}
	controls, err := s.controlRepo.List(ctx, secondary.ControlFilters{QuestionnaireID: questionnaireID})
	if err != nil {
		return fmt.Errorf("failed to list controls: %w", err)
	}
	return s.writeCSV(w, controls)
}

// Restore creates a new questionnaire from an exported document. Controls
// get fresh ids; section ids are kept since they are scoped per questionnaire.
// A failure part way removes the partially restored questionnaire.
func (s *ExportServiceImpl) Restore(ctx context.Context, data []byte) (*primary.Questionnaire, error) {
	doc, err := export.Decode(data)
	if err != nil {
		return nil, err
	}

	restored, err := export.Restore(doc, s.newQuestionnaire())
	if err != nil {
		return nil, err
	}
	q := restored.Questionnaire
	if q.Name == "" {
		q.Name = "Restored questionnaire"
	}

	if err := s.questionnaireRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create questionnaire: %w", err)
	}

	if err := s.restoreContent(ctx, restored); err != nil {
		if delErr := s.questionnaireRepo.Delete(ctx, q.ID); delErr != nil {
			return nil, fmt.Errorf("%w (cleanup failed: %v)", err, delErr)
		}
		return nil, err
	}

	created, err := s.questionnaireRepo.GetByID(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch restored questionnaire: %w", err)
	}
	out := recordToQuestionnaire(created)
	out.SectionCount = len(restored.Sections)
	out.ControlCount = len(restored.Controls)
	return out, nil
}

func (s *ExportServiceImpl) restoreContent(ctx context.Context, restored export.Restored) error {
	for _, sec := range restored.Sections {
		var err error
		if sec.ID == secondary.DefaultSectionID {
			err = s.sectionRepo.Update(ctx, sec)
		} else {
			err = s.sectionRepo.Create(ctx, sec)
		}
		if err != nil {
			return fmt.Errorf("failed to restore section %s: %w", sec.ID, err)
		}
	}

	for _, c := range restored.Controls {
		c.ID = s.newControl()
		if err := s.controlRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to restore control %q: %w", c.Name, err)
		}
	}
	return nil
}

// Ensure ExportServiceImpl implements the interface
var _ primary.ExportService = (*ExportServiceImpl)(nil)

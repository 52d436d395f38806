package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/example/formcraft/internal/catalog"
	"github.com/example/formcraft/internal/core/bulkimport"
	"github.com/example/formcraft/internal/core/control"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

// RowParser turns a tabular source into import rows.
type RowParser func(r io.Reader) ([]bulkimport.Row, error)

// ResetFunc asks the sync engine of a questionnaire for a full reset.
type ResetFunc func(ctx context.Context, questionnaireID string) error

// ImportServiceConfig wires an ImportServiceImpl.
type ImportServiceConfig struct {
	Controls   secondary.ControlRepository
	Sections   secondary.SectionRepository
	Catalog    ControlCatalog
	Parse      RowParser
	RefreshKey *RefreshKey
	Reset      ResetFunc // optional
	Canvas     *DirectCanvas
	NewID      func() string
	Logger     *log.Entry
}

// ImportServiceImpl implements the ImportService interface.
type ImportServiceImpl struct {
	controlRepo secondary.ControlRepository
	sectionRepo secondary.SectionRepository
	catalog     ControlCatalog
	parse       RowParser
	refresh     *RefreshKey
	reset       ResetFunc
	canvas      *DirectCanvas
	newID       func() string
	log         *log.Entry
}

// NewImportService creates a new ImportService.
func NewImportService(cfg ImportServiceConfig) *ImportServiceImpl {
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	canvas := cfg.Canvas
	if canvas == nil {
		canvas = NewDirectCanvas()
	}
	return &ImportServiceImpl{
		controlRepo: cfg.Controls,
		sectionRepo: cfg.Sections,
		catalog:     cfg.Catalog,
		parse:       cfg.Parse,
		refresh:     cfg.RefreshKey,
		reset:       cfg.Reset,
		canvas:      canvas,
		newID:       newID,
		log:         logger,
	}
}

// Import parses, validates and installs rows. Row failures are collected in
// the result; only a source that cannot be read at all is an error.
func (s *ImportServiceImpl) Import(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	rows, err := s.parse(req.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to read import source: %w", err)
	}

	validated := bulkimport.Validate(rows, bulkimport.Options{
		NewID:         s.newID,
		DefaultHeight: s.defaultHeight,
		DefaultWidth:  catalog.DefaultWidth,
	})

	logger := s.log.WithFields(log.Fields{"questionnaire": req.QuestionnaireID, "op": "import"})
	for _, msg := range validated.Errors {
		logger.WithField("reason", msg).Warn("row rejected")
	}

	switch req.Mode {
	case primary.ImportModeDirect:
		return s.importDirect(req, validated), nil
	case primary.ImportModePersisted, "":
		return s.importPersisted(ctx, req, validated, logger), nil
	default:
		return nil, fmt.Errorf("unknown import mode %q", req.Mode)
	}
}

func (s *ImportServiceImpl) defaultHeight(controlType string) int {
	if def, ok := s.catalog.Lookup(controlType); ok {
		return def.DefaultHeight
	}
	return 40
}

// importPersisted inserts each accepted record under a fresh id, appended
// to its section in row order, then signals the sync engine.
func (s *ImportServiceImpl) importPersisted(ctx context.Context, req primary.ImportRequest, validated bulkimport.Result, logger *log.Entry) *primary.ImportResult {
	result := &primary.ImportResult{
		Mode:   primary.ImportModePersisted,
		Total:  validated.Total,
		Errors: append([]string(nil), validated.Errors...),
	}

	sections := map[string]string{}
	next := map[string]int{}

	control.SortByPosition(validated.Accepted)
	for _, candidate := range validated.Accepted {
		record := candidate.Clone()
		record.ID = s.newID()
		record.QuestionnaireID = req.QuestionnaireID

		target, ok := sections[record.SectionID]
		if !ok {
			exists, err := s.sectionRepo.Exists(ctx, req.QuestionnaireID, record.SectionID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("control %q: %v", candidate.Name, err))
				continue
			}
			target = secondary.DefaultSectionID
			if exists {
				target = record.SectionID
			}
			sections[record.SectionID] = target
		}
		record.SectionID = target

		if _, seen := next[target]; !seen {
			count, err := s.controlRepo.Count(ctx, secondary.ControlFilters{QuestionnaireID: req.QuestionnaireID, SectionID: target})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("control %q: %v", candidate.Name, err))
				continue
			}
			next[target] = count
		}
		record.Position = secondary.Position{X: 0, Y: next[target]}

		if err := s.controlRepo.Create(ctx, record); err != nil {
			logger.WithError(err).WithField("control", record.ID).Warn("failed to insert imported control")
			result.Errors = append(result.Errors, fmt.Sprintf("control %q: %v", candidate.Name, err))
			continue
		}
		next[target]++
		result.Imported++
		result.IDs = append(result.IDs, record.ID)
	}

	if s.refresh != nil {
		s.refresh.Bump()
	}
	if s.reset != nil {
		if err := s.reset(ctx, req.QuestionnaireID); err != nil {
			logger.WithError(err).Warn("reset after import failed")
		}
	}

	logger.WithFields(log.Fields{
		"imported": result.Imported,
		"total":    result.Total,
		"errors":   len(result.Errors),
	}).Info("import finished")

	return result
}

func (s *ImportServiceImpl) importDirect(req primary.ImportRequest, validated bulkimport.Result) *primary.ImportResult {
	records := make([]*secondary.ControlRecord, 0, len(validated.Accepted))
	ids := make([]string, 0, len(validated.Accepted))
	for _, candidate := range validated.Accepted {
		record := candidate.Clone()
		record.QuestionnaireID = req.QuestionnaireID
		records = append(records, record)
		ids = append(ids, record.ID)
	}
	control.SortByPosition(records)
	s.canvas.Install(records)

	return &primary.ImportResult{
		Mode:     primary.ImportModeDirect,
		Total:    validated.Total,
		Imported: len(records),
		IDs:      ids,
		Errors:   validated.Errors,
	}
}

// DirectControls returns the controls installed by the last direct import.
func (s *ImportServiceImpl) DirectControls() []*primary.Control {
	return recordsToControls(s.canvas.Controls())
}

// Ensure ImportServiceImpl implements the interface
var _ primary.ImportService = (*ImportServiceImpl)(nil)

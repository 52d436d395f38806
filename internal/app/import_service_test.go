package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/example/formcraft/internal/catalog"
	"github.com/example/formcraft/internal/core/bulkimport"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

// staticRows returns a parser that ignores its input and yields rows.
func staticRows(rows ...map[string]string) RowParser {
	return func(io.Reader) ([]bulkimport.Row, error) {
		out := make([]bulkimport.Row, 0, len(rows))
		for i, fields := range rows {
			out = append(out, bulkimport.Row{Index: i, Fields: fields})
		}
		return out, nil
	}
}

type importFixture struct {
	service  *ImportServiceImpl
	controls *mockControlRepository
	sections *mockSectionRepository
	refresh  *RefreshKey
	resets   []string
}

func newTestImportService(parse RowParser) *importFixture {
	controls := newMockControlRepository()
	sections := newMockSectionRepository(controls)
	sections.put(testQuestionnaireID, secondary.DefaultSectionID, 0)
	sections.put(testQuestionnaireID, "contact", 1)

	f := &importFixture{controls: controls, sections: sections, refresh: NewRefreshKey()}
	f.service = NewImportService(ImportServiceConfig{
		Controls:   controls,
		Sections:   sections,
		Catalog:    catalog.New(),
		Parse:      parse,
		RefreshKey: f.refresh,
		Reset: func(ctx context.Context, questionnaireID string) error {
			f.resets = append(f.resets, questionnaireID)
			return nil
		},
		NewID: sequentialIDs("imp"),
	})
	return f
}

func persisted() primary.ImportRequest {
	return primary.ImportRequest{
		QuestionnaireID: testQuestionnaireID,
		Source:          strings.NewReader(""),
		Mode:            primary.ImportModePersisted,
	}
}

// ============================================================================
// Persisted Import Tests
// ============================================================================

func TestImport_PartialFailure(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"id": "r1", "type": "textInput", "name": "first"},
		map[string]string{"id": "r2", "label": "orphan"},
		map[string]string{"id": "r3", "type": "checkbox", "name": "third"},
	))

	result, err := f.service.Import(context.Background(), persisted())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "row 2") {
		t.Errorf("expected one error naming row 2, got %v", result.Errors)
	}

	stored, _ := f.controls.List(context.Background(), secondary.ControlFilters{QuestionnaireID: testQuestionnaireID})
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored controls, got %d", len(stored))
	}
	for _, c := range stored {
		if c.Name == "orphan" {
			t.Error("expected no record for row 2")
		}
	}
	if stored[0].Name != "first" || stored[0].Position.Y != 0 {
		t.Errorf("expected first at 0, got %s at %d", stored[0].Name, stored[0].Position.Y)
	}
	if stored[1].Name != "third" || stored[1].Position.Y != 1 {
		t.Errorf("expected third at 1, got %s at %d", stored[1].Name, stored[1].Position.Y)
	}
}

func TestImport_FreshIDsAndAppend(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"id": "a", "type": "textInput", "name": "one"},
		map[string]string{"id": "b", "type": "textInput", "name": "two", "section": "contact"},
	))
	f.controls.put(ctrl("existing", "default", 0))

	result, err := f.service.Import(context.Background(), persisted())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	for _, id := range result.IDs {
		if id == "a" || id == "b" {
			t.Errorf("expected fresh id, got row id %q", id)
		}
	}

	one := f.controls.get(result.IDs[0])
	if one.SectionID != "default" || one.Position.Y != 1 {
		t.Errorf("expected one appended at default/1, got %s/%d", one.SectionID, one.Position.Y)
	}
	two := f.controls.get(result.IDs[1])
	if two.SectionID != "contact" || two.Position.Y != 0 {
		t.Errorf("expected two at contact/0, got %s/%d", two.SectionID, two.Position.Y)
	}
}

func TestImport_UnknownSectionFallsBack(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"type": "textInput", "name": "lost", "section": "nowhere"},
	))

	result, err := f.service.Import(context.Background(), persisted())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := f.controls.get(result.IDs[0]).SectionID; got != secondary.DefaultSectionID {
		t.Errorf("expected default section, got %q", got)
	}
}

func TestImport_SignalsEngine(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"type": "textInput", "name": "one"},
	))

	if _, err := f.service.Import(context.Background(), persisted()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.refresh.Value() != 1 {
		t.Errorf("expected refresh key bumped once, got %d", f.refresh.Value())
	}
	if len(f.resets) != 1 || f.resets[0] != testQuestionnaireID {
		t.Errorf("expected one reset for %s, got %v", testQuestionnaireID, f.resets)
	}
}

func TestImport_InsertFailureCollected(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"type": "textInput", "name": "good"},
		map[string]string{"type": "textInput", "name": "bad"},
	))
	f.controls.createFailFor["bad"] = true

	result, err := f.service.Import(context.Background(), persisted())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], `"bad"`) {
		t.Errorf("expected insert error for bad, got %v", result.Errors)
	}
}

func TestImport_DefaultHeightFromCatalog(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"type": "textArea", "name": "notes"},
		map[string]string{"type": "mystery", "name": "odd"},
	))

	result, _ := f.service.Import(context.Background(), persisted())

	if h := f.controls.get(result.IDs[0]).Size.Height; h != 120 {
		t.Errorf("expected textArea height 120, got %d", h)
	}
	if h := f.controls.get(result.IDs[1]).Size.Height; h != 40 {
		t.Errorf("expected fallback height 40, got %d", h)
	}
}

func TestImport_ParseFailure(t *testing.T) {
	f := newTestImportService(func(io.Reader) ([]bulkimport.Row, error) {
		return nil, errors.New("no header row")
	})

	if _, err := f.service.Import(context.Background(), persisted()); err == nil {
		t.Fatal("expected error")
	}
	if f.refresh.Value() != 0 {
		t.Error("expected no refresh bump")
	}
}

func TestImport_UnknownMode(t *testing.T) {
	f := newTestImportService(staticRows())
	req := persisted()
	req.Mode = "sideways"

	if _, err := f.service.Import(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

// ============================================================================
// Direct Import Tests
// ============================================================================

func TestImport_DirectKeepsIDsAndSkipsStore(t *testing.T) {
	f := newTestImportService(staticRows(
		map[string]string{"id": "second", "type": "textInput", "name": "b", "order": "1"},
		map[string]string{"id": "first", "type": "textInput", "name": "a", "order": "0"},
	))
	req := persisted()
	req.Mode = primary.ImportModeDirect

	result, err := f.service.Import(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if f.controls.size() != 0 {
		t.Error("expected store untouched")
	}
	if f.refresh.Value() != 0 || len(f.resets) != 0 {
		t.Error("expected engine not signalled")
	}

	direct := f.service.DirectControls()
	if len(direct) != 2 || direct[0].ID != "first" || direct[1].ID != "second" {
		t.Errorf("expected row ids ordered by position, got %+v", direct)
	}
}

package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/example/formcraft/internal/core/bulkimport"
	"github.com/example/formcraft/internal/ports/secondary"
)

func TestReadRows(t *testing.T) {
	input := "ID, Type ,Name,Required,Options\n" +
		"c1,textInput,First,TRUE,\n" +
		",,,,\n" +
		"c2,dropdown,Choice,FALSE,a|b\n" +
		"c3,textArea\n"

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (blank skipped), got %d", len(rows))
	}
	if rows[0].Fields["id"] != "c1" || rows[0].Fields["type"] != "textInput" {
		t.Errorf("unexpected first row %#v", rows[0].Fields)
	}
	if rows[1].Index != 1 || rows[1].Fields["options"] != "a|b" {
		t.Errorf("unexpected second row %+v", rows[1])
	}
	if rows[2].Fields["name"] != "" {
		t.Errorf("short row should leave trailing cells empty, got %q", rows[2].Fields["name"])
	}
}

func TestReadRows_Empty(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("")); !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
}

func TestReadRows_FeedsValidation(t *testing.T) {
	input := "id,type,name,label\n" +
		"a,textInput,First,\n" +
		"b,,,only a label\n" +
		"c,emailInput,Email,\n"

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	result := bulkimport.Validate(rows, bulkimport.Options{})
	if len(result.Accepted) != 2 || len(result.Errors) != 1 {
		t.Errorf("expected 2 accepted and 1 error, got %d and %v", len(result.Accepted), result.Errors)
	}
}

func TestWriteControls_RoundTrip(t *testing.T) {
	controls := []*secondary.ControlRecord{
		{
			ID: "c1", Type: "dropdown", Name: "Country", SectionID: "default",
			Position:   secondary.Position{Y: 0},
			Properties: map[string]any{"label": "Country", "required": true, "options": []any{"NL", "DE"}, "multiple": false},
		},
		{
			ID: "c2", Type: "numberInput", Name: "Age", SectionID: "s1",
			Position:   secondary.Position{Y: 3},
			Properties: map[string]any{"label": "Age", "min": float64(18)},
		},
	}

	var buf bytes.Buffer
	if err := WriteControls(&buf, controls); err != nil {
		t.Fatalf("WriteControls failed: %v", err)
	}

	rows, err := ReadRows(&buf)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	result := bulkimport.Validate(rows, bulkimport.Options{})
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Accepted))
	}

	first := result.Accepted[0]
	if first.ID != "c1" || first.SectionID != "default" || first.Properties["required"] != true {
		t.Errorf("unexpected first record %+v", first)
	}
	opts, _ := first.Properties["options"].([]string)
	if len(opts) != 2 || opts[0] != "NL" || opts[1] != "DE" {
		t.Errorf("options not preserved: %#v", first.Properties["options"])
	}
	if first.Properties["multiple"] != false {
		t.Errorf("boolean property not preserved: %#v", first.Properties["multiple"])
	}

	second := result.Accepted[1]
	if second.SectionID != "s1" || second.Position.Y != 3 || second.Properties["min"] != 18 {
		t.Errorf("unexpected second record %+v", second)
	}
}

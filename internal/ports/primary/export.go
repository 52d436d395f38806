package primary

import (
	"context"
	"io"
)

// ExportService defines the primary port for exporting and restoring forms.
type ExportService interface {
	// ExportJSON renders the questionnaire's form definition document.
	ExportJSON(ctx context.Context, questionnaireID string) ([]byte, error)

	// ExportCSV writes the questionnaire's controls in the bulk-import format.
	ExportCSV(ctx context.Context, questionnaireID string, w io.Writer) error

	// Restore creates a new questionnaire from an exported document.
	Restore(ctx context.Context, data []byte) (*Questionnaire, error)
}

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/formcraft/internal/ports/primary"
)

// TransferAdapter translates import and export operations to their services.
type TransferAdapter struct {
	imports primary.ImportService
	exports primary.ExportService
	out     io.Writer
}

// NewTransferAdapter creates a new TransferAdapter.
func NewTransferAdapter(imports primary.ImportService, exports primary.ExportService, out io.Writer) *TransferAdapter {
	return &TransferAdapter{
		imports: imports,
		exports: exports,
		out:     out,
	}
}

// Import runs a bulk import and prints a summary with every rejected row.
func (a *TransferAdapter) Import(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	result, err := a.imports.Import(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Imported %d of %d row(s) (%s)\n", result.Imported, result.Total, result.Mode)
	if len(result.Errors) > 0 {
		fmt.Fprintf(a.out, "  %d problem(s):\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Fprintf(a.out, "    - %s\n", msg)
		}
	}
	return result, nil
}

// ExportJSON writes the form definition document to w.
func (a *TransferAdapter) ExportJSON(ctx context.Context, questionnaireID string, w io.Writer) error {
	data, err := a.exports.ExportJSON(ctx, questionnaireID)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// ExportCSV writes the questionnaire's controls in the import format to w.
func (a *TransferAdapter) ExportCSV(ctx context.Context, questionnaireID string, w io.Writer) error {
	if err := a.exports.ExportCSV(ctx, questionnaireID, w); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// Restore creates a new questionnaire from an exported document.
func (a *TransferAdapter) Restore(ctx context.Context, data []byte) (*primary.Questionnaire, error) {
	q, err := a.exports.Restore(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("restore failed: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Restored questionnaire %s: %s\n", q.ID, q.Name)
	fmt.Fprintf(a.out, "  %d section(s), %d control(s)\n", q.SectionCount, q.ControlCount)
	return q, nil
}

// Package tabular reads and writes the flat bulk-import format: one header
// row naming the fields followed by one row per control.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/example/formcraft/internal/core/bulkimport"
	"github.com/example/formcraft/internal/ports/secondary"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("missing header row")

// ReadRows parses CSV input into import rows keyed by lowercased header.
// Fully blank lines are skipped; short rows leave their trailing cells empty.
func ReadRows(r io.Reader) ([]bulkimport.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []bulkimport.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		if blank(record) {
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, column := range columns {
			if column == "" {
				continue
			}
			if i < len(record) {
				fields[column] = record[i]
			} else {
				fields[column] = ""
			}
		}
		rows = append(rows, bulkimport.Row{Index: len(rows), Fields: fields})
	}

	return rows, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var leadingColumns = []string{
	bulkimport.ColumnID,
	bulkimport.ColumnType,
	bulkimport.ColumnName,
	bulkimport.ColumnSection,
	bulkimport.ColumnOrder,
	bulkimport.ColumnLabel,
	bulkimport.ColumnPlaceholder,
	bulkimport.ColumnRequired,
	bulkimport.ColumnOptions,
}

// WriteControls writes controls in the bulk-import format so the output can
// be fed back through ReadRows.
func WriteControls(w io.Writer, controls []*secondary.ControlRecord) error {
	extra := map[string]bool{}
	for _, c := range controls {
		for key := range c.Properties {
			if !isLeading(strings.ToLower(key)) {
				extra[key] = true
			}
		}
	}
	extraColumns := make([]string, 0, len(extra))
	for key := range extra {
		extraColumns = append(extraColumns, key)
	}
	sort.Strings(extraColumns)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append(append([]string{}, leadingColumns...), extraColumns...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, c := range controls {
		row := []string{
			c.ID,
			c.Type,
			c.Name,
			c.SectionID,
			strconv.Itoa(c.Position.Y),
			cell(c.Properties["label"]),
			cell(c.Properties["placeholder"]),
			cell(c.Properties["required"]),
			cell(c.Properties["options"]),
		}
		for _, key := range extraColumns {
			row = append(row, cell(c.Properties[key]))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func isLeading(column string) bool {
	for _, c := range leadingColumns {
		if c == column {
			return true
		}
	}
	return false
}

func cell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case bool:
		return bulkimport.FormatBool(value)
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case []string:
		return strings.Join(value, bulkimport.OptionSeparator)
	case []any:
		parts := make([]string, 0, len(value))
		for _, p := range value {
			parts = append(parts, cell(p))
		}
		return strings.Join(parts, bulkimport.OptionSeparator)
	default:
		return fmt.Sprint(value)
	}
}

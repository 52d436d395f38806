// Package bulkimport maps tabular rows to candidate control records.
// Validation accumulates errors: a rejected row never stops the rest.
package bulkimport

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/example/formcraft/internal/ports/secondary"
)

// Boolean cells use exactly two literals; anything else reads as false.
const (
	TrueLiteral  = "TRUE"
	FalseLiteral = "FALSE"
)

// OptionSeparator splits the options cell into individual choices.
const OptionSeparator = "|"

// Reserved columns are mapped onto record fields; every other non-empty
// column becomes a control property.
const (
	ColumnID          = "id"
	ColumnType        = "type"
	ColumnCategory    = "category"
	ColumnName        = "name"
	ColumnLabel       = "label"
	ColumnPlaceholder = "placeholder"
	ColumnRequired    = "required"
	ColumnOptions     = "options"
	ColumnSection     = "section"
	ColumnOrder       = "order"
)

var numericColumns = map[string]bool{
	"min": true, "max": true, "step": true, "maxlength": true, "rows": true,
	"scale": true, "maxsizemb": true, "level": true, "width": true, "height": true,
}

var booleanColumns = map[string]bool{
	"multiple": true, "inline": true, "checked": true, "on": true,
}

// propertyNames maps lowercased column names to their property spelling.
var propertyNames = map[string]string{
	"maxlength": "maxLength",
	"maxsizemb": "maxSizeMB",
	"helptext":  "helpText",
}

// Row is one data row keyed by lowercased header name.
type Row struct {
	Index  int // zero-based data row index (header excluded)
	Fields map[string]string
}

func (r Row) get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// Options configures row mapping.
type Options struct {
	// NewID generates a fallback id for rows without one.
	NewID func() string
	// DefaultHeight returns the height for a control type.
	DefaultHeight func(controlType string) int
	// DefaultWidth is the width given to every imported control.
	DefaultWidth int
}

// Result is the outcome of mapping a batch of rows.
type Result struct {
	Total    int
	Accepted []*secondary.ControlRecord
	Errors   []string
}

// Validate maps rows to control records. A row lacking both type and name,
// or lacking an id after defaulting, is rejected and recorded in Errors.
func Validate(rows []Row, opts Options) Result {
	result := Result{Total: len(rows)}
	for _, row := range rows {
		record, err := mapRow(row, opts)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Accepted = append(result.Accepted, record)
	}
	return result
}

func mapRow(row Row, opts Options) (*secondary.ControlRecord, error) {
	rowNumber := row.Index + 1

	controlType := row.get(ColumnType)
	name := row.get(ColumnName)
	if controlType == "" && name == "" {
		return nil, &secondary.ValidationError{Row: rowNumber, Reason: "missing both type and name"}
	}

	id := row.get(ColumnID)
	if id == "" && opts.NewID != nil {
		id = opts.NewID()
	}
	if id == "" {
		return nil, &secondary.ValidationError{Row: rowNumber, Reason: "missing id"}
	}

	if name == "" {
		name = row.get(ColumnLabel)
	}
	if name == "" {
		name = controlType
	}

	sectionID := row.get(ColumnSection)
	if sectionID == "" {
		sectionID = secondary.DefaultSectionID
	}

	order := row.Index
	if _, ok := row.Fields[ColumnOrder]; ok {
		order = ParseNumber(row.get(ColumnOrder))
	}

	height := 0
	if opts.DefaultHeight != nil {
		height = opts.DefaultHeight(controlType)
	}

	return &secondary.ControlRecord{
		ID:         id,
		Type:       controlType,
		Name:       name,
		SectionID:  sectionID,
		Position:   secondary.Position{X: 0, Y: order},
		Size:       secondary.Size{Width: opts.DefaultWidth, Height: height},
		Properties: properties(row),
	}, nil
}

func properties(row Row) map[string]any {
	props := make(map[string]any)

	columns := make([]string, 0, len(row.Fields))
	for column := range row.Fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	for _, column := range columns {
		value := row.get(column)
		switch column {
		case ColumnID, ColumnType, ColumnName, ColumnSection, ColumnOrder:
			continue
		case ColumnRequired:
			props["required"] = ParseBool(value)
			continue
		case ColumnOptions:
			if value != "" {
				props["options"] = SplitOptions(value)
			}
			continue
		}
		if value == "" {
			continue
		}

		key := column
		if mapped, ok := propertyNames[column]; ok {
			key = mapped
		}
		switch {
		case numericColumns[column]:
			props[key] = ParseNumber(value)
		case booleanColumns[column]:
			props[key] = ParseBool(value)
		default:
			props[key] = value
		}
	}
	return props
}

// ParseBool reads the two-literal boolean encoding.
func ParseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), TrueLiteral)
}

// FormatBool writes the two-literal boolean encoding.
func FormatBool(b bool) string {
	if b {
		return TrueLiteral
	}
	return FalseLiteral
}

// ParseNumber parses an integer cell, falling back to zero. Fractions are
// truncated; values outside the int range, NaN and infinities become zero.
func ParseNumber(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0
	}
	return int(f)
}

// SplitOptions splits an options cell, dropping blank entries.
func SplitOptions(s string) []string {
	var out []string
	for _, part := range strings.Split(s, OptionSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

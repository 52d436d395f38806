// Package catalog is the static registry of control types a form can contain.
package catalog

import "sort"

// Category groups control types in the palette.
const (
	CategoryInput     = "input"
	CategorySelection = "selection"
	CategoryLayout    = "layout"
	CategoryAdvanced  = "advanced"
)

// DefaultWidth is the width every control starts with.
const DefaultWidth = 100

// PropertyDef is a property a control type declares, with its seed value.
type PropertyDef struct {
	Name    string
	Default any
}

// Definition describes one control type.
type Definition struct {
	Type          string
	Label         string
	Category      string
	DefaultHeight int
	Properties    []PropertyDef
}

// DefaultProperties returns a fresh property map seeded from the declared defaults.
func (d Definition) DefaultProperties() map[string]any {
	props := make(map[string]any, len(d.Properties))
	for _, p := range d.Properties {
		switch v := p.Default.(type) {
		case []string:
			props[p.Name] = append([]string(nil), v...)
		default:
			props[p.Name] = v
		}
	}
	return props
}

var common = []PropertyDef{
	{Name: "label", Default: ""},
	{Name: "required", Default: false},
	{Name: "helpText", Default: ""},
}

func with(extra ...PropertyDef) []PropertyDef {
	out := make([]PropertyDef, 0, len(common)+len(extra))
	out = append(out, common...)
	return append(out, extra...)
}

var definitions = []Definition{
	{Type: "textInput", Label: "Text Input", Category: CategoryInput, DefaultHeight: 40,
		Properties: with(PropertyDef{"placeholder", ""}, PropertyDef{"maxLength", 255})},
	{Type: "textArea", Label: "Text Area", Category: CategoryInput, DefaultHeight: 120,
		Properties: with(PropertyDef{"placeholder", ""}, PropertyDef{"rows", 4}, PropertyDef{"maxLength", 2000})},
	{Type: "numberInput", Label: "Number", Category: CategoryInput, DefaultHeight: 40,
		Properties: with(PropertyDef{"min", 0}, PropertyDef{"max", 100}, PropertyDef{"step", 1})},
	{Type: "emailInput", Label: "Email", Category: CategoryInput, DefaultHeight: 40,
		Properties: with(PropertyDef{"placeholder", "name@example.com"})},
	{Type: "dateInput", Label: "Date", Category: CategoryInput, DefaultHeight: 40,
		Properties: with(PropertyDef{"format", "2006-01-02"})},
	{Type: "dropdown", Label: "Dropdown", Category: CategorySelection, DefaultHeight: 40,
		Properties: with(PropertyDef{"options", []string{"Option 1", "Option 2"}}, PropertyDef{"multiple", false})},
	{Type: "radioGroup", Label: "Radio Group", Category: CategorySelection, DefaultHeight: 80,
		Properties: with(PropertyDef{"options", []string{"Option 1", "Option 2"}}, PropertyDef{"inline", false})},
	{Type: "checkbox", Label: "Checkbox", Category: CategorySelection, DefaultHeight: 32,
		Properties: with(PropertyDef{"checked", false})},
	{Type: "toggle", Label: "Toggle", Category: CategorySelection, DefaultHeight: 32,
		Properties: with(PropertyDef{"on", false})},
	{Type: "rating", Label: "Rating", Category: CategoryAdvanced, DefaultHeight: 48,
		Properties: with(PropertyDef{"scale", 5})},
	{Type: "fileUpload", Label: "File Upload", Category: CategoryAdvanced, DefaultHeight: 96,
		Properties: with(PropertyDef{"accept", ""}, PropertyDef{"maxSizeMB", 10})},
	{Type: "heading", Label: "Heading", Category: CategoryLayout, DefaultHeight: 48,
		Properties: []PropertyDef{{"text", "Heading"}, {"level", 2}}},
	{Type: "paragraph", Label: "Paragraph", Category: CategoryLayout, DefaultHeight: 64,
		Properties: []PropertyDef{{"text", ""}}},
	{Type: "divider", Label: "Divider", Category: CategoryLayout, DefaultHeight: 16,
		Properties: nil},
}

var byType = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Type] = d
	}
	return m
}()

// Catalog looks up control definitions.
type Catalog struct{}

// New returns the built-in catalog.
func New() Catalog { return Catalog{} }

// Lookup returns the definition for a control type.
func (Catalog) Lookup(controlType string) (Definition, bool) {
	d, ok := byType[controlType]
	return d, ok
}

// All returns every definition ordered by category then type.
func (Catalog) All() []Definition {
	out := append([]Definition(nil), definitions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Type < out[j].Type
	})
	return out
}

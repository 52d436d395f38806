// Package export builds the JSON form definition for a questionnaire and
// restores sections and controls from it.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/example/formcraft/internal/ports/secondary"
)

// FormatVersion is written into every document.
const FormatVersion = 1

// Document is the exported form definition.
type Document struct {
	FormatVersion     int               `json:"formatVersion"`
	ExportedAt        string            `json:"exportedAt,omitempty"`
	Questionnaire     Questionnaire     `json:"questionnaire"`
	FormDefinition    FormDefinition    `json:"formDefinition"`
	TierConfiguration TierConfiguration `json:"tierConfiguration"`
}

// Questionnaire is the exported questionnaire metadata.
type Questionnaire struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status"`
	Version     int    `json:"version"`
	Tier        string `json:"tier"`
}

// FormDefinition holds sections with their nested controls plus the flat list.
type FormDefinition struct {
	Sections []Section `json:"sections"`
	Controls []Control `json:"controls"`
}

// Section is an exported section with the controls it contains.
type Section struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Order       int       `json:"order"`
	Required    bool      `json:"required"`
	Controls    []Control `json:"controls"`
}

// Control is an exported control.
type Control struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	SectionID  string         `json:"sectionId"`
	Position   Position       `json:"position"`
	Size       Size           `json:"size"`
	Properties map[string]any `json:"properties"`
	Validation *Validation    `json:"validation,omitempty"`
}

// Position mirrors secondary.Position.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size mirrors secondary.Size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validation is synthesized from control properties.
type Validation struct {
	Required bool `json:"required"`
}

// TierConfiguration describes the limits of the questionnaire's tier.
// Zero limits mean unlimited.
type TierConfiguration struct {
	Tier        string   `json:"tier"`
	MaxControls int      `json:"maxControls"`
	MaxSections int      `json:"maxSections"`
	Features    []string `json:"features"`
}

var tiers = map[string]TierConfiguration{
	"basic": {
		Tier: "basic", MaxControls: 25, MaxSections: 3,
		Features: []string{"standard-controls"},
	},
	"professional": {
		Tier: "professional", MaxControls: 100, MaxSections: 10,
		Features: []string{"standard-controls", "file-upload", "conditional-logic"},
	},
	"enterprise": {
		Tier:     "enterprise",
		Features: []string{"standard-controls", "file-upload", "conditional-logic", "custom-branding", "api-access"},
	},
}

// TierFor returns the configuration for tier, defaulting to basic.
func TierFor(tier string) TierConfiguration {
	cfg, ok := tiers[tier]
	if !ok {
		cfg = tiers["basic"]
	}
	cfg.Features = append([]string(nil), cfg.Features...)
	return cfg
}

// Build assembles the export document. Controls are grouped under their
// section in (y, x) order; controls whose section is not listed appear only
// in the flat list.
func Build(q *secondary.QuestionnaireRecord, sections []*secondary.SectionRecord, controls []*secondary.ControlRecord) Document {
	doc := Document{
		FormatVersion: FormatVersion,
		Questionnaire: Questionnaire{
			ID:          q.ID,
			Name:        q.Name,
			Description: q.Description,
			Purpose:     q.Purpose,
			Category:    q.Category,
			Status:      q.Status,
			Version:     q.Version,
			Tier:        q.Tier,
		},
		TierConfiguration: TierFor(q.Tier),
	}

	ordered := make([]*secondary.ControlRecord, len(controls))
	copy(ordered, controls)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position.Y != ordered[j].Position.Y {
			return ordered[i].Position.Y < ordered[j].Position.Y
		}
		return ordered[i].Position.X < ordered[j].Position.X
	})

	bySection := make(map[string][]Control)
	doc.FormDefinition.Controls = make([]Control, 0, len(ordered))
	for _, c := range ordered {
		exported := toControl(c)
		doc.FormDefinition.Controls = append(doc.FormDefinition.Controls, exported)
		bySection[c.SectionID] = append(bySection[c.SectionID], exported)
	}

	orderedSections := make([]*secondary.SectionRecord, len(sections))
	copy(orderedSections, sections)
	sort.SliceStable(orderedSections, func(i, j int) bool {
		return orderedSections[i].Order < orderedSections[j].Order
	})

	doc.FormDefinition.Sections = make([]Section, 0, len(orderedSections))
	for _, s := range orderedSections {
		nested := bySection[s.ID]
		if nested == nil {
			nested = []Control{}
		}
		doc.FormDefinition.Sections = append(doc.FormDefinition.Sections, Section{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Color:       s.Color,
			Icon:        s.Icon,
			Order:       s.Order,
			Required:    s.Required,
			Controls:    nested,
		})
	}

	return doc
}

func toControl(c *secondary.ControlRecord) Control {
	props := make(map[string]any, len(c.Properties))
	for k, v := range c.Properties {
		props[k] = v
	}
	return Control{
		ID:         c.ID,
		Type:       c.Type,
		Name:       c.Name,
		SectionID:  c.SectionID,
		Position:   Position{X: c.Position.X, Y: c.Position.Y},
		Size:       Size{Width: c.Size.Width, Height: c.Size.Height},
		Properties: props,
		Validation: &Validation{Required: isRequired(c.Properties["required"])},
	}
}

func isRequired(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(value, "true")
	default:
		return false
	}
}

// ErrInvalidDocument is returned by Restore for documents that cannot be applied.
var ErrInvalidDocument = errors.New("invalid export document")

// Restored is the persistence-shaped content of a document.
type Restored struct {
	Questionnaire *secondary.QuestionnaireRecord
	Sections      []*secondary.SectionRecord
	Controls      []*secondary.ControlRecord
}

// Restore converts a document back into records for questionnaireID.
// The flat control list is authoritative; validation annotations are dropped.
// Every control must reference a listed section or the default section.
func Restore(doc Document, questionnaireID string) (Restored, error) {
	if doc.FormatVersion > FormatVersion {
		return Restored{}, fmt.Errorf("%w: format version %d is newer than %d", ErrInvalidDocument, doc.FormatVersion, FormatVersion)
	}

	out := Restored{
		Questionnaire: &secondary.QuestionnaireRecord{
			ID:          questionnaireID,
			Name:        doc.Questionnaire.Name,
			Description: doc.Questionnaire.Description,
			Purpose:     doc.Questionnaire.Purpose,
			Category:    doc.Questionnaire.Category,
			Status:      doc.Questionnaire.Status,
			Version:     doc.Questionnaire.Version,
			Tier:        doc.Questionnaire.Tier,
		},
	}

	known := map[string]bool{secondary.DefaultSectionID: true}
	for _, s := range doc.FormDefinition.Sections {
		if s.ID == "" {
			return Restored{}, fmt.Errorf("%w: section without id", ErrInvalidDocument)
		}
		known[s.ID] = true
		out.Sections = append(out.Sections, &secondary.SectionRecord{
			ID:              s.ID,
			QuestionnaireID: questionnaireID,
			Name:            s.Name,
			Description:     s.Description,
			Color:           s.Color,
			Icon:            s.Icon,
			Order:           s.Order,
			Required:        s.Required,
		})
	}

	seen := make(map[string]bool, len(doc.FormDefinition.Controls))
	for _, c := range doc.FormDefinition.Controls {
		if c.ID == "" {
			return Restored{}, fmt.Errorf("%w: control without id", ErrInvalidDocument)
		}
		if seen[c.ID] {
			return Restored{}, fmt.Errorf("%w: duplicate control %s", ErrInvalidDocument, c.ID)
		}
		seen[c.ID] = true
		if !known[c.SectionID] {
			return Restored{}, fmt.Errorf("%w: control %s references unknown section %q", ErrInvalidDocument, c.ID, c.SectionID)
		}

		props := make(map[string]any, len(c.Properties))
		for k, v := range c.Properties {
			props[k] = v
		}
		out.Controls = append(out.Controls, &secondary.ControlRecord{
			ID:              c.ID,
			QuestionnaireID: questionnaireID,
			SectionID:       c.SectionID,
			Type:            c.Type,
			Name:            c.Name,
			Position:        secondary.Position{X: c.Position.X, Y: c.Position.Y},
			Size:            secondary.Size{Width: c.Size.Width, Height: c.Size.Height},
			Properties:      props,
		})
	}

	return out, nil
}

// Encode renders the document as indented JSON.
func Encode(doc Document) ([]byte, error) {
	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}
	return data, nil
}

// Decode parses a document produced by Encode.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// DefaultSectionID is the reserved section every questionnaire owns.
// It cannot be deleted and receives the controls of deleted sections.
const DefaultSectionID = "default"

// QuestionnaireRepository defines the secondary port for questionnaire persistence.
type QuestionnaireRepository interface {
	// Create persists a new questionnaire together with its default section.
	Create(ctx context.Context, questionnaire *QuestionnaireRecord) error

	// GetByID retrieves a questionnaire by its ID.
	GetByID(ctx context.Context, id string) (*QuestionnaireRecord, error)

	// List retrieves questionnaires matching the given filters.
	List(ctx context.Context, filters QuestionnaireFilters) ([]*QuestionnaireRecord, error)

	// Update updates an existing questionnaire. Empty fields are left untouched.
	Update(ctx context.Context, questionnaire *QuestionnaireRecord) error

	// Delete removes a questionnaire; sections and controls cascade.
	Delete(ctx context.Context, id string) error
}

// QuestionnaireRecord represents a questionnaire as stored in persistence.
type QuestionnaireRecord struct {
	ID             string
	Name           string
	Description    string // Empty string means null
	Purpose        string // Empty string means null
	Category       string // Empty string means null
	Status         string // draft, published, archived
	Version        int
	CreatedBy      string // Empty string means null
	Tier           string // basic, professional, enterprise
	TotalResponses int
	CompletionRate float64
	AverageTime    float64
	LastResponse   string // Empty string means null
	CreatedAt      string
	UpdatedAt      string
}

// QuestionnaireFilters contains filter options for querying questionnaires.
type QuestionnaireFilters struct {
	Status string
	Limit  int
}

// SectionRepository defines the secondary port for section persistence.
type SectionRepository interface {
	// Create persists a new section.
	Create(ctx context.Context, section *SectionRecord) error

	// GetByID retrieves a section of a questionnaire.
	GetByID(ctx context.Context, questionnaireID, id string) (*SectionRecord, error)

	// List retrieves the sections of a questionnaire ordered by section_order.
	List(ctx context.Context, questionnaireID string) ([]*SectionRecord, error)

	// Update updates an existing section. Empty fields are left untouched.
	Update(ctx context.Context, section *SectionRecord) error

	// DeleteAndReassign moves every control of the section to the default section
	// (appended after the default section's controls) and deletes the section,
	// in a single transaction. Returns the number of reassigned controls.
	DeleteAndReassign(ctx context.Context, questionnaireID, id string) (int, error)

	// Exists checks if a section exists in the questionnaire.
	Exists(ctx context.Context, questionnaireID, id string) (bool, error)

	// Count returns the number of sections in the questionnaire.
	Count(ctx context.Context, questionnaireID string) (int, error)
}

// SectionRecord represents a section as stored in persistence.
type SectionRecord struct {
	ID              string
	QuestionnaireID string
	Name            string
	Description     string // Empty string means null
	Color           string
	Icon            string
	Order           int
	Required        bool
	CreatedAt       string
}

// ControlRepository defines the secondary port for control persistence.
type ControlRepository interface {
	// List retrieves controls ordered by (y, x). SectionID narrows the scope when set.
	List(ctx context.Context, filters ControlFilters) ([]*ControlRecord, error)

	// GetByID retrieves a control by its ID.
	GetByID(ctx context.Context, id string) (*ControlRecord, error)

	// Create persists a new control.
	Create(ctx context.Context, control *ControlRecord) error

	// Update applies a partial update to a control.
	Update(ctx context.Context, id string, patch ControlPatch) error

	// Delete removes a control.
	Delete(ctx context.Context, id string) error

	// Reorder writes the given y positions in one transaction.
	Reorder(ctx context.Context, updates []PositionUpdate) error

	// Count returns the number of controls matching the filters.
	Count(ctx context.Context, filters ControlFilters) (int, error)
}

// Position is the placement of a control. Y is the ordinal within its section;
// X is kept for schema compatibility and is always 0 today.
type Position struct {
	X int
	Y int
}

// Size is the rendered size of a control.
type Size struct {
	Width  int
	Height int
}

// ControlRecord represents a placed control as stored in persistence.
type ControlRecord struct {
	ID              string
	QuestionnaireID string
	SectionID       string
	Type            string
	Name            string
	Position        Position
	Size            Size
	Properties      map[string]any
	CreatedAt       string
}

// Clone returns a deep copy of the record. Property values are copied shallowly.
func (c *ControlRecord) Clone() *ControlRecord {
	if c == nil {
		return nil
	}
	out := *c
	out.Properties = make(map[string]any, len(c.Properties))
	for k, v := range c.Properties {
		out.Properties[k] = v
	}
	return &out
}

// ControlPatch is a partial control update. Nil fields are left untouched;
// a non-nil Properties map replaces the stored properties.
type ControlPatch struct {
	Type       *string
	Name       *string
	SectionID  *string
	Position   *Position
	Size       *Size
	Properties map[string]any
}

// IsEmpty reports whether the patch changes nothing.
func (p ControlPatch) IsEmpty() bool {
	return p.Type == nil && p.Name == nil && p.SectionID == nil &&
		p.Position == nil && p.Size == nil && p.Properties == nil
}

// PositionUpdate sets the y position of one control.
type PositionUpdate struct {
	ID string
	Y  int
}

// ControlFilters contains filter options for querying controls.
type ControlFilters struct {
	QuestionnaireID string
	SectionID       string
}

// ChangeFeed delivers a coalesced signal whenever persisted form data changes.
type ChangeFeed interface {
	// SubscribeChanges returns a channel private to the caller that receives
	// after one or more row changes, and a func that releases it.
	SubscribeChanges() (<-chan struct{}, func())
}

// Readiness reports whether the store has finished setup.
type Readiness interface {
	Ready() bool
}

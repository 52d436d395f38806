package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/formcraft/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockReadiness implements secondary.Readiness for testing.
type mockReadiness struct {
	mu    sync.Mutex
	ready bool
}

func (m *mockReadiness) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockReadiness) set(ready bool) {
	m.mu.Lock()
	m.ready = ready
	m.mu.Unlock()
}

// mockFeed implements secondary.ChangeFeed for testing.
type mockFeed struct {
	mu   sync.Mutex
	subs []chan struct{}
}

func newMockFeed() *mockFeed {
	return &mockFeed{}
}

func (m *mockFeed) SubscribeChanges() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, c := range m.subs {
			if c == ch {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *mockFeed) notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *mockFeed) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// mockControlRepository implements secondary.ControlRepository for testing.
// It is safe for use from the engine's background loop.
type mockControlRepository struct {
	mu         sync.Mutex
	controls   map[string]*secondary.ControlRecord
	seq        int
	listErr    error
	getErr     error
	createErr  error
	updateErr  error
	deleteErr  error
	reorderErr error
	countErr   error
	listCalls  int
	// createFailFor rejects creates of controls with these names.
	createFailFor map[string]bool
}

func newMockControlRepository() *mockControlRepository {
	return &mockControlRepository{
		controls:      make(map[string]*secondary.ControlRecord),
		createFailFor: make(map[string]bool),
	}
}

func (m *mockControlRepository) matches(c *secondary.ControlRecord, f secondary.ControlFilters) bool {
	if f.QuestionnaireID != "" && c.QuestionnaireID != f.QuestionnaireID {
		return false
	}
	if f.SectionID != "" && c.SectionID != f.SectionID {
		return false
	}
	return true
}

func (m *mockControlRepository) List(ctx context.Context, filters secondary.ControlFilters) ([]*secondary.ControlRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.ControlRecord
	for _, c := range m.controls {
		if m.matches(c, filters) {
			result = append(result, c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position.Y != result[j].Position.Y {
			return result[i].Position.Y < result[j].Position.Y
		}
		if result[i].Position.X != result[j].Position.X {
			return result[i].Position.X < result[j].Position.X
		}
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockControlRepository) GetByID(ctx context.Context, id string) (*secondary.ControlRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if c, ok := m.controls[id]; ok {
		return c.Clone(), nil
	}
	return nil, fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
}

func (m *mockControlRepository) Create(ctx context.Context, control *secondary.ControlRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.createFailFor[control.Name] {
		return secondary.NewStorageError("create control", fmt.Errorf("constraint failed"))
	}
	if _, exists := m.controls[control.ID]; exists {
		return secondary.NewStorageError("create control", fmt.Errorf("duplicate id %s", control.ID))
	}
	m.seq++
	stored := control.Clone()
	stored.CreatedAt = fmt.Sprintf("2026-01-01 00:00:%02d", m.seq)
	m.controls[control.ID] = stored
	return nil
}

func (m *mockControlRepository) Update(ctx context.Context, id string, patch secondary.ControlPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.controls[id]
	if !ok {
		return fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
	}
	m.controls[id] = applyPatch(c, patch)
	return nil
}

func (m *mockControlRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.controls[id]; !ok {
		return fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
	}
	delete(m.controls, id)
	return nil
}

func (m *mockControlRepository) Reorder(ctx context.Context, updates []secondary.PositionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reorderErr != nil {
		return m.reorderErr
	}
	for _, u := range updates {
		if _, ok := m.controls[u.ID]; !ok {
			return fmt.Errorf("control %s %w", u.ID, secondary.ErrNotFound)
		}
	}
	for _, u := range updates {
		m.controls[u.ID].Position.Y = u.Y
	}
	return nil
}

func (m *mockControlRepository) Count(ctx context.Context, filters secondary.ControlFilters) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, c := range m.controls {
		if m.matches(c, filters) {
			n++
		}
	}
	return n, nil
}

// put stores a control directly, bypassing the engine.
func (m *mockControlRepository) put(c *secondary.ControlRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := c.Clone()
	if stored.CreatedAt == "" {
		stored.CreatedAt = fmt.Sprintf("2026-01-01 00:00:%02d", m.seq)
	}
	m.controls[c.ID] = stored
}

func (m *mockControlRepository) get(id string) *secondary.ControlRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controls[id]; ok {
		return c.Clone()
	}
	return nil
}

func (m *mockControlRepository) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controls)
}

// mockSectionRepository implements secondary.SectionRepository for testing.
type mockSectionRepository struct {
	mu        sync.Mutex
	sections  map[string]*secondary.SectionRecord // keyed by questionnaireID/id
	controls  *mockControlRepository
	createErr error
	existsErr error
	deleteErr error
}

func newMockSectionRepository(controls *mockControlRepository) *mockSectionRepository {
	return &mockSectionRepository{
		sections: make(map[string]*secondary.SectionRecord),
		controls: controls,
	}
}

func sectionKey(questionnaireID, id string) string {
	return questionnaireID + "/" + id
}

func (m *mockSectionRepository) Create(ctx context.Context, section *secondary.SectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	key := sectionKey(section.QuestionnaireID, section.ID)
	if _, exists := m.sections[key]; exists {
		return secondary.NewStorageError("create section", fmt.Errorf("duplicate section %s", section.ID))
	}
	copied := *section
	m.sections[key] = &copied
	return nil
}

func (m *mockSectionRepository) GetByID(ctx context.Context, questionnaireID, id string) (*secondary.SectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sections[sectionKey(questionnaireID, id)]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, fmt.Errorf("section %s %w", id, secondary.ErrNotFound)
}

func (m *mockSectionRepository) List(ctx context.Context, questionnaireID string) ([]*secondary.SectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.SectionRecord
	for _, s := range m.sections {
		if s.QuestionnaireID == questionnaireID {
			copied := *s
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockSectionRepository) Update(ctx context.Context, section *secondary.SectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sections[sectionKey(section.QuestionnaireID, section.ID)]
	if !ok {
		return fmt.Errorf("section %s %w", section.ID, secondary.ErrNotFound)
	}
	if section.Name != "" {
		existing.Name = section.Name
	}
	if section.Color != "" {
		existing.Color = section.Color
	}
	return nil
}

func (m *mockSectionRepository) DeleteAndReassign(ctx context.Context, questionnaireID, id string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.mu.Lock()
	key := sectionKey(questionnaireID, id)
	_, ok := m.sections[key]
	if ok {
		delete(m.sections, key)
	}
	m.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("section %s %w", id, secondary.ErrNotFound)
	}

	next, _ := m.controls.Count(ctx, secondary.ControlFilters{QuestionnaireID: questionnaireID, SectionID: secondary.DefaultSectionID})
	moving, _ := m.controls.List(ctx, secondary.ControlFilters{QuestionnaireID: questionnaireID, SectionID: id})
	target := secondary.DefaultSectionID
	for i, c := range moving {
		y := next + i
		pos := secondary.Position{X: 0, Y: y}
		if err := m.controls.Update(ctx, c.ID, secondary.ControlPatch{SectionID: &target, Position: &pos}); err != nil {
			return 0, err
		}
	}
	return len(moving), nil
}

func (m *mockSectionRepository) Exists(ctx context.Context, questionnaireID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.sections[sectionKey(questionnaireID, id)]
	return ok, nil
}

func (m *mockSectionRepository) Count(ctx context.Context, questionnaireID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sections {
		if s.QuestionnaireID == questionnaireID {
			n++
		}
	}
	return n, nil
}

func (m *mockSectionRepository) put(questionnaireID, id string, order int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sections[sectionKey(questionnaireID, id)] = &secondary.SectionRecord{
		ID:              id,
		QuestionnaireID: questionnaireID,
		Name:            id,
		Order:           order,
	}
}

// mockQuestionnaireRepository implements secondary.QuestionnaireRepository for testing.
// Create also creates the default section, like the real store.
type mockQuestionnaireRepository struct {
	questionnaires map[string]*secondary.QuestionnaireRecord
	sections       *mockSectionRepository
	createErr      error
	getErr         error
	deleteErr      error
	deleted        []string
}

func newMockQuestionnaireRepository(sections *mockSectionRepository) *mockQuestionnaireRepository {
	return &mockQuestionnaireRepository{
		questionnaires: make(map[string]*secondary.QuestionnaireRecord),
		sections:       sections,
	}
}

func (m *mockQuestionnaireRepository) Create(ctx context.Context, q *secondary.QuestionnaireRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *q
	if copied.Status == "" {
		copied.Status = "draft"
	}
	if copied.Tier == "" {
		copied.Tier = "basic"
	}
	if copied.Version == 0 {
		copied.Version = 1
	}
	m.questionnaires[q.ID] = &copied
	if m.sections != nil {
		m.sections.put(q.ID, secondary.DefaultSectionID, 0)
	}
	return nil
}

func (m *mockQuestionnaireRepository) GetByID(ctx context.Context, id string) (*secondary.QuestionnaireRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if q, ok := m.questionnaires[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, fmt.Errorf("questionnaire %s %w", id, secondary.ErrNotFound)
}

func (m *mockQuestionnaireRepository) List(ctx context.Context, filters secondary.QuestionnaireFilters) ([]*secondary.QuestionnaireRecord, error) {
	var result []*secondary.QuestionnaireRecord
	for _, q := range m.questionnaires {
		if filters.Status != "" && q.Status != filters.Status {
			continue
		}
		copied := *q
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockQuestionnaireRepository) Update(ctx context.Context, q *secondary.QuestionnaireRecord) error {
	existing, ok := m.questionnaires[q.ID]
	if !ok {
		return fmt.Errorf("questionnaire %s %w", q.ID, secondary.ErrNotFound)
	}
	if q.Name != "" {
		existing.Name = q.Name
	}
	if q.Status != "" {
		existing.Status = q.Status
	}
	if q.Tier != "" {
		existing.Tier = q.Tier
	}
	return nil
}

func (m *mockQuestionnaireRepository) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.questionnaires[id]; !ok {
		return fmt.Errorf("questionnaire %s %w", id, secondary.ErrNotFound)
	}
	delete(m.questionnaires, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

const testQuestionnaireID = "q-1"

func ctrl(id, sectionID string, y int) *secondary.ControlRecord {
	return &secondary.ControlRecord{
		ID:              id,
		QuestionnaireID: testQuestionnaireID,
		SectionID:       sectionID,
		Type:            "textInput",
		Name:            id,
		Position:        secondary.Position{X: 0, Y: y},
		Size:            secondary.Size{Width: 100, Height: 40},
		Properties:      map[string]any{"label": id},
	}
}

// sequentialIDs returns a generator producing prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

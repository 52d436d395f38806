package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/example/formcraft/internal/ports/secondary"
)

// ControlRepository implements secondary.ControlRepository with SQLite.
// Properties are stored as a JSON object in a TEXT column.
type ControlRepository struct {
	handle Handle
}

// NewControlRepository creates a new SQLite control repository.
func NewControlRepository(handle Handle) *ControlRepository {
	return &ControlRepository{handle: handle}
}

const controlColumns = "id, questionnaire_id, section_id, type, name, x, y, width, height, properties, created_at"

// List retrieves controls ordered by (y, x).
func (r *ControlRepository) List(ctx context.Context, filters secondary.ControlFilters) ([]*secondary.ControlRecord, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	query := "SELECT " + controlColumns + " FROM controls WHERE 1=1"
	args := []any{}

	if filters.QuestionnaireID != "" {
		query += " AND questionnaire_id = ?"
		args = append(args, filters.QuestionnaireID)
	}
	if filters.SectionID != "" {
		query += " AND section_id = ?"
		args = append(args, filters.SectionID)
	}

	query += " ORDER BY y, x, created_at, id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list controls", fmt.Errorf("failed to list controls: %w", err))
	}
	defer rows.Close()

	var controls []*secondary.ControlRecord
	for rows.Next() {
		record, err := scanControl(rows)
		if err != nil {
			return nil, classify("list controls", fmt.Errorf("failed to scan control: %w", err))
		}
		controls = append(controls, record)
	}

	return controls, rows.Err()
}

// GetByID retrieves a control by its ID.
func (r *ControlRepository) GetByID(ctx context.Context, id string) (*secondary.ControlRecord, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+controlColumns+" FROM controls WHERE id = ?", id)
	record, err := scanControl(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get control", fmt.Errorf("failed to get control: %w", err))
	}
	return record, nil
}

// Create persists a new control.
func (r *ControlRepository) Create(ctx context.Context, control *secondary.ControlRecord) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	props, err := encodeProperties(control.Properties)
	if err != nil {
		return classify("create control", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO controls (id, questionnaire_id, section_id, type, name, x, y, width, height, properties) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		control.ID, control.QuestionnaireID, control.SectionID, control.Type, control.Name,
		control.Position.X, control.Position.Y, control.Size.Width, control.Size.Height, props,
	)
	if err != nil {
		if isConstraint(err) {
			return classify("create control", fmt.Errorf("control %s violates a constraint (section %q): %w", control.ID, control.SectionID, err))
		}
		return classify("create control", fmt.Errorf("failed to create control: %w", err))
	}

	return nil
}

// Update applies a partial update to a control.
func (r *ControlRepository) Update(ctx context.Context, id string, patch secondary.ControlPatch) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	var sets []string
	var args []any

	if patch.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *patch.Type)
	}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.SectionID != nil {
		sets = append(sets, "section_id = ?")
		args = append(args, *patch.SectionID)
	}
	if patch.Position != nil {
		sets = append(sets, "x = ?", "y = ?")
		args = append(args, patch.Position.X, patch.Position.Y)
	}
	if patch.Size != nil {
		sets = append(sets, "width = ?", "height = ?")
		args = append(args, patch.Size.Width, patch.Size.Height)
	}
	if patch.Properties != nil {
		props, err := encodeProperties(patch.Properties)
		if err != nil {
			return classify("update control", err)
		}
		sets = append(sets, "properties = ?")
		args = append(args, props)
	}
	if len(sets) == 0 {
		sets = append(sets, "id = id")
	}

	query := "UPDATE controls SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		if isConstraint(err) {
			return classify("update control", fmt.Errorf("control %s violates a constraint: %w", id, err))
		}
		return classify("update control", fmt.Errorf("failed to update control: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Delete removes a control.
func (r *ControlRepository) Delete(ctx context.Context, id string) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM controls WHERE id = ?", id)
	if err != nil {
		return classify("delete control", fmt.Errorf("failed to delete control: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Reorder writes every y position in one transaction. A missing control
// rolls the whole batch back.
func (r *ControlRepository) Reorder(ctx context.Context, updates []secondary.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("reorder controls", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE controls SET y = ? WHERE id = ?")
	if err != nil {
		return classify("reorder controls", fmt.Errorf("failed to prepare reorder: %w", err))
	}
	defer stmt.Close()

	for _, u := range updates {
		result, err := stmt.ExecContext(ctx, u.Y, u.ID)
		if err != nil {
			return classify("reorder controls", fmt.Errorf("failed to move control %s: %w", u.ID, err))
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("control %s %w", u.ID, secondary.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("reorder controls", err)
	}
	return nil
}

// Count returns the number of controls matching the filters.
func (r *ControlRepository) Count(ctx context.Context, filters secondary.ControlFilters) (int, error) {
	db, err := r.handle.DB()
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM controls WHERE 1=1"
	args := []any{}
	if filters.QuestionnaireID != "" {
		query += " AND questionnaire_id = ?"
		args = append(args, filters.QuestionnaireID)
	}
	if filters.SectionID != "" {
		query += " AND section_id = ?"
		args = append(args, filters.SectionID)
	}

	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, classify("count controls", fmt.Errorf("failed to count controls: %w", err))
	}
	return count, nil
}

func encodeProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	data, err := sonic.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}
	return string(data), nil
}

func decodeProperties(raw string) (map[string]any, error) {
	props := map[string]any{}
	if raw == "" {
		return props, nil
	}
	if err := sonic.UnmarshalString(raw, &props); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return props, nil
}

func scanControl(row rowScanner) (*secondary.ControlRecord, error) {
	var (
		rawProps  string
		createdAt time.Time
	)

	record := &secondary.ControlRecord{}
	err := row.Scan(&record.ID, &record.QuestionnaireID, &record.SectionID, &record.Type, &record.Name,
		&record.Position.X, &record.Position.Y, &record.Size.Width, &record.Size.Height, &rawProps, &createdAt)
	if err != nil {
		return nil, err
	}

	props, err := decodeProperties(rawProps)
	if err != nil {
		return nil, err
	}
	record.Properties = props
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// Ensure ControlRepository implements the interface
var _ secondary.ControlRepository = (*ControlRepository)(nil)

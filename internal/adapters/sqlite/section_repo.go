package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/formcraft/internal/ports/secondary"
)

// SectionRepository implements secondary.SectionRepository with SQLite.
type SectionRepository struct {
	handle Handle
}

// NewSectionRepository creates a new SQLite section repository.
func NewSectionRepository(handle Handle) *SectionRepository {
	return &SectionRepository{handle: handle}
}

const sectionColumns = "id, questionnaire_id, name, description, color, icon, section_order, required, created_at"

// Create persists a new section.
func (r *SectionRepository) Create(ctx context.Context, section *secondary.SectionRecord) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	color := "#3b82f6"
	if section.Color != "" {
		color = section.Color
	}
	icon := "folder"
	if section.Icon != "" {
		icon = section.Icon
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO sections (id, questionnaire_id, name, description, color, icon, section_order, required) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		section.ID, section.QuestionnaireID, section.Name, nullString(section.Description), color, icon, section.Order, section.Required,
	)
	if err != nil {
		return classify("create section", fmt.Errorf("failed to create section: %w", err))
	}

	return nil
}

// GetByID retrieves a section of a questionnaire.
func (r *SectionRepository) GetByID(ctx context.Context, questionnaireID, id string) (*secondary.SectionRecord, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT "+sectionColumns+" FROM sections WHERE questionnaire_id = ? AND id = ?",
		questionnaireID, id,
	)
	record, err := scanSection(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("section %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get section", fmt.Errorf("failed to get section: %w", err))
	}
	return record, nil
}

// List retrieves the sections of a questionnaire in display order.
func (r *SectionRepository) List(ctx context.Context, questionnaireID string) ([]*secondary.SectionRecord, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+sectionColumns+" FROM sections WHERE questionnaire_id = ? ORDER BY section_order, created_at, id",
		questionnaireID,
	)
	if err != nil {
		return nil, classify("list sections", fmt.Errorf("failed to list sections: %w", err))
	}
	defer rows.Close()

	var sections []*secondary.SectionRecord
	for rows.Next() {
		record, err := scanSection(rows)
		if err != nil {
			return nil, classify("list sections", fmt.Errorf("failed to scan section: %w", err))
		}
		sections = append(sections, record)
	}

	return sections, rows.Err()
}

// Update updates an existing section.
func (r *SectionRepository) Update(ctx context.Context, section *secondary.SectionRecord) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	var sets []string
	var args []any

	if section.Name != "" {
		sets = append(sets, "name = ?")
		args = append(args, section.Name)
	}
	if section.Description != "" {
		sets = append(sets, "description = ?")
		args = append(args, section.Description)
	}
	if section.Color != "" {
		sets = append(sets, "color = ?")
		args = append(args, section.Color)
	}
	if section.Icon != "" {
		sets = append(sets, "icon = ?")
		args = append(args, section.Icon)
	}
	if section.Order > 0 {
		sets = append(sets, "section_order = ?")
		args = append(args, section.Order)
	}
	if section.Required {
		sets = append(sets, "required = 1")
	}
	if len(sets) == 0 {
		// Nothing to change; still report a missing section.
		sets = append(sets, "id = id")
	}

	query := "UPDATE sections SET " + strings.Join(sets, ", ") + " WHERE questionnaire_id = ? AND id = ?"
	args = append(args, section.QuestionnaireID, section.ID)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("update section", fmt.Errorf("failed to update section: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("section %s %w", section.ID, secondary.ErrNotFound)
	}

	return nil
}

// DeleteAndReassign moves the section's controls to the end of the default
// section, preserving their relative order, then deletes the section.
func (r *SectionRepository) DeleteAndReassign(ctx context.Context, questionnaireID, id string) (int, error) {
	if id == secondary.DefaultSectionID {
		return 0, fmt.Errorf("section %q cannot be deleted", secondary.DefaultSectionID)
	}

	db, err := r.handle.DB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify("delete section", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sections WHERE questionnaire_id = ? AND id = ?",
		questionnaireID, id,
	).Scan(&exists)
	if err != nil {
		return 0, classify("delete section", fmt.Errorf("failed to check section: %w", err))
	}
	if exists == 0 {
		return 0, fmt.Errorf("section %s %w", id, secondary.ErrNotFound)
	}

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(y) + 1, 0) FROM controls WHERE questionnaire_id = ? AND section_id = ?",
		questionnaireID, secondary.DefaultSectionID,
	).Scan(&next)
	if err != nil {
		return 0, classify("delete section", fmt.Errorf("failed to read default section tail: %w", err))
	}

	ids, err := sectionControlIDs(ctx, tx, questionnaireID, id)
	if err != nil {
		return 0, err
	}

	for i, controlID := range ids {
		_, err := tx.ExecContext(ctx,
			"UPDATE controls SET section_id = ?, y = ? WHERE id = ?",
			secondary.DefaultSectionID, next+i, controlID,
		)
		if err != nil {
			return 0, classify("delete section", fmt.Errorf("failed to reassign control %s: %w", controlID, err))
		}
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM sections WHERE questionnaire_id = ? AND id = ?", questionnaireID, id)
	if err != nil {
		return 0, classify("delete section", fmt.Errorf("failed to delete section: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return 0, classify("delete section", err)
	}
	return len(ids), nil
}

// sectionControlIDs reads every id before any write so the cursor is closed
// when the updates run on the same connection.
func sectionControlIDs(ctx context.Context, tx *sql.Tx, questionnaireID, sectionID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM controls WHERE questionnaire_id = ? AND section_id = ? ORDER BY y, x, id",
		questionnaireID, sectionID,
	)
	if err != nil {
		return nil, classify("delete section", fmt.Errorf("failed to list section controls: %w", err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("delete section", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a section exists in the questionnaire.
func (r *SectionRepository) Exists(ctx context.Context, questionnaireID, id string) (bool, error) {
	db, err := r.handle.DB()
	if err != nil {
		return false, err
	}

	var count int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sections WHERE questionnaire_id = ? AND id = ?",
		questionnaireID, id,
	).Scan(&count)
	if err != nil {
		return false, classify("section exists", fmt.Errorf("failed to check section existence: %w", err))
	}
	return count > 0, nil
}

// Count returns the number of sections in the questionnaire.
func (r *SectionRepository) Count(ctx context.Context, questionnaireID string) (int, error) {
	db, err := r.handle.DB()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sections WHERE questionnaire_id = ?", questionnaireID).Scan(&count)
	if err != nil {
		return 0, classify("count sections", fmt.Errorf("failed to count sections: %w", err))
	}
	return count, nil
}

func scanSection(row rowScanner) (*secondary.SectionRecord, error) {
	var (
		description sql.NullString
		createdAt   time.Time
	)

	record := &secondary.SectionRecord{}
	err := row.Scan(&record.ID, &record.QuestionnaireID, &record.Name, &description, &record.Color, &record.Icon,
		&record.Order, &record.Required, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Description = description.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// Ensure SectionRepository implements the interface
var _ secondary.SectionRepository = (*SectionRepository)(nil)

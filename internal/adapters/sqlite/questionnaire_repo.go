package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/formcraft/internal/ports/secondary"
)

// QuestionnaireRepository implements secondary.QuestionnaireRepository with SQLite.
type QuestionnaireRepository struct {
	handle Handle
}

// NewQuestionnaireRepository creates a new SQLite questionnaire repository.
func NewQuestionnaireRepository(handle Handle) *QuestionnaireRepository {
	return &QuestionnaireRepository{handle: handle}
}

const questionnaireColumns = "id, name, description, purpose, category, status, version, created_by, tier, total_responses, completion_rate, average_time, last_response, created_at, updated_at"

// Create persists a new questionnaire and its default section in one transaction.
func (r *QuestionnaireRepository) Create(ctx context.Context, q *secondary.QuestionnaireRecord) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	status := "draft"
	if q.Status != "" {
		status = q.Status
	}
	tier := "basic"
	if q.Tier != "" {
		tier = q.Tier
	}
	version := 1
	if q.Version > 0 {
		version = q.Version
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("create questionnaire", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO questionnaires (id, name, description, purpose, category, status, version, created_by, tier) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		q.ID, q.Name, nullString(q.Description), nullString(q.Purpose), nullString(q.Category), status, version, nullString(q.CreatedBy), tier,
	)
	if err != nil {
		return classify("create questionnaire", fmt.Errorf("failed to create questionnaire: %w", err))
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sections (id, questionnaire_id, name, section_order) VALUES (?, ?, 'Default', 0)",
		secondary.DefaultSectionID, q.ID,
	)
	if err != nil {
		return classify("create questionnaire", fmt.Errorf("failed to create default section: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return classify("create questionnaire", err)
	}
	return nil
}

// GetByID retrieves a questionnaire by its ID.
func (r *QuestionnaireRepository) GetByID(ctx context.Context, id string) (*secondary.QuestionnaireRecord, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+questionnaireColumns+" FROM questionnaires WHERE id = ?", id)
	record, err := scanQuestionnaire(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("questionnaire %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get questionnaire", fmt.Errorf("failed to get questionnaire: %w", err))
	}
	return record, nil
}

// List retrieves questionnaires matching the given filters, newest first.
func (r *QuestionnaireRepository) List(ctx context.Context, filters secondary.QuestionnaireFilters) ([]*secondary.QuestionnaireRecord, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	query := "SELECT " + questionnaireColumns + " FROM questionnaires WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at DESC, id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list questionnaires", fmt.Errorf("failed to list questionnaires: %w", err))
	}
	defer rows.Close()

	var questionnaires []*secondary.QuestionnaireRecord
	for rows.Next() {
		record, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, classify("list questionnaires", fmt.Errorf("failed to scan questionnaire: %w", err))
		}
		questionnaires = append(questionnaires, record)
	}

	return questionnaires, rows.Err()
}

// Update updates an existing questionnaire.
func (r *QuestionnaireRepository) Update(ctx context.Context, q *secondary.QuestionnaireRecord) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	query := "UPDATE questionnaires SET updated_at = CURRENT_TIMESTAMP"
	args := []any{}

	if q.Name != "" {
		query += ", name = ?"
		args = append(args, q.Name)
	}
	if q.Description != "" {
		query += ", description = ?"
		args = append(args, q.Description)
	}
	if q.Purpose != "" {
		query += ", purpose = ?"
		args = append(args, q.Purpose)
	}
	if q.Category != "" {
		query += ", category = ?"
		args = append(args, q.Category)
	}
	if q.Status != "" {
		query += ", status = ?"
		args = append(args, q.Status)
	}
	if q.Tier != "" {
		query += ", tier = ?"
		args = append(args, q.Tier)
	}
	if q.Version > 0 {
		query += ", version = ?"
		args = append(args, q.Version)
	}

	query += " WHERE id = ?"
	args = append(args, q.ID)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("update questionnaire", fmt.Errorf("failed to update questionnaire: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("questionnaire %s %w", q.ID, secondary.ErrNotFound)
	}

	return nil
}

// Delete removes a questionnaire. Sections and controls go with it.
func (r *QuestionnaireRepository) Delete(ctx context.Context, id string) error {
	db, err := r.handle.DB()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM questionnaires WHERE id = ?", id)
	if err != nil {
		return classify("delete questionnaire", fmt.Errorf("failed to delete questionnaire: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("questionnaire %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestionnaire(row rowScanner) (*secondary.QuestionnaireRecord, error) {
	var (
		description  sql.NullString
		purpose      sql.NullString
		category     sql.NullString
		createdBy    sql.NullString
		lastResponse sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
	)

	record := &secondary.QuestionnaireRecord{}
	err := row.Scan(&record.ID, &record.Name, &description, &purpose, &category, &record.Status, &record.Version,
		&createdBy, &record.Tier, &record.TotalResponses, &record.CompletionRate, &record.AverageTime,
		&lastResponse, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Description = description.String
	record.Purpose = purpose.String
	record.Category = category.String
	record.CreatedBy = createdBy.String
	if lastResponse.Valid {
		record.LastResponse = lastResponse.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// Ensure QuestionnaireRepository implements the interface
var _ secondary.QuestionnaireRepository = (*QuestionnaireRepository)(nil)

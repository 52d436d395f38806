// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database is created for tests.
// setupTestDB uses db.OpenMemory(), which applies db.GetSchemaSQL(), so
// tests always run against the authoritative schema.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/example/formcraft/internal/db"
)

// setupTestDB creates an in-memory store with the authoritative schema.
func setupTestDB(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func conn(t *testing.T, store *db.Store) *sql.DB {
	t.Helper()
	c, err := store.DB()
	if err != nil {
		t.Fatalf("store not open: %v", err)
	}
	return c
}

// seedQuestionnaire inserts a questionnaire with its default section and returns its ID.
func seedQuestionnaire(t *testing.T, store *db.Store, id string) string {
	t.Helper()
	if id == "" {
		id = "q-001"
	}
	c := conn(t, store)
	if _, err := c.Exec("INSERT INTO questionnaires (id, name) VALUES (?, 'Test Questionnaire')", id); err != nil {
		t.Fatalf("failed to seed questionnaire: %v", err)
	}
	if _, err := c.Exec("INSERT INTO sections (id, questionnaire_id, name) VALUES ('default', ?, 'Default')", id); err != nil {
		t.Fatalf("failed to seed default section: %v", err)
	}
	return id
}

// seedSection inserts a section and returns its ID.
func seedSection(t *testing.T, store *db.Store, questionnaireID, id string, order int) string {
	t.Helper()
	if _, err := conn(t, store).Exec(
		"INSERT INTO sections (id, questionnaire_id, name, section_order) VALUES (?, ?, ?, ?)",
		id, questionnaireID, "Section "+id, order,
	); err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}
	return id
}

// seedControl inserts a control at the given ordinal and returns its ID.
func seedControl(t *testing.T, store *db.Store, questionnaireID, sectionID, id string, y int) string {
	t.Helper()
	if _, err := conn(t, store).Exec(
		"INSERT INTO controls (id, questionnaire_id, section_id, type, name, y, width, height) VALUES (?, ?, ?, 'textInput', ?, ?, 100, 40)",
		id, questionnaireID, sectionID, "Field "+id, y,
	); err != nil {
		t.Fatalf("failed to seed control: %v", err)
	}
	return id
}

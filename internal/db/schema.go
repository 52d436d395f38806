package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh formcraft databases.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL() or OpenMemory(). Repository code that
// references a column missing here fails tests with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//
// Sections are keyed by (questionnaire_id, id) so every questionnaire owns
// its own reserved 'default' section.
const SchemaSQL = `
-- Questionnaires (top-level forms)
CREATE TABLE IF NOT EXISTS questionnaires (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	purpose TEXT,
	category TEXT,
	status TEXT NOT NULL CHECK(status IN ('draft', 'published', 'archived')) DEFAULT 'draft',
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	created_by TEXT,
	tier TEXT NOT NULL CHECK(tier IN ('basic', 'professional', 'enterprise')) DEFAULT 'basic',
	total_responses INTEGER NOT NULL DEFAULT 0,
	completion_rate REAL NOT NULL DEFAULT 0,
	average_time REAL NOT NULL DEFAULT 0,
	last_response DATETIME
);

-- Sections (ordered groupings of controls)
CREATE TABLE IF NOT EXISTS sections (
	id TEXT NOT NULL,
	questionnaire_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	color TEXT NOT NULL DEFAULT '#3b82f6',
	icon TEXT NOT NULL DEFAULT 'folder',
	section_order INTEGER NOT NULL DEFAULT 0,
	required INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (questionnaire_id, id),
	FOREIGN KEY (questionnaire_id) REFERENCES questionnaires(id) ON DELETE CASCADE
);

-- Controls (placed form elements)
CREATE TABLE IF NOT EXISTS controls (
	id TEXT PRIMARY KEY,
	questionnaire_id TEXT NOT NULL,
	section_id TEXT NOT NULL,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	x INTEGER NOT NULL DEFAULT 0,
	y INTEGER NOT NULL DEFAULT 0,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	properties TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (questionnaire_id) REFERENCES questionnaires(id) ON DELETE CASCADE,
	FOREIGN KEY (questionnaire_id, section_id) REFERENCES sections(questionnaire_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_controls_order ON controls(questionnaire_id, section_id, y, x);
CREATE INDEX IF NOT EXISTS idx_sections_order ON sections(questionnaire_id, section_order);
`

// InitSchema brings the database to the current schema.
// Fresh databases get SchemaSQL directly and are stamped with the latest
// migration version; existing databases run pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	var formTables int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('questionnaires', 'sections', 'controls')").Scan(&formTables)
	if err != nil {
		return err
	}
	if formTables > 0 {
		// Pre-versioning database: let migrations bring it forward.
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", LatestVersion()); err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

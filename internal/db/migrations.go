package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_form_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_ordering_indexes",
		Up:      migrationV2,
	},
}

// LatestVersion returns the version of the newest migration.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

func ensureVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations
func RunMigrations(database *sql.DB) error {
	if err := ensureVersionTable(database); err != nil {
		return err
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the questionnaire, section and control tables.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create questionnaires: %w", err)
	}

	_, err = tx.Exec(`
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
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sections: %w", err)
	}

	_, err = tx.Exec(`
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
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create controls: %w", err)
	}

	return nil
}

// migrationV2 adds the indexes used by ordered listing.
func migrationV2(tx *sql.Tx) error {
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_controls_order ON controls(questionnaire_id, section_id, y, x)"); err != nil {
		return fmt.Errorf("failed to create idx_controls_order: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_sections_order ON sections(questionnaire_id, section_order)"); err != nil {
		return fmt.Errorf("failed to create idx_sections_order: %w", err)
	}
	return nil
}

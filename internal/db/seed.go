package db

import (
	"database/sql"
	"fmt"
)

// SampleQuestionnaireID is the id of the questionnaire created by SeedFixtures.
const SampleQuestionnaireID = "sample-customer-feedback"

// SeedFixtures populates the database with a small sample questionnaire:
// the reserved default section, one extra section and a handful of controls.
func SeedFixtures(database *sql.DB) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO questionnaires (id, name, description, purpose, category, status, tier, created_by) VALUES (?, ?, ?, ?, ?, 'draft', 'basic', 'seed')",
		SampleQuestionnaireID, "Customer Feedback", "Post-purchase satisfaction survey", "Measure satisfaction", "feedback",
	); err != nil {
		return fmt.Errorf("seed questionnaires: %w", err)
	}

	sections := []struct {
		id, name string
		order    int
	}{
		{"default", "General", 0},
		{"contact", "Contact details", 1},
	}
	for _, s := range sections {
		if _, err := tx.Exec(
			"INSERT INTO sections (id, questionnaire_id, name, section_order) VALUES (?, ?, ?, ?)",
			s.id, SampleQuestionnaireID, s.name, s.order,
		); err != nil {
			return fmt.Errorf("seed sections: %w", err)
		}
	}

	controls := []struct {
		id, section, typ, name, props string
		y, height                     int
	}{
		{"sample-heading", "default", "heading", "Title", `{"label":"Tell us how we did","level":2}`, 0, 40},
		{"sample-rating", "default", "rating", "Overall", `{"label":"Overall satisfaction","required":true,"scale":5}`, 1, 40},
		{"sample-comments", "default", "textArea", "Comments", `{"label":"Anything else?","rows":4}`, 2, 120},
		{"sample-email", "contact", "emailInput", "Email", `{"label":"Email address","placeholder":"you@example.com"}`, 0, 40},
		{"sample-consent", "contact", "checkbox", "Consent", `{"label":"You may contact me","checked":false}`, 1, 40},
	}
	for _, c := range controls {
		if _, err := tx.Exec(
			"INSERT INTO controls (id, questionnaire_id, section_id, type, name, x, y, width, height, properties) VALUES (?, ?, ?, ?, ?, 0, ?, 100, ?, ?)",
			c.id, SampleQuestionnaireID, c.section, c.typ, c.name, c.y, c.height, c.props,
		); err != nil {
			return fmt.Errorf("seed controls: %w", err)
		}
	}

	return tx.Commit()
}

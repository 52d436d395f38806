// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/example/formcraft/internal/ports/secondary"
)

// Handle supplies the live connection. *db.Store implements it and returns
// secondary.ErrNotInitialized until it has been opened.
type Handle interface {
	DB() (*sql.DB, error)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// classify wraps driver failures as storage errors. Errors already carrying
// a store classification pass through.
func classify(op string, err error) error {
	return secondary.NewStorageError(op, err)
}

// isConstraint reports whether err is a SQLite constraint violation
// (foreign key, unique, check).
func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

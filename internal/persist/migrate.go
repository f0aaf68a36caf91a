package persist

import (
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"aspect/internal/errors"
	"aspect/internal/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order, each in its own transaction.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		tag        TEXT PRIMARY KEY NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return errors.NewDatabaseError("failed to create migration table", err).
			WithKind(errors.DatabaseMigrationFailed)
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return errors.NewDatabaseError("failed to list migrations", err).
			WithKind(errors.DatabaseMigrationFailed)
	}
	sort.Strings(names)

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, name := range names {
		tag := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		if applied[tag] {
			continue
		}

		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return errors.NewDatabaseError("failed to read migration", err).
				WithKind(errors.DatabaseMigrationFailed).
				WithContext("tag", tag)
		}

		if err := applyMigration(db, tag, string(body)); err != nil {
			return err
		}
		log.LogWithFields(log.F("tag", tag)).Info("Applied migration")
	}

	return nil
}

func appliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT tag FROM schema_migrations`)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to read applied migrations", err).
			WithKind(errors.DatabaseMigrationFailed)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, errors.NewDatabaseError("failed to scan migration tag", err).
				WithKind(errors.DatabaseMigrationFailed)
		}
		applied[tag] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, tag, body string) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewDatabaseError("failed to begin migration", err).
			WithKind(errors.DatabaseMigrationFailed).
			WithContext("tag", tag)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(body); err != nil {
		return errors.NewDatabaseError("failed to apply migration", err).
			WithKind(errors.DatabaseMigrationFailed).
			WithContext("tag", tag)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (tag) VALUES (?)`, tag); err != nil {
		return errors.NewDatabaseError("failed to record migration", err).
			WithKind(errors.DatabaseMigrationFailed).
			WithContext("tag", tag)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit migration", err).
			WithKind(errors.DatabaseMigrationFailed).
			WithContext("tag", tag)
	}
	return nil
}

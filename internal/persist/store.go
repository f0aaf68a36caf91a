// Package persist stores per-file ratings in a sqlite database that lives
// next to the images it describes.
package persist

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"aspect/internal/data"
	"aspect/internal/errors"
	"aspect/internal/log"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDatabaseName is the store file created inside a browsed directory.
const DefaultDatabaseName = "aspect.sqlite"

// Store is a rating store keyed by file base name.
type Store struct {
	db   *sql.DB
	path string
}

type options struct {
	name string
}

// Option configures OpenDir.
type Option func(*options)

// WithDatabaseName overrides the store file name inside the directory.
func WithDatabaseName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// OpenDir opens (creating and migrating as needed) the store for dir.
func OpenDir(dir string, opts ...Option) (*Store, error) {
	o := options{name: DefaultDatabaseName}
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewFileError("cannot open rating store directory", dir, errors.FileNotFound, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("rating store location is not a directory", dir, errors.InvalidPath, nil)
	}

	return Open(filepath.Join(dir, o.name))
}

// Open opens the store at path. An empty path opens a private in-memory store.
func Open(path string) (*Store, error) {
	source, err := dsn(path)
	if err != nil {
		return nil, errors.NewFileError("invalid rating store path", path, errors.InvalidPath, err)
	}

	db, err := sql.Open("sqlite3", source)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to open SQLite database", err).
			WithKind(errors.DatabaseConnectionFailed).
			WithContext("path", path)
	}
	// The viewer is the only writer; one connection also keeps :memory: stable.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to connect to SQLite database", err).
			WithKind(errors.DatabaseConnectionFailed).
			WithContext("path", path)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.LogWithFields(log.F("path", path)).Debug("Opened rating store")
	return &Store{db: db, path: path}, nil
}

// dsn turns path into a sqlite URI so '?', '#' and '%' in directory names
// reach the filesystem unchanged.
// The path is made absolute first; a relative one would be read as a host.
func dsn(path string) (string, error) {
	if path == "" {
		return ":memory:", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: url.Values{"_busy_timeout": {"5000"}}.Encode(),
	}
	return u.String(), nil
}

// Path returns the database file, "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Populate sets the Rating of every file in files that has a stored record.
// Files without a record are left untouched.
func (s *Store) Populate(files []data.File) error {
	if len(files) == 0 {
		return nil
	}

	rows, err := s.db.Query(`SELECT name, rating FROM files`)
	if err != nil {
		return errors.NewDatabaseError("failed to query ratings", err).
			WithKind(errors.DatabaseQueryFailed).
			WithOperation("populate")
	}
	defer rows.Close()

	stored := make(map[string]int)
	for rows.Next() {
		var name string
		var rating int
		if err := rows.Scan(&name, &rating); err != nil {
			return errors.NewDatabaseError("failed to scan rating", err).
				WithKind(errors.DatabaseQueryFailed).
				WithOperation("populate")
		}
		stored[name] = rating
	}
	if err := rows.Err(); err != nil {
		return errors.NewDatabaseError("failed to read ratings", err).
			WithKind(errors.DatabaseQueryFailed).
			WithOperation("populate")
	}

	for i := range files {
		if r, ok := stored[files[i].Name()]; ok {
			files[i].Rating = data.NewRating(r)
		}
	}
	return nil
}

// Get returns the stored rating for the file named name.
func (s *Store) Get(name string) (data.Rating, error) {
	var rating int
	err := s.db.QueryRow(`SELECT rating FROM files WHERE name = ?`, name).Scan(&rating)
	if err == sql.ErrNoRows {
		return data.NoRating, nil
	}
	if err != nil {
		return data.NoRating, errors.NewDatabaseError("failed to query rating", err).
			WithKind(errors.DatabaseQueryFailed).
			WithOperation("get").
			WithContext("file", name)
	}
	return data.NewRating(rating), nil
}

// SetRating upserts the file's rating, or deletes its record when the file
// carries no rating.
func (s *Store) SetRating(file data.File) error {
	name := file.Name()
	if name == "" || name == "." || name == string(filepath.Separator) {
		return errors.NewInvalidInputError(fmt.Sprintf("file name cannot be empty: %q", file.Path), nil)
	}

	value, ok := file.Rating.Value()
	var err error
	if ok {
		_, err = s.db.Exec(`
			INSERT INTO files (name, rating, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET rating = excluded.rating, updated_at = CURRENT_TIMESTAMP`,
			name, value)
	} else {
		_, err = s.db.Exec(`DELETE FROM files WHERE name = ?`, name)
	}
	if err != nil {
		return errors.NewDatabaseError("failed to save rating", err).
			WithOperation("set_rating").
			WithContext("file", name)
	}

	log.LogWithFields(log.F("file", name), log.F("rating", file.Rating.String())).Debug("Saved rating")
	return nil
}

// Count returns the number of rated files.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, errors.NewDatabaseError("failed to count ratings", err).
			WithKind(errors.DatabaseQueryFailed).
			WithOperation("count")
	}
	return n, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.NewDatabaseError("failed to close rating store", err).
			WithOperation("close").
			WithContext("path", s.path)
	}
	return nil
}

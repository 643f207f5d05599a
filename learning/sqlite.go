package learning

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the learning state in a small SQLite database. It is
// an alternative to FileStore for deployments that already ship a
// database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and prepares
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open learning database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS learning_totals (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_positive REAL NOT NULL,
			total_negative REAL NOT NULL,
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feature_stats (
			feature TEXT PRIMARY KEY,
			positive REAL NOT NULL,
			negative REAL NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("prepare learning schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the persisted state. An empty database yields an empty
// state.
func (s *SQLiteStore) Load() (*State, error) {
	state := NewState()

	row := s.db.QueryRow(`SELECT total_positive, total_negative, version FROM learning_totals WHERE id = 1`)
	err := row.Scan(&state.TotalPositive, &state.TotalNegative, &state.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read learning totals: %w", err)
	}

	rows, err := s.db.Query(`SELECT feature, positive, negative FROM feature_stats`)
	if err != nil {
		return nil, fmt.Errorf("read feature stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var feature string
		counter := &Counter{}
		if err := rows.Scan(&feature, &counter.Positive, &counter.Negative); err != nil {
			return nil, fmt.Errorf("scan feature stats: %w", err)
		}
		state.FeatureStats[feature] = counter
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read feature stats: %w", err)
	}
	return state, nil
}

// Save replaces the persisted state wholesale inside one transaction.
func (s *SQLiteStore) Save(state *State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin state save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO learning_totals (id, total_positive, total_negative, version)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			total_positive = excluded.total_positive,
			total_negative = excluded.total_negative,
			version = excluded.version`,
		state.TotalPositive, state.TotalNegative, state.Version,
	); err != nil {
		return fmt.Errorf("write learning totals: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM feature_stats`); err != nil {
		return fmt.Errorf("clear feature stats: %w", err)
	}
	for feature, counter := range state.FeatureStats {
		if _, err := tx.Exec(
			`INSERT INTO feature_stats (feature, positive, negative) VALUES (?, ?, ?)`,
			feature, counter.Positive, counter.Negative,
		); err != nil {
			return fmt.Errorf("write feature stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state save: %w", err)
	}
	return nil
}

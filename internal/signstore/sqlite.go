package signstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

// SQLiteStore is an embedded Store backend. Searches are brute-force cosine
// scans over the matching label's rows, which is plenty for a dictionary of
// a few hundred fingerprints and keeps development free of a Qdrant
// dependency.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) the database at path and runs
// migrations.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) runMigrations() error {
	migrations := []string{
		// Reference signs table - one row per stored fingerprint.
		`CREATE TABLE IF NOT EXISTS signs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign_name TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			dims INTEGER NOT NULL,
			vector TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_signs_sign_name ON signs(sign_name)`,
		`CREATE INDEX IF NOT EXISTS idx_signs_difficulty ON signs(difficulty)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// Search scans every stored fingerprint for the label and ranks by cosine
// similarity.
func (s *SQLiteStore) Search(ctx context.Context, vector []float64, label string, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sign_name, difficulty, dims, vector FROM signs WHERE sign_name = ?`,
		label,
	)
	if err != nil {
		return nil, fmt.Errorf("query signs: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			name, difficulty, encoded string
			dims                      int
		)
		if err := rows.Scan(&name, &difficulty, &dims, &encoded); err != nil {
			return nil, err
		}

		if dims != len(vector) {
			return nil, fmt.Errorf("%w: stored %d, query %d", ErrDimensionMismatch, dims, len(vector))
		}

		var stored []float64
		if err := json.Unmarshal([]byte(encoded), &stored); err != nil {
			return nil, fmt.Errorf("decode stored vector for %q: %w", name, err)
		}

		results = append(results, Result{
			Score:      cosineSimilarity(vector, stored),
			Label:      name,
			Difficulty: difficulty,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// ScanLabels returns labels, payload-only, filtered by tier unless the tier
// is DifficultyAny.
func (s *SQLiteStore) ScanLabels(ctx context.Context, difficulty string) ([]string, error) {
	query := `SELECT sign_name FROM signs`
	var args []any
	if difficulty != "" && difficulty != DifficultyAny {
		query += ` WHERE difficulty = ?`
		args = append(args, difficulty)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// Ping verifies the database file is still usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Recreate wipes the signs table. The dims argument exists for parity with
// the Qdrant backend; SQLite records dimensionality per row.
func (s *SQLiteStore) Recreate(ctx context.Context, dims int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM signs`)
	if err != nil {
		return fmt.Errorf("clear signs: %w", err)
	}
	return nil
}

// Insert bulk-loads reference signs in one transaction.
func (s *SQLiteStore) Insert(ctx context.Context, signs []ReferenceSign) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO signs (sign_name, difficulty, dims, vector) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sign := range signs {
		encoded, err := json.Marshal(sign.Vector)
		if err != nil {
			return fmt.Errorf("encode vector for %q: %w", sign.Label, err)
		}
		if _, err := stmt.ExecContext(ctx, sign.Label, sign.Difficulty, len(sign.Vector), string(encoded)); err != nil {
			return fmt.Errorf("insert %q: %w", sign.Label, err)
		}
	}

	return tx.Commit()
}

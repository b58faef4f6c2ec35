package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ghiac/ephdash/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of EnvStore
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// NewSQLiteStore creates a new SQLite env store
// If dbPath is empty, it uses ":memory:" for in-memory database
// For file-based storage, use a path like "./data/envs.db"
// The function automatically creates the directory if it doesn't exist
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory for database: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS envs (
		name TEXT PRIMARY KEY,
		env_id TEXT NOT NULL,
		repo TEXT NOT NULL,
		branch TEXT NOT NULL,
		path TEXT NOT NULL,
		expiration INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_envs_expiration ON envs(expiration);

	CREATE TABLE IF NOT EXISTS env_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		line TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_env_logs_name ON env_logs(name, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get retrieves an environment by name
func (s *SQLiteStore) Get(ctx context.Context, name string) (*model.Env, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT name, env_id, repo, branch, path, expiration, created_at, updated_at
		 FROM envs WHERE name = ?`, name)

	env, err := scanEnv(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query env: %w", err)
	}
	return env, nil
}

// Put stores or updates an environment
func (s *SQLiteStore) Put(ctx context.Context, env *model.Env) error {
	if env == nil {
		return fmt.Errorf("env cannot be nil")
	}
	if env.Name == "" {
		return fmt.Errorf("env name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env.UpdatedAt = time.Now()
	if env.CreatedAt.IsZero() {
		env.CreatedAt = env.UpdatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO envs (name, env_id, repo, branch, path, expiration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			env_id = excluded.env_id,
			repo = excluded.repo,
			branch = excluded.branch,
			path = excluded.path,
			expiration = excluded.expiration,
			updated_at = excluded.updated_at`,
		env.Name, env.ID, env.Spec.Repo, env.Spec.Branch, env.Spec.Path,
		toUnixNano(env.Expiration), env.CreatedAt.UnixNano(), env.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save env: %w", err)
	}
	return nil
}

// Delete removes an environment and its logs
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM env_logs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete env logs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM envs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete env: %w", err)
	}
	return tx.Commit()
}

// List returns all environments ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]*model.Env, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, env_id, repo, branch, path, expiration, created_at, updated_at
		 FROM envs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query envs: %w", err)
	}
	defer rows.Close()

	var envs []*model.Env
	for rows.Next() {
		env, err := scanEnv(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan env: %w", err)
		}
		envs = append(envs, env)
	}
	return envs, rows.Err()
}

// AppendLogs adds lines to an environment's log
func (s *SQLiteStore) AppendLogs(ctx context.Context, name string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM envs WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query env: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO env_logs (name, line, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare log insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, line := range splitLines(lines) {
		if _, err := stmt.ExecContext(ctx, name, line, now); err != nil {
			return fmt.Errorf("failed to insert log line: %w", err)
		}
	}
	return tx.Commit()
}

// Logs returns the tail of an environment's log
func (s *SQLiteStore) Logs(ctx context.Context, name string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT line FROM (
		SELECT seq, line FROM env_logs WHERE name = ? ORDER BY seq DESC LIMIT ?
	) ORDER BY seq ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan log line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnv(row rowScanner) (*model.Env, error) {
	var (
		env                             model.Env
		expiration, createdAt, updateAt int64
	)
	err := row.Scan(&env.Name, &env.ID, &env.Spec.Repo, &env.Spec.Branch, &env.Spec.Path,
		&expiration, &createdAt, &updateAt)
	if err != nil {
		return nil, err
	}
	env.Expiration = fromUnixNano(expiration)
	env.CreatedAt = fromUnixNano(createdAt)
	env.UpdatedAt = fromUnixNano(updateAt)
	return &env, nil
}

// toUnixNano stores the zero time as 0 so "no expiration" survives a round trip.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

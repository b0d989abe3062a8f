package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// sqliteSchema is executed on every open; IF NOT EXISTS keeps it idempotent.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS modules (
    position    INTEGER NOT NULL,
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    duration    INTEGER NOT NULL DEFAULT 0,
    level       TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    keywords    TEXT NOT NULL DEFAULT '[]',
    notebook    INTEGER NOT NULL DEFAULT 0,
    colab_url   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS module_prerequisites (
    module_id       TEXT NOT NULL,
    prerequisite_id TEXT NOT NULL,
    position        INTEGER NOT NULL,
    PRIMARY KEY (module_id, prerequisite_id)
);

CREATE TABLE IF NOT EXISTS progress (
    user_id      TEXT NOT NULL,
    module_id    TEXT NOT NULL,
    status       TEXT NOT NULL,
    score        REAL,
    started_at   TIMESTAMP,
    completed_at TIMESTAMP,
    updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, module_id)
);
`

// SQLite stores users, the module catalog and per-user progress in a local
// SQLite database in WAL mode. It is the server's database; it has no notion
// of a current user. Wrap it with NewSQLiteBackend for that.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection avoids SQLITE_BUSY
	// between connections that would each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SeedModules inserts modules that are not yet in the database, keeping the
// given order, and returns how many were added. Existing rows are left as
// they are.
func (s *SQLite) SeedModules(ctx context.Context, modules []catalog.Module) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin tx for modules: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var base int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM modules").Scan(&base); err != nil {
		return 0, fmt.Errorf("store: next module position: %w", err)
	}

	const insertModule = `
		INSERT INTO modules (position, id, title, description, duration, level, category, keywords, notebook, colab_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`
	const insertPrereq = `
		INSERT INTO module_prerequisites (module_id, prerequisite_id, position)
		VALUES (?, ?, ?)
		ON CONFLICT(module_id, prerequisite_id) DO NOTHING`

	added := 0
	for _, m := range modules {
		keywords, err := json.Marshal(nonNil(m.Keywords))
		if err != nil {
			return 0, fmt.Errorf("store: encode keywords for %q: %w", m.ID, err)
		}
		res, err := tx.ExecContext(ctx, insertModule,
			base+added, m.ID, m.Title, m.Description, m.Duration, string(m.Level), m.Category,
			string(keywords), m.NotebookAvailable, m.ColabURL)
		if err != nil {
			return 0, fmt.Errorf("store: insert module %q: %w", m.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		added++
		for i, p := range m.Prerequisites {
			if _, err := tx.ExecContext(ctx, insertPrereq, m.ID, p, i); err != nil {
				return 0, fmt.Errorf("store: insert prerequisite %q→%q: %w", p, m.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit modules: %w", err)
	}
	return added, nil
}

// Modules returns the catalog matching f. When userID is non-empty that
// user's statuses are applied; everything else is not-started.
func (s *SQLite) Modules(ctx context.Context, f catalog.Filter, userID string) ([]catalog.Module, error) {
	q := `SELECT id, title, description, duration, level, category, keywords, notebook, colab_url
		FROM modules`
	var args []any
	if f.Category != "" {
		q += " WHERE category = ?"
		args = append(args, f.Category)
	}
	q += " ORDER BY position"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query modules: %w", err)
	}
	var mods []catalog.Module
	for rows.Next() {
		var (
			m        catalog.Module
			level    string
			keywords string
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Duration, &level, &m.Category,
			&keywords, &m.NotebookAvailable, &m.ColabURL); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan module: %w", err)
		}
		m.Level = catalog.Level(level)
		m.Status = catalog.StatusNotStarted
		if err := json.Unmarshal([]byte(keywords), &m.Keywords); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: decode keywords for %q: %w", m.ID, err)
		}
		mods = append(mods, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("store: iterate modules: %w", err)
	}
	rows.Close()

	mods = f.Apply(mods)
	if err := s.attachPrerequisites(ctx, mods); err != nil {
		return nil, err
	}
	if userID != "" {
		progress, err := s.Progress(ctx, userID)
		if err != nil {
			return nil, err
		}
		for i := range mods {
			if p, ok := progress[mods[i].ID]; ok {
				mods[i].Status = p.Status
			}
		}
	}
	return mods, nil
}

func (s *SQLite) attachPrerequisites(ctx context.Context, mods []catalog.Module) error {
	if len(mods) == 0 {
		return nil
	}
	index := make(map[string]int, len(mods))
	for i, m := range mods {
		index[m.ID] = i
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT module_id, prerequisite_id FROM module_prerequisites ORDER BY module_id, position")
	if err != nil {
		return fmt.Errorf("store: query prerequisites: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mod, pre string
		if err := rows.Scan(&mod, &pre); err != nil {
			return fmt.Errorf("store: scan prerequisite: %w", err)
		}
		if i, ok := index[mod]; ok {
			mods[i].Prerequisites = append(mods[i].Prerequisites, pre)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: iterate prerequisites: %w", err)
	}
	return nil
}

// CreateUser inserts a user with an already hashed password. It returns
// ErrConflict if the email is taken.
func (s *SQLite) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	email = NormalizeEmail(email)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("store: begin tx for user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return User{}, fmt.Errorf("store: check email: %w", err)
	}
	if exists > 0 {
		return User{}, fmt.Errorf("%w: email %q already registered", ErrConflict, email)
	}

	u := User{ID: uuid.NewString(), Name: name, Email: email}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.Name, passwordHash); err != nil {
		return User{}, fmt.Errorf("store: insert user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("store: commit user: %w", err)
	}
	return u, nil
}

// UserByEmail returns the user and their password hash, or ErrNotFound.
func (s *SQLite) UserByEmail(ctx context.Context, email string) (User, string, error) {
	var (
		u    User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash FROM users WHERE email = ?", NormalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.Name, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	if err != nil {
		return User{}, "", fmt.Errorf("store: get user by email: %w", err)
	}
	return u, hash, nil
}

// UserByID returns the user with id, or ErrNotFound.
func (s *SQLite) UserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, "SELECT id, email, name FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("store: get user %q: %w", id, err)
	}
	return u, nil
}

// Progress returns every recorded status for userID.
func (s *SQLite) Progress(ctx context.Context, userID string) (map[string]Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT module_id, status, score FROM progress WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("store: query progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Progress)
	for rows.Next() {
		var (
			id     string
			status string
			score  sql.NullFloat64
		)
		if err := rows.Scan(&id, &status, &score); err != nil {
			return nil, fmt.Errorf("store: scan progress: %w", err)
		}
		p := Progress{Status: catalog.Status(status)}
		if score.Valid {
			v := score.Float64
			p.Score = &v
		}
		out[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate progress: %w", err)
	}
	return out, nil
}

// RecordProgress upserts a status for userID. A nil score keeps any score
// already recorded. Unknown modules return ErrNotFound.
func (s *SQLite) RecordProgress(ctx context.Context, userID, moduleID string, status catalog.Status, score *float64) error {
	if !status.Valid() {
		return fmt.Errorf("store: invalid status %q", status)
	}
	var known int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM modules WHERE id = ?", moduleID).Scan(&known); err != nil {
		return fmt.Errorf("store: check module %q: %w", moduleID, err)
	}
	if known == 0 {
		return fmt.Errorf("%w: module %q", ErrNotFound, moduleID)
	}

	const q = `
		INSERT INTO progress (user_id, module_id, status, score, started_at, completed_at, updated_at)
		VALUES (?, ?, ?, ?,
			CASE WHEN ? = 'in-progress' THEN CURRENT_TIMESTAMP END,
			CASE WHEN ? = 'completed' THEN CURRENT_TIMESTAMP END,
			CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, module_id) DO UPDATE SET
			status       = excluded.status,
			score        = COALESCE(excluded.score, progress.score),
			completed_at = COALESCE(excluded.completed_at, progress.completed_at),
			updated_at   = CURRENT_TIMESTAMP`
	var sc sql.NullFloat64
	if score != nil {
		sc = sql.NullFloat64{Float64: *score, Valid: true}
	}
	if _, err := s.db.ExecContext(ctx, q, userID, moduleID, string(status), sc, string(status), string(status)); err != nil {
		return fmt.Errorf("store: set progress %q=%q: %w", moduleID, status, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

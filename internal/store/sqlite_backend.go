package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// SQLiteBackend adapts a SQLite database to Backend for a single local
// process. The logged-in user is held in memory.
type SQLiteBackend struct {
	db *SQLite

	mu   sync.RWMutex
	user *User
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend returns a logged-out backend over db.
func NewSQLiteBackend(db *SQLite) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) userID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.user == nil {
		return ""
	}
	return b.user.ID
}

// FetchModules returns the stored catalog with the current user's progress.
func (b *SQLiteBackend) FetchModules(ctx context.Context, f catalog.Filter) ([]catalog.Module, error) {
	return b.db.Modules(ctx, f, b.userID())
}

// FetchProgress returns the current user's statuses.
func (b *SQLiteBackend) FetchProgress(ctx context.Context) (map[string]catalog.Status, error) {
	id := b.userID()
	if id == "" {
		return nil, ErrUnauthorized
	}
	rows, err := b.db.Progress(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]catalog.Status, len(rows))
	for mod, p := range rows {
		out[mod] = p.Status
	}
	return out, nil
}

// SetProgress records status for the current user.
func (b *SQLiteBackend) SetProgress(ctx context.Context, moduleID string, status catalog.Status) error {
	id := b.userID()
	if id == "" {
		return ErrUnauthorized
	}
	return b.db.RecordProgress(ctx, id, moduleID, status, nil)
}

// CurrentUser returns the logged-in user, or nil.
func (b *SQLiteBackend) CurrentUser(context.Context) (*User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.user == nil {
		return nil, nil
	}
	u := *b.user
	return &u, nil
}

// Login checks the password against the stored hash.
func (b *SQLiteBackend) Login(ctx context.Context, email, password string) (*User, error) {
	u, hash, err := b.db.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(hash, password); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	b.set(&u)
	return &u, nil
}

// Register creates the user and logs them in.
func (b *SQLiteBackend) Register(ctx context.Context, name, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrUnauthorized)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = LocalPart(email)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := b.db.CreateUser(ctx, name, email, hash)
	if err != nil {
		return nil, err
	}
	b.set(&u)
	return &u, nil
}

// Logout forgets the current user.
func (b *SQLiteBackend) Logout(context.Context) error {
	b.set(nil)
	return nil
}

func (b *SQLiteBackend) set(u *User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.user = u
}

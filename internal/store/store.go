// Package store defines the collaborators that hold a learner's catalog,
// session and progress, and provides three implementations: Static (files
// in a local state directory), Client (the HTTP API) and SQLite (the
// server's database).
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

var (
	// ErrNotFound is returned when a module or user does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUnauthorized is returned when no user is logged in or credentials
	// are rejected.
	ErrUnauthorized = errors.New("store: unauthorized")
	// ErrConflict is returned when registering an email that already exists.
	ErrConflict = errors.New("store: conflict")
)

// User is an authenticated learner.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Progress is a learner's recorded state for one module.
type Progress struct {
	Status catalog.Status `json:"status"`
	Score  *float64       `json:"score,omitempty"`
}

// Persistence fetches the catalog and reads and writes the current user's
// progress.
type Persistence interface {
	// FetchModules returns the modules matching f, with the current user's
	// status applied when one is logged in.
	FetchModules(ctx context.Context, f catalog.Filter) ([]catalog.Module, error)
	// FetchProgress returns the current user's recorded statuses.
	FetchProgress(ctx context.Context) (map[string]catalog.Status, error)
	// SetProgress records a status for the current user. It returns only
	// after the change is durable.
	SetProgress(ctx context.Context, moduleID string, status catalog.Status) error
}

// Session manages who is logged in. CurrentUser returns nil and no error
// when nobody is.
type Session interface {
	CurrentUser(ctx context.Context) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Register(ctx context.Context, name, email, password string) (*User, error)
	Logout(ctx context.Context) error
}

// Backend is a collaborator that provides both.
type Backend interface {
	Persistence
	Session
}

// LocalPart returns the part of an email address before the '@'.
func LocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

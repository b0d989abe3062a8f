package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

const currentUserFile = "current_user.json"

// Static keeps everything on the local filesystem: the catalog is read from
// a file and each user's progress lives in progress_<email>.json under the
// state directory. Login is a demo: any non-empty email and password is
// accepted.
type Static struct {
	catalogPath string
	dir         string

	mu sync.Mutex
}

var _ Backend = (*Static)(nil)

// NewStatic returns a Static store reading catalogPath and keeping state in
// stateDir, which is created if missing.
func NewStatic(catalogPath, stateDir string) (*Static, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create state dir: %w", err)
	}
	return &Static{catalogPath: catalogPath, dir: stateDir}, nil
}

// CatalogPath returns the catalog file the store reads.
func (s *Static) CatalogPath() string {
	return s.catalogPath
}

// FetchModules reads the catalog file, applies the current user's progress
// and filters the result.
func (s *Static) FetchModules(ctx context.Context, f catalog.Filter) ([]catalog.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mods, err := catalog.ReadFile(s.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if u != nil {
		progress, err := s.readProgress(u.Email)
		if err != nil {
			return nil, err
		}
		for i := range mods {
			if st, ok := progress[mods[i].ID]; ok {
				mods[i].Status = st
			}
		}
	}
	return f.Apply(mods), nil
}

// FetchProgress returns the logged-in user's statuses.
func (s *Static) FetchProgress(ctx context.Context) (map[string]catalog.Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	return s.readProgress(u.Email)
}

// SetProgress records status for moduleID and rewrites the user's progress
// file.
func (s *Static) SetProgress(ctx context.Context, moduleID string, status catalog.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("store: invalid status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.requireUser()
	if err != nil {
		return err
	}
	progress, err := s.readProgress(u.Email)
	if err != nil {
		return err
	}
	progress[moduleID] = status
	return writeJSON(s.progressPath(u.Email), progress)
}

// CurrentUser returns the saved user, or nil.
func (s *Static) CurrentUser(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser()
}

// Login accepts any non-empty credentials; the display name is the email's
// local part.
func (s *Static) Login(ctx context.Context, email, password string) (*User, error) {
	return s.Register(ctx, "", email, password)
}

// Register behaves like Login but keeps name when one is given.
func (s *Static) Register(ctx context.Context, name, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrUnauthorized)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = LocalPart(email)
	}
	u := &User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Name:  name,
		Email: email,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(filepath.Join(s.dir, currentUserFile), u); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout forgets the current user. Saved progress is kept.
func (s *Static) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.dir, currentUserFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: logout: %w", err)
	}
	return nil
}

func (s *Static) currentUser() (*User, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentUserFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read current user: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("store: decode current user: %w", err)
	}
	if u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

func (s *Static) requireUser() (*User, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func (s *Static) progressPath(email string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, email)
	return filepath.Join(s.dir, "progress_"+safe+".json")
}

func (s *Static) readProgress(email string) (map[string]catalog.Status, error) {
	progress := make(map[string]catalog.Status)
	data, err := os.ReadFile(s.progressPath(email))
	if errors.Is(err, fs.ErrNotExist) {
		return progress, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read progress: %w", err)
	}
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("store: decode progress: %w", err)
	}
	return progress, nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

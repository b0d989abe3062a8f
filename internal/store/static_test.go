package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

const catalogJSON = `{"modules": [
  {"id": "python-basics", "title": "Python Basics", "description": "Syntax and types", "category": "core",
   "level": "beginner", "duration": 60, "prerequisites": [], "keywords": ["python"]},
  {"id": "numpy", "title": "NumPy", "description": "Arrays", "category": "core",
   "level": "intermediate", "duration": 90, "prerequisites": ["python-basics"], "keywords": ["arrays"]},
  {"id": "xarray", "title": "Xarray", "description": "Labelled arrays", "category": "data",
   "level": "advanced", "duration": 120, "prerequisites": ["numpy"], "keywords": ["netcdf"]}
]}`

func sampleModules(t *testing.T) []catalog.Module {
	t.Helper()
	mods, err := catalog.Parse([]byte(catalogJSON), catalog.FormatJSON)
	require.NoError(t, err)
	return mods
}

func newStatic(t *testing.T) *Static {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "course.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))
	s, err := NewStatic(path, filepath.Join(dir, "state"))
	require.NoError(t, err)
	return s
}

func TestStatic_LoggedOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStatic(t)

	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	mods, err := s.FetchModules(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, mods, 3)

	_, err = s.FetchProgress(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, s.SetProgress(ctx, "numpy", catalog.StatusCompleted), ErrUnauthorized)
	assert.NoError(t, s.Logout(ctx), "logout while logged out")
}

func TestStatic_DemoLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStatic(t)

	_, err := s.Login(ctx, "", "secret")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.Login(ctx, "ada@example.com", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	u, err := s.Login(ctx, " Ada@Example.com ", "anything")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	again, err := s.Login(ctx, "ada@example.com", "other")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID, "user id is stable per email")

	saved, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, u.Email, saved.Email)

	reg, err := s.Register(ctx, "Grace Hopper", "grace@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", reg.Name)
}

func TestStatic_ProgressPerUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStatic(t)

	_, err := s.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.SetProgress(ctx, "python-basics", catalog.StatusCompleted))
	require.NoError(t, s.SetProgress(ctx, "numpy", catalog.StatusInProgress))
	assert.Error(t, s.SetProgress(ctx, "numpy", catalog.Status("done")))

	progress, err := s.FetchProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]catalog.Status{
		"python-basics": catalog.StatusCompleted,
		"numpy":         catalog.StatusInProgress,
	}, progress)

	mods, err := s.FetchModules(ctx, catalog.Filter{Category: "core"})
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, catalog.StatusCompleted, mods[0].Status)
	assert.Equal(t, catalog.StatusInProgress, mods[1].Status)

	assert.FileExists(t, filepath.Join(s.dir, "progress_ada@example.com.json"))

	// A second user starts clean.
	_, err = s.Login(ctx, "grace@example.com", "pw")
	require.NoError(t, err)
	progress, err = s.FetchProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, progress)

	// Logging out keeps the saved progress.
	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	progress, err = s.FetchProgress(ctx)
	require.NoError(t, err)
	assert.Len(t, progress, 2)
}

func TestStatic_FetchModulesFilter(t *testing.T) {
	t.Parallel()
	s := newStatic(t)
	mods, err := s.FetchModules(context.Background(), catalog.Filter{Text: "NETCDF"})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "xarray", mods[0].ID)
}

func TestStatic_MissingCatalog(t *testing.T) {
	t.Parallel()
	s, err := NewStatic(filepath.Join(t.TempDir(), "nope.json"), t.TempDir())
	require.NoError(t, err)
	_, err = s.FetchModules(context.Background(), catalog.Filter{})
	assert.Error(t, err)
}

func TestLocalPart(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"ada@example.com": "ada",
		"no-at-sign":      "no-at-sign",
		"@example.com":    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LocalPart(in), in)
	}
}

package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// fakeAPI answers the course API with canned data and a single hard-coded
// session cookie.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	loggedIn := func(r *http.Request) bool {
		c, err := r.Cookie("session")
		return err == nil && c.Value == "ok"
	}
	writeJSON := func(w http.ResponseWriter, code int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /api/modules", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "arr", r.URL.Query().Get("q"))
		assert.Equal(t, "data", r.URL.Query().Get("category"))
		writeJSON(w, http.StatusOK, map[string]any{"modules": []catalog.Module{{ID: "xarray", Title: "Xarray"}}})
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"user": User{ID: "1", Name: "ada", Email: body["email"]}})
	})
	mux.HandleFunc("POST /api/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Email already exists"})
	})
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": User{ID: "1", Name: "ada", Email: "ada@example.com"}})
	})
	mux.HandleFunc("GET /api/progress", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"progress": map[string]Progress{
			"numpy": {Status: catalog.StatusCompleted},
		}})
	})
	mux.HandleFunc("POST /api/progress", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ModuleID string `json:"module_id"`
			Status   string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.ModuleID == "boom" {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Progress updated"})
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SessionFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := NewClient(fakeAPI(t).URL, nil)
	require.NoError(t, err)

	u, err := c.CurrentUser(ctx)
	require.NoError(t, err, "unauthorized /api/user means logged out")
	assert.Nil(t, u)

	_, err = c.FetchProgress(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "ada@example.com", "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid credentials")

	u, err = c.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Name)

	u, err = c.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u, "cookie jar carries the session")

	progress, err := c.FetchProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]catalog.Status{"numpy": catalog.StatusCompleted}, progress)

	require.NoError(t, c.SetProgress(ctx, "numpy", catalog.StatusCompleted))
	err = c.SetProgress(ctx, "boom", catalog.StatusCompleted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")

	require.NoError(t, c.Logout(ctx))
	u, err = c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestClient_FetchModulesAndConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := NewClient(fakeAPI(t).URL+"/", nil)
	require.NoError(t, err)

	mods, err := c.FetchModules(ctx, catalog.Filter{Text: "arr", Category: "data"})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "xarray", mods[0].ID)

	_, err = c.Register(ctx, "Ada", "ada@example.com", "pw")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestNewClient_BadURL(t *testing.T) {
	t.Parallel()
	_, err := NewClient("not a url", nil)
	assert.Error(t, err)
}

package server

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/store"
)

func TestMetrics_CountsRequestsByRoute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, ts := newTestServer(t)
	c := newClient(t, ts)

	_, err := c.Register(ctx, "Ada", "ada@example.com", "engine")
	require.NoError(t, err)
	_, err = newClient(t, ts).Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, store.ErrUnauthorized)
	require.NoError(t, c.SetProgress(ctx, "numpy", catalog.StatusInProgress))
	_, err = c.FetchModules(ctx, catalog.Filter{Text: "arrays"})
	require.NoError(t, err)

	m := srv.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/login", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/modules", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.progress.WithLabelValues("in-progress")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auth.WithLabelValues("register", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auth.WithLabelValues("login", "failure")))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `syllabus_http_request_duration_seconds_count{method="POST",route="/api/progress"} 1`)
	assert.Contains(t, text, `syllabus_auth_attempts_total{op="login",result="failure"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope/123")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.requests.WithLabelValues("GET", "unmatched", "404")))
}

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// Client talks to the course HTTP API. The session cookie set by login or
// register is kept in the client's cookie jar.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ Backend = (*Client)(nil)

// NewClient returns a Client for the API rooted at baseURL. A nil hc gets a
// client with a fresh cookie jar and a 10s timeout.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("store: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("store: base url %q needs a scheme and host", baseURL)
	}
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("store: cookie jar: %w", err)
		}
		hc = &http.Client{Jar: jar, Timeout: 10 * time.Second}
	}
	return &Client{base: u, http: hc}, nil
}

type apiError struct {
	Error string `json:"error"`
}

type userEnvelope struct {
	User *User `json:"user"`
}

// FetchModules calls GET /api/modules with the filter as query parameters.
func (c *Client) FetchModules(ctx context.Context, f catalog.Filter) ([]catalog.Module, error) {
	q := url.Values{}
	if f.Text != "" {
		q.Set("q", f.Text)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	var out struct {
		Modules []catalog.Module `json:"modules"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/modules", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Modules, nil
}

// FetchProgress calls GET /api/progress.
func (c *Client) FetchProgress(ctx context.Context) (map[string]catalog.Status, error) {
	var out struct {
		Progress map[string]Progress `json:"progress"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/progress", nil, nil, &out); err != nil {
		return nil, err
	}
	statuses := make(map[string]catalog.Status, len(out.Progress))
	for id, p := range out.Progress {
		statuses[id] = p.Status
	}
	return statuses, nil
}

// SetProgress calls POST /api/progress.
func (c *Client) SetProgress(ctx context.Context, moduleID string, status catalog.Status) error {
	body := map[string]any{"module_id": moduleID, "status": status}
	return c.do(ctx, http.MethodPost, "/api/progress", nil, body, nil)
}

// CurrentUser calls GET /api/user. An unauthorized response means nobody is
// logged in and is not an error.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodGet, "/api/user", nil, nil, &out)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login calls POST /api/login.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out userEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, body, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Register calls POST /api/register.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var out userEnvelope
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, body, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout calls POST /api/logout.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("store: encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("store: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("store: read %s response: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, path, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: decode %s response: %w", path, err)
	}
	return nil
}

func statusError(code int, path string, body []byte) error {
	var e apiError
	msg := http.StatusText(code)
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return fmt.Errorf("store: %s: %d %s", path, code, msg)
}

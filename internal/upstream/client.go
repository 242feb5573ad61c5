// Package upstream is the read-only client of the charging backend's admin API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"charging_console/internal/models"
)

// AccessTokenCookie is the cookie the backend reads its session token from.
const AccessTokenCookie = "access_token"

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

var (
	ErrNotFound     = errors.New("upstream: not found")
	ErrUnauthorized = errors.New("upstream: unauthorized")
	ErrNoToken      = errors.New("upstream: login response carried no access token")
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("upstream: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is lets callers match status classes with errors.Is.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	}
	return false
}

type Client struct {
	BaseURL string
	// Token authenticates the console itself; per-user calls pass their own.
	Token string
	HTTP  *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ListChargers returns the overview list, each charger with its active session summary.
func (c *Client) ListChargers(ctx context.Context) ([]models.Charger, error) {
	var out []models.Charger
	if err := c.getJSON(ctx, "/api/admin/chargers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCharger(ctx context.Context, id string) (models.Charger, error) {
	var out models.Charger
	if err := c.getJSON(ctx, "/api/admin/chargers/"+url.PathEscape(id), &out); err != nil {
		return models.Charger{}, err
	}
	return out, nil
}

func (c *Client) ListSessions(ctx context.Context, chargerID string) ([]models.Session, error) {
	var out []models.Session
	if err := c.getJSON(ctx, "/api/admin/chargers/"+url.PathEscape(chargerID)+"/sessions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListLogs(ctx context.Context, chargerID string) ([]models.LogEntry, error) {
	var out []models.LogEntry
	if err := c.getJSON(ctx, "/api/admin/chargers/"+url.PathEscape(chargerID)+"/logs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReadings returns the unordered meter readings of a transaction.
func (c *Client) ListReadings(ctx context.Context, transactionID int) ([]models.Reading, error) {
	var out []models.Reading
	if err := c.getJSON(ctx, "/api/admin/sessions/"+strconv.Itoa(transactionID)+"/readings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SystemInfo(ctx context.Context) (models.SystemInfo, error) {
	var out models.SystemInfo
	if err := c.getJSON(ctx, "/api/admin/system-info", &out); err != nil {
		return models.SystemInfo{}, err
	}
	return out, nil
}

// Login forwards operator credentials and returns the session token the
// backend issued in its access_token cookie.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/login", "", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, ck := range resp.Cookies() {
		if ck.Name == AccessTokenCookie && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", ErrNoToken
}

func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/logout", token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Me resolves the operator that owns token.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/me", token, nil)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()

	var u models.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return models.User{}, fmt.Errorf("upstream: decode /api/me: %w", err)
	}
	return u, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, c.Token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: decode %s: %w", path, err)
	}
	return nil
}

// do sends the request and turns non-2xx answers into *StatusError. On
// success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

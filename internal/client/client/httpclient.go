package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks to the REST backend. The bearer token set with SetToken
// is attached to every request.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// mapStatus turns a non-2xx response into a sentinel error, keeping the
// server's message when it sent one.
func mapStatus(code int, body []byte) error {
	var sentinel error
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case code == http.StatusNotFound:
		sentinel = ErrNotFound
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		sentinel = ErrBadRequest
	case code >= 500:
		sentinel = ErrUnavailable
	default:
		sentinel = fmt.Errorf("unexpected status %d", code)
	}

	var ae apiError
	if json.Unmarshal(body, &ae) == nil {
		msg := ae.Error
		if msg == "" {
			msg = ae.Message
		}
		if msg != "" {
			return fmt.Errorf("%w: %s", sentinel, msg)
		}
	}
	return sentinel
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatus(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type healthResponse struct {
	Status string `json:"status"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SyncUser pushes u and returns the server's record, or nil when the server
// answers without a body.
func (c *HTTPClient) SyncUser(ctx context.Context, u *models.User) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/users/sync", u, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

func (c *HTTPClient) RecordXP(ctx context.Context, tx models.XPTransaction) error {
	return c.do(ctx, http.MethodPost, "/xp/transaction", tx, nil)
}

func (c *HTTPClient) RecordTrustEvent(ctx context.Context, ev models.TrustEvent) error {
	return c.do(ctx, http.MethodPost, "/trust/event", ev, nil)
}

type staffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLogin authenticates and keeps the returned token for later calls.
func (c *HTTPClient) StaffLogin(ctx context.Context, email, password string) (*models.StaffSession, error) {
	var s models.StaffSession
	if err := c.do(ctx, http.MethodPost, "/auth/staff/login", staffLoginRequest{Email: email, Password: password}, &s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, fmt.Errorf("%w: empty token in login response", ErrUnauthorized)
	}
	c.SetToken(s.Token)
	return &s, nil
}

// GlobalLogout revokes every session server-side and drops the local token
// whatever the outcome.
func (c *HTTPClient) GlobalLogout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/global-logout", struct{}{}, nil)
	c.SetToken("")
	return err
}

func (c *HTTPClient) AssignRole(ctx context.Context, a models.RoleAssignment) error {
	return c.do(ctx, http.MethodPost, "/admin/assign-role", a, nil)
}

func (c *HTTPClient) RevokeRole(ctx context.Context, a models.RoleAssignment) error {
	return c.do(ctx, http.MethodPost, "/admin/revoke-role", a, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	var out []models.AdminUser
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) RoleHistory(ctx context.Context, userID string) ([]models.RoleChange, error) {
	var out []models.RoleChange
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(userID)+"/role-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func contentPath(kind models.ContentKind) string {
	return "/admin/content/" + kind.Collection()
}

func (c *HTTPClient) ListContent(ctx context.Context, kind models.ContentKind) ([]models.Envelope, error) {
	var out []models.Envelope
	if err := c.do(ctx, http.MethodGet, contentPath(kind), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveContent creates e when it has no ID and replaces it otherwise.
func (c *HTTPClient) SaveContent(ctx context.Context, e models.Envelope) (models.Envelope, error) {
	method, path := http.MethodPost, contentPath(e.Kind)
	if e.ID != "" {
		method, path = http.MethodPut, path+"/"+url.PathEscape(e.ID)
	}
	var out models.Envelope
	if err := c.do(ctx, method, path, e, &out); err != nil {
		return models.Envelope{}, err
	}
	if out.Kind == "" {
		out.Kind = e.Kind
	}
	return out, nil
}

func (c *HTTPClient) DeleteContent(ctx context.Context, kind models.ContentKind, id string) error {
	return c.do(ctx, http.MethodDelete, contentPath(kind)+"/"+url.PathEscape(id), nil, nil)
}

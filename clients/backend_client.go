package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/monitoring"
)

// DefaultRefreshPath is the backend endpoint that exchanges a stale
// access token for a fresh one.
const DefaultRefreshPath = "/api/refresh-token"

// SessionState is the credential holder the client decorates requests
// with. Implemented by *auth.Session.
type SessionState interface {
	Token() string
	UpdateToken(ctx context.Context, token string)
	Invalidate(ctx context.Context)
}

// Config carries the client's connection settings.
type Config struct {
	BaseURL        string
	RefreshPath    string
	RefreshTimeout time.Duration
	HTTPClient     *http.Client
}

// BackendClient wraps outbound calls to the storefront backend. Every
// request carries the session's bearer token; a 401 triggers exactly one
// silent token refresh followed by one retry of the original request.
// Requests to the refresh endpoint itself are never retried, so the
// protocol cannot loop.
type BackendClient struct {
	baseURL        string
	refreshPath    string
	refreshTimeout time.Duration
	http           *http.Client
	sess           SessionState
	log            *zap.Logger

	// refreshMu coalesces concurrent refreshes: waiters queue here
	// and find the token already rotated when they get the lock.
	refreshMu sync.Mutex
}

// NewBackendClient builds a client bound to one session.
func NewBackendClient(cfg Config, sess SessionState, log *zap.Logger) *BackendClient {
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = DefaultRefreshPath
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 5 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BackendClient{
		baseURL:        cfg.BaseURL,
		refreshPath:    cfg.RefreshPath,
		refreshTimeout: cfg.RefreshTimeout,
		http:           cfg.HTTPClient,
		sess:           sess,
		log:            log,
	}
}

// Do dispatches a request with the session's current token. On a 401
// it refreshes once and re-dispatches the original request with the
// new token, returning that second result verbatim; if the refresh
// fails the session is invalidated and the original 401 response is
// returned to the caller.
func (c *BackendClient) Do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	token := c.sess.Token()

	resp, err := c.dispatch(ctx, method, path, query, body, token)
	if err != nil {
		// Transport errors are not retried here; that is the
		// caller's decision.
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || path == c.refreshPath {
		return resp, nil
	}

	newToken, refreshErr := c.refreshToken(ctx, token)
	if refreshErr != nil {
		c.log.Warn("Token refresh failed, invalidating session",
			zap.String("path", path), zap.Error(refreshErr))
		c.sess.Invalidate(ctx)
		return resp, nil
	}

	resp.Body.Close()
	return c.dispatch(ctx, method, path, query, body, newToken)
}

func (c *BackendClient) dispatch(ctx context.Context, method, path string, query url.Values, body []byte, token string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader(body))
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.http.Do(req)
}

// refreshToken exchanges the stale token for a fresh one. Only one
// exchange runs at a time; a caller that blocked behind another
// refresh reuses the token it installed instead of refreshing again.
func (c *BackendClient) refreshToken(ctx context.Context, staleToken string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.sess.Token()
	if current == "" {
		monitoring.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", apperrors.ErrNoCredential
	}
	if current != staleToken {
		// Another request already rotated the token.
		return current, nil
	}

	refreshCtx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"token": current})
	if err != nil {
		return "", err
	}
	resp, err := c.dispatch(refreshCtx, http.MethodPost, c.refreshPath, nil, payload, current)
	if err != nil {
		monitoring.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("%w: %v", apperrors.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		monitoring.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("%w: refresh endpoint returned %d", apperrors.ErrRefreshFailed, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		monitoring.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("%w: refresh endpoint returned no token", apperrors.ErrRefreshFailed)
	}

	c.sess.UpdateToken(ctx, out.Token)
	monitoring.TokenRefreshTotal.WithLabelValues("success").Inc()
	return out.Token, nil
}

func bodyReader(b []byte) io.Reader {
	if len(b) == 0 {
		return nil
	}
	return bytes.NewReader(b)
}

// DecodeJSON consumes a response, mapping non-2xx statuses onto the
// error taxonomy.
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnauthorized {
			return apperrors.New(http.StatusUnauthorized, "Unauthorized", &apperrors.ServerError{StatusCode: resp.StatusCode, Body: string(body)})
		}
		return &apperrors.ServerError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON is a convenience wrapper around Do plus DecodeJSON.
func (c *BackendClient) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}

// PostJSON marshals body, posts it and decodes the response.
func (c *BackendClient) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}

// PutJSON marshals body, puts it and decodes the response.
func (c *BackendClient) PutJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, http.MethodPut, path, nil, payload)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}

// Delete issues a DELETE and discards any response body.
func (c *BackendClient) Delete(ctx context.Context, path string) error {
	resp, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, nil)
}

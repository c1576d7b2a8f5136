package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Tokens is the bearer token pair issued by the backend.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client talks to the property backend. Every call carries the current
// bearer token; a 401 triggers one refresh (falling back to a full login)
// and a single retry of the original request.
type Client struct {
	http   *resty.Client
	logger *slog.Logger

	mu     sync.RWMutex
	tokens Tokens

	// authMu serialises refresh and login. A caller that waited on it skips
	// the renewal when the token it was rejected with has already changed.
	authMu   sync.Mutex
	username string
	password string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero leaves requests unbounded
// apart from the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithCredentials enables login when no token is held or a refresh fails.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithTokens seeds the client with an existing token pair.
func WithTokens(tokens Tokens) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger overrides the logger used for auth renewal.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Tokens returns the token pair currently in use.
func (c *Client) Tokens() Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Client) setTokens(tokens Tokens) {
	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()
}

func (c *Client) hasCredentials() bool {
	return c.username != "" && c.password != ""
}

// Login obtains a fresh token pair with the configured credentials.
func (c *Client) Login(ctx context.Context) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.login(ctx)
}

// Refresh renews the access token with the held refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.refresh(ctx)
}

func (c *Client) login(ctx context.Context) error {
	if !c.hasCredentials() {
		return goerr.Wrap(ErrUnauthorized, "no credentials configured")
	}
	body := map[string]string{"username": c.username, "password": c.password}
	return c.exchange(ctx, "/api/frontend/login", body)
}

func (c *Client) refresh(ctx context.Context) error {
	token := c.Tokens().RefreshToken
	if token == "" {
		return goerr.Wrap(ErrUnauthorized, "no refresh token held")
	}
	return c.exchange(ctx, "/api/frontend/refresh", map[string]string{"refresh_token": token})
}

func (c *Client) exchange(ctx context.Context, path string, body any) error {
	var tokens Tokens
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return goerr.Wrap(ErrTransport, "token request failed", goerr.V(PathKey, path), goerr.V("cause", err.Error()))
	}
	if resp.IsError() {
		return goerr.Wrap(newError(http.MethodPost, path, resp), "token request rejected", goerr.V(StatusKey, resp.StatusCode()))
	}
	if err := json.Unmarshal(resp.Body(), &tokens); err != nil || tokens.AccessToken == "" {
		return goerr.Wrap(ErrUnauthorized, "token response carries no access token", goerr.V(PathKey, path))
	}
	c.setTokens(tokens)
	return nil
}

// reauthenticate runs after a 401 for a request sent with stale: refresh
// first, then a full login. Nothing is renewed when another caller already
// replaced stale.
func (c *Client) reauthenticate(ctx context.Context, stale string) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	if current := c.Tokens().AccessToken; current != "" && current != stale {
		return nil
	}
	if c.Tokens().RefreshToken != "" {
		err := c.refresh(ctx)
		if err == nil {
			return nil
		}
		c.log(ctx).Debug("token refresh failed, falling back to login", "error", err)
	}
	return c.login(ctx)
}

// ensureToken logs in once when no token is held.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.Tokens().AccessToken != "" || !c.hasCredentials() {
		return nil
	}
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if c.Tokens().AccessToken != "" {
		return nil
	}
	return c.login(ctx)
}

type requestBuilder func(r *resty.Request)

// do sends one request and returns the raw body of a 2xx response. build is
// invoked per attempt so request bodies and file readers are fresh on the
// retry.
func (c *Client) do(ctx context.Context, method, path string, build requestBuilder, out any) ([]byte, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	token := c.Tokens().AccessToken
	resp, err := c.send(ctx, method, path, token, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		if authErr := c.reauthenticate(ctx, token); authErr != nil {
			return nil, goerr.Wrap(newError(method, path, resp), "re-authentication failed",
				goerr.V(MethodKey, method), goerr.V(PathKey, path), goerr.V("cause", authErr.Error()))
		}
		if resp, err = c.send(ctx, method, path, c.Tokens().AccessToken, build); err != nil {
			return nil, err
		}
	}
	if resp.IsError() {
		return nil, goerr.Wrap(newError(method, path, resp), "backend returned an error",
			goerr.V(MethodKey, method), goerr.V(PathKey, path), goerr.V(StatusKey, resp.StatusCode()))
	}

	body := resp.Body()
	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, goerr.Wrap(ErrDecode, "unexpected response body",
				goerr.V(MethodKey, method), goerr.V(PathKey, path), goerr.V("cause", err.Error()))
		}
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path, token string, build requestBuilder) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if build != nil {
		build(req)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, goerr.Wrap(ErrTransport, "request failed",
			goerr.V(MethodKey, method), goerr.V(PathKey, path), goerr.V("cause", err.Error()))
	}
	return resp, nil
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.From(ctx)
}

// decodeItems accepts both {"items": [...]} and a bare array.
func decodeItems[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, goerr.Wrap(ErrDecode, "unexpected list body", goerr.V("cause", err.Error()))
		}
		return out, nil
	}
	var page struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, goerr.Wrap(ErrDecode, "unexpected list body", goerr.V("cause", err.Error()))
	}
	return page.Items, nil
}

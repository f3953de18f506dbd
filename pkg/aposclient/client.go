package aposclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const apiPrefix = "/api/v1"

// Client is a thin wrapper over the CMS HTTP API. It handles authentication
// (API key or login session) and maps non-2xx responses to *APIError; it
// knows nothing about check sequencing or cleanup.
type Client struct {
	http *resty.Client
	log  *slog.Logger

	apiKey       string
	sessionToken string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates every request with a static bearer key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithLogger sets the logger used for request-level reporting.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPTransport replaces the underlying transport. Used by tests to point
// the client at an in-process server.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.SetTransport(rt) }
}

// New creates a Client for the CMS at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		log: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// request returns a prepared resty request with auth applied.
func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	switch {
	case c.sessionToken != "":
		r.SetAuthToken(c.sessionToken)
	case c.apiKey != "":
		r.SetHeader("Authorization", "ApiKey "+c.apiKey)
	}
	return r
}

// check maps a completed response to an *APIError when it is non-2xx.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &APIError{
			Method: resp.Request.Method,
			Path:   resp.Request.URL,
			Status: resp.StatusCode(),
			Body:   string(resp.Body()),
		}
	}
	return nil
}

// Login establishes a session with username/password credentials. The
// returned token is attached to subsequent requests in place of any API key.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.request(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post(apiPrefix + "/@apostrophecms/login/login")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if out.Token == "" {
		return fmt.Errorf("%w: response carried no token", ErrLoginFailed)
	}
	c.sessionToken = out.Token
	c.log.Debug("logged in", "username", username)
	return nil
}

// WhoAmI returns the identity behind the current session.
func (c *Client) WhoAmI(ctx context.Context) (*WhoAmI, error) {
	if c.sessionToken == "" && c.apiKey == "" {
		return nil, ErrNoSession
	}
	var out WhoAmI
	resp, err := c.request(ctx).
		SetResult(&out).
		Get(apiPrefix + "/@apostrophecms/login/whoami")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tears down the session. Safe to call without one.
func (c *Client) Logout(ctx context.Context) error {
	if c.sessionToken == "" {
		return nil
	}
	resp, err := c.request(ctx).Post(apiPrefix + "/@apostrophecms/login/logout")
	c.sessionToken = ""
	return check(resp, err)
}

// Package activityclient provides a client for the activities signup API.
//
// The API exposes three endpoints:
//
//	GET    /activities
//	POST   /activities/{name}/signup?email={email}
//	DELETE /activities/{name}/participants?email={email}
//
// Successful mutations answer with {"message": "..."}; rejected ones answer
// with a non-2xx status and {"detail": "..."}.
//
// Example usage:
//
//	client, err := activityclient.New("http://localhost:8000")
//	catalog, err := client.List(ctx)
//	msg, err := client.Signup(ctx, "Chess Club", "a@x.com")
package activityclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nomis52/signup/activity"
)

const defaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// ErrMissingScheme is returned by New when the host URL has no scheme.
var ErrMissingScheme = errors.New("host URL must include scheme")

// Client talks to the activities API.
type Client struct {
	Host   string
	Logger *slog.Logger

	base   *url.URL
	client *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.Logger = logger
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// New creates a Client for the API rooted at host, e.g. "http://localhost:8000".
func New(host string, opts ...Option) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL %q: %w", host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingScheme, host)
	}

	c := &Client{
		Host:   host,
		Logger: slog.Default(),
		base:   u,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every activity with its current participants.
func (c *Client) List(ctx context.Context) (activity.Catalog, error) {
	endpoint := c.base.JoinPath("activities")

	body, status, err := c.do(ctx, http.MethodGet, endpoint.String())
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError(status, body)
	}

	var catalog activity.Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
	}
	c.Logger.Debug("fetched activities", "count", len(catalog))
	return catalog, nil
}

// Signup registers email for the named activity and returns the server message.
// A rejection by the API is returned as an *APIError.
func (c *Client) Signup(ctx context.Context, name, email string) (string, error) {
	return c.mutate(ctx, http.MethodPost, c.participantURL(name, "signup", email))
}

// Unregister removes email from the named activity and returns the server message.
// A rejection by the API is returned as an *APIError.
func (c *Client) Unregister(ctx context.Context, name, email string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, c.participantURL(name, "participants", email))
}

func (c *Client) participantURL(name, action, email string) string {
	u := c.base.JoinPath("activities", url.PathEscape(name), action)
	u.RawQuery = url.Values{"email": {email}}.Encode()
	return u.String()
}

func (c *Client) mutate(ctx context.Context, method, endpoint string) (string, error) {
	body, status, err := c.do(ctx, method, endpoint)
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		apiErr := newAPIError(status, body)
		c.Logger.Info("activities API rejected request",
			"method", method,
			"status", status,
			"detail", apiErr.Detail,
		)
		return "", apiErr
	}

	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.Logger.Debug("calling activities API", "method", method, "url", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reach activities API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

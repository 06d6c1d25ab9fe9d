// Package rest implements the HTTP transport used by the Slivka client. It
// resolves API paths against the configured base URL, performs GET/POST
// requests, interprets status codes, and surfaces typed transport and HTTP
// errors.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/bartongroup/slivka-go/pkg/config"
)

// Doer abstracts the HTTP client so tests can intercept requests. It is
// satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client performs HTTP requests against a Slivka server. It owns URL
// resolution and status-code interpretation but no caching or domain logic.
// A Client is safe for concurrent use when its Doer is.
type Client struct {
	base      *url.URL
	userAgent string
	doer      Doer
	debug     bool
}

// Option customizes a Client.
type Option func(*Client)

// WithDoer replaces the underlying HTTP client. The default is
// http.DefaultClient; request deadlines are controlled by context.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// NewClient builds a transport bound to the base URL in cfg. The config must
// have been validated; the base URL is parsed here and an invalid URL is an
// error.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	c := &Client{
		base:      base,
		userAgent: cfg.UserAgent,
		doer:      http.DefaultClient,
		debug:     cfg.Debug,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved server base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve resolves a reference (an API path or a server-provided "@url"
// value) against the base URL.
func (c *Client) Resolve(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.base.ResolveReference(parsed).String()
}

// GetJSON performs a GET request and decodes a JSON response body into out.
// Non-2xx responses return an *HTTPStatusError; connection failures return a
// *TransportError.
func (c *Client) GetJSON(ctx context.Context, ref string, out any) error {
	resp, err := c.get(ctx, ref, "application/json")
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", resp.Request.URL, err)
	}
	return nil
}

// GetStream performs a GET request and returns the raw response body for
// incremental consumption. The caller must close the returned reader.
func (c *Client) GetStream(ctx context.Context, ref string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, ref, "")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PostMultipart sends a multipart form body to the resolved URL and decodes a
// JSON response into out (when out is non-nil). Non-2xx responses return an
// *HTTPStatusError whose Body carries the response payload so callers can
// interpret validation failures.
func (c *Client) PostMultipart(ctx context.Context, ref, contentType string, body io.Reader, out any) error {
	target := c.Resolve(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("invalid request URL %q: %w", target, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.debug {
		zap.L().Debug("POST", zap.String("url", target), zap.String("content_type", contentType))
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return &TransportError{URL: target, Err: err}
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, ref, accept string) (*http.Response, error) {
	target := c.Resolve(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", target, err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if c.debug {
		zap.L().Debug("GET", zap.String("url", target))
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer closeBody(resp.Body)
		return nil, newStatusError(resp)
	}
	return resp, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		zap.L().Error("failed to close response body", zap.Error(err))
	}
}

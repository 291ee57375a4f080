// Package httpclient wraps the standard library's http.Client with the
// timeout and pluggable-redirect-policy configuration the crawler needs,
// keeping TLS and connection-pooling concerns as plain defaults.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CheckRedirect matches http.Client.CheckRedirect's signature. Implementors
// receive the request about to be made (with Response populated to the
// redirect response that produced it) and the chain of requests already
// made, oldest first.
type CheckRedirect func(req *http.Request, via []*http.Request) error

// Config configures a Client.
type Config struct {
	// Timeout is the total per-request timeout (default: 30s).
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// CheckRedirect, if set, decides whether to follow each redirect hop.
	CheckRedirect CheckRedirect
}

// Client is a thin wrapper over http.Client that stamps a fixed User-Agent
// onto every outgoing request and accepts a context independent of the
// client's own timeout.
type Client struct {
	*http.Client
	userAgent string
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("httpclient: UserAgent must not be empty")
	}

	c := &http.Client{
		Timeout: cfg.Timeout,
	}
	if cfg.CheckRedirect != nil {
		check := cfg.CheckRedirect
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return check(req, via)
		}
	}

	return &Client{Client: c, userAgent: cfg.UserAgent}, nil
}

// Do executes req with ctx governing cancellation, stamping the configured
// User-Agent header first.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}
	reqWithCtx := req.Clone(ctx)
	reqWithCtx.Header.Set("User-Agent", c.userAgent)

	resp, err := c.Client.Do(reqWithCtx)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	return resp, nil
}

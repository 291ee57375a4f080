// Package fetch issues the crawler's HTTP GETs and implements the
// redirect-aware admission policy that keeps the visited set consistent
// across 3xx hops.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/nrahman/sitemapgen/internal/events"
	"github.com/nrahman/sitemapgen/internal/scope"
	"github.com/nrahman/sitemapgen/internal/siteurl"
	"github.com/nrahman/sitemapgen/internal/visitset"
	"github.com/nrahman/sitemapgen/pkg/httpclient"
)

// maxRedirectHops is the per-chain cap on redirect hops a single fetch may
// follow before the chain is abandoned as a failure.
const maxRedirectHops = 10

// maxBodyBytes bounds how much of a response body is read, guarding against
// a misbehaving server streaming an unbounded response.
const maxBodyBytes = 10 * 1024 * 1024

// Config configures a Fetcher.
type Config struct {
	Timeout               time.Duration
	UserAgent             string
	Visited               *visitset.Set
	Validator             *scope.Validator
	StripQueryAndFragment bool
	Sink                  *events.Sink
}

// Result is the outcome of a single Fetch call.
type Result struct {
	// FinalURL is the canonical URL the response actually came from, after
	// any redirects the policy chose to follow.
	FinalURL *url.URL
	// Body is the decoded response body text. Empty when Stopped is true.
	Body string
	// Stopped is true when the redirect chain halted at an
	// already-visited URL without an error (spec's "stop-no-error" case):
	// there is nothing further to extract.
	Stopped bool
}

// Fetcher performs GETs with a redirect policy wired to the shared visited
// set and scope validator.
type Fetcher struct {
	client *httpclient.Client
}

// New builds a Fetcher. Visited, Validator and UserAgent are required.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Visited == nil || cfg.Validator == nil {
		return nil, fmt.Errorf("fetch: Visited and Validator are required")
	}

	policy := &redirectPolicy{
		visited:   cfg.Visited,
		validator: cfg.Validator,
		strip:     cfg.StripQueryAndFragment,
		sink:      cfg.Sink,
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:       cfg.Timeout,
		UserAgent:     cfg.UserAgent,
		CheckRedirect: policy.check,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return &Fetcher{client: client}, nil
}

// Fetch performs a GET against u, following redirects under the fetcher's
// policy, and returns the final URL and decoded body.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*Result, error) {
	reqID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s [%s]: building request: %w", u, reqID, err)
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s [%s]: %w", u, reqID, err)
	}
	defer resp.Body.Close()

	finalURL, err := url.Parse(resp.Request.URL.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s [%s]: parsing final URL: %w", u, reqID, err)
	}
	finalURL = siteurl.Canonicalize(finalURL, false)

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		// The redirect policy returned http.ErrUseLastResponse: either the
		// target was already visited (stop-no-error) or, in principle, every
		// hop in the chain resolved this way. Either way there is no body to
		// parse.
		return &Result{FinalURL: finalURL, Stopped: true}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s [%s]: unexpected status %d", u, reqID, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxBodyBytes)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("fetch %s [%s]: reading body: %w", u, reqID, err)
	}

	return &Result{FinalURL: finalURL, Body: string(body)}, nil
}

// redirectPolicy implements httpclient.CheckRedirect per SPEC_FULL §4.4: it
// validates every intermediate URL, relocates visited-set membership on a
// permanent (301) move, and short-circuits a chain that rejoins an
// already-visited URL.
type redirectPolicy struct {
	visited   *visitset.Set
	validator *scope.Validator
	strip     bool
	sink      *events.Sink
}

func (p *redirectPolicy) check(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirectHops {
		return fmt.Errorf("too many redirects (> %d) fetching %s", maxRedirectHops, req.URL)
	}

	previous := via[len(via)-1].URL
	status := 0
	if req.Response != nil {
		status = req.Response.StatusCode
	}

	if status == http.StatusMovedPermanently {
		canonPrev := siteurl.Canonicalize(previous, p.strip)
		p.visited.Remove(canonPrev)
		p.sink.Removed(canonPrev)
	}

	attempt := siteurl.Canonicalize(req.URL, p.strip)
	if !p.validator.IsValid(attempt) {
		return fmt.Errorf("redirect from %s to out-of-scope %s", previous, req.URL)
	}

	if p.visited.TryInsert(attempt) {
		p.sink.Visited(attempt)
		return nil
	}

	// Already visited: stop the chain without an error. The body of this
	// intermediate response is never needed.
	return http.ErrUseLastResponse
}

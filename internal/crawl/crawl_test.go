package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nrahman/sitemapgen/internal/scope"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func testOptions() Options {
	return NewOptionsBuilder().
		SetUserAgent("crawl-test/1.0").
		SetTimeout(5 * time.Second).
		SetMaxConcurrentTasks(4).
		Build()
}

func analyzeKeys(t *testing.T, got map[string]*url.URL) []string {
	t.Helper()
	keys := make([]string, 0, len(got))
	for k := range got {
		keys = append(keys, k)
	}
	return keys
}

func TestAnalyzeSinglePageNoLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>no links here</body></html>`)
	}))
	defer srv.Close()

	seed := mustParse(t, srv.URL+"/")
	validator := scope.New([]*url.URL{seed})

	got := Analyze(context.Background(), []*url.URL{seed}, validator, testOptions())

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 visited url, got %v", analyzeKeys(t, got))
	}
}

func TestAnalyzeMutualLinksFetchedExactlyOnceEach(t *testing.T) {
	var aHits, bHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&aHits, 1)
		fmt.Fprint(w, `<html><body><a href="/b">b</a></body></html>`)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&bHits, 1)
		fmt.Fprint(w, `<html><body><a href="/a">a</a></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	seed := mustParse(t, srv.URL+"/a")
	validator := scope.New([]*url.URL{mustParse(t, srv.URL+"/")})

	got := Analyze(context.Background(), []*url.URL{seed}, validator, testOptions())

	if len(got) != 2 {
		t.Fatalf("expected 2 visited urls, got %v", analyzeKeys(t, got))
	}
	if atomic.LoadInt32(&aHits) != 1 || atomic.LoadInt32(&bHits) != 1 {
		t.Fatalf("expected exactly one fetch each, got a=%d b=%d", aHits, bHits)
	}
}

func TestAnalyzePermanentRelocationYieldsOnlyNewLocation(t *testing.T) {
	var newHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&newHits, 1)
		fmt.Fprint(w, `<html><body>landed</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	seed := mustParse(t, srv.URL+"/old")
	validator := scope.New([]*url.URL{mustParse(t, srv.URL+"/")})

	got := Analyze(context.Background(), []*url.URL{seed}, validator, testOptions())

	want := srv.URL + "/new"
	if _, ok := got[want]; !ok || len(got) != 1 {
		t.Fatalf("expected visited set to contain only %q, got %v", want, analyzeKeys(t, got))
	}
	if atomic.LoadInt32(&newHits) != 1 {
		t.Fatalf("expected exactly one fetch of /new, got %d", newHits)
	}
}

func TestAnalyzeOutOfScopeRedirectAbortsChain(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("out-of-scope server should never be hit")
	}))
	defer other.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/elsewhere", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	seed := mustParse(t, srv.URL+"/start")
	validator := scope.New([]*url.URL{mustParse(t, srv.URL+"/")})

	got := Analyze(context.Background(), []*url.URL{seed}, validator, testOptions())

	if len(got) != 1 {
		t.Fatalf("expected only the seed admitted, got %v", analyzeKeys(t, got))
	}
}

func TestAnalyzeDepthZeroAdmitsSeedWithoutFetching(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `<html><body><a href="/child">child</a></body></html>`)
	}))
	defer srv.Close()

	seed := mustParse(t, srv.URL+"/")
	validator := scope.New([]*url.URL{seed})

	opts := NewOptionsBuilder().
		SetUserAgent("crawl-test/1.0").
		SetTimeout(5 * time.Second).
		SetMaxConcurrentTasks(4).
		SetMaxDepth(0).
		Build()

	got := Analyze(context.Background(), []*url.URL{seed}, validator, opts)

	if len(got) != 1 {
		t.Fatalf("expected seed admitted alone, got %v", analyzeKeys(t, got))
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no fetches at max depth 0, got %d", hits)
	}
}

func TestAnalyzeQueryStrippingDedupesDistinctQueries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `<html><body><a href="/?utm_source=foo">self</a></body></html>`)
	}))
	defer srv.Close()

	seed := mustParse(t, srv.URL+"/?utm_source=bar")
	validator := scope.New([]*url.URL{mustParse(t, srv.URL+"/")})

	opts := NewOptionsBuilder().
		SetUserAgent("crawl-test/1.0").
		SetTimeout(5 * time.Second).
		SetMaxConcurrentTasks(4).
		SetStripQueryAndFragment(true).
		Build()

	got := Analyze(context.Background(), []*url.URL{seed}, validator, opts)

	want := srv.URL + "/"
	if _, ok := got[want]; !ok || len(got) != 1 {
		t.Fatalf("expected query-stripped dedup to a single url %q, got %v", want, analyzeKeys(t, got))
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected exactly one fetch once queries are stripped, got %d", hits)
	}
}

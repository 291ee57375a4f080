package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client, err := New(Config{Timeout: 10 * time.Millisecond, UserAgent: "test/1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	_, err = client.Do(context.Background(), req)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_SetsUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client, err := New(Config{UserAgent: "sitemapgen/1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if gotUA != "sitemapgen/1.0" {
		t.Errorf("expected User-Agent %q, got %q", "sitemapgen/1.0", gotUA)
	}
}

func TestClient_CheckRedirectIsConsulted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1" {
			http.Redirect(w, r, "/2", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var calls int
	client, err := New(Config{
		UserAgent: "test/1.0",
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			calls++
			return http.ErrUseLastResponse
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/1", nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if calls != 1 {
		t.Fatalf("expected CheckRedirect to be called once, got %d", calls)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected 302 StatusFound (redirect not followed), got %d", resp.StatusCode)
	}
}

func TestClient_RequiresNonNilContext(t *testing.T) {
	client, _ := New(Config{UserAgent: "test/1.0"})

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	_, err := client.Do(nil, req)
	if err == nil {
		t.Fatal("expected error for nil context")
	}
}

func TestClient_RequiresUserAgent(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error when UserAgent is empty")
	}
}

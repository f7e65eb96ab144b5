package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestFetcher returns a fetcher tuned for fast tests.
func newTestFetcher(opts ...Option) *Fetcher {
	base := []Option{
		WithBackoffInterval(time.Millisecond),
		WithTimeout(2 * time.Second),
	}
	return New(append(base, opts...)...)
}

func TestFetch_RetriesTransientStatuses(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1, 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			fmt.Fprint(w, "<html><body>third time lucky</body></html>")
		}
	}))
	defer server.Close()

	f := newTestFetcher(WithRetryAttempts(3))
	body, err := f.Fetch(context.Background(), server.URL, Direct())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != "<html><body>third time lucky</body></html>" {
		t.Errorf("unexpected body: %q", body)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestFetch_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newTestFetcher(WithRetryAttempts(3))
	_, err := f.Fetch(context.Background(), server.URL, Direct())

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
	}
	if fe.URL != server.URL {
		t.Errorf("error URL = %q, want %q", fe.URL, server.URL)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("404 must not be retried, got %d requests", got)
	}
}

func TestFetch_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := newTestFetcher(WithRetryAttempts(2))
	_, err := f.Fetch(context.Background(), server.URL, Direct())

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
	}
	if got := calls.Load(); got != 3 { // initial attempt + 2 retries
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestFetch_DefaultAndCustomHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), server.URL, Direct())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("default User-Agent not sent, got %q", gotUA)
	}

	// Caller headers win on collision and extend the default set.
	_, err = f.Fetch(context.Background(), server.URL, Direct(), WithHeaders(map[string]string{
		"User-Agent":      "toxex-test/1.0",
		"Accept-Language": "en-US,en;q=0.9",
	}))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUA != "toxex-test/1.0" {
		t.Errorf("custom User-Agent should override default, got %q", gotUA)
	}
	if gotLang != "en-US,en;q=0.9" {
		t.Errorf("custom header not sent, got %q", gotLang)
	}
}

func TestFetch_ProxyMode(t *testing.T) {
	target := "https://www.epa.gov/chemicals"

	var gotKey, gotURL string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotURL = r.URL.Query().Get("url")
		fmt.Fprint(w, "<html>proxied</html>")
	}))
	defer proxy.Close()

	f := newTestFetcher(WithProxyBaseURL(proxy.URL), WithProxyAPIKey("sk-test"))
	body, err := f.Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != "<html>proxied</html>" {
		t.Errorf("unexpected body: %q", body)
	}
	if gotKey != "sk-test" {
		t.Errorf("api_key = %q, want sk-test", gotKey)
	}
	if gotURL != target {
		t.Errorf("target url param = %q, want %q", gotURL, target)
	}
}

func TestFetch_InvalidUTF8IsFatal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte{0xff, 0xfe, 0xfd})
	}))
	defer server.Close()

	f := newTestFetcher(WithRetryAttempts(3))
	_, err := f.Fetch(context.Background(), server.URL, Direct())

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("decode failure must not be retried, got %d requests", got)
	}
}

func TestFetch_AttemptTimeoutIsRetryable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, "too late")
	}))
	defer server.Close()

	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), server.URL, Direct(),
		WithRequestTimeout(20*time.Millisecond), WithRequestRetries(1))

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
	}
	if got := calls.Load(); got != 2 { // timeout retried once
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestFetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(WithRetryAttempts(5))
	_, err := f.Fetch(ctx, server.URL, Direct())
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestFetch_BodySizeCapIsFatal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, strings.Repeat("a", 65))
	}))
	defer server.Close()

	f := newTestFetcher(WithRetryAttempts(3), WithMaxBodySize(64))
	_, err := f.Fetch(context.Background(), server.URL, Direct())

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !strings.Contains(fe.Error(), "64 bytes") {
		t.Errorf("error should name the cap: %v", fe)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("oversized body must not be retried, got %d requests", got)
	}
}

func TestFetch_BodyAtCapSucceeds(t *testing.T) {
	body := strings.Repeat("b", 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	f := newTestFetcher(WithMaxBodySize(64))
	got, err := f.Fetch(context.Background(), server.URL, Direct())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != body {
		t.Errorf("body truncated or altered: %d bytes", len(got))
	}
}

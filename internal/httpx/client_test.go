package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
)

func TestPostJSONRetriesServerError(t *testing.T) {
	var count int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if atomic.AddInt32(&count, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out map[string]any
	if err := New(2*time.Second, 1).PostJSON(context.Background(), srv.URL, []byte(`{}`), &out); err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out["ok"] != true {
		t.Fatalf("unexpected response: %#v", out)
	}
	if got := atomic.LoadInt32(&count); got != 2 {
		t.Fatalf("expected two attempts, got %d", got)
	}
}

func TestPostJSONDoesNotRetryClientError(t *testing.T) {
	var count int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(2*time.Second, 3).PostJSON(context.Background(), srv.URL, []byte(`{}`), &map[string]any{})
	if !clierr.Is(err, clierr.CodeUnavailable) {
		t.Fatalf("expected unavailable code, got %v", err)
	}
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("expected one request, got %d", got)
	}
}

func TestWithoutRetriesSendsOnce(t *testing.T) {
	var count int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(2*time.Second, 3).WithoutRetries().PostJSON(context.Background(), srv.URL, []byte(`{}`), &map[string]any{})
	if err == nil {
		t.Fatal("expected error from bad gateway")
	}
	if !clierr.Is(err, clierr.CodeUnavailable) {
		t.Fatalf("expected unavailable code, got %v", err)
	}
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
}

func TestPostJSONStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(2*time.Second, 5).PostJSON(ctx, srv.URL, []byte(`{}`), nil)
	if !clierr.Is(err, clierr.CodeUnavailable) {
		t.Fatalf("expected unavailable code, got %v", err)
	}
}

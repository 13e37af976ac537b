package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	return &Client{
		hc:         &http.Client{Timeout: 5 * time.Second},
		limiter:    NewHostLimiter(1000, 10),
		maxRetries: 2,
		baseDelay:  time.Millisecond,
	}
}

func TestGetJSONDecodesBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte(`{"name":"acme"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	if err := testClient().GetJSON(context.Background(), "test", srv.URL, nil, nil, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Name != "acme" {
		t.Fatalf("decoded name = %q", out.Name)
	}
}

func TestServerErrorFailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient().GetJSON(context.Background(), "test", srv.URL, nil, nil, nil)

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error not a *Failure: %v", err)
	}
	if f.Kind != FailHTTP || f.Status != 500 {
		t.Fatalf("failure = %+v, want http_error/500", f)
	}
	if calls.Load() != 1 {
		t.Fatalf("server hit %d times, want 1 (5xx must not retry)", calls.Load())
	}
}

func TestRateLimitedRetriesThenGivesUp(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := testClient().GetJSON(context.Background(), "test", srv.URL, nil, nil, nil)

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error not a *Failure: %v", err)
	}
	if f.Kind != FailRateLimited {
		t.Fatalf("kind = %q, want rate_limited", f.Kind)
	}
	if calls.Load() != 3 {
		t.Fatalf("server hit %d times, want 3 (initial + 2 retries)", calls.Load())
	}
}

func TestRateLimitedRecoversOnRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := testClient().GetJSON(context.Background(), "test", srv.URL, nil, nil, &out); err != nil {
		t.Fatalf("GetJSON after retry: %v", err)
	}
	if !out.OK {
		t.Fatal("retried request body not decoded")
	}
}

func TestContextDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := testClient().GetJSON(ctx, "test", srv.URL, nil, nil, nil)

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error not a *Failure: %v", err)
	}
	if f.Kind != FailTimeout {
		t.Fatalf("kind = %q, want timeout", f.Kind)
	}
}

func TestPostJSONSendsContentType(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	if err := testClient().PostJSON(context.Background(), "test", srv.URL, nil, map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
}

package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/platform/resilience"
)

func newTestClient(server *httptest.Server, retries int, breaker resilience.BreakerConfig) *Client {
	return New(Config{
		Name:           "test",
		HTTPClient:     server.Client(),
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		CircuitBreaker: breaker,
	})
}

func TestClient_GetJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "secret-key" {
			t.Errorf("missing auth header")
		}
		_, _ = w.Write([]byte(`{"matches":[{"id":7}]}`))
	}))
	defer server.Close()

	var payload struct {
		Matches []struct {
			ID int64 `json:"id"`
		} `json:"matches"`
	}
	client := newTestClient(server, 0, resilience.BreakerConfig{})
	err := client.GetJSON(context.Background(), Request{
		URL:    server.URL + "/v4/matches",
		Header: http.Header{"X-Auth-Token": []string{"secret-key"}},
		Secret: "secret-key",
	}, &payload)
	if err != nil {
		t.Fatalf("get json: %v", err)
	}
	if len(payload.Matches) != 1 || payload.Matches[0].ID != 7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	raw, err := newTestClient(server, 2, resilience.BreakerConfig{}).Get(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(raw) != "ok" || calls.Load() != 3 {
		t.Fatalf("unexpected result body=%q calls=%d", raw, calls.Load())
	}
}

func TestClient_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "not found", status: http.StatusNotFound, check: func(err error) bool { return crerr.Is(err, ErrNotFound) }},
		{name: "quota", status: http.StatusTooManyRequests, check: func(err error) bool { return crerr.Is(err, keypool.ErrQuotaExceeded) }},
		{name: "server error", status: http.StatusInternalServerError, check: func(err error) bool { return crerr.Is(err, ErrTransient) }},
		{name: "forbidden", status: http.StatusForbidden, check: func(err error) bool {
			return !crerr.Is(err, ErrTransient) && strings.Contains(err.Error(), "status=403")
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			_, err := newTestClient(server, 1, resilience.BreakerConfig{}).Get(context.Background(), Request{URL: server.URL})
			if err == nil || !tc.check(err) {
				t.Fatalf("unexpected error for status %d: %v", tc.status, err)
			}
			if tc.status != http.StatusInternalServerError && calls.Load() != 1 {
				t.Fatalf("expected no retry for status %d, got %d calls", tc.status, calls.Load())
			}
		})
	}
}

func TestClient_BreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server, 0, resilience.BreakerConfig{
		Enabled:  true,
		Failures: 2,
		Cooldown: time.Minute,
	})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.Get(ctx, Request{URL: server.URL}); !crerr.Is(err, ErrTransient) {
			t.Fatalf("attempt %d: expected transient error, got %v", i, err)
		}
	}

	_, err := client.Get(ctx, Request{URL: server.URL})
	if !crerr.Is(err, ErrUnavailable) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open breaker to skip the call, got %d calls", calls.Load())
	}
}

func TestRedact(t *testing.T) {
	t.Parallel()

	got := Redact("https://api.example.com/odds?apiKey=abc123&regions=eu token s3cr3t", "s3cr3t")
	if strings.Contains(got, "abc123") || strings.Contains(got, "s3cr3t") {
		t.Fatalf("secret leaked: %s", got)
	}
	if !strings.Contains(got, "regions=eu") {
		t.Fatalf("non-secret params must stay: %s", got)
	}
}

// Package httpfetch runs GET requests against sports-data providers with
// retries on transient failures, a per-provider circuit breaker and secret
// redaction in every error it returns.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/platform/logging"
	"github.com/riskibarqy/betstats/internal/platform/resilience"
)

const maxBodyBytes = 8 << 20

var (
	// ErrTransient marks failures worth retrying: network errors, 5xx, 408.
	ErrTransient = crerr.New("provider transient failure")
	// ErrNotFound is a 404 from the provider. Adapters treat it as "no data".
	ErrNotFound = crerr.New("provider resource not found")
	// ErrUnavailable is returned while the provider's breaker is open.
	ErrUnavailable = crerr.New("provider temporarily unavailable")
)

var secretParamRegex = regexp.MustCompile(`(?i)(api_token|apikey|api_key|key|token)=[^&\s"']+`)

type Config struct {
	Name           string
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Request is one GET. Secret is masked wherever the URL or an upstream
// error message would otherwise leak it.
type Request struct {
	URL    string
	Header http.Header
	Secret string
}

type Client struct {
	name       string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	userAgent  string
	logger     *logging.Logger
	breaker    *resilience.Breaker
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	named := logger.With("provider", cfg.Name)
	breaker := resilience.NewBreaker(cfg.Name, cfg.CircuitBreaker, func(t resilience.Transition) {
		named.Warn("provider breaker changed state", "from", string(t.From), "to", string(t.To))
	})

	return &Client{
		name:       cfg.Name,
		httpClient: httpClient,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		logger:     named,
		breaker:    breaker,
	}
}

func (c *Client) Name() string {
	return c.name
}

// GetJSON fetches req and decodes the body into target.
func (c *Client) GetJSON(ctx context.Context, req Request, target any) error {
	raw, err := c.Get(ctx, req)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", c.name, err)
	}
	return nil
}

// Get returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, req Request) ([]byte, error) {
	var raw []byte
	err := c.breaker.Do(func() error {
		var reqErr error
		raw, reqErr = c.execute(ctx, req)
		return reqErr
	}, isBreakerFailure)
	if crerr.Is(err, resilience.ErrOpen) {
		c.logger.WarnContext(ctx, "provider breaker rejected request", "state", string(c.breaker.State()))
		return nil, crerr.Wrapf(ErrUnavailable, "%s", c.name)
	}
	return raw, err
}

func (c *Client) execute(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.once(ctx, req)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, ErrTransient) || ctx.Err() != nil {
			break
		}
		if attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if !crerr.Is(lastErr, ErrNotFound) {
		c.logger.WarnContext(ctx, "provider request failed", "url", Redact(req.URL, req.Secret), "error", lastErr)
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, req Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %s", Redact(err.Error(), req.Secret))
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, crerr.Wrapf(ErrTransient, "send request: %s", Redact(err.Error(), req.Secret))
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, crerr.Wrapf(ErrTransient, "read response body: %s", Redact(err.Error(), req.Secret))
	}
	body := append([]byte(nil), buf.B...)

	switch status := resp.StatusCode; {
	case status >= 200 && status < 300:
		return body, nil
	case status == http.StatusNotFound:
		return nil, crerr.Wrapf(ErrNotFound, "status=%d", status)
	case status == http.StatusTooManyRequests:
		return nil, crerr.Wrapf(keypool.ErrQuotaExceeded, "status=%d body=%s", status, abbreviate(body, req.Secret))
	case isRetryableStatus(status):
		return nil, crerr.Wrapf(ErrTransient, "status=%d body=%s", status, abbreviate(body, req.Secret))
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviate(body, req.Secret))
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusRequestTimeout || status >= 500
}

// isBreakerFailure counts only provider-side trouble against the breaker.
func isBreakerFailure(err error) bool {
	return crerr.Is(err, ErrTransient)
}

// Redact masks secret and any key-like query parameter in value.
func Redact(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if secret != "" {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return secretParamRegex.ReplaceAllString(value, "$1=REDACTED")
}

func abbreviate(body []byte, secret string) string {
	text := Redact(string(body), secret)
	if len(text) > 300 {
		return text[:300] + "..."
	}
	return text
}

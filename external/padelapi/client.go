package padelapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/riskibarqy/puntodeoro/internal/platform/resilience"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

const (
	clientName        = "padelapi"
	defaultBaseURL    = "https://fantasy-padel-tour-api.onrender.com/api"
	defaultTimeout    = 12 * time.Second
	defaultMaxPages   = 50
	defaultRetryDelay = 500 * time.Millisecond
	maxBodyBytes      = 4 << 20
)

// errTransient marks failures worth retrying and counting against the breaker.
var errTransient = crerr.New("padelapi transient failure")

// Recorder receives one observation per HTTP exchange. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordUpstream(client, endpoint, outcome string, elapsed time.Duration)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RequestsPerSec float64
	MaxPages       int
	Logger         *logging.Logger
	Recorder       Recorder
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	maxPages   int
	limiter    *rate.Limiter
	logger     *logging.Logger
	recorder   Recorder
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group

	// bounds a shared fetch once it is detached from the caller
	flightTimeout time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := int(cfg.RequestsPerSec)
	if burst < 1 {
		burst = 1
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(cfg.MaxRetries, 0),
		retryDelay: retryDelay,
		maxPages:   maxPages,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.Named(clientName),
		recorder:   cfg.Recorder,
		breaker:    resilience.NewOptionalCircuitBreaker(clientName, cfg.CircuitBreaker),
	}
	c.flightTimeout = flightBudget(httpClient.Timeout, retryDelay, c.maxRetries)
	return c
}

// Breaker exposes the client's circuit breaker so callers can observe state changes.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// getJSON fetches fullURL and decodes the body into target.
func (c *Client) getJSON(ctx context.Context, endpoint, fullURL string, target any) error {
	raw, err := c.get(ctx, endpoint, fullURL)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(usecase.ErrUpstreamProtocol, "padelapi %s: decode payload: %v", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	var raw []byte
	err := c.breaker.Execute(func() error {
		// The shared fetch outlives any single caller, so one cancelled caller
		// does not fail the others waiting on the same URL.
		shared := c.flight.DoChan(fullURL, func() (any, error) {
			flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
			defer cancel()
			return c.executeRequest(flightCtx, endpoint, fullURL)
		})
		select {
		case <-ctx.Done():
			return crerr.Wrapf(usecase.ErrUpstreamUnreachable, "padelapi %s: %v", endpoint, ctx.Err())
		case res := <-shared:
			if res.Err != nil {
				return res.Err
			}
			raw, _ = res.Val.([]byte)
			return nil
		}
	}, isCircuitFailure)

	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "padelapi circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		c.record(endpoint, "circuit_open", 0)
		return nil, crerr.Wrapf(usecase.ErrUpstreamUnreachable, "padelapi %s: circuit open", endpoint)
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.doOnce(ctx, endpoint, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errTransient) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, crerr.Wrapf(usecase.ErrUpstreamUnreachable, "padelapi %s: %v", endpoint, ctx.Err())
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "padelapi request failed", "endpoint", endpoint, "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, crerr.Wrapf(usecase.ErrUpstreamUnreachable, "padelapi %s: rate limiter: %v", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrUpstreamProtocol, "padelapi %s: build request: %v", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, "unreachable", time.Since(started))
		return nil, crerr.Mark(
			crerr.Wrapf(usecase.ErrUpstreamUnreachable, "padelapi %s: send request: %s", endpoint, sanitizeSensitiveText(err.Error(), c.apiKey)),
			errTransient,
		)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(started)
	if readErr != nil {
		c.record(endpoint, "unreachable", elapsed)
		return nil, crerr.Mark(
			crerr.Wrapf(usecase.ErrUpstreamUnreachable, "padelapi %s: read body: %v", endpoint, readErr),
			errTransient,
		)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.record(endpoint, "ok", elapsed)
		return raw, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.record(endpoint, "rate_limited", elapsed)
		return nil, crerr.Wrapf(usecase.ErrUpstreamRateLimited, "padelapi %s: status=%d retry_after=%q", endpoint, resp.StatusCode, resp.Header.Get("Retry-After"))
	case resp.StatusCode >= http.StatusInternalServerError:
		c.record(endpoint, "server_error", elapsed)
		return nil, crerr.Mark(
			crerr.Wrapf(usecase.ErrUpstreamProtocol, "padelapi %s: status=%d body=%s", endpoint, resp.StatusCode, abbreviateBody(raw)),
			errTransient,
		)
	default:
		c.record(endpoint, "client_error", elapsed)
		return nil, crerr.Wrapf(usecase.ErrUpstreamProtocol, "padelapi %s: status=%d body=%s", endpoint, resp.StatusCode, abbreviateBody(raw))
	}
}

func (c *Client) record(endpoint, outcome string, elapsed time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordUpstream(clientName, endpoint, outcome, elapsed)
	}
}

// endpointURL joins path and query onto the base URL.
func (c *Client) endpointURL(path string, query url.Values) string {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL
}

// resolveNext turns a links.next value into an absolute URL. Relative links
// are resolved against the base URL.
func (c *Client) resolveNext(current string, next *string) (string, bool) {
	if next == nil {
		return "", false
	}
	raw := strings.TrimSpace(*next)
	if raw == "" {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

func flightBudget(timeout, retryDelay time.Duration, retries int) time.Duration {
	attempts := time.Duration(retries + 1)
	return attempts*timeout + attempts*attempts*retryDelay
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return fmt.Sprintf("%s...", text[:240])
}

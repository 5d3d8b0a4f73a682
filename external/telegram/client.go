// Package telegram talks to the Telegram Bot API over fasthttp.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/riskibarqy/puntodeoro/internal/platform/resilience"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

const (
	clientName       = "telegram"
	defaultBaseURL   = "https://api.telegram.org"
	defaultTimeout   = 10 * time.Second
	defaultSendRPS   = 25
	defaultParseMode = "Markdown"
)

var (
	// ErrRateLimited is returned on HTTP 429 from the Bot API.
	ErrRateLimited = fmt.Errorf("telegram: %w", usecase.ErrUpstreamRateLimited)
	// ErrForbidden is returned when the user blocked the bot or left the chat.
	ErrForbidden = crerr.New("telegram forbidden")

	errTransient = crerr.New("telegram transient failure")
)

type Recorder interface {
	RecordUpstream(client, endpoint, outcome string, elapsed time.Duration)
}

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	SendPerSec     float64
	ParseMode      string
	Logger         *logging.Logger
	Recorder       Recorder
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	token      string
	timeout    time.Duration
	parseMode  string
	limiter    *rate.Limiter
	logger     *logging.Logger
	recorder   Recorder
	breaker    *resilience.CircuitBreaker
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
		// No ReadTimeout: getUpdates holds the connection open for the poll
		// timeout, so every request is bounded by its own deadline instead.
		httpClient = &fasthttp.Client{
			Name:                "puntodeoro-bot",
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 90 * time.Second,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	sendRPS := cfg.SendPerSec
	if sendRPS <= 0 {
		sendRPS = defaultSendRPS
	}
	parseMode := strings.TrimSpace(cfg.ParseMode)
	if parseMode == "" {
		parseMode = defaultParseMode
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		parseMode:  parseMode,
		limiter:    rate.NewLimiter(rate.Limit(sendRPS), max(int(sendRPS), 1)),
		logger:     logger.Named(clientName),
		recorder:   cfg.Recorder,
		breaker:    resilience.NewOptionalCircuitBreaker(clientName, cfg.CircuitBreaker),
	}
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// call posts payload to a Bot API method through the send breaker and decodes
// result into target (which may be nil).
func (c *Client) call(ctx context.Context, method string, payload, target any) error {
	return c.invoke(ctx, c.breaker, method, payload, target, 0)
}

// longPoll runs outside the send breaker. extraTimeout extends the request
// deadline by the server-side poll duration.
func (c *Client) longPoll(ctx context.Context, method string, payload, target any, extraTimeout time.Duration) error {
	return c.invoke(ctx, nil, method, payload, target, extraTimeout)
}

func (c *Client) invoke(ctx context.Context, breaker *resilience.CircuitBreaker, method string, payload, target any, extraTimeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return crerr.Wrapf(usecase.ErrDependencyUnavailable, "telegram %s: %v", method, err)
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: encode payload: %w", method, err)
	}

	var result []byte
	err = breaker.Execute(func() error {
		out, err := c.doOnce(ctx, method, body, extraTimeout)
		result = out
		return err
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.record(method, "circuit_open", 0)
		return crerr.Wrapf(usecase.ErrDependencyUnavailable, "telegram %s: circuit open", method)
	}
	if err != nil {
		return err
	}

	if target == nil || len(result) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(result, target); err != nil {
		return crerr.Wrapf(usecase.ErrDependencyUnavailable, "telegram %s: decode result: %v", method, err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method string, body []byte, extraTimeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/bot" + c.token + "/" + method)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout + extraTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	started := time.Now()
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		c.record(method, "unreachable", time.Since(started))
		return nil, crerr.Mark(
			crerr.Wrapf(usecase.ErrDependencyUnavailable, "telegram %s: %s", method, c.redact(err.Error())),
			errTransient,
		)
	}
	elapsed := time.Since(started)

	var envelope apiResponse
	if err := sonic.Unmarshal(resp.Body(), &envelope); err != nil {
		c.record(method, "protocol_error", elapsed)
		return nil, crerr.Mark(
			crerr.Wrapf(usecase.ErrDependencyUnavailable, "telegram %s: status=%d decode envelope: %v", method, resp.StatusCode(), err),
			errTransient,
		)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300 && envelope.OK:
		c.record(method, "ok", elapsed)
		return envelope.Result, nil
	case status == fasthttp.StatusTooManyRequests || envelope.ErrorCode == fasthttp.StatusTooManyRequests:
		c.record(method, "rate_limited", elapsed)
		retryAfter := 0
		if envelope.Parameters != nil {
			retryAfter = envelope.Parameters.RetryAfter
		}
		return nil, crerr.Wrapf(ErrRateLimited, "telegram %s: retry_after=%ds", method, retryAfter)
	case status == fasthttp.StatusForbidden:
		c.record(method, "forbidden", elapsed)
		return nil, crerr.Wrapf(ErrForbidden, "telegram %s: %s", method, envelope.Description)
	case status >= fasthttp.StatusInternalServerError:
		c.record(method, "server_error", elapsed)
		return nil, crerr.Mark(
			crerr.Wrapf(usecase.ErrDependencyUnavailable, "telegram %s: status=%d %s", method, status, envelope.Description),
			errTransient,
		)
	default:
		c.record(method, "client_error", elapsed)
		return nil, &APIError{Method: method, Code: status, Description: envelope.Description}
	}
}

// APIError is a 4xx answer from the Bot API other than 403 and 429.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: status=%d %s", e.Method, e.Code, e.Description)
}

func (e *APIError) Unwrap() error {
	return usecase.ErrDependencyUnavailable
}

func (c *Client) record(method, outcome string, elapsed time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordUpstream(clientName, method, outcome, elapsed)
	}
}

func (c *Client) redact(value string) string {
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return value
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}

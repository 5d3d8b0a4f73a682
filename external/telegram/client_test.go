package telegram

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
	"github.com/riskibarqy/puntodeoro/internal/platform/resilience"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	return NewClient(ClientConfig{
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
		BaseURL: "http://telegram.test",
		Token:   "123:secret",
		Timeout: 2 * time.Second,
	})
}

// newTCPClient builds the client with its default fasthttp client, as the app
// does, against a loopback server.
func newTCPClient(t *testing.T, cfg ClientConfig, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := &fasthttp.Server{Handler: handler}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	cfg.BaseURL = "http://" + ln.Addr().String()
	cfg.Token = "123:secret"
	return NewClient(cfg)
}

func TestClientSendPostsMessageWithKeyboard(t *testing.T) {
	t.Parallel()

	var (
		path    string
		payload sendMessageRequest
	)
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		path = string(ctx.Path())
		_ = sonic.Unmarshal(ctx.PostBody(), &payload)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"ok":true,"result":{"message_id":77,"chat":{"id":42}}}`)
	})

	id, err := client.Send(context.Background(), 42, chat.Message{
		Text:    "hola",
		Options: [][]chat.Option{chat.Row(chat.Option{Label: "Menú", Data: "start"})},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, "/bot123:secret/sendMessage", path)
	assert.Equal(t, int64(42), payload.ChatID)
	assert.Equal(t, "hola", payload.Text)
	assert.Equal(t, defaultParseMode, payload.ParseMode)
	require.NotNil(t, payload.ReplyMarkup)
	assert.Equal(t, "start", payload.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
}

func TestClientClassifiesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: fasthttp.StatusTooManyRequests,
			body:   `{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":3}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, usecase.ErrUpstreamRateLimited)
			},
		},
		{
			name:   "blocked",
			status: fasthttp.StatusForbidden,
			body:   `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrForbidden)
			},
		},
		{
			name:   "bad request",
			status: fasthttp.StatusBadRequest,
			body:   `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, 400, apiErr.Code)
				assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
				ctx.SetStatusCode(tc.status)
				ctx.SetBodyString(tc.body)
			})
			err := client.Notifier().Send(context.Background(), 42, "hola")
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "secret")
			tc.check(t, err)
		})
	}
}

func TestClientEditIgnoresNotModified(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString(`{"ok":false,"error_code":400,"description":"Bad Request: message is not modified"}`)
	})
	require.NoError(t, client.Edit(context.Background(), 42, 7, chat.Message{Text: "igual"}))
}

func TestAckSkipsEmptyCallback(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		t.Error("no request expected")
	})
	require.NoError(t, client.Ack(context.Background(), "", ""))
}

func TestPollerDeliversEventsAndAdvancesOffset(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		offsets []int64
	)
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		var req getUpdatesRequest
		_ = sonic.Unmarshal(ctx.PostBody(), &req)
		mu.Lock()
		offsets = append(offsets, req.Offset)
		first := len(offsets) == 1
		mu.Unlock()

		if first {
			ctx.SetBodyString(`{"ok":true,"result":[
				{"update_id":10,"message":{"message_id":1,"from":{"id":42,"first_name":"Ana"},"chat":{"id":42},"text":"/seguir@PuntoBot Ana Ruiz"}},
				{"update_id":11,"message":{"message_id":2,"from":{"id":42},"chat":{"id":42},"text":"hola"}},
				{"update_id":12,"callback_query":{"id":"cb-1","from":{"id":42},"message":{"message_id":5,"chat":{"id":42}},"data":"rankings_male"}}
			]}`)
			return
		}
		time.Sleep(10 * time.Millisecond)
		ctx.SetBodyString(`{"ok":true,"result":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan chat.Event, 4)
	poller := NewPoller(client, PollerConfig{Timeout: time.Second})
	done := make(chan error, 1)
	go func() {
		done <- poller.Run(ctx, func(_ context.Context, event chat.Event) {
			events <- event
		})
	}()

	got := make([]chat.Event, 0, 2)
	for len(got) < 2 {
		select {
		case event := <-events:
			got = append(got, event)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(offsets) >= 2
	}, 3*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	byKind := map[chat.EventKind]chat.Event{}
	for _, event := range got {
		byKind[event.Kind] = event
	}
	cmd := byKind[chat.EventCommand]
	assert.Equal(t, "seguir", cmd.Command)
	assert.Equal(t, "Ana Ruiz", cmd.Args)
	assert.Equal(t, int64(42), cmd.UserID)
	opt := byKind[chat.EventOption]
	assert.Equal(t, "rankings_male", opt.Data)
	assert.Equal(t, "cb-1", opt.CallbackID)
	assert.Equal(t, int64(5), opt.MessageID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(13), offsets[1])
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	cmd, args, ok := parseCommand("/Ranking")
	assert.True(t, ok)
	assert.Equal(t, "ranking", cmd)
	assert.Empty(t, args)

	_, _, ok = parseCommand("ranking")
	assert.False(t, ok)

	_, _, ok = parseCommand("/")
	assert.False(t, ok)
}

func TestPollerLongPollOutlivesRequestTimeout(t *testing.T) {
	t.Parallel()

	client := newTCPClient(t, ClientConfig{Timeout: 300 * time.Millisecond}, func(ctx *fasthttp.RequestCtx) {
		time.Sleep(900 * time.Millisecond)
		ctx.SetBodyString(`{"ok":true,"result":[{"update_id":3,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42},"text":"/start"}}]}`)
	})

	poller := NewPoller(client, PollerConfig{Timeout: 2 * time.Second})
	updates, err := poller.poll(context.Background())
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(3), updates[0].UpdateID)
}

func TestPollFailuresDoNotOpenSendBreaker(t *testing.T) {
	t.Parallel()

	client := newTCPClient(t, ClientConfig{
		Timeout: time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, func(ctx *fasthttp.RequestCtx) {
		if strings.HasSuffix(string(ctx.Path()), "/getUpdates") {
			ctx.SetStatusCode(fasthttp.StatusBadGateway)
			ctx.SetBodyString(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`)
			return
		}
		ctx.SetBodyString(`{"ok":true,"result":{"message_id":9,"chat":{"id":42}}}`)
	})

	poller := NewPoller(client, PollerConfig{Timeout: time.Second})
	for range 5 {
		_, err := poller.poll(context.Background())
		require.Error(t, err)
	}

	assert.Equal(t, resilience.CircuitStateClosed, client.Breaker().State())
	require.NoError(t, client.Notifier().Send(context.Background(), 42, "alerta"))
}

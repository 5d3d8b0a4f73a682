package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
)

const (
	defaultPollTimeout  = 30 * time.Second
	defaultPollHandlers = 8
	pollRetryDelay      = 3 * time.Second
)

// Handler consumes one inbound event. It must not block for long.
type Handler func(ctx context.Context, event chat.Event)

type PollerConfig struct {
	Timeout     time.Duration
	MaxHandlers int
}

// Poller long-polls getUpdates and feeds events to a handler.
type Poller struct {
	client      *Client
	timeout     time.Duration
	maxHandlers int
	offset      int64
}

func NewPoller(client *Client, cfg PollerConfig) *Poller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	maxHandlers := cfg.MaxHandlers
	if maxHandlers <= 0 {
		maxHandlers = defaultPollHandlers
	}
	return &Poller{client: client, timeout: timeout, maxHandlers: maxHandlers}
}

// Run blocks until ctx is cancelled. Handlers still running are awaited
// before Run returns.
func (p *Poller) Run(ctx context.Context, handle Handler) error {
	logger := p.client.logger
	handlers := pool.New().WithMaxGoroutines(p.maxHandlers)
	defer handlers.Wait()

	logger.Info("telegram polling started", "timeout", p.timeout)
	for {
		if ctx.Err() != nil {
			logger.Info("telegram polling stopped")
			return nil
		}

		updates, err := p.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.WarnContext(ctx, "telegram getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			event, ok := eventFromUpdate(u)
			if !ok {
				continue
			}
			handlers.Go(func() {
				handle(ctx, event)
			})
		}
	}
}

func (p *Poller) poll(ctx context.Context) ([]update, error) {
	var updates []update
	err := p.client.longPoll(ctx, "getUpdates", getUpdatesRequest{
		Offset:         p.offset,
		Timeout:        int(p.timeout / time.Second),
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates, p.timeout)
	return updates, err
}

// eventFromUpdate maps an update to a chat event. Plain text that is not a
// command is dropped.
func eventFromUpdate(u update) (chat.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		event := chat.Event{
			Kind:       chat.EventOption,
			UserID:     cb.From.ID,
			FirstName:  cb.From.FirstName,
			CallbackID: cb.ID,
			Data:       strings.TrimSpace(cb.Data),
		}
		if cb.Message != nil {
			event.ChatID = cb.Message.Chat.ID
			event.MessageID = cb.Message.MessageID
		} else {
			event.ChatID = cb.From.ID
		}
		return event, true

	case u.Message != nil:
		msg := u.Message
		command, args, ok := parseCommand(msg.Text)
		if !ok {
			return chat.Event{}, false
		}
		event := chat.Event{
			Kind:      chat.EventCommand,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Command:   command,
			Args:      args,
		}
		if msg.From != nil {
			event.UserID = msg.From.ID
			event.FirstName = msg.From.FirstName
		}
		return event, true
	}
	return chat.Event{}, false
}

// parseCommand splits "/seguir@PuntoBot Ana Ruiz" into ("seguir", "Ana Ruiz").
func parseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	head = strings.ToLower(strings.TrimSpace(head))
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(args), true
}

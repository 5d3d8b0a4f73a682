// Package chatbot routes chat events to the use cases and renders replies.
package chatbot

import (
	"context"
	"errors"
	"strings"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

// Transport delivers replies to the chat platform.
type Transport interface {
	Send(ctx context.Context, chatID int64, msg chat.Message) (int64, error)
	Edit(ctx context.Context, chatID, messageID int64, msg chat.Message) error
	Ack(ctx context.Context, callbackID, text string) error
}

type Catalog interface {
	LiveMatches(ctx context.Context) ([]usecase.TournamentMatches, error)
	Calendar(ctx context.Context, limit int) ([]tournament.Tournament, error)
	LastResults(ctx context.Context) (usecase.TournamentMatches, error)
	Rankings(ctx context.Context, gender string) ([]tournament.Player, error)
}

type Follows interface {
	SearchPlayers(ctx context.Context, query string) ([]tournament.Player, error)
	Follow(ctx context.Context, userID, playerID int64) (usecase.FollowResult, tournament.Player, error)
	Unfollow(ctx context.Context, userID, playerID int64) (bool, error)
	ListFollowed(ctx context.Context, userID int64) ([]favorite.Favorite, error)
	FreeLimit() int
}

type Subscriptions interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
	Status(ctx context.Context, userID int64) (subscriber.Subscriber, bool, error)
}

// EventRecorder is satisfied by *metrics.Metrics.
type EventRecorder interface {
	RecordChatEvent(kind, outcome string)
}

type Dependencies struct {
	Transport     Transport
	Catalog       Catalog
	Follows       Follows
	Subscriptions Subscriptions
	Recorder      EventRecorder
	Logger        *logging.Logger
	CalendarLimit int
}

const (
	outcomeOK          = "ok"
	outcomeUnknown     = "unknown"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
	outcomePanic       = "panic"
)

type handlerFunc func(ctx context.Context, event chat.Event) (chat.Message, error)

// Bot dispatches events by command name or option data.
type Bot struct {
	transport     Transport
	catalog       Catalog
	follows       Follows
	subscriptions Subscriptions
	recorder      EventRecorder
	logger        *logging.Logger
	calendarLimit int

	commands       map[string]handlerFunc
	options        map[string]handlerFunc
	prefixedOption map[string]func(ctx context.Context, event chat.Event, arg string) (chat.Message, error)
}

func NewBot(deps Dependencies) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	calendarLimit := deps.CalendarLimit
	if calendarLimit <= 0 {
		calendarLimit = 10
	}

	b := &Bot{
		transport:     deps.Transport,
		catalog:       deps.Catalog,
		follows:       deps.Follows,
		subscriptions: deps.Subscriptions,
		recorder:      deps.Recorder,
		logger:        logger.Named("chatbot"),
		calendarLimit: calendarLimit,
	}
	registerCommands(b)
	registerOptions(b)
	return b
}

// Handle answers one event. It never panics and never returns an error;
// failures are turned into a user-facing message.
func (b *Bot) Handle(ctx context.Context, event chat.Event) {
	ctx, span := startSpan(ctx, "chatbot.Bot.Handle")
	defer span.End()

	outcome := outcomeOK
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.ErrorContext(ctx, "chat handler panic recovered", "panic", rec, "kind", string(event.Kind))
			outcome = outcomePanic
			b.reply(ctx, event, genericFailureMessage())
		}
		if b.recorder != nil {
			b.recorder.RecordChatEvent(string(event.Kind), outcome)
		}
	}()

	if event.Kind == chat.EventOption {
		if err := b.transport.Ack(ctx, event.CallbackID, ""); err != nil {
			b.logger.WarnContext(ctx, "ack callback failed", "callback_id", event.CallbackID, "error", err)
		}
	}

	handler, known := b.route(event)
	if !known {
		outcome = outcomeUnknown
		b.reply(ctx, event, comingSoonMessage())
		return
	}

	msg, err := handler(ctx, event)
	if err != nil {
		outcome, msg = b.failure(ctx, event, err)
	}
	b.reply(ctx, event, msg)
}

func (b *Bot) route(event chat.Event) (handlerFunc, bool) {
	switch event.Kind {
	case chat.EventCommand:
		h, ok := b.commands[strings.ToLower(event.Command)]
		return h, ok
	case chat.EventOption:
		if h, ok := b.options[event.Data]; ok {
			return h, true
		}
		for prefix, h := range b.prefixedOption {
			if arg, ok := strings.CutPrefix(event.Data, prefix); ok && arg != "" {
				return func(ctx context.Context, event chat.Event) (chat.Message, error) {
					return h(ctx, event, arg)
				}, true
			}
		}
	}
	return nil, false
}

func (b *Bot) failure(ctx context.Context, event chat.Event, err error) (string, chat.Message) {
	switch {
	case errors.Is(err, usecase.ErrUpstreamRateLimited):
		b.logger.WarnContext(ctx, "upstream rate limited", "user_id", event.UserID, "error", err)
		return outcomeRateLimited, rateLimitedMessage()
	case errors.Is(err, usecase.ErrInvalidInput):
		return outcomeInvalid, invalidInputMessage(err)
	default:
		b.logger.ErrorContext(ctx, "chat handler failed", "user_id", event.UserID, "command", event.Command, "data", event.Data, "error", err)
		return outcomeError, genericFailureMessage()
	}
}

// reply edits the message behind a tapped option, or sends a new one.
func (b *Bot) reply(ctx context.Context, event chat.Event, msg chat.Message) {
	if event.Kind == chat.EventOption && event.MessageID > 0 {
		err := b.transport.Edit(ctx, event.ChatID, event.MessageID, msg)
		if err == nil {
			return
		}
		b.logger.WarnContext(ctx, "edit message failed, sending new one", "chat_id", event.ChatID, "error", err)
	}
	if _, err := b.transport.Send(ctx, event.ChatID, msg); err != nil {
		b.logger.WarnContext(ctx, "send reply failed", "chat_id", event.ChatID, "error", err)
	}
}

package chatbot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/infrastructure/repository/memory"
	usecasemock "github.com/riskibarqy/puntodeoro/internal/mocks/usecase"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

type sentMessage struct {
	chatID    int64
	messageID int64
	msg       chat.Message
	edit      bool
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	acks    []string
	editErr error
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, msg chat.Message) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, msg: msg})
	return int64(len(f.sent)), nil
}

func (f *fakeTransport) Edit(_ context.Context, chatID, messageID int64, msg chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, messageID: messageID, msg: msg, edit: true})
	return nil
}

func (f *fakeTransport) Ack(_ context.Context, callbackID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, callbackID)
	return nil
}

func (f *fakeTransport) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) RecordChatEvent(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, kind+"/"+outcome)
}

type botFixture struct {
	bot       *Bot
	transport *fakeTransport
	provider  *usecasemock.SportsProvider
	favorites *memory.FavoriteRepository
	recorder  *outcomeRecorder
}

func newBotFixture(t *testing.T, favorites ...favorite.Favorite) botFixture {
	t.Helper()

	provider := usecasemock.NewSportsProvider(t)
	favoriteRepo := memory.NewFavoriteRepository(favorites...)
	subscriberRepo := memory.NewSubscriberRepository()
	transport := &fakeTransport{}
	recorder := &outcomeRecorder{}

	bot := NewBot(Dependencies{
		Transport: transport,
		Catalog:   usecase.NewCatalogService(provider, usecase.CatalogConfig{}, nil, nil),
		Follows: usecase.NewFollowService(usecase.FollowRepositories{
			Favorites:   favoriteRepo,
			Subscribers: subscriberRepo,
		}, provider, 3, nil),
		Subscriptions: usecase.NewSubscriptionService(subscriberRepo, nil),
		Recorder:      recorder,
	})
	return botFixture{bot: bot, transport: transport, provider: provider, favorites: favoriteRepo, recorder: recorder}
}

func commandEvent(command, args string) chat.Event {
	return chat.Event{Kind: chat.EventCommand, ChatID: 42, UserID: 42, FirstName: "Ana", Command: command, Args: args}
}

func optionEvent(data string) chat.Event {
	return chat.Event{Kind: chat.EventOption, ChatID: 42, UserID: 42, MessageID: 9, CallbackID: "cb", Data: data}
}

func TestBotStartShowsMenu(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.bot.Handle(context.Background(), commandEvent("start", ""))

	reply := f.transport.last(t)
	assert.False(t, reply.edit)
	assert.Contains(t, reply.msg.Text, "¡Hola Ana!")
	assert.Equal(t, optShowRankings, reply.msg.Options[0][0].Data)
	assert.Equal(t, []string{"command/ok"}, f.recorder.outcomes)
}

func TestBotRankingsOptionEditsMessage(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.provider.On("ListRankings", mock.Anything, tournament.GenderFemale).
		Return([]tournament.Player{{ID: 1, Name: "Ana Ruiz", Ranking: 1, Points: 15400}}, nil).
		Once()

	f.bot.Handle(context.Background(), optionEvent(optRankingsFemale))

	reply := f.transport.last(t)
	assert.True(t, reply.edit)
	assert.Equal(t, int64(9), reply.messageID)
	assert.Contains(t, reply.msg.Text, "Ranking Femenino - Top 10")
	assert.Contains(t, reply.msg.Text, "Ana Ruiz - `15400` pts")
	assert.Equal(t, []string{"cb"}, f.transport.acks)
}

func TestBotRateLimitedUpstream(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.provider.On("ListRankings", mock.Anything, tournament.GenderMale).
		Return(nil, usecase.ErrUpstreamRateLimited).
		Once()

	f.bot.Handle(context.Background(), optionEvent(optRankingsMale))

	assert.Equal(t, RateLimitedText, f.transport.last(t).msg.Text)
	assert.Equal(t, []string{"option/rate_limited"}, f.recorder.outcomes)
}

func TestBotGenericFailure(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.provider.On("ListTournaments", mock.Anything).Return(nil, usecase.ErrUpstreamUnreachable).Once()

	f.bot.Handle(context.Background(), commandEvent("calendario", ""))

	assert.Equal(t, GenericFailureText, f.transport.last(t).msg.Text)
	assert.Equal(t, []string{"command/error"}, f.recorder.outcomes)
}

func TestBotUnknownOptionIsComingSoon(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.bot.Handle(context.Background(), optionEvent("tournament_stats"))

	reply := f.transport.last(t)
	assert.Equal(t, ComingSoonText, reply.msg.Text)
	assert.Equal(t, optStart, reply.msg.Options[0][0].Data)
	assert.Equal(t, []string{"option/unknown"}, f.recorder.outcomes)
}

func TestBotFollowFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newBotFixture(t)
	f.provider.On("FindPlayers", mock.Anything, "Ana Ruiz").
		Return([]tournament.Player{{ID: 11, Name: "Ana Ruiz", Ranking: 3}}, nil).
		Once()
	f.provider.On("GetPlayer", mock.Anything, int64(11)).
		Return(tournament.Player{ID: 11, Name: "Ana Ruiz"}, nil)

	f.bot.Handle(ctx, commandEvent("seguir", "Ana Ruiz"))
	search := f.transport.last(t)
	assert.Equal(t, "⭐ Ana Ruiz (#3)", search.msg.Options[0][0].Label)
	assert.Equal(t, "follow_11", search.msg.Options[0][0].Data)

	f.bot.Handle(ctx, optionEvent("follow_11"))
	assert.Contains(t, f.transport.last(t).msg.Text, "Ahora sigues a *Ana Ruiz*")

	f.bot.Handle(ctx, optionEvent("follow_11"))
	assert.Contains(t, f.transport.last(t).msg.Text, "Ya sigues")

	items, err := f.favorites.ListByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, items, 1)

	f.bot.Handle(ctx, optionEvent("unfollow_11"))
	alerts := f.transport.last(t)
	assert.Contains(t, alerts.msg.Text, "Todavía no sigues")
	items, err = f.favorites.ListByUser(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBotSearchRejectsShortQuery(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.bot.Handle(context.Background(), commandEvent("seguir", "a"))

	reply := f.transport.last(t)
	assert.Contains(t, reply.msg.Text, "between 2 and 64")
	assert.Equal(t, []string{"command/invalid"}, f.recorder.outcomes)
}

func TestBotMyAlertsListsUnfollowOptions(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t, favorite.Favorite{UserID: 42, PlayerID: 11, PlayerName: "Ana Ruiz"})
	f.bot.Handle(context.Background(), commandEvent("alertas", ""))

	reply := f.transport.last(t)
	assert.Contains(t, reply.msg.Text, "• Ana Ruiz")
	assert.Contains(t, reply.msg.Text, "1/3")
	assert.Equal(t, "unfollow_11", reply.msg.Options[0][0].Data)
}

func TestBotFallsBackToSendWhenEditFails(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.transport.editErr = errors.New("message to edit not found")

	f.bot.Handle(context.Background(), optionEvent(optHelp))

	reply := f.transport.last(t)
	assert.False(t, reply.edit)
	assert.Contains(t, reply.msg.Text, "/seguir")
}

func TestBotRecoversFromPanic(t *testing.T) {
	t.Parallel()

	f := newBotFixture(t)
	f.bot.commands["boom"] = func(context.Context, chat.Event) (chat.Message, error) {
		panic("boom")
	}

	assert.NotPanics(t, func() {
		f.bot.Handle(context.Background(), commandEvent("boom", ""))
	})
	assert.Equal(t, GenericFailureText, f.transport.last(t).msg.Text)
	assert.Equal(t, []string{"command/panic"}, f.recorder.outcomes)
}

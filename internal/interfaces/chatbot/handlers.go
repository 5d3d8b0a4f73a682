package chatbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

const maxSearchOptions = 8

func (b *Bot) start(_ context.Context, event chat.Event) (chat.Message, error) {
	name := strings.TrimSpace(event.FirstName)
	greeting := "¡Hola! 👋"
	if name != "" {
		greeting = "¡Hola " + usecase.EscapeMarkdown(name) + "! 👋"
	}
	return chat.Message{
		Text: greeting + "\n\nBienvenido a *Punto de Oro*, tu asistente de pádel.\n" +
			"Consulta rankings, partidos en vivo y resultados, y recibe alertas de tus jugadores favoritos.\n\n" +
			"Elige una opción:",
		Options: mainMenu(),
	}, nil
}

func (b *Bot) help(_ context.Context, _ chat.Event) (chat.Message, error) {
	return chat.Message{
		Text: "❓ *Ayuda*\n\n" +
			"/start - Menú principal\n" +
			"/ranking - Rankings masculino y femenino\n" +
			"/envivo - Partidos en vivo\n" +
			"/calendario - Próximos torneos\n" +
			"/resultados - Últimos resultados\n" +
			"/seguir <nombre> - Seguir a un jugador\n" +
			"/alertas - Jugadores que sigues\n" +
			"/premium - Tu suscripción",
		Options: backToMenu(),
	}, nil
}

func (b *Bot) rankingMenu(_ context.Context, _ chat.Event) (chat.Message, error) {
	return chat.Message{
		Text: "🏆 *Rankings*\n\nElige una categoría:",
		Options: [][]chat.Option{
			chat.Row(
				chat.Option{Label: "👨 Masculino", Data: optRankingsMale},
				chat.Option{Label: "👩 Femenino", Data: optRankingsFemale},
			),
			chat.Row(menuOption()),
		},
	}, nil
}

func (b *Bot) rankings(ctx context.Context, gender string) (chat.Message, error) {
	players, err := b.catalog.Rankings(ctx, gender)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		Text: usecase.FormatRankings(gender, players),
		Options: [][]chat.Option{
			chat.Row(chat.Option{Label: "⬅️ Rankings", Data: optShowRankings}, menuOption()),
		},
	}, nil
}

func (b *Bot) liveMatches(ctx context.Context, _ chat.Event) (chat.Message, error) {
	groups, err := b.catalog.LiveMatches(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		Text: usecase.FormatLiveMatches(groups),
		Options: [][]chat.Option{
			chat.Row(chat.Option{Label: "🔄 Actualizar", Data: optLiveMatches}, menuOption()),
		},
	}, nil
}

func (b *Bot) calendar(ctx context.Context, _ chat.Event) (chat.Message, error) {
	items, err := b.catalog.Calendar(ctx, b.calendarLimit)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{Text: usecase.FormatCalendar(items), Options: backToMenu()}, nil
}

func (b *Bot) results(ctx context.Context, _ chat.Event) (chat.Message, error) {
	results, err := b.catalog.LastResults(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{Text: usecase.FormatResults(results), Options: backToMenu()}, nil
}

func (b *Bot) myAlerts(ctx context.Context, event chat.Event) (chat.Message, error) {
	favorites, err := b.follows.ListFollowed(ctx, event.UserID)
	if err != nil {
		return chat.Message{}, err
	}
	premium, err := b.subscriptions.IsPremium(ctx, event.UserID)
	if err != nil {
		return chat.Message{}, err
	}

	options := make([][]chat.Option, 0, len(favorites)+1)
	for _, f := range favorites {
		options = append(options, chat.Row(chat.Option{
			Label: "❌ Dejar de seguir a " + f.PlayerName,
			Data:  optUnfollowPrefix + strconv.FormatInt(f.PlayerID, 10),
		}))
	}
	options = append(options, chat.Row(menuOption()))

	return chat.Message{
		Text:    usecase.FormatFollowed(favorites, b.follows.FreeLimit(), premium),
		Options: options,
	}, nil
}

func (b *Bot) searchToFollow(ctx context.Context, event chat.Event) (chat.Message, error) {
	query := strings.TrimSpace(event.Args)
	if query == "" {
		return chat.Message{
			Text:    "✍️ Escribe el nombre del jugador, por ejemplo:\n/seguir Ana Ruiz",
			Options: backToMenu(),
		}, nil
	}

	players, err := b.follows.SearchPlayers(ctx, query)
	if err != nil {
		return chat.Message{}, err
	}
	if len(players) > maxSearchOptions {
		players = players[:maxSearchOptions]
	}

	options := make([][]chat.Option, 0, len(players)+1)
	for _, p := range players {
		label := "⭐ " + p.Name
		if p.Ranking > 0 {
			label += " (#" + strconv.Itoa(p.Ranking) + ")"
		}
		options = append(options, chat.Row(chat.Option{
			Label: label,
			Data:  optFollowPrefix + strconv.FormatInt(p.ID, 10),
		}))
	}
	options = append(options, chat.Row(menuOption()))
	return chat.Message{Text: usecase.FormatPlayerOptions(players), Options: options}, nil
}

func (b *Bot) follow(ctx context.Context, event chat.Event, arg string) (chat.Message, error) {
	playerID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return chat.Message{}, fmt.Errorf("%w: invalid player id %q", usecase.ErrInvalidInput, arg)
	}

	result, player, err := b.follows.Follow(ctx, event.UserID, playerID)
	if err != nil {
		return chat.Message{}, err
	}

	name := usecase.EscapeMarkdown(player.Name)
	var text string
	switch result {
	case usecase.FollowFollowed:
		text = "✅ Ahora sigues a *" + name + "*. Te avisaré cuando juegue."
	case usecase.FollowAlreadyFollowing:
		text = "ℹ️ Ya sigues a *" + name + "*."
	case usecase.FollowLimitReached:
		text = "🔒 Has alcanzado el límite de " + strconv.Itoa(b.follows.FreeLimit()) +
			" jugadores del plan gratuito.\nUsa /premium para seguir a más jugadores."
	}
	return chat.Message{
		Text: text,
		Options: [][]chat.Option{
			chat.Row(chat.Option{Label: "🔔 Mis alertas", Data: optMyAlerts}, menuOption()),
		},
	}, nil
}

func (b *Bot) unfollow(ctx context.Context, event chat.Event, arg string) (chat.Message, error) {
	playerID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return chat.Message{}, fmt.Errorf("%w: invalid player id %q", usecase.ErrInvalidInput, arg)
	}
	if _, err := b.follows.Unfollow(ctx, event.UserID, playerID); err != nil {
		return chat.Message{}, err
	}
	return b.myAlerts(ctx, event)
}

func (b *Bot) premium(ctx context.Context, event chat.Event) (chat.Message, error) {
	sub, found, err := b.subscriptions.Status(ctx, event.UserID)
	if err != nil {
		return chat.Message{}, err
	}
	if found && sub.Active() {
		return chat.Message{
			Text: "💎 *Premium activo*\n\nPlan: " + usecase.EscapeMarkdown(sub.Plan) +
				"\nDesde: " + sub.SubscribedAt.Format("02/01/2006") +
				"\n\nPuedes seguir a todos los jugadores que quieras.",
			Options: backToMenu(),
		}, nil
	}
	return chat.Message{
		Text: "💎 *Punto de Oro Premium*\n\n" +
			"Con el plan gratuito puedes seguir hasta " + strconv.Itoa(b.follows.FreeLimit()) + " jugadores.\n" +
			"Hazte premium para recibir alertas de todos tus favoritos.",
		Options: backToMenu(),
	}, nil
}

package chatbot

import (
	"strings"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

const (
	RateLimitedText    = "⏳ Demasiadas peticiones, inténtalo en unos minutos."
	GenericFailureText = "❌ Lo siento, ocurrió un error al obtener los datos. Inténtalo de nuevo más tarde."
	ComingSoonText     = "🚧 Esta función se implementará pronto."
)

func menuOption() chat.Option {
	return chat.Option{Label: "🏠 Menú", Data: optStart}
}

func backToMenu() [][]chat.Option {
	return [][]chat.Option{chat.Row(menuOption())}
}

func mainMenu() [][]chat.Option {
	return [][]chat.Option{
		chat.Row(chat.Option{Label: "🏆 Rankings", Data: optShowRankings}),
		chat.Row(
			chat.Option{Label: "🔴 En vivo", Data: optLiveMatches},
			chat.Option{Label: "📅 Calendario", Data: optCalendar},
		),
		chat.Row(
			chat.Option{Label: "🏁 Resultados", Data: optResults},
			chat.Option{Label: "🔔 Mis alertas", Data: optMyAlerts},
		),
		chat.Row(chat.Option{Label: "❓ Ayuda", Data: optHelp}),
	}
}

func rateLimitedMessage() chat.Message {
	return chat.Message{Text: RateLimitedText, Options: backToMenu()}
}

func genericFailureMessage() chat.Message {
	return chat.Message{Text: GenericFailureText, Options: backToMenu()}
}

func comingSoonMessage() chat.Message {
	return chat.Message{Text: ComingSoonText, Options: backToMenu()}
}

// invalidInputMessage shows the part of the error after the sentinel text.
func invalidInputMessage(err error) chat.Message {
	detail := err.Error()
	if _, after, ok := strings.Cut(detail, usecase.ErrInvalidInput.Error()+": "); ok {
		detail = after
	}
	return chat.Message{Text: "⚠️ " + usecase.EscapeMarkdown(detail), Options: backToMenu()}
}

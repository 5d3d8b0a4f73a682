package chatbot

import (
	"context"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
)

const (
	optStart          = "start"
	optHelp           = "help"
	optShowRankings   = "show_rankings"
	optRankingsMale   = "rankings_male"
	optRankingsFemale = "rankings_female"
	optLiveMatches    = "live_matches"
	optCalendar       = "calendar"
	optResults        = "results"
	optMyAlerts       = "my_alerts"
	optFollowPrefix   = "follow_"
	optUnfollowPrefix = "unfollow_"
)

func registerCommands(b *Bot) {
	b.commands = map[string]handlerFunc{
		"start":      b.start,
		"help":       b.help,
		"ayuda":      b.help,
		"ranking":    b.rankingMenu,
		"live":       b.liveMatches,
		"envivo":     b.liveMatches,
		"calendario": b.calendar,
		"resultados": b.results,
		"alertas":    b.myAlerts,
		"seguir":     b.searchToFollow,
		"premium":    b.premium,
	}
}

func registerOptions(b *Bot) {
	b.options = map[string]handlerFunc{
		optStart:        b.start,
		optHelp:         b.help,
		optShowRankings: b.rankingMenu,
		optRankingsMale: func(ctx context.Context, _ chat.Event) (chat.Message, error) {
			return b.rankings(ctx, tournament.GenderMale)
		},
		optRankingsFemale: func(ctx context.Context, _ chat.Event) (chat.Message, error) {
			return b.rankings(ctx, tournament.GenderFemale)
		},
		optLiveMatches: b.liveMatches,
		optCalendar:    b.calendar,
		optResults:     b.results,
		optMyAlerts:    b.myAlerts,
	}
	b.prefixedOption = map[string]func(context.Context, chat.Event, string) (chat.Message, error){
		optFollowPrefix:   b.follow,
		optUnfollowPrefix: b.unfollow,
	}
}

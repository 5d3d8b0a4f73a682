package usecase

import (
	"context"

	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
)

// SportsProvider is the upstream padel data API.
type SportsProvider interface {
	ListTournaments(ctx context.Context) ([]tournament.Tournament, error)
	ListMatches(ctx context.Context, tournamentID int64) ([]tournament.Match, error)
	FindPlayers(ctx context.Context, query string) ([]tournament.Player, error)
	GetPlayer(ctx context.Context, playerID int64) (tournament.Player, error)
	ListRankings(ctx context.Context, gender string) ([]tournament.Player, error)
}

// Notifier delivers a formatted alert to one chat user.
type Notifier interface {
	Send(ctx context.Context, recipientID int64, text string) error
}

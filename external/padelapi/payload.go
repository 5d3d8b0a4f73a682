package padelapi

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
)

type links struct {
	Next *string `json:"next"`
}

type listEnvelope[T any] struct {
	Data  []T   `json:"data"`
	Links links `json:"links"`
}

type tournamentPayload struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartDate flexString `json:"start_date"`
	EndDate   flexString `json:"end_date"`
	Location  flexString `json:"location"`
	Country   flexString `json:"country"`
}

type playerRefPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type teamsPayload struct {
	Team1 []playerRefPayload `json:"team_1"`
	Team2 []playerRefPayload `json:"team_2"`
}

type setScorePayload struct {
	Team1 flexInt `json:"team_1"`
	Team2 flexInt `json:"team_2"`
}

type matchPayload struct {
	ID           int64             `json:"id"`
	TournamentID int64             `json:"tournament_id"`
	Status       string            `json:"status"`
	Players      teamsPayload      `json:"players"`
	Score        []setScorePayload `json:"score"`
	Round        flexInt           `json:"round"`
	Winner       flexString        `json:"winner"`
	PlayedAt     flexString        `json:"played_at"`
	Duration     flexString        `json:"duration"`
	ScheduledAt  flexString        `json:"scheduled_at"`
}

type playerPayload struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Ranking     flexInt    `json:"ranking"`
	Points      flexInt    `json:"points"`
	Gender      flexString `json:"gender"`
	Nationality flexString `json:"nationality"`
}

// flexString accepts a JSON string, number or null.
type flexString string

func (s *flexString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}
	if raw[0] == '"' {
		var text string
		if err := sonic.Unmarshal(raw, &text); err != nil {
			return err
		}
		*s = flexString(text)
		return nil
	}
	*s = flexString(raw)
	return nil
}

// flexInt accepts a JSON number, a numeric string or null.
type flexInt int

func (n *flexInt) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*n = 0
		return nil
	}
	text := strings.Trim(string(raw), `"`)
	if text == "" {
		*n = 0
		return nil
	}
	if value, err := strconv.Atoi(text); err == nil {
		*n = flexInt(value)
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*n = flexInt(int(value))
	return nil
}

func (p tournamentPayload) toDomain() tournament.Tournament {
	return tournament.Tournament{
		ID:        p.ID,
		Name:      strings.TrimSpace(p.Name),
		Status:    strings.ToLower(strings.TrimSpace(p.Status)),
		StartDate: string(p.StartDate),
		EndDate:   string(p.EndDate),
		Location:  string(p.Location),
		Country:   string(p.Country),
	}
}

func (p matchPayload) toDomain(tournamentID int64) tournament.Match {
	out := tournament.Match{
		ID:           p.ID,
		TournamentID: p.TournamentID,
		Status:       strings.ToLower(strings.TrimSpace(p.Status)),
		Players: tournament.Teams{
			Team1: toPlayerRefs(p.Players.Team1),
			Team2: toPlayerRefs(p.Players.Team2),
		},
		Score:       make([]tournament.SetScore, 0, len(p.Score)),
		Round:       int(p.Round),
		Winner:      tournament.Side(strings.TrimSpace(string(p.Winner))),
		PlayedAt:    string(p.PlayedAt),
		Duration:    string(p.Duration),
		ScheduledAt: string(p.ScheduledAt),
	}
	if out.TournamentID == 0 {
		out.TournamentID = tournamentID
	}
	for _, set := range p.Score {
		out.Score = append(out.Score, tournament.SetScore{Team1: int(set.Team1), Team2: int(set.Team2)})
	}
	return out
}

func (p playerPayload) toDomain() tournament.Player {
	return tournament.Player{
		ID:          p.ID,
		Name:        strings.TrimSpace(p.Name),
		Ranking:     int(p.Ranking),
		Points:      int(p.Points),
		Gender:      string(p.Gender),
		Nationality: string(p.Nationality),
	}
}

func toPlayerRefs(items []playerRefPayload) []tournament.PlayerRef {
	out := make([]tournament.PlayerRef, 0, len(items))
	for _, item := range items {
		out = append(out, tournament.PlayerRef{ID: item.ID, Name: strings.TrimSpace(item.Name)})
	}
	return out
}

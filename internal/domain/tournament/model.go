package tournament

import (
	"strings"
	"time"
)

const (
	StatusUpcoming  = "upcoming"
	StatusScheduled = "scheduled"
	StatusCreated   = "created"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

type Tournament struct {
	ID        int64
	Name      string
	Status    string
	StartDate string
	EndDate   string
	Location  string
	Country   string
}

// Alertable reports whether matches of t can produce alerts.
func (t Tournament) Alertable() bool {
	return t.Status == StatusLive || t.Status == StatusFinished
}

// Upcoming covers every status the calendar lists as not started yet.
func (t Tournament) Upcoming() bool {
	switch t.Status {
	case StatusUpcoming, StatusScheduled, StatusCreated:
		return true
	default:
		return false
	}
}

type Side string

const (
	SideTeam1 Side = "team_1"
	SideTeam2 Side = "team_2"
)

type PlayerRef struct {
	ID   int64
	Name string
}

type Teams struct {
	Team1 []PlayerRef
	Team2 []PlayerRef
}

type SetScore struct {
	Team1 int
	Team2 int
}

type Match struct {
	ID           int64
	TournamentID int64
	Status       string
	Players      Teams
	Score        []SetScore
	Round        int
	Winner       Side
	PlayedAt     string
	Duration     string
	ScheduledAt  string
}

func (m Match) Alertable() bool {
	return m.Status == StatusLive || m.Status == StatusFinished
}

// TeamNames returns the player names of one side in upstream order.
func (m Match) TeamNames(side Side) []string {
	refs := m.Players.Team1
	if side == SideTeam2 {
		refs = m.Players.Team2
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if name := strings.TrimSpace(ref.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// PlayedTime parses PlayedAt. ok is false when the field is empty or unparseable.
func (m Match) PlayedTime() (time.Time, bool) {
	return ParseTime(m.PlayedAt)
}

type Player struct {
	ID          int64
	Name        string
	Ranking     int
	Points      int
	Gender      string
	Nationality string
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime accepts the date formats seen in upstream payloads. Zone-less
// values are read as UTC.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

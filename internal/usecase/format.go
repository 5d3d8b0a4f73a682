package usecase

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
)

// Messages use Telegram legacy Markdown: *bold*, _italic_, `code`.

const (
	NoScorePlaceholder = "Sin resultado"
	winnerPrefix       = "🏆 "
	teamSeparator      = " / "
)

var roundNames = map[int]string{
	1: "Final",
	2: "Semifinal",
	4: "Cuartos",
	8: "Octavos",
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown escapes upstream text before it is embedded in a message.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatMatchScore renders sets as "6-1 | 6-4".
func FormatMatchScore(sets []tournament.SetScore) string {
	if len(sets) == 0 {
		return NoScorePlaceholder
	}
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		parts = append(parts, strconv.Itoa(set.Team1)+"-"+strconv.Itoa(set.Team2))
	}
	return strings.Join(parts, " | ")
}

// RoundName maps the number of matches left in the draw to its Spanish name.
func RoundName(round int) string {
	if name, ok := roundNames[round]; ok {
		return name
	}
	return "Ronda " + strconv.Itoa(round)
}

// TeamLabel joins the names of one side. The winning side of a finished match
// gets a trophy prefix.
func TeamLabel(m tournament.Match, side tournament.Side) string {
	names := m.TeamNames(side)
	label := "Por definir"
	if len(names) > 0 {
		label = strings.Join(names, teamSeparator)
	}
	label = EscapeMarkdown(label)
	if m.Status == tournament.StatusFinished && m.Winner == side {
		return winnerPrefix + label
	}
	return label
}

// FormatAlert renders the message sent to a user for one alert.
func FormatAlert(a Alert) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if a.Status == tournament.StatusLive {
		_, _ = buf.WriteString("🔴 *EN VIVO*\n\n")
	} else {
		_, _ = buf.WriteString("🏁 *FINALIZADO*\n\n")
	}

	_, _ = buf.WriteString("⭐ ")
	escaped := make([]string, 0, len(a.PlayerNames))
	for _, name := range a.PlayerNames {
		escaped = append(escaped, EscapeMarkdown(name))
	}
	_, _ = buf.WriteString(strings.Join(escaped, ", "))
	_, _ = buf.WriteString("\n")

	if a.Tournament.Name != "" {
		_, _ = buf.WriteString("🏟 ")
		_, _ = buf.WriteString(EscapeMarkdown(a.Tournament.Name))
		_, _ = buf.WriteString("\n")
	}
	if a.Match.Round > 0 {
		_, _ = buf.WriteString("📍 ")
		_, _ = buf.WriteString(RoundName(a.Match.Round))
		_, _ = buf.WriteString("\n")
	}
	writeMatchBody(buf, a.Match)
	return buf.String()
}

// FormatRankings renders the top of one gender ranking.
func FormatRankings(gender string, players []tournament.Player) string {
	label := "Masculino"
	if gender == tournament.GenderFemale {
		label = "Femenino"
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("🏆 *Ranking " + label + " - Top 10* 🏆\n\n")
	if len(players) == 0 {
		_, _ = buf.WriteString("No hay datos de ranking disponibles.")
		return buf.String()
	}
	for i, p := range players {
		rank := p.Ranking
		if rank <= 0 {
			rank = i + 1
		}
		_, _ = buf.WriteString("*" + strconv.Itoa(rank) + ".* ")
		_, _ = buf.WriteString(EscapeMarkdown(p.Name))
		_, _ = buf.WriteString(" - `" + strconv.Itoa(p.Points) + "` pts\n")
	}
	return buf.String()
}

func FormatCalendar(tournaments []tournament.Tournament) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("📅 *Próximos torneos*\n\n")
	if len(tournaments) == 0 {
		_, _ = buf.WriteString("No hay torneos programados.")
		return buf.String()
	}
	for _, t := range tournaments {
		_, _ = buf.WriteString("• *" + EscapeMarkdown(t.Name) + "*\n")
		if where := joinNonEmpty(", ", t.Location, t.Country); where != "" {
			_, _ = buf.WriteString("  📍 " + EscapeMarkdown(where) + "\n")
		}
		if dates := formatDateRange(t.StartDate, t.EndDate); dates != "" {
			_, _ = buf.WriteString("  🗓 " + dates + "\n")
		}
	}
	return buf.String()
}

func FormatLiveMatches(groups []TournamentMatches) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("🔴 *Partidos en vivo*\n")
	if len(groups) == 0 {
		_, _ = buf.WriteString("\nNo hay partidos en vivo en este momento.")
		return buf.String()
	}
	for _, group := range groups {
		_, _ = buf.WriteString("\n🏟 *" + EscapeMarkdown(group.Tournament.Name) + "*\n")
		for _, m := range group.Matches {
			writeMatchLine(buf, m)
		}
	}
	return buf.String()
}

func FormatResults(results TournamentMatches) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if results.Tournament.ID == 0 {
		_, _ = buf.WriteString("🏁 No hay resultados recientes.")
		return buf.String()
	}
	_, _ = buf.WriteString("🏁 *Resultados: " + EscapeMarkdown(results.Tournament.Name) + "*\n")
	if len(results.Matches) == 0 {
		_, _ = buf.WriteString("\nSin partidos finalizados.")
		return buf.String()
	}
	for _, m := range results.Matches {
		writeMatchLine(buf, m)
	}
	return buf.String()
}

// FormatFollowed lists the players a user follows.
func FormatFollowed(favorites []favorite.Favorite, limit int, premium bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("🔔 *Mis alertas*\n\n")
	if len(favorites) == 0 {
		_, _ = buf.WriteString("Todavía no sigues a ningún jugador.\nUsa /seguir <nombre> para añadir uno.")
		return buf.String()
	}
	for _, f := range favorites {
		_, _ = buf.WriteString("• " + EscapeMarkdown(f.PlayerName) + "\n")
	}
	if !premium && limit > 0 {
		_, _ = buf.WriteString("\n" + strconv.Itoa(len(favorites)) + "/" + strconv.Itoa(limit) + " jugadores en el plan gratuito.")
	}
	return buf.String()
}

func FormatPlayerOptions(players []tournament.Player) string {
	if len(players) == 0 {
		return "🔍 No encontré jugadores con ese nombre."
	}
	return "🔍 Elige el jugador que quieres seguir:"
}

func writeMatchBody(buf *bytebufferpool.ByteBuffer, m tournament.Match) {
	_, _ = buf.WriteString("\n")
	_, _ = buf.WriteString(TeamLabel(m, tournament.SideTeam1))
	_, _ = buf.WriteString("\n  vs\n")
	_, _ = buf.WriteString(TeamLabel(m, tournament.SideTeam2))
	_, _ = buf.WriteString("\n\n📊 `")
	_, _ = buf.WriteString(FormatMatchScore(m.Score))
	_, _ = buf.WriteString("`")
	if m.Status == tournament.StatusFinished && m.Duration != "" {
		_, _ = buf.WriteString("\n⏱ ")
		_, _ = buf.WriteString(EscapeMarkdown(m.Duration))
	}
}

func writeMatchLine(buf *bytebufferpool.ByteBuffer, m tournament.Match) {
	_, _ = buf.WriteString("• ")
	if m.Round > 0 {
		_, _ = buf.WriteString("_" + RoundName(m.Round) + "_: ")
	}
	_, _ = buf.WriteString(TeamLabel(m, tournament.SideTeam1))
	_, _ = buf.WriteString(" vs ")
	_, _ = buf.WriteString(TeamLabel(m, tournament.SideTeam2))
	_, _ = buf.WriteString(" `")
	_, _ = buf.WriteString(FormatMatchScore(m.Score))
	_, _ = buf.WriteString("`\n")
}

func formatDateRange(start, end string) string {
	s, okStart := tournament.ParseTime(start)
	e, okEnd := tournament.ParseTime(end)
	switch {
	case okStart && okEnd && !s.Equal(e):
		return s.Format("02/01/2006") + " - " + e.Format("02/01/2006")
	case okStart:
		return s.Format("02/01/2006")
	case okEnd:
		return e.Format("02/01/2006")
	default:
		return ""
	}
}

func joinNonEmpty(sep string, values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

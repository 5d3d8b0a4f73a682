package tournament

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeName makes display names comparable: NFC, case folded, inner
// whitespace collapsed. Accents are kept, so "Ruiz" and "Ruíz" stay distinct.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return folder.String(norm.NFC.String(name))
}

// NameSet is the set of normalized player names on court in a match.
type NameSet map[string]struct{}

func MatchNameSet(m Match) NameSet {
	set := make(NameSet, len(m.Players.Team1)+len(m.Players.Team2))
	for _, side := range []Side{SideTeam1, SideTeam2} {
		for _, name := range m.TeamNames(side) {
			set[NormalizeName(name)] = struct{}{}
		}
	}
	return set
}

func (s NameSet) Contains(name string) bool {
	_, ok := s[NormalizeName(name)]
	return ok
}

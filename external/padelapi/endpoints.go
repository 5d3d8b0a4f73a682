package padelapi

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

// ListTournaments returns every tournament across all pages, in page order.
func (c *Client) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	items, err := fetchAllPages[tournamentPayload](ctx, c, "tournaments", c.endpointURL("/tournaments", nil))
	if err != nil {
		return nil, err
	}
	out := make([]tournament.Tournament, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) ListMatches(ctx context.Context, tournamentID int64) ([]tournament.Match, error) {
	path := "/tournaments/" + strconv.FormatInt(tournamentID, 10) + "/matches"
	items, err := fetchAllPages[matchPayload](ctx, c, "tournament_matches", c.endpointURL(path, nil))
	if err != nil {
		return nil, err
	}
	out := make([]tournament.Match, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain(tournamentID))
	}
	return out, nil
}

// FindPlayers searches by name. When the full query finds nobody, the first
// and last words are searched as well and merged by player id.
func (c *Client) FindPlayers(ctx context.Context, query string) ([]tournament.Player, error) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return nil, crerr.Wrap(usecase.ErrInvalidInput, "padelapi players: empty query")
	}

	exact, err := c.searchPlayers(ctx, query)
	if err != nil || len(exact) > 0 {
		return exact, err
	}

	var (
		out     []tournament.Player
		seen    = make(map[int64]struct{})
		lastErr error
	)
	for _, fragment := range fragmentQueries(query) {
		found, err := c.searchPlayers(ctx, fragment)
		if err != nil {
			lastErr = err
			c.logger.WarnContext(ctx, "padelapi fragment search failed", "fragment", fragment, "error", err)
			continue
		}
		for _, player := range found {
			if _, dup := seen[player.ID]; dup {
				continue
			}
			seen[player.ID] = struct{}{}
			out = append(out, player)
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (c *Client) GetPlayer(ctx context.Context, playerID int64) (tournament.Player, error) {
	var payload playerPayload
	fullURL := c.endpointURL("/players/"+strconv.FormatInt(playerID, 10), nil)
	if err := c.getJSON(ctx, "player", fullURL, &payload); err != nil {
		return tournament.Player{}, err
	}
	if payload.ID == 0 {
		return tournament.Player{}, crerr.Wrapf(usecase.ErrNotFound, "padelapi player %d", playerID)
	}
	return payload.toDomain(), nil
}

// ListRankings returns players of one gender in upstream ranking order. The
// endpoint answers with either a bare array or a data envelope.
func (c *Client) ListRankings(ctx context.Context, gender string) ([]tournament.Player, error) {
	gender = strings.ToLower(strings.TrimSpace(gender))
	if gender != tournament.GenderMale && gender != tournament.GenderFemale {
		return nil, crerr.Wrapf(usecase.ErrInvalidInput, "padelapi rankings: unknown gender %q", gender)
	}

	raw, err := c.get(ctx, "rankings", c.endpointURL("/players/"+gender, nil))
	if err != nil {
		return nil, err
	}

	var items []playerPayload
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = sonic.Unmarshal(trimmed, &items)
	} else {
		var envelope listEnvelope[playerPayload]
		err = sonic.Unmarshal(trimmed, &envelope)
		items = envelope.Data
	}
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrUpstreamProtocol, "padelapi rankings: decode payload: %v", err)
	}

	out := make([]tournament.Player, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) searchPlayers(ctx context.Context, name string) ([]tournament.Player, error) {
	items, err := fetchAllPages[playerPayload](ctx, c, "players", c.endpointURL("/players", url.Values{"name": {name}}))
	if err != nil {
		return nil, err
	}
	out := make([]tournament.Player, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out, nil
}

// fetchAllPages follows links.next until it is absent, a URL repeats or the
// page cap is reached.
func fetchAllPages[T any](ctx context.Context, c *Client, endpoint, firstURL string) ([]T, error) {
	var (
		out     []T
		nextURL = firstURL
		seen    = make(map[string]struct{})
	)
	for page := 0; nextURL != ""; page++ {
		if page >= c.maxPages {
			c.logger.WarnContext(ctx, "padelapi pagination cap reached", "endpoint", endpoint, "pages", page)
			break
		}
		if _, dup := seen[nextURL]; dup {
			c.logger.WarnContext(ctx, "padelapi pagination cycle detected", "endpoint", endpoint, "url", nextURL)
			break
		}
		seen[nextURL] = struct{}{}

		var envelope listEnvelope[T]
		if err := c.getJSON(ctx, endpoint, nextURL, &envelope); err != nil {
			return nil, err
		}
		out = append(out, envelope.Data...)

		next, ok := c.resolveNext(nextURL, envelope.Links.Next)
		if !ok {
			break
		}
		nextURL = next
	}
	return out, nil
}

func fragmentQueries(query string) []string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2)
	for _, token := range []string{tokens[0], tokens[len(tokens)-1]} {
		if token == query || (len(out) > 0 && out[0] == token) {
			continue
		}
		out = append(out, token)
	}
	return out
}

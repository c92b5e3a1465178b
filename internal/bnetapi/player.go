package bnetapi

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MinSearchLength is the shortest name the server will search for.
const MinSearchLength = 4

// SearchResult is one hit of a name search on the primary ladder. Hits
// carry the same fields as ladder rows.
type SearchResult = LadderEntry

// Account is one of a player's toons.
type Account struct {
	GatewayID int    `json:"gateway_id"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
}

// Profile holds profile fields outside the ladder row.
type Profile struct {
	CountryCode string `json:"country_code"`
}

// Stats are a player's ladder totals.
type Stats struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Disconnects int `json:"disconnects"`
}

// PlayerRank is a player's standing on the primary ladder.
type PlayerRank struct {
	Letter string `json:"letter,omitempty"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// Player is everything known about one ladder player.
type Player struct {
	ID            string     `json:"id"`
	AccountName   string     `json:"account_name"`
	Name          string     `json:"name"`
	Updated       time.Time  `json:"updated"`
	GatewayID     int        `json:"gateway_id"`
	AuroraID      int64      `json:"aurora_id"`
	AccountNumber int64      `json:"account_number"`
	Profile       Profile    `json:"profile"`
	Accounts      []Account  `json:"accounts"`
	Matches       []Match    `json:"matches"`
	Stats         Stats      `json:"stats"`
	Rank          PlayerRank `json:"rank"`
	Race          *Race      `json:"race"`
}

type profileToon struct {
	Toon      string `json:"toon"`
	GatewayID int    `json:"gateway_id"`
	GUID      int64  `json:"guid"`
}

type profileResponse struct {
	AuroraID    int64         `json:"aurora_id"`
	CountryCode string        `json:"country_code"`
	Toons       []profileToon `json:"toons"`
	GameResults []gameResult  `json:"game_results"`
}

// CleanBattleTag drops the #1234 suffix of a battletag.
func CleanBattleTag(tag string) string {
	name, _, _ := strings.Cut(tag, "#")
	return strings.TrimSpace(name)
}

func searchTerm(term string) (string, error) {
	term = CleanBattleTag(term)
	if utf8.RuneCountInString(term) < MinSearchLength {
		return "", ErrSearchTooShort
	}
	return term, nil
}

// SearchPlayers runs a name search on the primary ladder.
func (c *Client) SearchPlayers(ctx context.Context, term string) ([]SearchResult, error) {
	term, err := searchTerm(term)
	if err != nil {
		return nil, err
	}
	ladder, err := c.PrimaryLadder(ctx)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("leaderboard-name-search/%d/%s", ladder.ID, term)
	var results []SearchResult
	if err := c.getJSON(ctx, c.URL(path, nil, 1), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// PlayerByID looks a player up by name or battletag and assembles their
// ladder row, profile and match history.
func (c *Client) PlayerByID(ctx context.Context, id string) (*Player, error) {
	hits, err := c.SearchPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 || hits[0].Rank < 1 {
		return nil, &PlayerNotFoundError{Query: id}
	}

	standings, err := c.LadderStandings(ctx, hits[0].Rank-1, 1)
	if err != nil {
		return nil, err
	}
	if len(standings.Entries) == 0 {
		return nil, &PlayerNotFoundError{Query: id}
	}
	row := standings.Entries[0]

	rank, err := RankForBucket(row.Bucket)
	if err != nil {
		return nil, err
	}
	race, err := RaceForFeature(row.FeatureStat)
	if err != nil {
		return nil, err
	}

	profile, err := c.profile(ctx, CleanBattleTag(id), row.GatewayID)
	if err != nil {
		return nil, err
	}
	idx, err := c.Leaderboards(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(profile.GameResults))
	for _, g := range profile.GameResults {
		matches = append(matches, reshapeGame(g, idx))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Match.Date.After(matches[j].Match.Date)
	})

	p := &Player{
		ID:          id,
		AccountName: row.Battletag,
		Name:        row.Toon,
		Updated:     standings.Updated,
		GatewayID:   row.GatewayID,
		AuroraID:    profile.AuroraID,
		Profile:     Profile{CountryCode: profile.CountryCode},
		Accounts:    make([]Account, 0, len(profile.Toons)),
		Matches:     matches,
		Stats: Stats{
			Wins:        row.Wins,
			Losses:      row.Losses,
			Disconnects: row.Disconnects,
		},
		Rank: PlayerRank{
			Letter: rank.Letter,
			Points: row.Points,
			Rank:   row.Rank,
		},
		Race: race,
	}
	for _, t := range profile.Toons {
		p.Accounts = append(p.Accounts, Account{GatewayID: t.GatewayID, ID: t.GUID, Name: t.Toon})
		if t.Toon == row.Toon && t.GatewayID == row.GatewayID {
			p.AccountNumber = t.GUID
		}
	}
	return p, nil
}

func (c *Client) profile(ctx context.Context, toon string, gatewayID int) (*profileResponse, error) {
	path := fmt.Sprintf("aurora-profile-by-toon/%s/%d", toon, gatewayID)
	q := url.Values{"request_flags": {"scr_profile"}}
	var resp profileResponse
	if err := c.getJSON(ctx, c.URL(path, q, 2), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

package bnetapi

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Gamemode is an entry of the leaderboard index's gamemodes map.
type Gamemode struct {
	Name string `json:"name"`
}

// Gateway is a Battle.net region.
type Gateway struct {
	Name       string `json:"name"`
	Region     string `json:"region"`
	IsOfficial bool   `json:"is_official"`
}

// Leaderboard describes one ladder of one season.
type Leaderboard struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	GamemodeID     int    `json:"gamemode_id"`
	GatewayID      int    `json:"gateway_id"`
	SeasonID       int    `json:"season_id"`
	ProgramID      string `json:"program_id"`
	LastUpdateTime int64  `json:"last_update_time"`
	NextUpdateTime int64  `json:"next_update_time"`
}

// LastUpdate returns when the ladder was last recomputed.
func (l Leaderboard) LastUpdate() time.Time {
	return time.Unix(l.LastUpdateTime, 0).UTC()
}

// LeaderboardIndex is the body of the leaderboard resource. Maps are keyed
// by decimal id.
type LeaderboardIndex struct {
	Gamemodes    map[string]Gamemode    `json:"gamemodes"`
	Gateways     map[string]Gateway     `json:"gateways"`
	Leaderboards map[string]Leaderboard `json:"leaderboards"`
}

// PrimaryLadder returns the global 1v1 leaderboard of the latest season.
func (idx *LeaderboardIndex) PrimaryLadder() (Leaderboard, error) {
	mode := -1
	for id, gm := range idx.Gamemodes {
		if gm.Name != "1v1" {
			continue
		}
		n, err := strconv.Atoi(id)
		if err != nil {
			return Leaderboard{}, fmt.Errorf("gamemode id %q: %w", id, err)
		}
		mode = n
		break
	}
	if mode < 0 {
		return Leaderboard{}, ErrNoPrimaryLadder
	}

	var boards []Leaderboard
	for _, b := range idx.Leaderboards {
		if b.GamemodeID == mode && b.Name == "Global" {
			boards = append(boards, b)
		}
	}
	if len(boards) == 0 {
		return Leaderboard{}, ErrNoPrimaryLadder
	}
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].SeasonID != boards[j].SeasonID {
			return boards[i].SeasonID > boards[j].SeasonID
		}
		return boards[i].ID > boards[j].ID
	})
	return boards[0], nil
}

// GatewayInfo is a gateway with its id attached.
type GatewayInfo struct {
	ID   int    `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Gateway resolves a gateway id. Unknown ids come back with only the id set.
func (idx *LeaderboardIndex) Gateway(id int) GatewayInfo {
	gw, ok := idx.Gateways[strconv.Itoa(id)]
	if !ok {
		return GatewayInfo{ID: id}
	}
	return GatewayInfo{ID: id, Code: gw.Region, Name: gw.Name}
}

// LadderEntry is one row of a leaderboard.
type LadderEntry struct {
	Rank        int    `json:"rank" mapstructure:"rank"`
	LastRank    int    `json:"last_rank" mapstructure:"last_rank"`
	GatewayID   int    `json:"gateway_id" mapstructure:"gateway_id"`
	Points      int    `json:"points" mapstructure:"points"`
	Wins        int    `json:"wins" mapstructure:"wins"`
	Losses      int    `json:"losses" mapstructure:"losses"`
	Disconnects int    `json:"disconnects" mapstructure:"disconnects"`
	Toon        string `json:"toon" mapstructure:"toon"`
	Battletag   string `json:"battletag" mapstructure:"battletag"`
	Avatar      string `json:"avatar" mapstructure:"avatar"`
	FeatureStat string `json:"feature_stat" mapstructure:"feature_stat"`
	Bucket      int    `json:"bucket" mapstructure:"bucket"`
}

// Standings is a page of the primary ladder.
type Standings struct {
	Updated time.Time     `json:"updated"`
	Entries []LadderEntry `json:"data"`
}

// zippedTable is how the server sends tabular data: column names once, then
// rows of bare values.
type zippedTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// zip pairs every row value with its column name. Values past the last
// column are dropped.
func (t zippedTable) zip() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for n, v := range row {
			if n >= len(t.Columns) {
				break
			}
			m[t.Columns[n]] = v
		}
		out = append(out, m)
	}
	return out
}

func decodeLadderEntries(t zippedTable) ([]LadderEntry, error) {
	entries := make([]LadderEntry, 0, len(t.Rows))
	for i, row := range t.zip() {
		var e LadderEntry
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &e,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(row); err != nil {
			return nil, fmt.Errorf("ladder row %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Leaderboards returns the leaderboard index, fetching it on first use.
func (c *Client) Leaderboards(ctx context.Context) (*LeaderboardIndex, error) {
	if err := c.ensureLeaderboardData(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index, nil
}

// PrimaryLadder returns the leaderboard player lookups run against.
func (c *Client) PrimaryLadder(ctx context.Context) (Leaderboard, error) {
	if err := c.ensureLeaderboardData(ctx); err != nil {
		return Leaderboard{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ladder, nil
}

func (c *Client) ensureLeaderboardData(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index != nil {
		return nil
	}

	var idx LeaderboardIndex
	if err := c.getJSON(ctx, c.URL("leaderboard", nil, 1), &idx); err != nil {
		return err
	}
	ladder, err := idx.PrimaryLadder()
	if err != nil {
		return err
	}
	c.index = &idx
	c.ladder = ladder
	c.log.WithField("ladder_id", ladder.ID).Debug("primary ladder")
	return nil
}

// LadderStandings returns length rows of the primary ladder starting at
// offset (0 is rank 1).
func (c *Client) LadderStandings(ctx context.Context, offset, length int) (*Standings, error) {
	ladder, err := c.PrimaryLadder(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))
	var table zippedTable
	if err := c.getJSON(ctx, c.URL("leaderboard/"+strconv.Itoa(ladder.ID), q, 1), &table); err != nil {
		return nil, err
	}
	entries, err := decodeLadderEntries(table)
	if err != nil {
		return nil, err
	}
	return &Standings{Updated: ladder.LastUpdate(), Entries: entries}, nil
}

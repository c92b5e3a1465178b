package bnetapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexInt accepts a JSON number or a quoted number.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// flexString accepts a JSON string or a bare number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	*s = flexString(b)
	return nil
}

type gameResult struct {
	Attributes struct {
		MapName string `json:"mapName"`
	} `json:"attributes"`
	ClientVersion string       `json:"client_version"`
	CreateTime    flexInt      `json:"create_time"`
	GameID        flexString   `json:"game_id"`
	GatewayID     int          `json:"gateway_id"`
	MatchGUID     string       `json:"match_guid"`
	Players       []gamePlayer `json:"players"`
}

type gamePlayer struct {
	Toon      string         `json:"toon"`
	GatewayID int            `json:"gateway_id"`
	Result    string         `json:"result"`
	Stats     map[string]any `json:"stats"`
}

// MapInfo is the map a match was played on.
type MapInfo struct {
	Name    string `json:"name"`
	NameRaw string `json:"name_raw"`
}

// MatchInfo identifies a match.
type MatchInfo struct {
	Date         time.Time `json:"date"`
	ID           string    `json:"id"`
	LadderGUID   string    `json:"ladder_guid,omitempty"`
	IsLadderGame bool      `json:"is_ladder_game"`
}

// MatchPlayer is one participant of a match.
type MatchPlayer struct {
	Name              string `json:"name"`
	Result            string `json:"result"`
	IsRequestedPlayer bool   `json:"is_requested_player"`
}

// Match is a game from a player's history.
type Match struct {
	Map           MapInfo       `json:"map"`
	Match         MatchInfo     `json:"match"`
	Result        string        `json:"result"`
	Gateway       GatewayInfo   `json:"gateway"`
	Players       []MatchPlayer `json:"players"`
	ClientVersion string        `json:"client_version"`
}

// StripColorCodes removes the control bytes StarCraft uses to colour map
// names and trims the result.
func StripColorCodes(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s))
}

// reshapeGame turns a raw game result into a Match. Slots without a toon
// (observers, empty slots) are dropped; the requested player is the one the
// server attached stats to.
func reshapeGame(g gameResult, idx *LeaderboardIndex) Match {
	players := make([]MatchPlayer, 0, len(g.Players))
	result := ""
	for _, p := range g.Players {
		if p.Toon == "" {
			continue
		}
		mp := MatchPlayer{
			Name:              p.Toon,
			Result:            p.Result,
			IsRequestedPlayer: len(p.Stats) > 0,
		}
		if mp.IsRequestedPlayer && result == "" {
			result = p.Result
		}
		players = append(players, mp)
	}

	return Match{
		Map: MapInfo{
			Name:    StripColorCodes(g.Attributes.MapName),
			NameRaw: g.Attributes.MapName,
		},
		Match: MatchInfo{
			Date:         time.Unix(int64(g.CreateTime), 0).UTC(),
			ID:           string(g.GameID),
			LadderGUID:   g.MatchGUID,
			IsLadderGame: g.MatchGUID != "",
		},
		Result:        result,
		Gateway:       idx.Gateway(g.GatewayID),
		Players:       players,
		ClientVersion: g.ClientVersion,
	}
}

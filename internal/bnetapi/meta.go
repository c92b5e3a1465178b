package bnetapi

import "fmt"

// Rank is a ladder rank letter.
type Rank struct {
	Letter string `json:"letter"`
}

// Race is a playable race.
type Race struct {
	Letter string `json:"letter"`
	Name   string `json:"name"`
}

// rankLetters is indexed by ladder bucket.
var rankLetters = [...]string{"U", "F", "E", "D", "C", "B", "A", "S"}

var races = map[string]Race{
	"zerg":    {Letter: "Z", Name: "Zerg"},
	"terran":  {Letter: "T", Name: "Terran"},
	"protoss": {Letter: "P", Name: "Protoss"},
}

// RankForBucket maps a ladder bucket (0 unranked through 7 S) to its rank.
func RankForBucket(bucket int) (*Rank, error) {
	if bucket < 0 || bucket >= len(rankLetters) {
		return nil, fmt.Errorf("invalid rank bucket %d", bucket)
	}
	return &Rank{Letter: rankLetters[bucket]}, nil
}

// RaceForFeature maps a ladder row's feature_stat to a race. An empty value
// means the race is unknown and yields nil.
func RaceForFeature(feature string) (*Race, error) {
	if feature == "" {
		return nil, nil
	}
	race, ok := races[feature]
	if !ok {
		return nil, fmt.Errorf("invalid race %q", feature)
	}
	return &race, nil
}

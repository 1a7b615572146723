// Package progression scores a collection and maps the score onto a named rank ladder.
package progression

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
)

//go:embed ranks.yaml
var defaultRanks []byte

// Rank is one named band of the ladder, covering scores in [MinScore, NextScore).
type Rank struct {
	Name     string
	MinScore float64
	// NextScore is the MinScore of the following rank, or +Inf for the top rank.
	NextScore float64
}

// IsTop reports whether r is the highest rank.
func (r Rank) IsTop() bool {
	return math.IsInf(r.NextScore, 1)
}

// Ladder is an ordered, immutable list of ranks.
type Ladder struct {
	ranks []Rank
}

type rankFile struct {
	Ranks []struct {
		Name     string  `yaml:"name"`
		MinScore float64 `yaml:"min_score"`
	} `yaml:"ranks"`
}

// ParseLadder decodes a YAML rank ladder.
//
// Precondition: ranks are listed lowest first, the first starts at 0, scores strictly increase.
// Postcondition: returns a Ladder whose bands tile [0, +Inf).
func ParseLadder(data []byte) (*Ladder, error) {
	var f rankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rank ladder: %w", err)
	}
	if len(f.Ranks) == 0 {
		return nil, errors.New("rank ladder is empty")
	}
	if f.Ranks[0].MinScore != 0 {
		return nil, fmt.Errorf("first rank %q must start at 0, got %v", f.Ranks[0].Name, f.Ranks[0].MinScore)
	}
	ranks := make([]Rank, len(f.Ranks))
	for i, r := range f.Ranks {
		if r.Name == "" {
			return nil, fmt.Errorf("rank %d: name must not be empty", i)
		}
		if i > 0 && r.MinScore <= f.Ranks[i-1].MinScore {
			return nil, fmt.Errorf("rank %q: min_score %v must exceed %v", r.Name, r.MinScore, f.Ranks[i-1].MinScore)
		}
		next := math.Inf(1)
		if i+1 < len(f.Ranks) {
			next = f.Ranks[i+1].MinScore
		}
		ranks[i] = Rank{Name: r.Name, MinScore: r.MinScore, NextScore: next}
	}
	return &Ladder{ranks: ranks}, nil
}

// LoadLadder reads a ladder from a YAML file.
func LoadLadder(path string) (*Ladder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rank ladder: %w", err)
	}
	return ParseLadder(data)
}

// DefaultLadder returns the built-in ladder, Rookie through Champion.
func DefaultLadder() *Ladder {
	l, err := ParseLadder(defaultRanks)
	if err != nil {
		panic(fmt.Sprintf("progression: embedded ladder invalid: %v", err))
	}
	return l
}

// Ranks returns a copy of the ladder, lowest first.
func (l *Ladder) Ranks() []Rank {
	return append([]Rank(nil), l.ranks...)
}

// RankFor returns the rank whose band contains score. Negative scores map to the lowest rank.
func (l *Ladder) RankFor(score float64) Rank {
	for i := len(l.ranks) - 1; i > 0; i-- {
		if score >= l.ranks[i].MinScore {
			return l.ranks[i]
		}
	}
	return l.ranks[0]
}

// ProgressFraction returns how far score has advanced through rank's band.
//
// Postcondition: 0 <= result <= 1; result is 1 for the top rank.
func ProgressFraction(score float64, rank Rank) float64 {
	if rank.IsTop() {
		return 1
	}
	f := (score - rank.MinScore) / (rank.NextScore - rank.MinScore)
	return math.Min(math.Max(f, 0), 1)
}

// CollectionScore sums the resell value of every creature in list.
//
// Postcondition: an empty list scores 0.
func CollectionScore(list []creature.Creature) float64 {
	var total int
	for _, c := range list {
		total += creature.ResellValue(c)
	}
	return float64(total)
}

// Standing is a collection's position on the ladder.
type Standing struct {
	Score    float64
	Rank     Rank
	Progress float64
}

// StandingFor scores list and places it on l.
func (l *Ladder) StandingFor(list []creature.Creature) Standing {
	score := CollectionScore(list)
	rank := l.RankFor(score)
	return Standing{Score: score, Rank: rank, Progress: ProgressFraction(score, rank)}
}

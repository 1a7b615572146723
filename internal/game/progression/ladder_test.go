package progression_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/progression"
)

func TestDefaultLadder(t *testing.T) {
	ranks := progression.DefaultLadder().Ranks()
	require.Len(t, ranks, 6)
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Rookie", "Collector", "Ace Trainer", "Gym Leader", "Elite Four", "Champion"}, names)
	assert.Equal(t, 500.0, ranks[0].NextScore)
	assert.True(t, ranks[5].IsTop())
	assert.True(t, math.IsInf(ranks[5].NextScore, 1))
}

func TestEmptyCollection(t *testing.T) {
	l := progression.DefaultLadder()
	s := l.StandingFor(nil)
	assert.Zero(t, s.Score)
	assert.Equal(t, "Rookie", s.Rank.Name)
	assert.Zero(t, s.Progress)
}

func TestRankFor_Boundaries(t *testing.T) {
	l := progression.DefaultLadder()
	cases := map[float64]string{
		-5:    "Rookie",
		499:   "Rookie",
		500:   "Collector",
		1999:  "Collector",
		2000:  "Ace Trainer",
		5000:  "Gym Leader",
		14999: "Gym Leader",
		15000: "Elite Four",
		40000: "Champion",
		1e9:   "Champion",
	}
	for score, want := range cases {
		assert.Equal(t, want, l.RankFor(score).Name, "score %v", score)
	}
}

func TestProgressFraction(t *testing.T) {
	l := progression.DefaultLadder()
	collector := l.RankFor(500)
	assert.Equal(t, 0.0, progression.ProgressFraction(500, collector))
	assert.InDelta(t, 0.5, progression.ProgressFraction(1250, collector), 1e-9)
	assert.Equal(t, 1.0, progression.ProgressFraction(9999, collector), "clamped")
	assert.Equal(t, 0.0, progression.ProgressFraction(0, collector), "clamped")
	assert.Equal(t, 1.0, progression.ProgressFraction(40000, l.RankFor(40000)))
}

func TestCollectionScore(t *testing.T) {
	list := []creature.Creature{
		{Rarity: creature.Common},
		{Rarity: creature.Rare, Shiny: true},
		{Rarity: creature.Legendary},
	}
	assert.Equal(t, 1110.0, progression.CollectionScore(list))
	s := progression.DefaultLadder().StandingFor(list)
	assert.Equal(t, "Collector", s.Rank.Name)
	assert.InDelta(t, 610.0/1500.0, s.Progress, 1e-9)
}

func TestParseLadder_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":      "ranks: []\n",
		"not zero":   "ranks:\n  - name: A\n    min_score: 10\n",
		"unnamed":    "ranks:\n  - name: A\n    min_score: 0\n  - min_score: 5\n",
		"not rising": "ranks:\n  - name: A\n    min_score: 0\n  - name: B\n    min_score: 0\n",
		"bad yaml":   "ranks: {",
	}
	for name, doc := range cases {
		_, err := progression.ParseLadder([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadLadder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranks:\n  - name: Novice\n    min_score: 0\n  - name: Master\n    min_score: 100\n"), 0644))
	l, err := progression.LoadLadder(path)
	require.NoError(t, err)
	assert.Equal(t, "Master", l.RankFor(100).Name)

	_, err = progression.LoadLadder(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestProgressFraction_InUnitInterval(t *testing.T) {
	l := progression.DefaultLadder()
	rapid.Check(t, func(t *rapid.T) {
		score := rapid.Float64Range(-1000, 100000).Draw(t, "score")
		rank := l.RankFor(score)
		p := progression.ProgressFraction(score, rank)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("progress %v out of [0,1] for score %v", p, score)
		}
		if score >= 0 && (score < rank.MinScore || score >= rank.NextScore) {
			t.Fatalf("score %v outside band of %s", score, rank.Name)
		}
	})
}

package creature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
)

func TestClassifyScore_Thresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  creature.Rarity
	}{
		{0, creature.Common},
		{350.0, creature.Common},
		{350.01, creature.Rare},
		{600.0, creature.Rare},
		{600.01, creature.Epic},
		{800.0, creature.Epic},
		{800.01, creature.Legendary},
		{5000, creature.Legendary},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, creature.ClassifyScore(tc.score), "score %v", tc.score)
	}
}

func TestScore_ExactMultiplier(t *testing.T) {
	stats := creature.Stats{HP: 50, Attack: 60, Defense: 60, Speed: 60}
	// 230 + 100*1.2 == 350 exactly, which stays Common.
	assert.Equal(t, 350.0, creature.Score(stats, 100, []string{"normal"}))
	assert.Equal(t, creature.Common, creature.Classify(stats, 100, []string{"normal"}))

	stats.Speed++
	assert.Equal(t, creature.Rare, creature.Classify(stats, 100, []string{"normal"}))
}

func TestTypeBonus_TakesMaximum(t *testing.T) {
	assert.Equal(t, 40.0, creature.TypeBonus([]string{"fire", "dragon"}))
	assert.Equal(t, 25.0, creature.TypeBonus([]string{"ghost", "poison"}))
	assert.Equal(t, 15.0, creature.TypeBonus([]string{"electric"}))
	assert.Equal(t, 0.0, creature.TypeBonus([]string{"normal", "bug"}))
	assert.Equal(t, 0.0, creature.TypeBonus(nil))
}

func TestClassify_Pikachu(t *testing.T) {
	stats := creature.Stats{HP: 35, Attack: 55, Defense: 40, Speed: 90}
	// 220 + 134.4 + 15
	assert.InDelta(t, 369.4, creature.Score(stats, 112, []string{"electric"}), 1e-9)
	assert.Equal(t, creature.Rare, creature.Classify(stats, 112, []string{"electric"}))
}

func TestRarity_Ordering(t *testing.T) {
	all := creature.AllRarities()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Ordinal(), all[i].Ordinal())
		assert.True(t, all[i].AtLeast(all[i-1]))
		assert.False(t, all[i-1].AtLeast(all[i]))
	}
	assert.Equal(t, -1, creature.Rarity("MYTHIC").Ordinal())
	assert.False(t, creature.Rarity("").Valid())
}

func TestParseRarity(t *testing.T) {
	r, err := creature.ParseRarity("EPIC")
	require.NoError(t, err)
	assert.Equal(t, creature.Epic, r)

	_, err = creature.ParseRarity("epic")
	assert.Error(t, err)
}

func genStats(t *rapid.T) creature.Stats {
	return creature.Stats{
		HP:      rapid.IntRange(0, 255).Draw(t, "hp"),
		Attack:  rapid.IntRange(0, 255).Draw(t, "attack"),
		Defense: rapid.IntRange(0, 255).Draw(t, "defense"),
		Speed:   rapid.IntRange(0, 255).Draw(t, "speed"),
	}
}

var typePool = []string{"normal", "fire", "water", "grass", "electric", "ice", "ghost", "psychic", "steel", "fairy", "dragon", "bug"}

func TestProperty_Classify_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stats := genStats(t)
		exp := rapid.IntRange(0, 400).Draw(t, "exp")
		types := rapid.SliceOfN(rapid.SampledFrom(typePool), 1, 2).Draw(t, "types")
		a := creature.Classify(stats, exp, types)
		b := creature.Classify(stats, exp, types)
		if a != b {
			t.Fatalf("classify not deterministic: %s vs %s", a, b)
		}
	})
}

func TestProperty_Classify_MonotonicInStatsAndExperience(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stats := genStats(t)
		exp := rapid.IntRange(0, 400).Draw(t, "exp")
		types := rapid.SliceOfN(rapid.SampledFrom(typePool), 1, 2).Draw(t, "types")
		base := creature.Classify(stats, exp, types)

		bumped := stats
		switch rapid.IntRange(0, 3).Draw(t, "stat") {
		case 0:
			bumped.HP += rapid.IntRange(1, 100).Draw(t, "delta")
		case 1:
			bumped.Attack += rapid.IntRange(1, 100).Draw(t, "delta")
		case 2:
			bumped.Defense += rapid.IntRange(1, 100).Draw(t, "delta")
		default:
			bumped.Speed += rapid.IntRange(1, 100).Draw(t, "delta")
		}
		if creature.Classify(bumped, exp, types).Ordinal() < base.Ordinal() {
			t.Fatalf("raising a stat lowered rarity")
		}
		moreExp := exp + rapid.IntRange(1, 200).Draw(t, "exp_delta")
		if creature.Classify(stats, moreExp, types).Ordinal() < base.Ordinal() {
			t.Fatalf("raising experience lowered rarity")
		}
		withDragon := append([]string{"dragon"}, types[:1]...)
		if creature.Classify(stats, exp, withDragon).Ordinal() < creature.Classify(stats, exp, types[:1]).Ordinal() {
			t.Fatalf("adding the top-bonus type lowered rarity")
		}
	})
}

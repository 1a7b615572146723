package fusion

import "github.com/cory-johannsen/pokegen/internal/game/creature"

// Tier is one row of the fusion table: three Input creatures fuse into one Output.
type Tier struct {
	Input  creature.Rarity
	Output creature.Rarity
}

// Tiers returns the fusion table in ascending order. Legendary has no outgoing tier.
func Tiers() []Tier {
	return []Tier{
		{Input: creature.Common, Output: creature.Rare},
		{Input: creature.Rare, Output: creature.Epic},
		{Input: creature.Epic, Output: creature.Legendary},
	}
}

// NextTier returns the output rarity for inputs of rarity r.
func NextTier(r creature.Rarity) (creature.Rarity, bool) {
	for _, t := range Tiers() {
		if t.Input == r {
			return t.Output, true
		}
	}
	return "", false
}

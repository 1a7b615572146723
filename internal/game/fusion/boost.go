package fusion

import "github.com/cory-johannsen/pokegen/internal/game/creature"

// Boost lifts a candidate that missed the guaranteed rarity: hp and attack each gain
// amount, rarity is overwritten with min without reclassification, and the id is replaced.
//
// Precondition: newID differs from every owned id.
// Postcondition: c is not modified.
func Boost(c creature.Creature, min creature.Rarity, amount int, newID string) creature.Creature {
	out := c.Clone()
	out.Stats.HP += amount
	out.Stats.Attack += amount
	out.Rarity = min
	out.ID = newID
	return out
}

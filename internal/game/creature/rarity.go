package creature

import "fmt"

// Rarity is the ordinal tier of a creature.
type Rarity string

const (
	Common    Rarity = "COMMON"
	Rare      Rarity = "RARE"
	Epic      Rarity = "EPIC"
	Legendary Rarity = "LEGENDARY"
)

// AllRarities returns every tier from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{Common, Rare, Epic, Legendary}
}

// Ordinal returns the position of r in the tier ordering, or -1 for an unknown value.
//
// Postcondition: Common < Rare < Epic < Legendary.
func (r Rarity) Ordinal() int {
	switch r {
	case Common:
		return 0
	case Rare:
		return 1
	case Epic:
		return 2
	case Legendary:
		return 3
	default:
		return -1
	}
}

// Valid reports whether r is one of the four defined tiers.
func (r Rarity) Valid() bool {
	return r.Ordinal() >= 0
}

// AtLeast reports whether r ranks at or above min.
//
// Precondition: r and min are valid tiers.
func (r Rarity) AtLeast(min Rarity) bool {
	return r.Ordinal() >= min.Ordinal()
}

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case Common:
		return "Common"
	case Rare:
		return "Rare"
	case Epic:
		return "Epic"
	case Legendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// ParseRarity converts a stored or user-supplied tier name into a Rarity.
//
// Postcondition: Returns a valid Rarity or a non-nil error.
func ParseRarity(s string) (Rarity, error) {
	r := Rarity(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rarity %q", s)
	}
	return r, nil
}

// Score thresholds. A score must strictly exceed a threshold to reach its tier.
const (
	LegendaryThreshold = 800.0
	EpicThreshold      = 600.0
	RareThreshold      = 350.0
)

// DefaultBaseExperience is used when the provider omits base experience.
const DefaultBaseExperience = 100

var typeBonuses = map[string]float64{
	"dragon":   40,
	"ghost":    25,
	"psychic":  25,
	"steel":    25,
	"fairy":    25,
	"fire":     15,
	"ice":      15,
	"electric": 15,
}

// TypeBonus returns the highest per-type bonus among types. Unlisted types contribute 0.
//
// Postcondition: result >= 0.
func TypeBonus(types []string) float64 {
	var best float64
	for _, t := range types {
		if b := typeBonuses[t]; b > best {
			best = b
		}
	}
	return best
}

// Score computes the rarity score of a creature from its stats, base experience and types.
//
// Precondition: baseExperience >= 0.
// Postcondition: result == stats.Total() + baseExperience*1.2 + TypeBonus(types).
func Score(stats Stats, baseExperience int, types []string) float64 {
	// exp*6/5 keeps the 1.2 multiplier exact for integer experience.
	exp := float64(baseExperience*6) / 5
	return float64(stats.Total()) + exp + TypeBonus(types)
}

// ClassifyScore maps a rarity score to its tier.
//
// Postcondition: >800 Legendary, >600 Epic, >350 Rare, otherwise Common.
func ClassifyScore(score float64) Rarity {
	switch {
	case score > LegendaryThreshold:
		return Legendary
	case score > EpicThreshold:
		return Epic
	case score > RareThreshold:
		return Rare
	default:
		return Common
	}
}

// Classify maps stats, base experience and types to a rarity tier.
//
// Precondition: baseExperience >= 0.
// Postcondition: deterministic; equal to ClassifyScore(Score(stats, baseExperience, types)).
func Classify(stats Stats, baseExperience int, types []string) Rarity {
	return ClassifyScore(Score(stats, baseExperience, types))
}

package inventory

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
)

// FilterAll is the rarity filter that keeps every creature.
const FilterAll = "ALL"

// SortKey names a collection ordering.
type SortKey string

const (
	SortNewest         SortKey = "newest"
	SortOldest         SortKey = "oldest"
	SortPokedexAsc     SortKey = "pokedexIdAsc"
	SortPokedexDesc    SortKey = "pokedexIdDesc"
	SortRarityDesc     SortKey = "rarityDesc"
	SortRarityAsc      SortKey = "rarityAsc"
	SortPrimaryTypeAsc SortKey = "primaryTypeAsc"
)

// SortKeys returns every supported key.
func SortKeys() []SortKey {
	return []SortKey{
		SortNewest, SortOldest, SortPokedexAsc, SortPokedexDesc,
		SortRarityDesc, SortRarityAsc, SortPrimaryTypeAsc,
	}
}

// ParseSortKey validates s as a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if !slices.Contains(SortKeys(), k) {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// FilterByRarity returns the creatures of list whose rarity equals filter, preserving order.
// FilterAll returns a copy of list.
func FilterByRarity(list []creature.Creature, filter string) []creature.Creature {
	if filter == FilterAll {
		return slices.Clone(list)
	}
	out := make([]creature.Creature, 0, len(list))
	for _, c := range list {
		if string(c.Rarity) == filter {
			out = append(out, c)
		}
	}
	return out
}

// SortBy returns a sorted copy of list, which is assumed to be in collection order
// (newest first). Equal elements keep their collection order.
//
// Rarity orderings compare resell value, so a shiny creature sorts with the tier its
// doubled value reaches.
func SortBy(list []creature.Creature, key SortKey) []creature.Creature {
	out := slices.Clone(list)
	switch key {
	case SortOldest:
		slices.Reverse(out)
	case SortPokedexAsc:
		slices.SortStableFunc(out, func(a, b creature.Creature) int { return cmp.Compare(a.SpeciesID, b.SpeciesID) })
	case SortPokedexDesc:
		slices.SortStableFunc(out, func(a, b creature.Creature) int { return cmp.Compare(b.SpeciesID, a.SpeciesID) })
	case SortRarityDesc:
		slices.SortStableFunc(out, func(a, b creature.Creature) int {
			return cmp.Compare(creature.ResellValue(b), creature.ResellValue(a))
		})
	case SortRarityAsc:
		slices.SortStableFunc(out, func(a, b creature.Creature) int {
			return cmp.Compare(creature.ResellValue(a), creature.ResellValue(b))
		})
	case SortPrimaryTypeAsc:
		slices.SortStableFunc(out, func(a, b creature.Creature) int { return cmp.Compare(a.PrimaryType(), b.PrimaryType()) })
	}
	return out
}

// Siblings returns the owned creatures of one species, in collection order.
func Siblings(list []creature.Creature, speciesID int) []creature.Creature {
	var out []creature.Creature
	for _, c := range list {
		if c.SpeciesID == speciesID {
			out = append(out, c)
		}
	}
	return out
}

// CountByRarity tallies list per tier.
func CountByRarity(list []creature.Creature) map[creature.Rarity]int {
	counts := make(map[creature.Rarity]int, len(creature.AllRarities()))
	for _, c := range list {
		counts[c.Rarity]++
	}
	return counts
}

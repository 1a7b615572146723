package acquisition

import (
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/pokeapi"
)

// ErrMalformedRecord is returned when a provider record lacks a required field.
var ErrMalformedRecord = errors.New("malformed provider record")

// Fallback creature identity, served whenever the provider fails.
const (
	FallbackSpeciesID = 25
	FallbackName      = "pikachu"
	FallbackImage     = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/25.png"
)

// FromPokemon maps a provider record onto a creature without id or timestamp.
// It fails closed: a record missing its name, types or stat list is rejected rather
// than mapped to zero values. Individual named stats that are absent count as 0.
//
// Precondition: requestedID is the catalog id the record was fetched for.
// Postcondition: On success the result has 1-2 types, non-negative stats and a rarity
// computed by creature.Classify; otherwise the error wraps ErrMalformedRecord.
func FromPokemon(p pokeapi.Pokemon, requestedID int, shiny bool) (creature.Creature, error) {
	if p.Name == "" {
		return creature.Creature{}, fmt.Errorf("%w: missing name", ErrMalformedRecord)
	}
	types := p.TypeNames()
	if len(types) == 0 || len(types) > creature.MaxTypes {
		return creature.Creature{}, fmt.Errorf("%w: %s has %d types", ErrMalformedRecord, p.Name, len(types))
	}
	for _, t := range types {
		if t == "" {
			return creature.Creature{}, fmt.Errorf("%w: %s has an unnamed type", ErrMalformedRecord, p.Name)
		}
	}
	if len(p.Stats) == 0 {
		return creature.Creature{}, fmt.Errorf("%w: %s has no stats", ErrMalformedRecord, p.Name)
	}

	stats := creature.Stats{
		HP:      statOrZero(p, "hp"),
		Attack:  statOrZero(p, "attack"),
		Defense: statOrZero(p, "defense"),
		Speed:   statOrZero(p, "speed"),
	}
	exp := creature.DefaultBaseExperience
	if p.BaseExperience != nil && *p.BaseExperience >= 0 {
		exp = *p.BaseExperience
	}

	image := p.StandardImage()
	if shiny {
		image = p.ShinyImage()
	}

	speciesID := p.ID
	if speciesID < 1 {
		speciesID = requestedID
	}

	return creature.Creature{
		SpeciesID: speciesID,
		Name:      p.Name,
		Image:     image,
		Types:     types,
		Stats:     stats,
		Rarity:    creature.Classify(stats, exp, types),
		Shiny:     shiny,
	}, nil
}

func statOrZero(p pokeapi.Pokemon, name string) int {
	v, ok := p.BaseStat(name)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// Fallback returns the fixed low-tier creature served when the provider fails.
//
// Postcondition: result is a non-shiny Rare Pikachu carrying id and obtainedAt.
func Fallback(id string, obtainedAt time.Time) creature.Creature {
	return creature.Creature{
		ID:         id,
		SpeciesID:  FallbackSpeciesID,
		Name:       FallbackName,
		Image:      FallbackImage,
		Types:      []string{"electric"},
		Stats:      creature.Stats{HP: 35, Attack: 55, Defense: 40, Speed: 90},
		Rarity:     creature.Rare,
		ObtainedAt: obtainedAt,
	}
}

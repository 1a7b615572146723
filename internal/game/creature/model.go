// Package creature defines the collectible creature record together with the
// rarity classifier and resell economy that price it.
package creature

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap/zapcore"
)

// MaxTypes is the largest number of element types a creature carries.
const MaxTypes = 2

// Stats holds the four base stats used for scoring.
type Stats struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// Total returns hp+attack+defense+speed.
func (s Stats) Total() int {
	return s.HP + s.Attack + s.Defense + s.Speed
}

// Creature is one owned collectible.
//
// Invariant: ID is unique within an inventory and never changes for the life of the record.
type Creature struct {
	ID          string    `json:"id"`
	SpeciesID   int       `json:"pokedexId"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Types       []string  `json:"types"`
	Stats       Stats     `json:"stats"`
	Rarity      Rarity    `json:"rarity"`
	Shiny       bool      `json:"isShiny"`
	Personality string    `json:"personality,omitempty"`
	ObtainedAt  time.Time `json:"obtainedAt"`
}

// PrimaryType returns the first element type, or "" when none is set.
func (c Creature) PrimaryType() string {
	if len(c.Types) == 0 {
		return ""
	}
	return c.Types[0]
}

// Clone returns a deep copy of c.
//
// Postcondition: mutating the returned Types slice does not affect c.
func (c Creature) Clone() Creature {
	c.Types = slices.Clone(c.Types)
	return c
}

// Validate checks the structural invariants of a stored creature record.
//
// Postcondition: Returns nil iff ID and Name are non-empty, SpeciesID >= 1, 1-2 types are
// present, no stat is negative, and Rarity is a known tier.
func (c Creature) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.SpeciesID < 1 {
		errs = append(errs, fmt.Errorf("species id must be >= 1, got %d", c.SpeciesID))
	}
	if len(c.Types) == 0 || len(c.Types) > MaxTypes {
		errs = append(errs, fmt.Errorf("must have 1-%d types, got %d", MaxTypes, len(c.Types)))
	}
	if c.Stats.HP < 0 || c.Stats.Attack < 0 || c.Stats.Defense < 0 || c.Stats.Speed < 0 {
		errs = append(errs, errors.New("stats must not be negative"))
	}
	if !c.Rarity.Valid() {
		errs = append(errs, fmt.Errorf("unknown rarity %q", c.Rarity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("creature %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (c Creature) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", c.ID)
	enc.AddInt("species_id", c.SpeciesID)
	enc.AddString("name", c.Name)
	enc.AddString("rarity", string(c.Rarity))
	enc.AddBool("shiny", c.Shiny)
	return nil
}

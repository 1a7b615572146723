package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
)

// ErrCorrupt marks a slot whose contents cannot be decoded.
var ErrCorrupt = errors.New("storage: corrupt slot")

// State is the decoded contents of both slots.
type State struct {
	Credits    int
	Collection []creature.Creature
}

// EncodeCollection renders list as the InventorySlot value.
func EncodeCollection(list []creature.Creature) (string, error) {
	if list == nil {
		list = []creature.Creature{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding collection: %w", err)
	}
	return string(b), nil
}

// DecodeCollection parses an InventorySlot value.
//
// Postcondition: returns ErrCorrupt unless every record is structurally valid and ids are unique.
func DecodeCollection(raw string) ([]creature.Creature, error) {
	var list []creature.Creature
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, InventorySlot, err)
	}
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, InventorySlot, err)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %q", ErrCorrupt, InventorySlot, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return list, nil
}

// EncodeCredits renders n as the CreditsSlot value.
func EncodeCredits(n int) string {
	return strconv.Itoa(n)
}

// DecodeCredits parses a CreditsSlot value.
//
// Postcondition: returns ErrCorrupt unless raw is a non-negative decimal integer.
func DecodeCredits(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, CreditsSlot, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s: negative balance %d", ErrCorrupt, CreditsSlot, n)
	}
	return n, nil
}

// Load reads both slots. A missing slot takes its default; a corrupt slot is logged and
// takes its default.
//
// Postcondition: returns an error only when the backend itself fails.
func Load(ctx context.Context, slots Slots, defaultCredits int, logger *zap.Logger) (State, error) {
	st := State{Credits: defaultCredits, Collection: []creature.Creature{}}

	raw, ok, err := slots.Get(ctx, InventorySlot)
	if err != nil {
		return State{}, fmt.Errorf("loading %s: %w", InventorySlot, err)
	}
	if ok {
		list, err := DecodeCollection(raw)
		if err != nil {
			logger.Warn("discarding stored collection", zap.Error(err))
		} else {
			st.Collection = list
		}
	}

	raw, ok, err = slots.Get(ctx, CreditsSlot)
	if err != nil {
		return State{}, fmt.Errorf("loading %s: %w", CreditsSlot, err)
	}
	if ok {
		n, err := DecodeCredits(raw)
		if err != nil {
			logger.Warn("resetting stored credits", zap.Error(err), zap.Int("credits", defaultCredits))
		} else {
			st.Credits = n
		}
	}

	logger.Info("inventory loaded",
		zap.Int("credits", st.Credits),
		zap.Int("creatures", len(st.Collection)),
	)
	return st, nil
}

// Write stores snap into both slots.
func Write(ctx context.Context, slots Slots, snap inventory.Snapshot) error {
	coll, err := EncodeCollection(snap.Collection)
	if err != nil {
		return err
	}
	if err := slots.Put(ctx, InventorySlot, coll); err != nil {
		return fmt.Errorf("writing %s: %w", InventorySlot, err)
	}
	if err := slots.Put(ctx, CreditsSlot, EncodeCredits(snap.Credits)); err != nil {
		return fmt.Errorf("writing %s: %w", CreditsSlot, err)
	}
	return nil
}

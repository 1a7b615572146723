// Package inventory holds the player's credit balance and owned creature collection.
//
// Every mutation funnels through a Store method that applies one combined transition under
// the store lock, bumps the snapshot version, and notifies subscribers.
package inventory

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
)

// DefaultCredits is the starting balance of a fresh inventory.
const DefaultCredits = 2000

var (
	// ErrDuplicateID is returned when an added creature collides with an owned id.
	ErrDuplicateID = errors.New("inventory: duplicate creature id")
	// ErrNotFound is returned when a referenced creature is not in the collection.
	ErrNotFound = errors.New("inventory: creature not found")
	// ErrPersonalitySet is returned when a creature already carries a personality.
	ErrPersonalitySet = errors.New("inventory: personality already set")
	// ErrNegativeAmount is returned for negative credit adjustments.
	ErrNegativeAmount = errors.New("inventory: amount must not be negative")
)

// Snapshot is a point-in-time copy of the store state.
type Snapshot struct {
	// Version increases by one with every effective change.
	Version    uint64
	Credits    int
	Collection []creature.Creature
}

// Listener receives a snapshot after each effective change. Listeners run on the
// mutating goroutine after the lock is released, so delivery order across goroutines
// is only guaranteed through Version.
type Listener func(Snapshot)

// Store is the owned inventory state. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	credits    int
	collection []creature.Creature
	version    uint64

	listenerMu sync.RWMutex
	listeners  []Listener
}

// New creates a Store holding credits and collection (newest first).
//
// Precondition: credits >= 0; collection ids are unique.
// Postcondition: the store owns a copy of collection.
func New(credits int, collection []creature.Creature) (*Store, error) {
	if credits < 0 {
		return nil, fmt.Errorf("initial credits %d: %w", credits, ErrNegativeAmount)
	}
	seen := make(map[string]struct{}, len(collection))
	for _, c := range collection {
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("initial collection id %q: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = struct{}{}
	}
	return &Store{credits: credits, collection: cloneAll(collection)}, nil
}

// NewDefault creates an empty Store with DefaultCredits.
func NewDefault() *Store {
	return &Store{credits: DefaultCredits}
}

// Subscribe registers fn to receive a snapshot after every effective change.
//
// Postcondition: the returned func removes the subscription; calling it again is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			defer s.listenerMu.Unlock()
			s.listeners[idx] = nil
		})
	}
}

// mutate runs fn under the lock. fn reports whether it changed state; only effective
// changes bump the version and notify listeners.
func (s *Store) mutate(fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.listenerMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenerMu.RUnlock()
	for _, l := range listeners {
		if l != nil {
			l(snap)
		}
	}
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Version: s.version, Credits: s.credits, Collection: cloneAll(s.collection)}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.collection, func(c creature.Creature) bool { return c.ID == id })
}

// AddCreatures prepends list to the collection, keeping list order at the front.
//
// Precondition: ids in list are unique and not already owned.
// Postcondition: on error the collection is unchanged.
func (s *Store) AddCreatures(list []creature.Creature) error {
	return s.mutate(func() (bool, error) {
		if len(list) == 0 {
			return false, nil
		}
		if err := s.checkFreeLocked(list, nil); err != nil {
			return false, err
		}
		s.collection = append(cloneAll(list), s.collection...)
		return true, nil
	})
}

// checkFreeLocked verifies that list ids are unique and not owned, ignoring ids in removing.
func (s *Store) checkFreeLocked(list []creature.Creature, removing map[string]struct{}) error {
	owned := make(map[string]struct{}, len(s.collection)+len(list))
	for _, c := range s.collection {
		if _, gone := removing[c.ID]; !gone {
			owned[c.ID] = struct{}{}
		}
	}
	for _, c := range list {
		if _, dup := owned[c.ID]; dup {
			return fmt.Errorf("adding %q: %w", c.ID, ErrDuplicateID)
		}
		owned[c.ID] = struct{}{}
	}
	return nil
}

// RemoveByIDs removes every creature whose id is in ids and returns how many were removed.
// Unknown ids are ignored.
func (s *Store) RemoveByIDs(ids []string) int {
	var removed int
	_ = s.mutate(func() (bool, error) {
		set := toSet(ids)
		before := len(s.collection)
		s.collection = slices.DeleteFunc(s.collection, func(c creature.Creature) bool {
			_, hit := set[c.ID]
			return hit
		})
		removed = before - len(s.collection)
		return removed > 0, nil
	})
	return removed
}

// UpdateByID replaces the creature with id by patch(current).
//
// Postcondition: returns false and changes nothing when id is absent; the stored
// creature keeps id and position regardless of what patch returns.
func (s *Store) UpdateByID(id string, patch func(creature.Creature) creature.Creature) bool {
	var found bool
	_ = s.mutate(func() (bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, nil
		}
		found = true
		next := patch(s.collection[i].Clone())
		next.ID = id
		s.collection[i] = next
		return true, nil
	})
	return found
}

// SetPersonality records the personality text of creature id.
//
// Precondition: text is non-empty.
// Postcondition: returns ErrNotFound when id is absent and ErrPersonalitySet when a
// personality is already recorded; the store is unchanged on error.
func (s *Store) SetPersonality(id, text string) error {
	return s.mutate(func() (bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, fmt.Errorf("setting personality of %q: %w", id, ErrNotFound)
		}
		if s.collection[i].Personality != "" {
			return false, fmt.Errorf("setting personality of %q: %w", id, ErrPersonalitySet)
		}
		s.collection[i].Personality = text
		return true, nil
	})
}

// Credit adds amount to the balance.
//
// Precondition: amount >= 0.
func (s *Store) Credit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrNegativeAmount)
	}
	return s.mutate(func() (bool, error) {
		if amount == 0 {
			return false, nil
		}
		s.credits += amount
		return true, nil
	})
}

// Debit subtracts amount from the balance, clamping at zero.
//
// Precondition: amount >= 0.
// Postcondition: balance == max(0, old-amount).
func (s *Store) Debit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrNegativeAmount)
	}
	return s.mutate(func() (bool, error) {
		next := max(s.credits-amount, 0)
		if next == s.credits {
			return false, nil
		}
		s.credits = next
		return true, nil
	})
}

// TryDebit subtracts amount only when the balance covers it.
//
// Precondition: amount >= 0.
// Postcondition: returns true and debits iff old balance >= amount.
func (s *Store) TryDebit(amount int) bool {
	if amount < 0 {
		return false
	}
	var ok bool
	_ = s.mutate(func() (bool, error) {
		if s.credits < amount {
			return false, nil
		}
		ok = true
		s.credits -= amount
		return amount > 0, nil
	})
	return ok
}

// Release credits the resell value of creature id and removes it, in one transition.
//
// Postcondition: returns the credited value, or ErrNotFound with no change.
func (s *Store) Release(id string) (int, error) {
	var value int
	err := s.mutate(func() (bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, fmt.Errorf("releasing %q: %w", id, ErrNotFound)
		}
		value = creature.ResellValue(s.collection[i])
		s.credits += value
		s.collection = slices.Delete(s.collection, i, i+1)
		return true, nil
	})
	return value, err
}

// ReleaseMany releases every owned creature in ids in one transition.
//
// Postcondition: credits exactly the sum of resell values of the matched creatures and
// removes exactly those; returns the matched count and the credited total. Unknown ids
// are ignored and an empty match is a no-op.
func (s *Store) ReleaseMany(ids []string) (released, value int) {
	_ = s.mutate(func() (bool, error) {
		set := toSet(ids)
		s.collection = slices.DeleteFunc(s.collection, func(c creature.Creature) bool {
			if _, hit := set[c.ID]; !hit {
				return false
			}
			released++
			value += creature.ResellValue(c)
			return true
		})
		s.credits += value
		return released > 0, nil
	})
	return released, value
}

// Replace removes every id in remove and prepends add, in one transition.
//
// Precondition: every id in remove is owned; add ids are fresh.
// Postcondition: on error (ErrNotFound for a missing input, ErrDuplicateID for a colliding
// output) the store is unchanged.
func (s *Store) Replace(remove []string, add []creature.Creature) error {
	return s.mutate(func() (bool, error) {
		set := toSet(remove)
		for id := range set {
			if s.indexLocked(id) < 0 {
				return false, fmt.Errorf("replacing %q: %w", id, ErrNotFound)
			}
		}
		if err := s.checkFreeLocked(add, set); err != nil {
			return false, err
		}
		kept := slices.DeleteFunc(s.collection, func(c creature.Creature) bool {
			_, hit := set[c.ID]
			return hit
		})
		s.collection = append(cloneAll(add), kept...)
		return len(set) > 0 || len(add) > 0, nil
	})
}

// Credits returns the current balance.
func (s *Store) Credits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits
}

// Collection returns a copy of the collection, newest first.
func (s *Store) Collection() []creature.Creature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.collection)
}

// Get returns a copy of creature id.
func (s *Store) Get(id string) (creature.Creature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return creature.Creature{}, false
	}
	return s.collection[i].Clone(), true
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collection)
}

// Snapshot returns a versioned copy of the full state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func cloneAll(list []creature.Creature) []creature.Creature {
	out := make([]creature.Creature, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}

// Package memory provides an in-process storage.Slots backend.
package memory

import (
	"context"
	"maps"
	"sync"
)

// Slots keeps values in a map. The zero value is not usable; call New.
type Slots struct {
	mu     sync.RWMutex
	values map[string]string
	// failWith, when set, is returned by every call.
	failWith error
}

// New returns an empty Slots.
func New() *Slots {
	return &Slots{values: make(map[string]string)}
}

func (s *Slots) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return "", false, s.failWith
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Slots) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.values[key] = value
	return nil
}

// Fail makes every subsequent call return err. A nil err restores normal operation.
func (s *Slots) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Dump returns a copy of every stored value.
func (s *Slots) Dump() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

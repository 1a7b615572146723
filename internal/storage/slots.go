// Package storage persists the inventory to a key-value slot backend.
//
// Two slots are used: InventorySlot holds the collection as a JSON array and CreditsSlot
// holds the balance as a decimal integer.
package storage

import "context"

const (
	InventorySlot = "pokegen_inventory"
	CreditsSlot   = "pokegen_credits"
)

// Slots is a string key-value store.
//
// Implementations MUST be safe for concurrent use.
type Slots interface {
	// Get returns the value of key; ok is false when the key was never written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put writes value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error
}

// Package gacha implements the credit-priced pull of randomly acquired creatures.
package gacha

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
)

var (
	// ErrInvalidCount is returned for a pull of fewer than one creature.
	ErrInvalidCount = errors.New("gacha: pull count must be >= 1")
	// ErrPullInFlight is returned while another pull has not completed.
	ErrPullInFlight = errors.New("gacha: a pull is already in flight")
	// ErrInsufficientCredits is returned when the balance does not cover the pull.
	ErrInsufficientCredits = errors.New("gacha: insufficient credits")
)

// Acquirer produces creatures for a pull.
type Acquirer interface {
	AcquireBatch(ctx context.Context, count int) []creature.Creature
}

// Options tunes an Engine.
type Options struct {
	// PullCost is the price of one creature.
	PullCost int
	// MinDuration is the shortest time a pull takes. It paces presentation and runs
	// concurrently with acquisition.
	MinDuration time.Duration
}

// OptionsFrom derives Options from configuration.
func OptionsFrom(g config.GachaConfig) Options {
	return Options{PullCost: g.PullCost, MinDuration: g.MinPullDuration}
}

// Engine runs pulls against one inventory. At most one pull is in flight at a time.
type Engine struct {
	store    *inventory.Store
	acquirer Acquirer
	opts     Options
	logger   *zap.Logger
	inFlight atomic.Bool
}

// NewEngine creates an Engine.
//
// Precondition: store, acquirer and logger must be non-nil; opts.PullCost > 0.
func NewEngine(store *inventory.Store, acquirer Acquirer, opts Options, logger *zap.Logger) *Engine {
	return &Engine{store: store, acquirer: acquirer, opts: opts, logger: logger}
}

// Cost returns the price of a pull of count creatures.
func (e *Engine) Cost(count int) int {
	return count * e.opts.PullCost
}

// CanAfford reports whether the current balance covers a pull of count creatures.
func (e *Engine) CanAfford(count int) bool {
	return count >= 1 && e.store.Credits() >= e.Cost(count)
}

// InFlight reports whether a pull is running.
func (e *Engine) InFlight() bool {
	return e.inFlight.Load()
}

// Pull debits count*PullCost, acquires count creatures, and prepends them to the
// collection. The returned slice is this pull's results in acquisition order.
//
// Precondition: count >= 1.
// Postcondition: on ErrInvalidCount, ErrPullInFlight or ErrInsufficientCredits nothing
// changed. Once accepted the pull runs to completion even if ctx is cancelled, and the
// cost is never refunded.
func (e *Engine) Pull(ctx context.Context, count int) ([]creature.Creature, error) {
	if count < 1 {
		return nil, fmt.Errorf("pull %d: %w", count, ErrInvalidCount)
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, ErrPullInFlight
	}
	defer e.inFlight.Store(false)

	cost := e.Cost(count)
	if !e.store.TryDebit(cost) {
		return nil, fmt.Errorf("pull %d costs %d, balance %d: %w", count, cost, e.store.Credits(), ErrInsufficientCredits)
	}
	e.logger.Info("pull accepted", zap.Int("count", count), zap.Int("cost", cost))

	ctx = context.WithoutCancel(ctx)
	pacing := time.After(e.opts.MinDuration)
	results := e.acquirer.AcquireBatch(ctx, count)
	<-pacing

	if err := e.store.AddCreatures(results); err != nil {
		// Ids are fresh UUIDs; a collision means the acquirer is broken.
		return nil, fmt.Errorf("committing pull: %w", err)
	}
	e.logger.Info("pull completed",
		zap.Int("count", len(results)),
		zap.Int("credits", e.store.Credits()),
	)
	return results, nil
}

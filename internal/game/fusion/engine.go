// Package fusion implements the three-into-one rarity upgrade.
package fusion

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/acquisition"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
)

// SelectionSize is the number of creatures consumed by one fusion.
const SelectionSize = 3

var (
	ErrSelectionSize      = errors.New("fusion: exactly 3 creatures must be selected")
	ErrDuplicateSelection = errors.New("fusion: selection contains the same creature twice")
	ErrUnknownCreature    = errors.New("fusion: selected creature is not owned")
	ErrMixedRarity        = errors.New("fusion: selected creatures differ in rarity")
	ErrNoNextTier         = errors.New("fusion: rarity has no higher tier")
	ErrFusionInFlight     = errors.New("fusion: a fusion is already in flight")
	// ErrSelectionChanged is returned when an input left the collection before commit.
	ErrSelectionChanged = errors.New("fusion: selection changed before commit")
)

// Acquirer produces one creature per call and never fails.
type Acquirer interface {
	AcquireOne(ctx context.Context) creature.Creature
}

// Options tunes an Engine.
type Options struct {
	// Attempts bounds the natural draws before the boost fallback.
	Attempts int
	// BoostAmount is added to hp and attack of a boosted result.
	BoostAmount int
	// MinDuration is the presentation delay awaited before acquisition starts.
	MinDuration time.Duration
	// NewID returns a fresh id for boosted results. Nil means a random UUID.
	NewID func() string
}

// OptionsFrom derives Options from configuration.
func OptionsFrom(g config.GachaConfig) Options {
	return Options{
		Attempts:    g.FusionAttempts,
		BoostAmount: g.FusionBoost,
		MinDuration: g.MinFusionDuration,
	}
}

// Result describes a completed fusion.
type Result struct {
	Creature creature.Creature
	// Consumed holds the ids removed from the collection.
	Consumed []string
	// Attempts is the number of acquisitions made.
	Attempts int
	// Boosted reports whether the guaranteed-rarity fallback produced the result.
	Boosted bool
}

// Engine runs fusions against one inventory. At most one fusion is in flight at a time.
type Engine struct {
	store    *inventory.Store
	acquirer Acquirer
	opts     Options
	logger   *zap.Logger
	inFlight atomic.Bool
}

// NewEngine creates an Engine.
//
// Precondition: store, acquirer and logger must be non-nil.
func NewEngine(store *inventory.Store, acquirer Acquirer, opts Options, logger *zap.Logger) *Engine {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.NewID == nil {
		opts.NewID = acquisition.NewID
	}
	return &Engine{store: store, acquirer: acquirer, opts: opts, logger: logger}
}

// InFlight reports whether a fusion is running.
func (e *Engine) InFlight() bool {
	return e.inFlight.Load()
}

// ValidateSelection checks ids against the current collection and returns the rarity a
// fusion of them produces.
//
// Postcondition: returns a nil error iff ids are 3 distinct owned creatures of one rarity
// that has a next tier.
func (e *Engine) ValidateSelection(ids []string) (creature.Rarity, error) {
	if len(ids) != SelectionSize {
		return "", fmt.Errorf("%d selected: %w", len(ids), ErrSelectionSize)
	}
	seen := make(map[string]struct{}, len(ids))
	var rarity creature.Rarity
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return "", fmt.Errorf("%q: %w", id, ErrDuplicateSelection)
		}
		seen[id] = struct{}{}
		c, ok := e.store.Get(id)
		if !ok {
			return "", fmt.Errorf("%q: %w", id, ErrUnknownCreature)
		}
		if i == 0 {
			rarity = c.Rarity
		} else if c.Rarity != rarity {
			return "", fmt.Errorf("%s and %s: %w", rarity, c.Rarity, ErrMixedRarity)
		}
	}
	out, ok := NextTier(rarity)
	if !ok {
		return "", fmt.Errorf("%s: %w", rarity, ErrNoNextTier)
	}
	return out, nil
}

// Fuse consumes the three selected creatures and adds one creature of the next tier.
//
// Precondition: ValidateSelection(ids) succeeds and no fusion is in flight.
// Postcondition: on any error the store is unchanged. On success the inputs are removed
// and the result prepended in one transition. Once accepted the fusion ignores ctx
// cancellation.
func (e *Engine) Fuse(ctx context.Context, ids []string) (Result, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrFusionInFlight
	}
	defer e.inFlight.Store(false)

	target, err := e.ValidateSelection(ids)
	if err != nil {
		return Result{}, err
	}
	e.logger.Info("fusion accepted", zap.Strings("inputs", ids), zap.String("target", string(target)))

	ctx = context.WithoutCancel(ctx)
	if e.opts.MinDuration > 0 {
		<-time.After(e.opts.MinDuration)
	}
	res := e.AcquireWithMinRarity(ctx, target)
	res.Consumed = append([]string(nil), ids...)

	if err := e.store.Replace(ids, []creature.Creature{res.Creature}); err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %v", ErrSelectionChanged, err)
		}
		return Result{}, fmt.Errorf("committing fusion: %w", err)
	}
	e.logger.Info("fusion completed",
		zap.Object("result", res.Creature),
		zap.Int("attempts", res.Attempts),
		zap.Bool("boosted", res.Boosted),
	)
	return res, nil
}

// AcquireWithMinRarity draws up to Attempts creatures and returns the first whose natural
// rarity is at least min. When every draw misses, the most valuable draw (earliest on
// ties) is boosted to min.
//
// Postcondition: result.Creature.Rarity.AtLeast(min); result.Attempts <= Attempts.
func (e *Engine) AcquireWithMinRarity(ctx context.Context, min creature.Rarity) Result {
	var best creature.Creature
	bestValue := -1
	for attempt := 1; attempt <= e.opts.Attempts; attempt++ {
		c := e.acquirer.AcquireOne(ctx)
		if c.Rarity.AtLeast(min) {
			return Result{Creature: c, Attempts: attempt}
		}
		if v := creature.ResellValue(c); v > bestValue {
			best, bestValue = c, v
		}
		e.logger.Debug("fusion draw below target",
			zap.Int("attempt", attempt),
			zap.String("rarity", string(c.Rarity)),
			zap.String("target", string(min)),
		)
	}
	return Result{
		Creature: Boost(best, min, e.opts.BoostAmount, e.opts.NewID()),
		Attempts: e.opts.Attempts,
		Boosted:  true,
	}
}

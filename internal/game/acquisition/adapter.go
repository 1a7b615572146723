// Package acquisition turns provider records into freshly acquired creatures.
package acquisition

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/dice"
	"github.com/cory-johannsen/pokegen/internal/pokeapi"
)

// Provider fetches the raw record of one catalog id.
type Provider interface {
	FetchPokemon(ctx context.Context, id int) (pokeapi.Pokemon, error)
}

// Options tunes an Adapter.
type Options struct {
	// MaxSpecies is the upper bound of the uniform catalog draw [1, MaxSpecies].
	MaxSpecies int
	// ShinyPercent is the per-acquisition shiny probability in percent.
	ShinyPercent int
	// Concurrency caps the number of provider calls a batch keeps in flight.
	Concurrency int
	// Now returns the acquisition timestamp. Nil means time.Now.
	Now func() time.Time
	// NewID returns a fresh creature id. Nil means a random UUID.
	NewID func() string
}

// OptionsFrom derives Options from configuration.
func OptionsFrom(p config.ProviderConfig, g config.GachaConfig) Options {
	return Options{
		MaxSpecies:   p.MaxSpecies,
		ShinyPercent: g.ShinyPercent,
		Concurrency:  p.Concurrency,
	}
}

// NewID returns a random UUID string. It is the default creature id generator.
func NewID() string {
	return uuid.New().String()
}

// Adapter produces one fully formed creature per call and never fails: any provider
// error is logged and answered with the fallback creature.
type Adapter struct {
	provider Provider
	src      dice.Source
	opts     Options
	logger   *zap.Logger
}

// NewAdapter creates an Adapter.
//
// Precondition: provider, src and logger must be non-nil; opts.MaxSpecies >= 1.
func NewAdapter(provider Provider, src dice.Source, opts Options, logger *zap.Logger) *Adapter {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = NewID
	}
	return &Adapter{provider: provider, src: src, opts: opts, logger: logger}
}

// AcquireOne draws a uniformly random species and maps the provider record into a creature.
//
// Postcondition: Returns a creature with a fresh id and the current timestamp. On provider
// failure the result is Fallback.
func (a *Adapter) AcquireOne(ctx context.Context) creature.Creature {
	speciesID := dice.Between(a.src, 1, a.opts.MaxSpecies)
	shiny := dice.Chance(a.src, a.opts.ShinyPercent)
	id := a.opts.NewID()
	now := a.opts.Now()

	rec, err := a.provider.FetchPokemon(ctx, speciesID)
	if err != nil {
		a.logger.Warn("provider fetch failed, serving fallback",
			zap.Int("species_id", speciesID),
			zap.Error(err),
		)
		return Fallback(id, now)
	}
	c, err := FromPokemon(rec, speciesID, shiny)
	if err != nil {
		a.logger.Warn("provider record rejected, serving fallback",
			zap.Int("species_id", speciesID),
			zap.Error(err),
		)
		return Fallback(id, now)
	}
	c.ID = id
	c.ObtainedAt = now

	a.logger.Debug("creature acquired", zap.Object("creature", c))
	return c
}

// AcquireBatch issues count independent AcquireOne calls concurrently and returns once
// every call has settled.
//
// Postcondition: len(result) == max(count, 0); result order is call order; ids are unique.
func (a *Adapter) AcquireBatch(ctx context.Context, count int) []creature.Creature {
	if count <= 0 {
		return []creature.Creature{}
	}
	out := make([]creature.Creature, count)
	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i := range count {
		g.Go(func() error {
			out[i] = a.AcquireOne(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

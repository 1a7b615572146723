// Package session wires one player's inventory, engines, and persistence together.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/acquisition"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/dice"
	"github.com/cory-johannsen/pokegen/internal/game/fusion"
	"github.com/cory-johannsen/pokegen/internal/game/gacha"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
	"github.com/cory-johannsen/pokegen/internal/game/personality"
	"github.com/cory-johannsen/pokegen/internal/game/progression"
	"github.com/cory-johannsen/pokegen/internal/storage"
	"github.com/cory-johannsen/pokegen/internal/textgen"
)

// Deps are the external collaborators of a Session.
type Deps struct {
	// Slots persists the inventory. Required.
	Slots storage.Slots
	// Provider serves creature records. Required.
	Provider acquisition.Provider
	// Generator writes personalities and chat replies. Nil means textgen.Unavailable.
	Generator textgen.Generator
	// Source draws species and shiny coins. Nil means dice.NewCryptoSource.
	Source dice.Source
	// Ladder ranks the collection. Nil means progression.DefaultLadder.
	Ladder *progression.Ladder
	// Logger is required.
	Logger *zap.Logger
}

// Session is one player's running game.
type Session struct {
	Store       *inventory.Store
	Adapter     *acquisition.Adapter
	Gacha       *gacha.Engine
	Fusion      *fusion.Engine
	Personality *personality.Service
	Ladder      *progression.Ladder

	cfg         config.GachaConfig
	saver       *storage.Saver
	unsubscribe func()
	stop        context.CancelFunc
	done        chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
}

// Open loads the saved inventory, wires the engines, and starts background saving.
//
// Precondition: cfg is valid; deps.Slots, deps.Provider and deps.Logger are non-nil.
// Postcondition: returns a running Session or the storage error that prevented loading.
// The caller must Close the session to flush the final save.
func Open(ctx context.Context, cfg config.Config, deps Deps) (*Session, error) {
	if deps.Generator == nil {
		deps.Generator = textgen.Unavailable{}
	}
	if deps.Source == nil {
		deps.Source = dice.NewCryptoSource()
	}
	if deps.Ladder == nil {
		deps.Ladder = progression.DefaultLadder()
	}
	logger := deps.Logger

	st, err := storage.Load(ctx, deps.Slots, cfg.Gacha.StartingCredits, logger)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	store, err := inventory.New(st.Credits, st.Collection)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	adapter := acquisition.NewAdapter(deps.Provider, deps.Source,
		acquisition.OptionsFrom(cfg.Provider, cfg.Gacha), logger.Named("acquisition"))

	saver := storage.NewSaver(deps.Slots, cfg.Storage.SaveTimeout, logger.Named("storage"))
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		Store:       store,
		Adapter:     adapter,
		Gacha:       gacha.NewEngine(store, adapter, gacha.OptionsFrom(cfg.Gacha), logger.Named("gacha")),
		Fusion:      fusion.NewEngine(store, adapter, fusion.OptionsFrom(cfg.Gacha), logger.Named("fusion")),
		Personality: personality.NewService(store, deps.Generator, personality.Options{}, logger.Named("personality")),
		Ladder:      deps.Ladder,
		cfg:         cfg.Gacha,
		saver:       saver,
		unsubscribe: store.Subscribe(saver.Notify),
		stop:        stop,
		done:        make(chan struct{}),
		logger:      logger,
	}
	go func() {
		defer close(s.done)
		saver.Run(runCtx)
	}()
	return s, nil
}

// ClaimBonus adds the configured free credits and returns the new balance.
func (s *Session) ClaimBonus() (int, error) {
	if err := s.Store.Credit(s.cfg.BonusCredits); err != nil {
		return 0, fmt.Errorf("claiming bonus: %w", err)
	}
	credits := s.Store.Credits()
	s.logger.Info("bonus claimed", zap.Int("bonus", s.cfg.BonusCredits), zap.Int("credits", credits))
	return credits, nil
}

// Standing returns the collection's current rank.
func (s *Session) Standing() progression.Standing {
	return s.Ladder.StandingFor(s.Store.Collection())
}

// View returns the collection filtered by rarity (inventory.FilterAll for every tier)
// and ordered by key.
func (s *Session) View(filter string, key inventory.SortKey) []creature.Creature {
	return inventory.SortBy(inventory.FilterByRarity(s.Store.Collection(), filter), key)
}

// Close stops background saving after writing the latest state.
//
// Postcondition: every change made before Close is persisted unless the backend failed.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.unsubscribe()
		s.stop()
		<-s.done
		s.saver.Notify(s.Store.Snapshot())
		err = s.saver.Flush(context.Background())
	})
	return err
}

// Package main provides the balance simulator: it runs many pulls against the
// configured provider and reports the resulting drop distribution.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/acquisition"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/dice"
	"github.com/cory-johannsen/pokegen/internal/game/gacha"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
	"github.com/cory-johannsen/pokegen/internal/observability"
	"github.com/cory-johannsen/pokegen/internal/pokeapi"
	"github.com/cory-johannsen/pokegen/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	pulls := flag.Int("pulls", 100, "number of creatures to draw")
	batch := flag.Int("batch", 10, "creatures per pull")
	seed := flag.Uint64("seed", 0, "seed for the draw source (0 = crypto source)")
	csvPath := flag.String("csv", "", "write per-creature rows to this file (- for stdout)")
	flag.Parse()

	if *pulls < 0 || *batch < 1 {
		log.Fatalf("invalid -pulls %d or -batch %d", *pulls, *batch)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	provider := pokeapi.NewCache(pokeapi.NewClient(cfg.Provider, nil))
	adapter := acquisition.NewAdapter(provider, src, acquisition.OptionsFrom(cfg.Provider, cfg.Gacha), logger.Named("acquisition"))

	gachaOpts := gacha.OptionsFrom(cfg.Gacha)
	gachaOpts.MinDuration = 0
	store, err := inventory.New(*pulls*gachaOpts.PullCost, nil)
	if err != nil {
		logger.Fatal("creating inventory", zap.Error(err))
	}
	engine := gacha.NewEngine(store, adapter, gachaOpts, logger.Named("gacha"))

	logger.Info("starting simulation",
		zap.Int("pulls", *pulls),
		zap.Int("batch", *batch),
		zap.Uint64("seed", *seed),
		zap.String("provider", cfg.Provider.BaseURL),
	)
	draws, err := sim.Run(ctx, engine, *pulls, *batch)
	if err != nil {
		logger.Fatal("simulation failed", zap.Error(err), zap.Int("completed", len(draws)))
	}

	report := sim.Summarize(draws, acquisition.FallbackSpeciesID)
	if err := report.WriteText(os.Stderr); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}
	if *csvPath != "" {
		if err := writeCSV(*csvPath, draws); err != nil {
			logger.Fatal("writing csv", zap.Error(err))
		}
	}

	logger.Info("simulation complete",
		zap.Int("draws", report.Count),
		zap.Int("cached_species", provider.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func writeCSV(path string, draws []creature.Creature) error {
	if path == "-" {
		return sim.WriteCSV(os.Stdout, draws)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := sim.WriteCSV(f, draws); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

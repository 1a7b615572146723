// Package main manages the PostgreSQL schema behind the slot backend.
//
//	migrate [-config path] [-migrations dir] up|down [steps]
//	migrate [-config path] version
//	migrate [-config path] force <version>
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("migrations", "migrations", "directory holding the migration files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, *sourceDir, flag.Args(), logger); err != nil {
		logger.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, sourceDir string, args []string, logger *zap.Logger) error {
	if cfg.Storage.Backend != config.BackendPostgres {
		return fmt.Errorf("storage.backend is %q; migrations only apply to %q", cfg.Storage.Backend, config.BackendPostgres)
	}
	if len(args) == 0 {
		args = []string{"up"}
	}

	m, err := migrate.New("file://"+sourceDir, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	start := time.Now()
	switch args[0] {
	case "up", "down":
		steps, err := stepsArg(args[1:])
		if err != nil {
			return err
		}
		err = apply(m, args[0], steps)
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema already current")
		} else if err != nil {
			return fmt.Errorf("migrating %s: %w", args[0], err)
		}
	case "force":
		if len(args) != 2 {
			return errors.New("force takes exactly one version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("forcing version %d: %w", v, err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading version: %w", err)
	}
	logger.Info("schema version",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// stepsArg parses the optional step count; zero means every pending migration.
func stepsArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("steps must be a non-negative integer, got %q", args[0])
	}
	return n, nil
}

func apply(m *migrate.Migrate, direction string, steps int) error {
	switch {
	case steps > 0 && direction == "down":
		return m.Steps(-steps)
	case steps > 0:
		return m.Steps(steps)
	case direction == "down":
		return m.Down()
	default:
		return m.Up()
	}
}

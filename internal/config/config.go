// Package config provides Viper-based configuration loading for the PokeGen engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend identifiers.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// StorageConfig selects where the credit balance and collection slots live.
type StorageConfig struct {
	// Backend is one of "memory", "postgres", "sqlite".
	Backend string `mapstructure:"backend"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
	// SaveTimeout bounds each write of both slots after a state change.
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ProviderConfig holds creature data provider settings.
type ProviderConfig struct {
	// BaseURL is the PokeAPI root, e.g. "https://pokeapi.co/api/v2".
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxSpecies is the highest catalog id drawn by an acquisition.
	MaxSpecies int `mapstructure:"max_species"`
	// Concurrency caps the in-flight provider requests of one batch.
	Concurrency int `mapstructure:"concurrency"`
}

// GeneratorConfig holds personality/chat text generator settings.
type GeneratorConfig struct {
	// APIKey is the Anthropic API key. Empty disables generation; placeholders are used.
	APIKey string `mapstructure:"api_key"`
	// Model is the Anthropic model identifier.
	Model string `mapstructure:"model"`
	// MaxTokens bounds each generated reply.
	MaxTokens int `mapstructure:"max_tokens"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// GachaConfig holds the economy and pacing parameters.
type GachaConfig struct {
	StartingCredits int `mapstructure:"starting_credits"`
	PullCost        int `mapstructure:"pull_cost"`
	BonusCredits    int `mapstructure:"bonus_credits"`
	ShinyPercent    int `mapstructure:"shiny_percent"`
	FusionAttempts  int `mapstructure:"fusion_attempts"`
	FusionBoost     int `mapstructure:"fusion_boost"`
	// MinPullDuration is the minimum wall time of a pull, used to pace presentation.
	MinPullDuration time.Duration `mapstructure:"min_pull_duration"`
	// MinFusionDuration is the delay before a fusion starts drawing.
	MinFusionDuration time.Duration `mapstructure:"min_fusion_duration"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Gacha     GachaConfig     `mapstructure:"gacha"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateProvider(c.Provider); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGenerator(c.Generator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGacha(c.Gacha); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	switch s.Backend {
	case BackendMemory, BackendPostgres:
	case BackendSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, "storage.sqlite_path must not be empty for the sqlite backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be one of [memory, postgres, sqlite], got %q", s.Backend))
	}
	if s.SaveTimeout <= 0 {
		errs = append(errs, "storage.save_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateProvider(p ProviderConfig) error {
	var errs []string
	if p.BaseURL == "" {
		errs = append(errs, "provider.base_url must not be empty")
	}
	if p.Timeout <= 0 {
		errs = append(errs, "provider.timeout must be positive")
	}
	if p.MaxSpecies < 1 {
		errs = append(errs, fmt.Sprintf("provider.max_species must be >= 1, got %d", p.MaxSpecies))
	}
	if p.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("provider.concurrency must be >= 1, got %d", p.Concurrency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGenerator(g GeneratorConfig) error {
	if g.APIKey == "" {
		return nil
	}
	var errs []string
	if g.Model == "" {
		errs = append(errs, "generator.model must not be empty when generator.api_key is set")
	}
	if g.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("generator.max_tokens must be >= 1, got %d", g.MaxTokens))
	}
	if g.Timeout <= 0 {
		errs = append(errs, "generator.timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGacha(g GachaConfig) error {
	var errs []string
	if g.StartingCredits < 0 {
		errs = append(errs, fmt.Sprintf("gacha.starting_credits must be >= 0, got %d", g.StartingCredits))
	}
	if g.PullCost < 1 {
		errs = append(errs, fmt.Sprintf("gacha.pull_cost must be >= 1, got %d", g.PullCost))
	}
	if g.BonusCredits < 0 {
		errs = append(errs, fmt.Sprintf("gacha.bonus_credits must be >= 0, got %d", g.BonusCredits))
	}
	if g.ShinyPercent < 0 || g.ShinyPercent > 100 {
		errs = append(errs, fmt.Sprintf("gacha.shiny_percent must be 0-100, got %d", g.ShinyPercent))
	}
	if g.FusionAttempts < 1 {
		errs = append(errs, fmt.Sprintf("gacha.fusion_attempts must be >= 1, got %d", g.FusionAttempts))
	}
	if g.FusionBoost < 0 {
		errs = append(errs, fmt.Sprintf("gacha.fusion_boost must be >= 0, got %d", g.FusionBoost))
	}
	if g.MinPullDuration < 0 {
		errs = append(errs, "gacha.min_pull_duration must not be negative")
	}
	if g.MinFusionDuration < 0 {
		errs = append(errs, "gacha.min_fusion_duration must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with POKEGEN_ prefix
	v.SetEnvPrefix("POKEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults do not validate: " + err.Error())
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.sqlite_path", "pokegen.db")
	v.SetDefault("storage.save_timeout", "5s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pokegen")
	v.SetDefault("database.password", "pokegen")
	v.SetDefault("database.name", "pokegen")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("provider.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("provider.timeout", "10s")
	v.SetDefault("provider.max_species", 1025)
	v.SetDefault("provider.concurrency", 10)

	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "claude-3-5-haiku-latest")
	v.SetDefault("generator.max_tokens", 256)
	v.SetDefault("generator.timeout", "30s")

	v.SetDefault("gacha.starting_credits", 2000)
	v.SetDefault("gacha.pull_cost", 100)
	v.SetDefault("gacha.bonus_credits", 500)
	v.SetDefault("gacha.shiny_percent", 5)
	v.SetDefault("gacha.fusion_attempts", 5)
	v.SetDefault("gacha.fusion_boost", 100)
	v.SetDefault("gacha.min_pull_duration", "2s")
	v.SetDefault("gacha.min_fusion_duration", "2s")
}

// Package config loads service settings from NBACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"svw.info/nback/internal/domain"
)

// Config holds everything cmd/nback-web needs to wire the service.
type Config struct {
	Addr         string        `env:"ADDR" envDefault:":8080"`
	DataDir      string        `env:"DATA_DIR" envDefault:"./data"`
	Store        string        `env:"STORE" envDefault:"sqlite"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	StepInterval time.Duration `env:"STEP_INTERVAL" envDefault:"2s"`

	GameType string `env:"GAME_TYPE" envDefault:"visual"`
	N        int    `env:"N" envDefault:"2"`
	Length   int    `env:"LENGTH" envDefault:"10"`
	GridSize int    `env:"GRID_SIZE" envDefault:"9"`
	Matches  int    `env:"MATCHES" envDefault:"3"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: "NBACK_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store) {
	case "fs", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store must be fs or sqlite, got %q", c.Store))
	}
	gt, ok := domain.LookupGameType(c.GameType)
	if !ok {
		errs = append(errs, domain.Configf("gameType", "must be visual or audio, got %q", c.GameType))
	}
	if c.StepInterval <= 0 {
		errs = append(errs, fmt.Errorf("step interval must be positive, got %v", c.StepInterval))
	}
	if c.N < 1 || c.N >= c.Length {
		errs = append(errs, domain.Configf("n", "must be in [1, %d), got %d", c.Length, c.N))
	}
	if c.GridSize < 1 {
		errs = append(errs, domain.Configf("gridSize", "must be at least 1, got %d", c.GridSize))
	}
	if err := domain.CheckGridSize(gt, c.GridSize); ok && err != nil {
		errs = append(errs, err)
	}
	if c.Matches < 0 || c.Matches > c.Length-c.N {
		errs = append(errs, domain.Configf("matches", "must be in [0, %d], got %d", c.Length-c.N, c.Matches))
	}
	return errors.Join(errs...)
}

// Defaults returns the default game settings.
func (c Config) Defaults() domain.Settings {
	return domain.Settings{
		GameType: domain.ParseGameType(c.GameType),
		N:        c.N,
		Length:   c.Length,
		GridSize: c.GridSize,
		Matches:  c.Matches,
	}
}

// Level maps LogLevel to a slog level; unknown values mean info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverYAML     = "yaml"
)

// Config is the process configuration. Zero timing values defer to the
// category settings.
type Config struct {
	ConfigDir     string        `env:"CONFIG_DIR" envDefault:"./configs"`
	DataDir       string        `env:"DATA_DIR" envDefault:"./data"`
	Store         string        `env:"STORE" envDefault:"sqlite"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	Category      string        `env:"CATEGORY" envDefault:"2010"`
	Settle        time.Duration `env:"SETTLE"`
	Spin          time.Duration `env:"SPIN"`
	Open          time.Duration `env:"OPEN"`
	Close         time.Duration `env:"CLOSE"`
	Sound         bool          `env:"SOUND"`
	TUI           bool          `env:"TUI"`
	Seed          uint64        `env:"SEED"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`
	WatchInterval time.Duration `env:"WATCH_INTERVAL" envDefault:"2s"`
}

const envPrefix = "BOLILLERO_"

// Load reads dotenv files (missing files are fine) and then parses
// BOLILLERO_* variables. Variables already set in the process win.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate collects every invalid setting.
func (c Config) Validate() error {
	var errs []string
	switch c.Store {
	case DriverSQLite, DriverYAML:
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, "postgres store requires BOLILLERO_DATABASE_URL")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown store %q (want sqlite, postgres or yaml)", c.Store))
	}
	if strings.TrimSpace(c.Category) == "" {
		errs = append(errs, "category is empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.LogFormat))
	}
	for name, d := range map[string]time.Duration{"settle": c.Settle, "spin": c.Spin, "open": c.Open, "close": c.Close} {
		if d < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	if len(errs) > 0 {
		return errors.New("config validation failed: " + strings.Join(errs, "; "))
	}
	return nil
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != DriverSQLite || cfg.Category != "2010" || cfg.WatchInterval != 2*time.Second {
		t.Fatalf("defaults=%+v", cfg)
	}
	if cfg.Settle != 0 || cfg.Sound || cfg.TUI {
		t.Fatalf("optional values should be zero: %+v", cfg)
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("BOLILLERO_STORE", "yaml")
	t.Setenv("BOLILLERO_CATEGORY", "2016")
	t.Setenv("BOLILLERO_SETTLE", "3s")
	t.Setenv("BOLILLERO_SOUND", "true")
	t.Setenv("BOLILLERO_SEED", "42")
	t.Setenv("BOLILLERO_LOG_FORMAT", "json")

	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != DriverYAML || cfg.Category != "2016" || cfg.Settle != 3*time.Second || !cfg.Sound || cfg.Seed != 42 {
		t.Fatalf("cfg=%+v", cfg)
	}

	var buf bytes.Buffer
	cfg.Logger(&buf).Info("hello", "k", 1)
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected json log line, got %q", buf.String())
	}
}

func TestLoadDotenv(t *testing.T) {
	// godotenv does not overwrite set variables; register cleanup for the ones it sets.
	t.Setenv("BOLILLERO_CATEGORY", "")
	os.Unsetenv("BOLILLERO_CATEGORY")
	t.Setenv("BOLILLERO_STORE", "postgres")

	f := filepath.Join(t.TempDir(), "test.env")
	content := "BOLILLERO_CATEGORY=2013\nBOLILLERO_STORE=yaml\nBOLILLERO_DATABASE_URL=postgres://localhost/bolillero\n"
	if err := os.WriteFile(f, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("BOLILLERO_DATABASE_URL") })

	cfg, err := Load(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Category != "2013" {
		t.Fatalf("category=%q, want value from dotenv", cfg.Category)
	}
	if cfg.Store != DriverPostgres {
		t.Fatalf("store=%q, process env must win over dotenv", cfg.Store)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	t.Setenv("BOLILLERO_STORE", "mongo")
	t.Setenv("BOLILLERO_LOG_LEVEL", "loud")
	t.Setenv("BOLILLERO_SPIN", "-1s")
	_, err := Parse()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"unknown store", "unknown log level", "spin must be"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}

	c := Config{Store: DriverPostgres, Category: "x", LogLevel: "info", LogFormat: "text"}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("err=%v", err)
	}
}

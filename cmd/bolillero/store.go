package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xtding233/bolillero/internal/config"
	"github.com/xtding233/bolillero/internal/store"
	"github.com/xtding233/bolillero/internal/store/sqlstore"
	"github.com/xtding233/bolillero/internal/store/yamlstore"
)

// definitionSaver is implemented by stores that can persist category definitions.
type definitionSaver interface {
	SaveCategoryDefinitions(ctx context.Context, defs []store.CategoryDefinition) error
}

var (
	_ definitionSaver = (*sqlstore.Store)(nil)
	_ definitionSaver = (*yamlstore.Store)(nil)
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.DriverSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlstore.OpenSQLite(ctx, filepath.Join(cfg.DataDir, "bolillero.db"))
	case config.DriverPostgres:
		return sqlstore.Open(ctx, sqlstore.Postgres, cfg.DatabaseURL)
	case config.DriverYAML:
		return yamlstore.Open(filepath.Join(cfg.DataDir, "state"))
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}

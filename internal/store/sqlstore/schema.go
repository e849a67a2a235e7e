package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed by the store.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	schema := sqliteSchema
	if d == Postgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// draw_configs is append-only; the newest row per category is the live state.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS draw_configs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    num_zones INTEGER NOT NULL,
    ball_cages TEXT NOT NULL,
    draw_order TEXT NOT NULL,
    draw_mode TEXT NOT NULL DEFAULT 'fixed',
    tie_break TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_draw_configs_category ON draw_configs(category, created_at);

CREATE TABLE IF NOT EXISTS category_configs (
    key TEXT PRIMARY KEY,
    num_zones INTEGER NOT NULL CHECK (num_zones BETWEEN 4 AND 8),
    ball_cage_teams TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS draw_configs (
    id BIGSERIAL PRIMARY KEY,
    category TEXT NOT NULL,
    num_zones INTEGER NOT NULL,
    ball_cages JSONB NOT NULL,
    draw_order JSONB NOT NULL,
    draw_mode TEXT NOT NULL DEFAULT 'fixed',
    tie_break TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_draw_configs_category ON draw_configs(category, created_at);

CREATE TABLE IF NOT EXISTS category_configs (
    key TEXT PRIMARY KEY,
    num_zones INTEGER NOT NULL CHECK (num_zones BETWEEN 4 AND 8),
    ball_cage_teams JSONB NOT NULL
);
`

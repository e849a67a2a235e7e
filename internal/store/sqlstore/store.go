// Package sqlstore provides a database/sql-backed draw state store for
// SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/store"
)

// Dialect selects driver name, placeholders and schema.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Store persists draw state in a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// OpenSQLite opens (creating if needed) a SQLite file and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return Open(ctx, SQLite, dsn)
}

// Open connects with the dialect's driver and applies the schema.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	if d != SQLite && d != Postgres {
		return nil, fmt.Errorf("unsupported database type %q", d)
	}
	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", d, err)
	}
	if d == SQLite {
		// one writer; avoids SQLITE_BUSY between the draw and background saves
		db.SetMaxOpenConns(1)
	}
	if err := CreateSchema(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, dialect: d, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveDrawState appends a new revision of cfg.
func (s *Store) SaveDrawState(ctx context.Context, cfg draw.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return fmt.Errorf("category key is required")
	}
	cages, err := json.Marshal(cfg.Pools)
	if err != nil {
		return fmt.Errorf("encode pools: %w", err)
	}
	order := cfg.FixedOrder
	if order == nil {
		order = []string{}
	}
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode draw order: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO draw_configs (category, num_zones, ball_cages, draw_order, draw_mode, tie_break, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		cfg.Key,
		cfg.ZoneCount,
		string(cages),
		string(orderJSON),
		string(cfg.EffectiveMode()),
		string(cfg.TieBreak),
		toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save draw state: %w", err)
	}
	return nil
}

// LoadDrawState returns the newest revision for key.
func (s *Store) LoadDrawState(ctx context.Context, key string) (draw.Config, error) {
	if err := ctx.Err(); err != nil {
		return draw.Config{}, err
	}
	var (
		cfg              draw.Config
		cages, orderJSON string
		mode, tieBreak   string
	)
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT category, num_zones, ball_cages, draw_order, draw_mode, tie_break
		 FROM draw_configs
		 WHERE category = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`), key)
	if err := row.Scan(&cfg.Key, &cfg.ZoneCount, &cages, &orderJSON, &mode, &tieBreak); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return draw.Config{}, store.ErrNotFound
		}
		return draw.Config{}, fmt.Errorf("load draw state: %w", err)
	}
	if err := json.Unmarshal([]byte(cages), &cfg.Pools); err != nil {
		return draw.Config{}, fmt.Errorf("decode pools: %w", err)
	}
	if err := json.Unmarshal([]byte(orderJSON), &cfg.FixedOrder); err != nil {
		return draw.Config{}, fmt.Errorf("decode draw order: %w", err)
	}
	cfg.Mode = draw.Mode(mode)
	cfg.TieBreak = draw.TieBreak(tieBreak)
	return cfg, nil
}

// LoadCategoryDefinitions lists category defaults ordered by key.
func (s *Store) LoadCategoryDefinitions(ctx context.Context) ([]store.CategoryDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, num_zones, ball_cage_teams FROM category_configs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("load category definitions: %w", err)
	}
	defer rows.Close()

	var defs []store.CategoryDefinition
	for rows.Next() {
		var (
			d     store.CategoryDefinition
			teams string
		)
		if err := rows.Scan(&d.Key, &d.ZoneCount, &teams); err != nil {
			return nil, fmt.Errorf("scan category definition: %w", err)
		}
		if err := json.Unmarshal([]byte(teams), &d.PoolSizes); err != nil {
			return nil, fmt.Errorf("decode pool sizes for %s: %w", d.Key, err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category definitions: %w", err)
	}
	return defs, nil
}

// SaveCategoryDefinitions upserts defs in one transaction.
func (s *Store) SaveCategoryDefinitions(ctx context.Context, defs []store.CategoryDefinition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt := s.rebind(
		`INSERT INTO category_configs (key, num_zones, ball_cage_teams) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET num_zones = excluded.num_zones, ball_cage_teams = excluded.ball_cage_teams`)
	for _, d := range defs {
		teams, err := json.Marshal(d.PoolSizes)
		if err != nil {
			return fmt.Errorf("encode pool sizes for %s: %w", d.Key, err)
		}
		if _, err := tx.ExecContext(ctx, stmt, d.Key, d.ZoneCount, string(teams)); err != nil {
			return fmt.Errorf("save category %s: %w", d.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit category definitions: %w", err)
	}
	return nil
}

// rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

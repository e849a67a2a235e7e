package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bolillero.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleConfig(t *testing.T) draw.Config {
	t.Helper()
	cfg := draw.NewConfig("2012", 5)
	for pool := 1; pool <= draw.NumPools; pool++ {
		if _, err := cfg.AddEntrant(pool, "Club "+string(rune('A'+pool-1))); err != nil {
			t.Fatal(err)
		}
	}
	cfg.Mode = draw.ModeRandom
	cfg.TieBreak = draw.TieBreakFirst
	return cfg
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cfg := sampleConfig(t)

	if err := s.SaveDrawState(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadDrawState(ctx, "2012")
	if err != nil {
		t.Fatal(err)
	}
	if got.Key != cfg.Key || got.ZoneCount != 5 || got.Mode != draw.ModeRandom || got.TieBreak != draw.TieBreakFirst {
		t.Fatalf("got %+v", got)
	}
	if !slices.Equal(got.FixedOrder, cfg.FixedOrder) {
		t.Fatalf("order=%v want %v", got.FixedOrder, cfg.FixedOrder)
	}
	for i := range cfg.Pools {
		if !slices.Equal(got.Pools[i], cfg.Pools[i]) {
			t.Fatalf("pool %d = %v want %v", i+1, got.Pools[i], cfg.Pools[i])
		}
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("loaded config invalid: %v", err)
	}
}

func TestLoadReturnsLatestRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tick := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return tick }

	cfg := sampleConfig(t)
	if err := s.SaveDrawState(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	cfg.ZoneCount = 8
	cfg.RemoveEntrant(cfg.FixedOrder[0])
	// same millisecond: id breaks the tie
	if err := s.SaveDrawState(ctx, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadDrawState(ctx, "2012")
	if err != nil {
		t.Fatal(err)
	}
	if got.ZoneCount != 8 || len(got.FixedOrder) != 3 {
		t.Fatalf("expected newest revision, got zones=%d order=%v", got.ZoneCount, got.FixedOrder)
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM draw_configs WHERE category = ?`, "2012").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Fatalf("draw_configs rows=%d, want append-only history of 2", rows)
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadDrawState(context.Background(), "2099"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestEmptyConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.SaveDrawState(ctx, draw.NewConfig("2018", 4)); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadDrawState(ctx, "2018")
	if err != nil {
		t.Fatal(err)
	}
	if got.Pools.Len() != 0 || len(got.FixedOrder) != 0 || got.ZoneCount != 4 {
		t.Fatalf("got %+v", got)
	}
}

func TestSaveRequiresKey(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveDrawState(context.Background(), draw.Config{ZoneCount: 4}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestCategoryDefinitionsUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	defs, err := s.LoadCategoryDefinitions(ctx)
	if err != nil || len(defs) != 0 {
		t.Fatalf("fresh store: defs=%v err=%v", defs, err)
	}
	if err := s.SaveCategoryDefinitions(ctx, store.DefaultCategories()); err != nil {
		t.Fatal(err)
	}
	update := []store.CategoryDefinition{{Key: "2011", ZoneCount: 8, PoolSizes: [4]int{8, 8, 7, 7}}}
	if err := s.SaveCategoryDefinitions(ctx, update); err != nil {
		t.Fatal(err)
	}

	defs, err = s.LoadCategoryDefinitions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 9 || defs[0].Key != "2010" || defs[8].Key != "2018" {
		t.Fatalf("defs=%v", defs)
	}
	got, ok := store.FindCategory(defs, "2011")
	if !ok || got != update[0] {
		t.Fatalf("2011=%+v ok=%v", got, ok)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("postgres rebind=%q", got)
	}
	lite := &Store{dialect: SQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind=%q", got)
	}
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	if _, err := Open(context.Background(), Dialect("oracle"), "x"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

package category

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtding233/bolillero/internal/draw"
)

func writeCategory(t *testing.T, base, name, body string) string {
	t.Helper()
	dir := filepath.Join(base, "categories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const defaultYAML = `
version: "1"
draw:
  zones: 6
  mode: fixed
  pool_sizes: [4, 4, 4, 4]
timing:
  settle: 2s
  spin: 3200ms
`

func TestMergeOrder(t *testing.T) {
	base := t.TempDir()
	writeCategory(t, base, "default", defaultYAML)
	writeCategory(t, base, "2012", `
version: "2"
draw:
  zones: 8
  mode: random
timing:
  spin: 1s
`)
	l := NewLoader(base)

	zones := 5
	settle := 3 * time.Second
	raw, s, err := l.Resolve("2012", Overrides{Zones: &zones, Settle: &settle})
	if err != nil {
		t.Fatal(err)
	}
	if s.ZoneCount != 5 {
		t.Fatalf("override must win: zones=%d", s.ZoneCount)
	}
	if s.Mode != draw.ModeRandom || s.Version != "2" {
		t.Fatalf("category layer must beat default: %+v", s)
	}
	if s.Spin != time.Second || s.Settle != 3*time.Second || s.Open != DefaultOpen {
		t.Fatalf("timing=%v/%v/%v", s.Spin, s.Settle, s.Open)
	}
	if s.PoolSizes != [4]int{4, 4, 4, 4} {
		t.Fatalf("pool sizes inherited from default: %v", s.PoolSizes)
	}
	if raw.Timing.Settle != "3s" {
		t.Fatalf("raw settle=%q", raw.Timing.Settle)
	}

	// only the merged default applies to a key without its own file
	_, s, err = l.Resolve("2015", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if s.ZoneCount != 6 || s.Mode != draw.ModeFixed || s.Spin != 3200*time.Millisecond {
		t.Fatalf("2015=%+v", s)
	}
}

func TestResolveWithoutFiles(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, s, err := l.Resolve("2010", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if s != Defaults("2010") {
		t.Fatalf("s=%+v want defaults", s)
	}
	if s.Settle != draw.DefaultSettleDelay || s.Spin != DefaultSpin {
		t.Fatalf("defaults=%+v", s)
	}
}

func TestValidateCollectsAll(t *testing.T) {
	base := t.TempDir()
	writeCategory(t, base, "bad", `
draw:
  zones: 3
  mode: lucky
  tie_break: last
  pool_sizes: [1, -1, 2, 2, 2]
timing:
  settle: 1s
  spin: soon
`)
	_, _, err := NewLoader(base).Resolve("bad", Overrides{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"draw.zones", "draw.mode", "draw.tie_break", "has 5 entries", "pool_sizes[1]", "timing.settle must be", "timing.spin"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestKeysAndInvalidate(t *testing.T) {
	base := t.TempDir()
	writeCategory(t, base, "default", defaultYAML)
	writeCategory(t, base, "2011", "draw:\n  zones: 4\n")
	writeCategory(t, base, "2010", "draw:\n  zones: 5\n")
	l := NewLoader(base)

	keys, err := l.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "2010,2011" {
		t.Fatalf("keys=%v", keys)
	}

	_, s, _ := l.Resolve("2010", Overrides{})
	if s.ZoneCount != 5 {
		t.Fatalf("zones=%d", s.ZoneCount)
	}
	writeCategory(t, base, "2010", "draw:\n  zones: 7\n")
	if _, s, _ = l.Resolve("2010", Overrides{}); s.ZoneCount != 5 {
		t.Fatalf("cached value expected before invalidate, got %d", s.ZoneCount)
	}
	l.Invalidate()
	if _, s, _ = l.Resolve("2010", Overrides{}); s.ZoneCount != 7 {
		t.Fatalf("zones=%d after invalidate", s.ZoneCount)
	}

	defs, err := l.Definitions()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 || defs[0].Key != "2010" || defs[0].ZoneCount != 7 || defs[1].PoolSizes != [4]int{4, 4, 4, 4} {
		t.Fatalf("defs=%+v", defs)
	}
}

func TestRejectsBadKeys(t *testing.T) {
	l := NewLoader(t.TempDir())
	for _, k := range []string{"", "default", "../etc", "a/b"} {
		if _, err := l.LoadMerged(k); err == nil {
			t.Errorf("key %q accepted", k)
		}
	}
}

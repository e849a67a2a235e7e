package category

import (
	"os"
	"testing"
	"time"
)

func TestWatcherDetectsChanges(t *testing.T) {
	base := t.TempDir()
	p := writeCategory(t, base, "2010", "draw:\n  zones: 5\n")
	l := NewLoader(base)
	if _, s, _ := l.Resolve("2010", Overrides{}); s.ZoneCount != 5 {
		t.Fatalf("zones=%d", s.ZoneCount)
	}

	var changed []string
	w := WatchLoader(l, time.Second, func(path string) { changed = append(changed, path) })
	w.Scan(true)
	if len(changed) != 0 {
		t.Fatalf("priming must not fire: %v", changed)
	}

	if err := os.WriteFile(p, []byte("draw:\n  zones: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(p, future, future); err != nil {
		t.Fatal(err)
	}
	added := writeCategory(t, base, "2011", "draw:\n  zones: 4\n")
	w.Scan(false)
	if len(changed) != 2 {
		t.Fatalf("changed=%v, want modified and added file", changed)
	}
	if _, s, _ := l.Resolve("2010", Overrides{}); s.ZoneCount != 8 {
		t.Fatalf("loader cache not invalidated: zones=%d", s.ZoneCount)
	}

	changed = nil
	if err := os.Remove(added); err != nil {
		t.Fatal(err)
	}
	w.Scan(false)
	if len(changed) != 1 || changed[0] != added {
		t.Fatalf("changed=%v, want removal of %s", changed, added)
	}

	changed = nil
	w.Scan(false)
	if len(changed) != 0 {
		t.Fatalf("quiet scan fired: %v", changed)
	}
}

package draw

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestConfigAddRemoveKeepsOrderInSync(t *testing.T) {
	cfg := NewConfig("2010", 6)
	a, err := cfg.AddEntrant(1, "  Boca  ")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := cfg.AddEntrant(2, "River")
	c, _ := cfg.AddEntrant(1, "Vélez")

	if a.Name != "Boca" || a.Pool != 1 || !strings.HasPrefix(a.ID, "team-") {
		t.Fatalf("unexpected entrant %+v", a)
	}
	if !slices.Equal(cfg.FixedOrder, []string{a.ID, b.ID, c.ID}) {
		t.Fatalf("order=%v", cfg.FixedOrder)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if !cfg.RemoveEntrant(a.ID) {
		t.Fatalf("remove failed")
	}
	if cfg.RemoveEntrant("nobody") {
		t.Fatalf("removing unknown id should report false")
	}
	if !slices.Equal(cfg.FixedOrder, []string{b.ID, c.ID}) || len(cfg.Pools[0]) != 1 {
		t.Fatalf("after remove: order=%v pool1=%v", cfg.FixedOrder, cfg.Pools[0])
	}
}

func TestConfigAddEntrantNormalizesName(t *testing.T) {
	cfg := NewConfig("k", 4)
	// "e" + combining acute accent
	e, err := cfg.AddEntrant(3, "Ve\u0301lez")
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "V\u00e9lez" {
		t.Fatalf("name %q not NFC-normalized", e.Name)
	}
	if _, err := cfg.AddEntrant(0, "x"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("pool 0 err=%v", err)
	}
	if _, err := cfg.AddEntrant(1, "   "); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("blank name err=%v", err)
	}
}

func TestConfigMoveInOrder(t *testing.T) {
	cfg := Config{FixedOrder: []string{"a", "b", "c"}}
	if cfg.MoveInOrder("a", -1) {
		t.Fatalf("moving first entry up must fail")
	}
	if cfg.MoveInOrder("c", 1) {
		t.Fatalf("moving last entry down must fail")
	}
	if !cfg.MoveInOrder("a", 1) || !slices.Equal(cfg.FixedOrder, []string{"b", "a", "c"}) {
		t.Fatalf("order=%v", cfg.FixedOrder)
	}
	if !cfg.MoveInOrder("c", -1) || !slices.Equal(cfg.FixedOrder, []string{"b", "c", "a"}) {
		t.Fatalf("order=%v", cfg.FixedOrder)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig("k", 9)
	cfg.Mode = "lucky"
	cfg.Pools[1] = []Entrant{{ID: "x", Pool: 1}, {ID: "x", Pool: 2}}
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err=%v", err)
	}
	for _, want := range []string{"zone count 9", "unknown draw mode", "stored in pool 2", "more than once"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
	if err := cfg.SetZoneCount(3); err == nil {
		t.Fatalf("zone count 3 accepted")
	}
	if err := cfg.SetZoneCount(8); err != nil || cfg.ZoneCount != 8 {
		t.Fatalf("SetZoneCount(8): %v", err)
	}
}

func TestConfigValidateRejectsRepeatedOrderEntries(t *testing.T) {
	cfg := NewConfig("k", 6)
	a, _ := cfg.AddEntrant(1, "A")
	b, _ := cfg.AddEntrant(2, "B")
	cfg.FixedOrder = []string{a.ID, b.ID, a.ID, a.ID}
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err=%v", err)
	}
	if n := strings.Count(err.Error(), "more than once"); n != 1 {
		t.Fatalf("want one repeat reported, got %d: %v", n, err)
	}
	if !strings.Contains(err.Error(), a.ID) {
		t.Fatalf("error %q does not name %s", err, a.ID)
	}

	// Stale references are skipped at draw time, not rejected here.
	cfg.FixedOrder = []string{a.ID, "gone", b.ID}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("stale reference rejected: %v", err)
	}
}

func TestConfigRemoveEntrantLeavesCopiesAlone(t *testing.T) {
	cfg := NewConfig("k", 6)
	a, _ := cfg.AddEntrant(1, "A")
	b, _ := cfg.AddEntrant(1, "B")
	shallow := cfg

	if !cfg.RemoveEntrant(a.ID) {
		t.Fatalf("remove failed")
	}
	if len(shallow.Pools[0]) != 2 || shallow.Pools[0][0].ID != a.ID || shallow.Pools[0][1].ID != b.ID {
		t.Fatalf("shallow copy pool rewritten: %+v", shallow.Pools[0])
	}
	if !slices.Equal(shallow.FixedOrder, []string{a.ID, b.ID}) {
		t.Fatalf("shallow copy order rewritten: %v", shallow.FixedOrder)
	}
	if len(cfg.Pools[0]) != 1 || !slices.Equal(cfg.FixedOrder, []string{b.ID}) {
		t.Fatalf("after remove: pool=%v order=%v", cfg.Pools[0], cfg.FixedOrder)
	}
}

func TestConfigTieBreakPairing(t *testing.T) {
	cases := []struct {
		mode Mode
		tb   TieBreak
		want TieBreak
	}{
		{"", "", TieBreakFirst},
		{ModeFixed, "", TieBreakFirst},
		{ModeRandom, "", TieBreakUniform},
		{ModeRandom, TieBreakFirst, TieBreakFirst},
		{ModeFixed, TieBreakUniform, TieBreakUniform},
	}
	for _, c := range cases {
		cfg := Config{Mode: c.mode, TieBreak: c.tb}
		if got := cfg.EffectiveTieBreak(); got != c.want {
			t.Errorf("mode=%q tb=%q: got %q want %q", c.mode, c.tb, got, c.want)
		}
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	cfg := NewConfig("k", 4)
	_, _ = cfg.AddEntrant(1, "A")
	cp := cfg.Clone()
	cp.Pools[0][0].Name = "changed"
	cp.FixedOrder[0] = "changed"
	if cfg.Pools[0][0].Name == "changed" || cfg.FixedOrder[0] == "changed" {
		t.Fatalf("clone shares memory with original")
	}
}

package draw

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock never fires on its own; tests fire timers explicitly.
type fakeClock struct {
	pending []*fakeTimer
	all     []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	c.all = append(c.all, t)
	return t
}

// fire runs the oldest live timer and reports whether one ran.
func (c *fakeClock) fire() bool {
	for len(c.pending) > 0 {
		t := c.pending[0]
		c.pending = c.pending[1:]
		if t.stopped {
			continue
		}
		t.stopped = true
		t.f()
		return true
	}
	return false
}

type event struct {
	kind  string // "phase", "place", "complete"
	phase Phase
	row   int
	col   int
	name  string
}

type recorder struct {
	events []event
}

func (r *recorder) PhaseChanged(p Phase, col int, name string) {
	r.events = append(r.events, event{kind: "phase", phase: p, col: col, name: name})
}

func (r *recorder) PlacementCommitted(row, col int, name string) {
	r.events = append(r.events, event{kind: "place", row: row, col: col, name: name})
}

func (r *recorder) CycleComplete() {
	r.events = append(r.events, event{kind: "complete"})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) placements() []event {
	var out []event
	for _, e := range r.events {
		if e.kind == "place" {
			out = append(out, e)
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makePools builds pools with predictable ids "p<pool>-<i>" and names "Team <pool>-<i>".
func makePools(sizes [NumPools]int) Pools {
	var p Pools
	for i, n := range sizes {
		for j := 0; j < n; j++ {
			p[i] = append(p[i], Entrant{
				ID:   fmt.Sprintf("p%d-%d", i+1, j),
				Name: fmt.Sprintf("Team %d-%d", i+1, j),
				Pool: i + 1,
			})
		}
	}
	return p
}

// concatOrder lists every id pool by pool in insertion order.
func concatOrder(p *Pools) []string {
	var out []string
	for pool := 1; pool <= NumPools; pool++ {
		out = append(out, p.IDs(pool)...)
	}
	return out
}

type harness struct {
	pools   Pools
	grid    *Grid
	clock   *fakeClock
	rec     *recorder
	session *Session
	m       *Machine
}

func newHarness(t *testing.T, pools Pools, zones int, policy TieBreak) *harness {
	t.Helper()
	g, err := NewGrid(zones)
	if err != nil {
		t.Fatalf("NewGrid(%d): %v", zones, err)
	}
	h := &harness{pools: pools, grid: g, clock: &fakeClock{}, rec: &recorder{}, session: &Session{}}
	h.m = NewMachine(MachineConfig{
		Pools:       &h.pools,
		Grid:        h.grid,
		TieBreak:    policy,
		RNG:         NewSeededRNG(7),
		Clock:       h.clock,
		SettleDelay: DefaultSettleDelay,
		Observer:    h.rec,
		Logger:      quietLogger(),
	}, h.session)
	return h
}

// step plays the presentation layer for one transition.
func (h *harness) step(t *testing.T) {
	t.Helper()
	switch h.m.Phase() {
	case PhaseSpinning, PhaseOpening, PhaseClosing:
		if err := h.m.PhaseFinished(); err != nil {
			t.Fatalf("PhaseFinished in %s: %v", h.m.Phase(), err)
		}
	case PhaseRevealing:
		if !h.clock.fire() {
			t.Fatalf("revealing without a pending settle timer")
		}
	default:
		t.Fatalf("step called in phase %s", h.m.Phase())
	}
}

// runToEnd drives the machine until the pass completes.
func (h *harness) runToEnd(t *testing.T) {
	t.Helper()
	for i := 0; h.m.Phase().Active(); i++ {
		if i > 10000 {
			t.Fatalf("machine did not complete")
		}
		h.step(t)
	}
}

// runUntil drives the machine until it reaches phase p.
func (h *harness) runUntil(t *testing.T, p Phase) {
	t.Helper()
	for i := 0; h.m.Phase() != p; i++ {
		if i > 10000 || !h.m.Phase().Active() {
			t.Fatalf("never reached phase %s", p)
		}
		h.step(t)
	}
}

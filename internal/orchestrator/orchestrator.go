// Package orchestrator owns one category's draw: its configuration, grid,
// session and machine. All state lives on a single actor goroutine; public
// methods post work to it and wait for the result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xtding233/bolillero/internal/category"
	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/store"
)

var (
	// ErrStopped is returned once Run has exited.
	ErrStopped = errors.New("orchestrator stopped")
	// ErrNotLoaded is returned by draw operations before Load.
	ErrNotLoaded = errors.New("no category loaded")
)

// Config wires an Orchestrator. Everything but Store is optional.
type Config struct {
	Store     *store.BestEffort
	Settings  category.Resolver
	Overrides category.Overrides
	Clock     draw.Clock
	RNG       draw.RandomSource
	Observer  draw.Observer
	Logger    *slog.Logger
}

// Snapshot is a copy of the draw state that shares nothing with the actor.
type Snapshot struct {
	Loaded   bool
	Config   draw.Config
	Settings category.Settings
	Zones    []draw.Zone
	Session  draw.Session
}

// Orchestrator is the single owner of a draw. Observer callbacks run on the
// actor goroutine and must not call back into the Orchestrator synchronously.
type Orchestrator struct {
	store     *store.BestEffort
	settings  category.Resolver
	overrides category.Overrides
	clock     draw.Clock
	rng       draw.RandomSource
	obs       draw.Observer
	log       *slog.Logger

	cmds chan func()
	done chan struct{}

	// owned by the actor
	loaded  bool
	cfg     draw.Config
	set     category.Settings
	grid    *draw.Grid
	session *draw.Session
	machine *draw.Machine
}

// New returns an Orchestrator; start it with Run.
func New(c Config) *Orchestrator {
	o := &Orchestrator{
		store:     c.Store,
		settings:  c.Settings,
		overrides: c.Overrides,
		rng:       c.RNG,
		obs:       c.Observer,
		log:       c.Logger,
		cmds:      make(chan func()),
		done:      make(chan struct{}),
		session:   &draw.Session{},
	}
	if o.rng == nil {
		o.rng = draw.DefaultRNG()
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	inner := c.Clock
	if inner == nil {
		inner = draw.SystemClock{}
	}
	o.clock = loopClock{inner: inner, post: o.post}
	return o
}

// Run serves requests until ctx is done. Pending timers are cancelled on exit.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer close(o.done)
	for {
		select {
		case fn := <-o.cmds:
			fn()
		case <-ctx.Done():
			if o.machine != nil && o.session.Phase.Active() {
				o.machine.Reset()
			}
			return ctx.Err()
		}
	}
}

// do runs fn on the actor and returns its error.
func (o *Orchestrator) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case o.cmds <- func() { errc <- fn() }:
	case <-o.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// the actor runs fn before it can exit
	return <-errc
}

// post queues f on the actor without waiting for it. Dropped after Run exits.
func (o *Orchestrator) post(f func()) {
	select {
	case o.cmds <- f:
	case <-o.done:
	}
}

// Load makes key the current category. Saved state wins. Without it the zone
// count comes from the overrides, then the category files, then the stored
// category definition, then the built-in default.
func (o *Orchestrator) Load(ctx context.Context, key string) error {
	set := o.resolveSettings(key)
	var (
		saved draw.Config
		ok    bool
		defs  []store.CategoryDefinition
	)
	if o.store != nil {
		saved, ok = o.store.Load(ctx, key)
		if !ok {
			defs = o.store.Categories(ctx)
		}
	}
	return o.do(ctx, func() error {
		if o.session.Phase.Active() {
			return draw.ErrCycleActive
		}
		cfg := saved
		if !ok {
			cfg = draw.NewConfig(key, set.ZoneCount)
			cfg.Mode = set.Mode
			cfg.TieBreak = set.TieBreak
			if def, found := store.FindCategory(defs, key); found {
				if !set.ZonesSet {
					cfg.ZoneCount = def.ZoneCount
				}
				if set.PoolSizes == ([draw.NumPools]int{}) {
					set.PoolSizes = def.PoolSizes
				}
			}
			o.log.Info("no saved draw state; using category defaults", "category", key, "zones", cfg.ZoneCount)
		}
		cfg.Key = key
		if cfg.Mode == "" {
			cfg.Mode = set.Mode
		}
		grid, err := draw.NewGrid(cfg.ZoneCount)
		if err != nil {
			o.log.Warn("stored zone count invalid; using category default", "category", key, "zones", cfg.ZoneCount, "default", set.ZoneCount)
			cfg.ZoneCount = set.ZoneCount
			if grid, err = draw.NewGrid(cfg.ZoneCount); err != nil {
				return err
			}
		}
		o.machine = nil
		o.session = &draw.Session{}
		o.cfg, o.set, o.grid, o.loaded = cfg, set, grid, true
		o.log.Info("category loaded", "category", key, "zones", cfg.ZoneCount, "entrants", cfg.Pools.Len(), "mode", cfg.EffectiveMode())
		return nil
	})
}

func (o *Orchestrator) resolveSettings(key string) category.Settings {
	if o.settings == nil {
		return applyOverrides(category.Defaults(key), o.overrides)
	}
	_, s, err := o.settings.Resolve(key, o.overrides)
	if err == nil {
		return s
	}
	_, s, ferr := o.settings.Resolve(key, category.Overrides{})
	if ferr != nil {
		o.log.Error("category settings invalid; using defaults", "category", key, "error", ferr)
		return applyOverrides(category.Defaults(key), o.overrides)
	}
	o.log.Warn("overrides conflict with category settings", "category", key, "error", err)
	return o.keepValidOverrides(key, s)
}

// keepValidOverrides applies each override on its own and drops the ones the
// category file rejects, so one bad value leaves the rest of the file intact.
func (o *Orchestrator) keepValidOverrides(key string, s category.Settings) category.Settings {
	ov := o.overrides
	try := func(field string, one category.Overrides, apply func(category.Settings)) {
		_, r, err := o.settings.Resolve(key, one)
		if err != nil {
			o.log.Warn("override ignored", "category", key, "field", field, "error", err)
			return
		}
		apply(r)
	}
	if ov.Zones != nil {
		try("zones", category.Overrides{Zones: ov.Zones}, func(r category.Settings) {
			s.ZoneCount, s.ZonesSet = r.ZoneCount, true
		})
	}
	if ov.Mode != nil {
		try("mode", category.Overrides{Mode: ov.Mode}, func(r category.Settings) { s.Mode = r.Mode })
	}
	if ov.TieBreak != nil {
		try("tie_break", category.Overrides{TieBreak: ov.TieBreak}, func(r category.Settings) { s.TieBreak = r.TieBreak })
	}
	if ov.Settle != nil {
		try("settle", category.Overrides{Settle: ov.Settle}, func(r category.Settings) { s.Settle = r.Settle })
	}
	return s
}

// applyOverrides is the fallback when no resolver validated the overrides.
func applyOverrides(s category.Settings, ov category.Overrides) category.Settings {
	if ov.Zones != nil && *ov.Zones >= draw.MinZones && *ov.Zones <= draw.MaxZones {
		s.ZoneCount, s.ZonesSet = *ov.Zones, true
	}
	if ov.Mode != nil && draw.Mode(*ov.Mode).Valid() {
		s.Mode = draw.Mode(*ov.Mode)
	}
	if ov.TieBreak != nil && draw.TieBreak(*ov.TieBreak).Valid() {
		s.TieBreak = draw.TieBreak(*ov.TieBreak)
	}
	if ov.Settle != nil && *ov.Settle > 0 {
		s.Settle = *ov.Settle
	}
	return s
}

// edit applies fn to the configuration while no draw is running, then saves.
func (o *Orchestrator) edit(ctx context.Context, fn func(cfg *draw.Config) error) error {
	return o.do(ctx, func() error {
		if !o.loaded {
			return ErrNotLoaded
		}
		if o.session.Phase.Active() {
			return draw.ErrCycleActive
		}
		next := o.cfg.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		o.cfg = next
		o.save()
		return nil
	})
}

func (o *Orchestrator) save() {
	if o.store != nil {
		o.store.Save(o.cfg)
	}
}

// AddEntrant appends a named entrant to pool (1..4) and to the draw order.
func (o *Orchestrator) AddEntrant(ctx context.Context, pool int, name string) (draw.Entrant, error) {
	var e draw.Entrant
	err := o.edit(ctx, func(cfg *draw.Config) error {
		var err error
		e, err = cfg.AddEntrant(pool, name)
		return err
	})
	return e, err
}

// RemoveEntrant deletes the entrant and its draw-order references.
func (o *Orchestrator) RemoveEntrant(ctx context.Context, id string) error {
	return o.edit(ctx, func(cfg *draw.Config) error {
		if !cfg.RemoveEntrant(id) {
			return fmt.Errorf("%w: unknown entrant %q", draw.ErrInvalidConfiguration, id)
		}
		return nil
	})
}

// MoveInOrder moves id one step up (delta -1) or down (+1) the fixed order.
func (o *Orchestrator) MoveInOrder(ctx context.Context, id string, delta int) error {
	return o.edit(ctx, func(cfg *draw.Config) error {
		if !cfg.MoveInOrder(id, delta) {
			return fmt.Errorf("%w: cannot move %q by %d", draw.ErrInvalidConfiguration, id, delta)
		}
		return nil
	})
}

// SetZoneCount resizes the grid. The current grid is replaced with an empty one.
func (o *Orchestrator) SetZoneCount(ctx context.Context, n int) error {
	return o.edit(ctx, func(cfg *draw.Config) error {
		if err := cfg.SetZoneCount(n); err != nil {
			return err
		}
		g, err := draw.NewGrid(n)
		if err != nil {
			return err
		}
		o.grid = g
		return nil
	})
}

// SetMode switches between fixed and random order.
func (o *Orchestrator) SetMode(ctx context.Context, m draw.Mode) error {
	return o.edit(ctx, func(cfg *draw.Config) error {
		if !m.Valid() {
			return fmt.Errorf("%w: unknown draw mode %q", draw.ErrInvalidConfiguration, m)
		}
		cfg.Mode = m
		return nil
	})
}

// SetTieBreak selects the placement policy; empty restores the mode's pairing.
func (o *Orchestrator) SetTieBreak(ctx context.Context, tb draw.TieBreak) error {
	return o.edit(ctx, func(cfg *draw.Config) error {
		if tb != "" && !tb.Valid() {
			return fmt.Errorf("%w: unknown tie-break policy %q", draw.ErrInvalidConfiguration, tb)
		}
		cfg.TieBreak = tb
		return nil
	})
}

// Start validates the configuration, resolves the order, empties the grid
// and begins the draw. Random order is re-shuffled on every start.
func (o *Orchestrator) Start(ctx context.Context) error {
	return o.do(ctx, func() error {
		if !o.loaded {
			return ErrNotLoaded
		}
		if o.session.Phase.Active() {
			return draw.ErrCycleActive
		}
		if err := o.cfg.Validate(); err != nil {
			return err
		}
		o.warnPoolSizes()

		cfg := o.cfg.Clone()
		order := draw.Resolve(&cfg.Pools, cfg.EffectiveMode(), cfg.FixedOrder, o.rng)
		if len(order) == 0 {
			return fmt.Errorf("%w: draw order is empty", draw.ErrInvalidConfiguration)
		}
		grid, err := draw.NewGrid(cfg.ZoneCount)
		if err != nil {
			return err
		}
		o.grid = grid
		o.session = &draw.Session{}
		o.machine = draw.NewMachine(draw.MachineConfig{
			Pools:       &cfg.Pools,
			Grid:        grid,
			TieBreak:    cfg.EffectiveTieBreak(),
			RNG:         o.rng,
			Clock:       o.clock,
			SettleDelay: o.set.Settle,
			Observer:    o.obs,
			Logger:      o.log.With("category", cfg.Key),
		}, o.session)
		o.log.Debug("draw order resolved", "category", cfg.Key, "mode", cfg.EffectiveMode(), "order", order)
		return o.machine.Start(order)
	})
}

// warnPoolSizes logs pools that differ from the category's expected size.
func (o *Orchestrator) warnPoolSizes() {
	for i, want := range o.set.PoolSizes {
		if got := len(o.cfg.Pools[i]); want > 0 && got != want {
			o.log.Warn("pool size differs from category definition", "category", o.cfg.Key, "pool", i+1, "entrants", got, "expected", want)
		}
	}
}

// PhaseFinished reports that the presentation finished the current phase.
func (o *Orchestrator) PhaseFinished(ctx context.Context) error {
	return o.do(ctx, func() error {
		if o.machine == nil {
			return draw.ErrNotAwaitingSignal
		}
		return o.machine.PhaseFinished()
	})
}

// Reset aborts any draw in flight and empties the grid.
func (o *Orchestrator) Reset(ctx context.Context) error {
	return o.do(ctx, func() error {
		if o.machine != nil {
			o.machine.Reset()
		}
		if o.grid != nil {
			o.grid.Reset()
		}
		return nil
	})
}

// Snapshot copies the current state.
func (o *Orchestrator) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := o.do(ctx, func() error {
		snap = Snapshot{
			Loaded:   o.loaded,
			Config:   o.cfg.Clone(),
			Settings: o.set,
			Session:  o.session.Snapshot(),
		}
		if o.grid != nil {
			snap.Zones = o.grid.Zones()
		}
		return nil
	})
	return snap, err
}

// loopClock runs timer callbacks on the actor instead of the timer goroutine.
type loopClock struct {
	inner draw.Clock
	post  func(func())
}

func (c loopClock) AfterFunc(d time.Duration, f func()) draw.Timer {
	return c.inner.AfterFunc(d, func() { c.post(f) })
}

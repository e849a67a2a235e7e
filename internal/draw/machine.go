package draw

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Reveal hold bounds.
const (
	MinSettleDelay     = 1500 * time.Millisecond
	DefaultSettleDelay = 2 * time.Second
)

// Session is the transient state of one draw pass. The orchestrator owns it;
// only the Machine mutates it.
type Session struct {
	Order      []string
	Cursor     int
	Current    *Entrant // entrant in flight, nil between entrants
	Phase      Phase
	Generation uint64 // bumped on Start and Reset; guards timer callbacks

	Placed    int // successful placements this pass
	Exhausted int // placements skipped for a full column
}

// Column returns the active pool column or NoColumn.
func (s *Session) Column() int {
	if s.Current == nil {
		return NoColumn
	}
	return s.Current.Column()
}

// Snapshot returns a copy that shares nothing with s.
func (s *Session) Snapshot() Session {
	out := *s
	out.Order = append([]string(nil), s.Order...)
	if s.Current != nil {
		cur := *s.Current
		out.Current = &cur
	}
	return out
}

// MachineConfig wires a Machine to the pools and grid it works on.
type MachineConfig struct {
	Pools       *Pools
	Grid        *Grid
	TieBreak    TieBreak
	RNG         RandomSource
	Clock       Clock
	SettleDelay time.Duration // clamped to MinSettleDelay
	Observer    Observer
	Logger      *slog.Logger
}

// Machine advances a draw order one entrant at a time through
// spinning → opening → revealing → closing and commits each placement
// while closing. It is not safe for concurrent use: every method and every
// timer callback must run on the same logical owner.
type Machine struct {
	cfg   MachineConfig
	s     *Session
	index map[string]Entrant
	timer Timer
}

// NewMachine returns a machine that records its progress in s.
func NewMachine(cfg MachineConfig, s *Session) *Machine {
	if cfg.RNG == nil {
		cfg.RNG = DefaultRNG()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.SettleDelay < MinSettleDelay {
		cfg.SettleDelay = MinSettleDelay
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !cfg.TieBreak.Valid() {
		cfg.TieBreak = TieBreakFirst
	}
	return &Machine{cfg: cfg, s: s}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.s.Phase }

// SettleDelay returns the effective reveal hold.
func (m *Machine) SettleDelay() time.Duration { return m.cfg.SettleDelay }

// Start begins a pass over order at cursor 0.
func (m *Machine) Start(order []string) error {
	if m.s.Phase.Active() {
		return ErrCycleActive
	}
	if len(order) == 0 {
		return fmt.Errorf("%w: draw order is empty", ErrInvalidConfiguration)
	}
	m.stopTimer()
	m.index = m.cfg.Pools.Index()
	m.s.Generation++
	m.s.Order = append([]string(nil), order...)
	m.s.Cursor = 0
	m.s.Current = nil
	m.s.Placed, m.s.Exhausted = 0, 0

	m.cfg.Logger.Info("draw started", "entrants", len(order), "generation", m.s.Generation, "tie_break", m.cfg.TieBreak)
	m.advance()
	return nil
}

// PhaseFinished consumes the presentation layer's "animation done" signal.
func (m *Machine) PhaseFinished() error {
	switch m.s.Phase {
	case PhaseSpinning:
		m.enter(PhaseOpening)
	case PhaseOpening:
		m.enter(PhaseRevealing)
		m.armSettle()
	case PhaseClosing:
		m.s.Current = nil
		m.enter(PhaseIdle)
		m.s.Cursor++
		m.advance()
	default:
		return fmt.Errorf("%w (phase %s)", ErrNotAwaitingSignal, m.s.Phase)
	}
	return nil
}

// Reset abandons the pass. Committed placements stay; clearing the grid is the
// owner's job.
func (m *Machine) Reset() {
	m.stopTimer()
	m.s.Generation++
	m.s.Order = nil
	m.s.Cursor = 0
	m.s.Current = nil
	m.enter(PhaseIdle)
	m.cfg.Logger.Info("draw reset", "generation", m.s.Generation)
}

// advance moves to the first resolvable entrant at or after the cursor,
// or completes the pass.
func (m *Machine) advance() {
	for m.s.Cursor < len(m.s.Order) {
		id := m.s.Order[m.s.Cursor]
		e, ok := m.index[id]
		if !ok {
			m.cfg.Logger.Debug("skipping draw order entry", "id", id, "cursor", m.s.Cursor, "error", ErrStaleReference)
			m.s.Cursor++
			continue
		}
		m.s.Current = &e
		m.enter(PhaseSpinning)
		return
	}

	m.s.Current = nil
	m.enter(PhaseComplete)
	m.cfg.Logger.Info("draw complete", "placed", m.s.Placed, "exhausted", m.s.Exhausted)
	m.cfg.Observer.CycleComplete()
}

func (m *Machine) enter(p Phase) {
	m.s.Phase = p
	name := ""
	if m.s.Current != nil {
		name = m.s.Current.Name
	}
	m.cfg.Observer.PhaseChanged(p, m.s.Column(), name)
}

func (m *Machine) armSettle() {
	gen, cursor := m.s.Generation, m.s.Cursor
	m.timer = m.cfg.Clock.AfterFunc(m.cfg.SettleDelay, func() {
		m.settled(gen, cursor)
	})
}

// settled runs when the reveal hold elapses.
func (m *Machine) settled(gen uint64, cursor int) {
	if gen != m.s.Generation || cursor != m.s.Cursor || m.s.Phase != PhaseRevealing {
		m.cfg.Logger.Debug("ignoring stale settle timer", "generation", gen, "current_generation", m.s.Generation)
		return
	}
	m.timer = nil
	m.enter(PhaseClosing)
	m.commit()
}

func (m *Machine) commit() {
	e := *m.s.Current
	row, err := Place(m.cfg.Grid, e, m.cfg.TieBreak, m.cfg.RNG)
	switch {
	case err == nil:
		m.s.Placed++
		m.cfg.Logger.Debug("placement committed", "entrant", e.Name, "zone", ZoneName(row), "column", e.Column())
	case errors.Is(err, ErrGridExhausted):
		m.s.Exhausted++
		row = NoRow
		m.cfg.Logger.Warn("placement skipped", "entrant", e.Name, "column", e.Column(), "error", err)
	default:
		row = NoRow
		m.cfg.Logger.Warn("placement rejected", "entrant", e.Name, "error", err)
	}
	m.cfg.Observer.PlacementCommitted(row, e.Column(), e.Name)
}

func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

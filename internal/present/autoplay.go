// Package present holds the presentation-side observers of a draw: a
// headless autoplay driver, a log view, a terminal board and a sound cue.
package present

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xtding233/bolillero/internal/draw"
)

// Signaler receives "animation finished" signals.
type Signaler interface {
	PhaseFinished(ctx context.Context) error
}

// SignalFunc adapts a function to Signaler.
type SignalFunc func(ctx context.Context) error

func (f SignalFunc) PhaseFinished(ctx context.Context) error { return f(ctx) }

// Timings are the animation lengths Autoplay waits out.
type Timings struct {
	Spin  time.Duration
	Open  time.Duration
	Close time.Duration
}

// Autoplay stands in for the cage animation: after each spin, open and close
// phase it waits the matching duration and signals the target.
type Autoplay struct {
	ctx    context.Context
	target Signaler
	clock  draw.Clock
	t      Timings
	log    *slog.Logger

	mu    sync.Mutex
	timer draw.Timer
	seq   uint64
}

// NewAutoplay signals target until ctx is done.
func NewAutoplay(ctx context.Context, target Signaler, clock draw.Clock, t Timings, log *slog.Logger) *Autoplay {
	if clock == nil {
		clock = draw.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Autoplay{ctx: ctx, target: target, clock: clock, t: t, log: log}
}

func (a *Autoplay) PhaseChanged(p draw.Phase, _ int, _ string) {
	switch p {
	case draw.PhaseSpinning:
		a.schedule(a.t.Spin)
	case draw.PhaseOpening:
		a.schedule(a.t.Open)
	case draw.PhaseClosing:
		a.schedule(a.t.Close)
	case draw.PhaseIdle, draw.PhaseComplete:
		a.cancel()
	}
}

func (a *Autoplay) PlacementCommitted(int, int, string) {}

func (a *Autoplay) CycleComplete() {}

func (a *Autoplay) schedule(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	seq := a.seq
	a.timer = a.clock.AfterFunc(d, func() { a.fire(seq) })
}

func (a *Autoplay) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Autoplay) stopLocked() {
	a.seq++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autoplay) fire(seq uint64) {
	a.mu.Lock()
	if seq != a.seq {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if err := a.target.PhaseFinished(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Debug("autoplay signal rejected", "error", err)
	}
}

package draw

// Phase is one stage of the per-entrant presentation cycle.
type Phase int

const (
	PhaseIdle      Phase = iota // between entrants, or before start
	PhaseSpinning               // cage spinning; waits for the presentation layer
	PhaseOpening                // cage opening; waits for the presentation layer
	PhaseRevealing              // name shown; waits for the settle timer
	PhaseClosing                // placement committed; waits for the presentation layer
	PhaseComplete               // sequence exhausted
)

var phaseNames = map[Phase]string{
	PhaseIdle:      "idle",
	PhaseSpinning:  "spinning",
	PhaseOpening:   "opening",
	PhaseRevealing: "revealing",
	PhaseClosing:   "closing",
	PhaseComplete:  "complete",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Active reports whether a draw cycle is in progress.
func (p Phase) Active() bool {
	return p != PhaseIdle && p != PhaseComplete
}

// NoColumn is reported when no cage is active.
const NoColumn = -1

// Observer is the presentation layer's view of the machine.
type Observer interface {
	// PhaseChanged fires on every transition. column is NoColumn and name is
	// empty when no entrant is on display.
	PhaseChanged(phase Phase, column int, name string)
	// PlacementCommitted fires once per drawn entrant; row is NoRow when the
	// column was already full.
	PlacementCommitted(row, column int, name string)
	// CycleComplete fires once when the order is exhausted.
	CycleComplete()
}

// Observers fans every callback out to each member in order.
type Observers []Observer

func (obs Observers) PhaseChanged(phase Phase, column int, name string) {
	for _, o := range obs {
		o.PhaseChanged(phase, column, name)
	}
}

func (obs Observers) PlacementCommitted(row, column int, name string) {
	for _, o := range obs {
		o.PlacementCommitted(row, column, name)
	}
}

func (obs Observers) CycleComplete() {
	for _, o := range obs {
		o.CycleComplete()
	}
}

type nopObserver struct{}

func (nopObserver) PhaseChanged(Phase, int, string)    {}
func (nopObserver) PlacementCommitted(int, int, string) {}
func (nopObserver) CycleComplete()                      {}

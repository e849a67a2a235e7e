package draw

// Mode selects how the draw order is produced.
type Mode string

const (
	// ModeFixed draws in the operator-curated order.
	ModeFixed Mode = "fixed"
	// ModeRandom shuffles each pool independently at every draw start.
	ModeRandom Mode = "random"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeFixed || m == ModeRandom }

// TieBreak selects among several empty rows when placing an entrant.
type TieBreak string

const (
	// TieBreakFirst takes the lowest empty row.
	TieBreakFirst TieBreak = "first"
	// TieBreakUniform takes any empty row with equal probability.
	TieBreakUniform TieBreak = "uniform"
)

// Valid reports whether t is a known policy.
func (t TieBreak) Valid() bool { return t == TieBreakFirst || t == TieBreakUniform }

// DefaultTieBreak returns the policy conventionally paired with m.
func DefaultTieBreak(m Mode) TieBreak {
	if m == ModeRandom {
		return TieBreakUniform
	}
	return TieBreakFirst
}

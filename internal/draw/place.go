package draw

import "fmt"

// NoRow is reported as the row of a placement that found its column full.
const NoRow = -1

// Place writes e into an empty cell of its pool column and returns the row used.
//
// Eligible rows are those whose cell in column e.Pool-1 is empty. TieBreakFirst
// takes the lowest; TieBreakUniform picks one with equal probability. A full
// column yields ErrGridExhausted and leaves the grid untouched. Exactly one
// cell changes on success.
func Place(g *Grid, e Entrant, policy TieBreak, rng RandomSource) (int, error) {
	col := e.Column()
	if col < 0 || col >= NumPools {
		return NoRow, fmt.Errorf("%w: entrant %q has pool %d", ErrInvalidConfiguration, e.ID, e.Pool)
	}
	if row, ok := g.Placed(e.ID); ok {
		return row, fmt.Errorf("%w: %q in row %d", ErrAlreadyPlaced, e.ID, row)
	}

	rows := g.EmptyRows(col)
	if len(rows) == 0 {
		return NoRow, ErrGridExhausted
	}

	row := rows[0]
	if policy == TieBreakUniform && len(rows) > 1 {
		if rng == nil {
			rng = DefaultRNG()
		}
		row = rows[rng.IntN(len(rows))]
	}
	g.set(row, col, e)
	return row, nil
}

package draw

import "fmt"

// Zone count bounds.
const (
	MinZones = 4
	MaxZones = 8
)

var zoneLabels = [MaxZones]string{"A", "B", "C", "D", "E", "F", "G", "H"}

// ZoneName returns the display label of row i ("Zona A" ...).
func ZoneName(i int) string {
	if i < 0 || i >= MaxZones {
		return fmt.Sprintf("Zona %d", i+1)
	}
	return "Zona " + zoneLabels[i]
}

// Cell is one pool-column slot of a zone. Empty when EntrantID is "".
type Cell struct {
	EntrantID string `json:"entrant_id,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Empty reports whether nothing has been placed in c.
func (c Cell) Empty() bool { return c.EntrantID == "" }

// Zone is one grid row: one cell per pool.
type Zone [NumPools]Cell

// Grid is the target assignment surface.
// Cells are written at most once between resets.
type Grid struct {
	zones  []Zone
	placed map[string]int // entrant id -> row
}

// NewGrid returns an all-empty grid with n zones.
func NewGrid(n int) (*Grid, error) {
	if n < MinZones || n > MaxZones {
		return nil, fmt.Errorf("%w: zone count %d outside [%d,%d]", ErrInvalidConfiguration, n, MinZones, MaxZones)
	}
	return &Grid{
		zones:  make([]Zone, n),
		placed: make(map[string]int),
	}, nil
}

// Len returns the number of zones.
func (g *Grid) Len() int { return len(g.zones) }

// Reset empties every cell.
func (g *Grid) Reset() {
	for i := range g.zones {
		g.zones[i] = Zone{}
	}
	clear(g.placed)
}

// Cell returns the cell at (row, col); out-of-range reads return an empty cell.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.zones) || col < 0 || col >= NumPools {
		return Cell{}
	}
	return g.zones[row][col]
}

// Zones returns a copy of all rows.
func (g *Grid) Zones() []Zone {
	return append([]Zone(nil), g.zones...)
}

// EmptyRows lists the rows whose cell in col is empty, ascending.
func (g *Grid) EmptyRows(col int) []int {
	if col < 0 || col >= NumPools {
		return nil
	}
	var rows []int
	for i := range g.zones {
		if g.zones[i][col].Empty() {
			rows = append(rows, i)
		}
	}
	return rows
}

// Placed reports the row holding id, if any.
func (g *Grid) Placed(id string) (int, bool) {
	row, ok := g.placed[id]
	return row, ok
}

// Filled counts non-empty cells.
func (g *Grid) Filled() int { return len(g.placed) }

// set writes e into (row, col). Callers must have checked emptiness and uniqueness.
func (g *Grid) set(row, col int, e Entrant) {
	g.zones[row][col] = Cell{EntrantID: e.ID, Name: e.Name}
	g.placed[e.ID] = row
}

package present

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/xtding233/bolillero/internal/draw"
)

// Canvas is the part of tcell.Screen the board draws on.
type Canvas interface {
	Clear()
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
	Show()
}

var _ Canvas = tcell.Screen(nil)

const (
	labelWidth = 8
	cellWidth  = 18
)

var (
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCell     = tcell.StyleDefault
	styleActive   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleRevealed = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleWarn     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Board renders the four cages and the zone grid. It redraws on every event.
type Board struct {
	mu     sync.Mutex
	canvas Canvas
	title  string
	cells  [][draw.NumPools]string
	phase  draw.Phase
	column int
	name   string
	status string
}

// NewBoard returns a board with an empty grid of zones rows.
func NewBoard(canvas Canvas, title string, zones int) *Board {
	b := &Board{canvas: canvas, title: title}
	b.Reset(zones)
	return b
}

// Reset empties the grid and redraws.
func (b *Board) Reset(zones int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = make([][draw.NumPools]string, zones)
	b.phase, b.column, b.name, b.status = draw.PhaseIdle, draw.NoColumn, "", ""
	b.render()
}

func (b *Board) PhaseChanged(p draw.Phase, column int, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase, b.column, b.name = p, column, name
	if p == draw.PhaseSpinning {
		b.status = ""
	}
	b.render()
}

func (b *Board) PlacementCommitted(row, column int, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if row == draw.NoRow {
		b.status = fmt.Sprintf("Bolillero %d lleno: %s sin lugar", column+1, name)
	} else if row < len(b.cells) && column >= 0 && column < draw.NumPools {
		b.cells[row][column] = name
	}
	b.render()
}

func (b *Board) CycleComplete() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = "Sorteo finalizado"
	b.render()
}

// render must be called with mu held.
func (b *Board) render() {
	c := b.canvas
	c.Clear()
	w, _ := c.Size()

	text(c, 0, 0, w, b.title, styleTitle)

	// cages
	for col := 0; col < draw.NumPools; col++ {
		x := labelWidth + col*cellWidth
		label := fmt.Sprintf("Bolillero %d", col+1)
		style := styleLabel
		state := ""
		if col == b.column {
			style = styleActive
			state = b.phase.String()
			if b.phase == draw.PhaseRevealing || b.phase == draw.PhaseClosing {
				state = b.name
			}
		}
		text(c, x, 2, x+cellWidth-1, label, style)
		text(c, x, 3, x+cellWidth-1, state, style)
	}

	// grid
	for row, cells := range b.cells {
		y := 5 + row
		text(c, 0, y, labelWidth, draw.ZoneName(row), styleLabel)
		for col, name := range cells {
			x := labelWidth + col*cellWidth
			style := styleCell
			if name == "" {
				name = "-"
				style = styleLabel
			} else if name == b.name && b.phase == draw.PhaseClosing && col == b.column {
				style = styleRevealed
			}
			text(c, x, y, x+cellWidth-1, name, style)
		}
	}

	if b.status != "" {
		text(c, 0, 6+len(b.cells), w, b.status, styleWarn)
	}
	c.Show()
}

// text draws s from x, clipped before limit. Wide runes take two columns.
func text(c Canvas, x, y, limit int, s string, style tcell.Style) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > limit {
			return
		}
		c.SetContent(x, y, r, nil, style)
		x += rw
	}
}

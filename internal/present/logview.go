package present

import (
	"log/slog"

	"github.com/xtding233/bolillero/internal/draw"
)

// LogView narrates a draw through slog.
type LogView struct {
	log *slog.Logger
}

func NewLogView(log *slog.Logger) *LogView {
	if log == nil {
		log = slog.Default()
	}
	return &LogView{log: log}
}

func (v *LogView) PhaseChanged(p draw.Phase, column int, name string) {
	switch p {
	case draw.PhaseRevealing:
		v.log.Info("entrant revealed", "pool", column+1, "name", name)
	case draw.PhaseComplete:
		v.log.Info("draw finished")
	default:
		v.log.Debug("phase changed", "phase", p.String(), "pool", column+1, "name", name)
	}
}

func (v *LogView) PlacementCommitted(row, column int, name string) {
	if row == draw.NoRow {
		v.log.Warn("pool column full; entrant not placed", "pool", column+1, "name", name)
		return
	}
	v.log.Info("entrant placed", "zone", draw.ZoneName(row), "pool", column+1, "name", name)
}

func (v *LogView) CycleComplete() {
	v.log.Info("all entrants drawn")
}

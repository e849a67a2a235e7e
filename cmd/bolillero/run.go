package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/bolillero/internal/category"
	"github.com/xtding233/bolillero/internal/config"
	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/orchestrator"
	"github.com/xtding233/bolillero/internal/present"
	"github.com/xtding233/bolillero/internal/store"
)

// completion signals the end of each draw pass.
type completion chan struct{}

func (completion) PhaseChanged(draw.Phase, int, string) {}
func (completion) PlacementCommitted(int, int, string)  {}

func (c completion) CycleComplete() {
	select {
	case c <- struct{}{}:
	default:
	}
}

func cmdRun(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var ro runOptions
	runFlags(fs, &cfg, &ro)
	if err := parse(fs, &cfg, args); err != nil {
		return err
	}
	if ro.Rounds < 1 {
		return fmt.Errorf("%w: -rounds must be >= 1", errUsage)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.TUI {
		// the board owns the terminal; logs go to a file
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, "bolillero.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log = cfg.Logger(f)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	be := store.NewBestEffort(st, log)
	defer be.Close()

	loader := category.NewLoader(cfg.ConfigDir)
	ov := ro.overrides(cfg)
	_, set, err := loader.Resolve(cfg.Category, ov)
	if err != nil {
		log.Warn("category settings invalid; using defaults", "category", cfg.Category, "error", err)
		set = category.Defaults(cfg.Category)
	}
	timings := present.Timings{
		Spin:  pick(cfg.Spin, set.Spin),
		Open:  pick(cfg.Open, set.Open),
		Close: pick(cfg.Close, set.Close),
	}

	var o *orchestrator.Orchestrator
	done := make(completion, 1)
	obs := draw.Observers{
		present.NewAutoplay(ctx, present.SignalFunc(func(ctx context.Context) error { return o.PhaseFinished(ctx) }), nil, timings, log),
		present.NewLogView(log),
		done,
	}

	var (
		board *present.Board
		keys  chan struct{}
	)
	if cfg.TUI {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}
		defer screen.Fini()
		board = present.NewBoard(screen, "Sorteo categoría "+cfg.Category, set.ZoneCount)
		obs = append(obs, board)
		keys = pollKeys(screen, cancel)
	}
	if cfg.Sound {
		chime := present.NewChime(log)
		if err := chime.Init(); err == nil {
			defer chime.Close()
			obs = append(obs, chime)
		}
	}

	rng := draw.DefaultRNG()
	if cfg.Seed != 0 {
		rng = draw.NewSeededRNG(cfg.Seed)
	}
	o = orchestrator.New(orchestrator.Config{
		Store:     be,
		Settings:  loader,
		Overrides: ov,
		RNG:       rng,
		Observer:  obs,
		Logger:    log,
	})
	go o.Run(ctx)

	if ro.Watch {
		w := category.WatchLoader(loader, cfg.WatchInterval, func(path string) {
			log.Info("category file changed; applies from the next round", "path", path)
		})
		go w.Run(ctx)
	}

	for round := 1; round <= ro.Rounds; round++ {
		if err := o.Load(ctx, cfg.Category); err != nil {
			return err
		}
		snap, err := o.Snapshot(ctx)
		if err != nil {
			return err
		}
		if board != nil {
			board.Reset(snap.Config.ZoneCount)
		}
		log.Info("starting draw", "category", cfg.Category, "round", round, "entrants", snap.Config.Pools.Len())
		if err := o.Start(ctx); err != nil {
			return err
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if snap, err = o.Snapshot(ctx); err != nil {
			return err
		}
		if board == nil {
			printGrid(stdout, snap)
		}
	}

	if keys != nil {
		// keep the final board up until a key is pressed
		select {
		case <-keys:
		case <-ctx.Done():
		}
	}
	return nil
}

// pollKeys forwards key presses; Esc, q and Ctrl-C cancel the run.
func pollKeys(screen tcell.Screen, cancel context.CancelFunc) chan struct{} {
	keys := make(chan struct{}, 1)
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					cancel()
				}
				select {
				case keys <- struct{}{}:
				default:
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()
	return keys
}

func printGrid(w io.Writer, snap orchestrator.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "ZONA")
	for p := 1; p <= draw.NumPools; p++ {
		fmt.Fprintf(tw, "\tBOLILLERO %d", p)
	}
	fmt.Fprintln(tw)
	for row, zone := range snap.Zones {
		fmt.Fprint(tw, draw.ZoneName(row))
		for _, c := range zone {
			name := c.Name
			if c.Empty() {
				name = "-"
			}
			fmt.Fprintf(tw, "\t%s", name)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	fmt.Fprintf(w, "placed %d, without room %d\n", snap.Session.Placed, snap.Session.Exhausted)
}

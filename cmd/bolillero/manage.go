package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/xtding233/bolillero/internal/category"
	"github.com/xtding233/bolillero/internal/config"
	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/store"
)

// cmdImport replaces a category's draw state with the contents of a YAML file.
func cmdImport(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	if err := parse(fs, &cfg, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import takes exactly one file", errUsage)
	}

	dc, err := readDrawConfig(fs.Arg(0))
	if err != nil {
		return err
	}
	if dc.Key == "" {
		dc.Key = cfg.Category
	}
	if dc.ZoneCount == 0 {
		_, set, err := category.NewLoader(cfg.ConfigDir).Resolve(dc.Key, category.Overrides{})
		if err != nil {
			return err
		}
		dc.ZoneCount = set.ZoneCount
	}
	if err := dc.Validate(); err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveDrawState(ctx, dc); err != nil {
		return err
	}
	log.Info("draw state imported", "category", dc.Key, "entrants", dc.Pools.Len(), "store", cfg.Store)
	fmt.Fprintf(stdout, "imported %d entrants into category %s\n", dc.Pools.Len(), dc.Key)
	return nil
}

// readDrawConfig parses a draw configuration file. Names are NFC-normalised
// and a missing fixed order defaults to pool order.
func readDrawConfig(path string) (draw.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return draw.Config{}, err
	}
	var dc draw.Config
	if err := yaml.Unmarshal(b, &dc); err != nil {
		return draw.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range dc.Pools {
		for j := range dc.Pools[i] {
			e := &dc.Pools[i][j]
			e.Name = norm.NFC.String(strings.TrimSpace(e.Name))
			if e.Pool == 0 {
				e.Pool = i + 1
			}
		}
	}
	if len(dc.FixedOrder) == 0 {
		for p := 1; p <= draw.NumPools; p++ {
			dc.FixedOrder = append(dc.FixedOrder, dc.Pools.IDs(p)...)
		}
	}
	return dc, nil
}

// cmdCategories lists category definitions; with -sync it first writes the
// definitions resolved from the category YAML files into the store.
func cmdCategories(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	doSync := fs.Bool("sync", false, "store the definitions found in the category files")
	if err := parse(fs, &cfg, args); err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if *doSync {
		defs, err := category.NewLoader(cfg.ConfigDir).Definitions()
		if err != nil {
			st.Close()
			return err
		}
		saver, ok := st.(definitionSaver)
		if !ok {
			st.Close()
			return fmt.Errorf("store %s cannot save category definitions", cfg.Store)
		}
		if err := saver.SaveCategoryDefinitions(ctx, defs); err != nil {
			st.Close()
			return err
		}
		log.Info("category definitions synced", "count", len(defs))
	}

	be := store.NewBestEffort(st, log)
	defer be.Close()
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tZONES\tPOOL SIZES")
	for _, d := range be.Categories(ctx) {
		fmt.Fprintf(tw, "%s\t%d\t%v\n", d.Key, d.ZoneCount, d.PoolSizes)
	}
	return tw.Flush()
}

// cmdSimulate runs the random-order study on a category's pools. Without
// saved state the pools are synthesised from the category definition.
func cmdSimulate(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	trials := fs.Int("trials", 10000, "number of shuffles")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (0 = crypto)")
	verbose := fs.Bool("v", false, "print every position")
	if err := parse(fs, &cfg, args); err != nil {
		return err
	}
	if *trials < 1 {
		return fmt.Errorf("%w: -trials must be >= 1", errUsage)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	be := store.NewBestEffort(st, log)
	defer be.Close()

	pools, ok := loadPools(ctx, be, cfg.Category)
	if !ok {
		return fmt.Errorf("category %s has no entrants and no definition", cfg.Category)
	}

	rng := draw.DefaultRNG()
	if cfg.Seed != 0 {
		rng = draw.NewSeededRNG(cfg.Seed)
	}
	stats := draw.SimulateOrder(&pools, *trials, rng)

	fmt.Fprintf(stdout, "category %s: %d trials, %d positions\n", cfg.Category, stats.Trials, len(stats.Positions))
	fmt.Fprintf(stdout, "occupancy mean %.1f stddev %.2f min %d max %d\n", stats.Mean, stats.StdDev, stats.Min, stats.Max)
	fmt.Fprintf(stdout, "max chi-square %.2f, pool block violations %d\n", stats.MaxChi, stats.BlockErrors)
	if *verbose {
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "POOL\tPOSITION\tCHI-SQUARE")
		for _, ps := range stats.Positions {
			fmt.Fprintf(tw, "%d\t%d\t%.2f\n", ps.Pool, ps.Position+1, ps.ChiSquare)
		}
		return tw.Flush()
	}
	return nil
}

func loadPools(ctx context.Context, be *store.BestEffort, key string) (draw.Pools, bool) {
	if dc, ok := be.Load(ctx, key); ok && dc.Pools.Len() > 0 {
		return dc.Pools, true
	}
	def, ok := store.FindCategory(be.Categories(ctx), key)
	if !ok {
		return draw.Pools{}, false
	}
	var pools draw.Pools
	for i, n := range def.PoolSizes {
		for j := 0; j < n; j++ {
			pools[i] = append(pools[i], draw.Entrant{
				ID:   fmt.Sprintf("p%d-%d", i+1, j+1),
				Name: fmt.Sprintf("Bolillero %d #%d", i+1, j+1),
				Pool: i + 1,
			})
		}
	}
	return pools, pools.Len() > 0
}

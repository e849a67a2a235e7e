package draw

import (
	"math"
	"sort"
)

// PositionStats describes who landed in one intra-pool position across trials.
type PositionStats struct {
	Pool      int            // 1-based
	Position  int            // 0-based offset inside the pool block
	Counts    map[string]int // entrant id -> times seen at this position
	ChiSquare float64        // against the uniform expectation, df = pool size - 1
}

// OrderStats summarizes a random-order simulation.
type OrderStats struct {
	Trials      int
	Positions   []PositionStats
	MaxChi      float64
	Mean        float64 // of all occupancy counts
	StdDev      float64
	Min, Max    int
	BlockErrors int // trials where some id left its pool block; must be 0
}

// SimulateOrder resolves the random order trials times and measures how evenly
// each pool's entrants are spread over that pool's positions.
func SimulateOrder(pools *Pools, trials int, rng RandomSource) OrderStats {
	if trials <= 0 {
		return OrderStats{}
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	type key struct{ pool, pos int }
	counts := make(map[key]map[string]int)
	idx := pools.Index()
	out := OrderStats{Trials: trials}

	for t := 0; t < trials; t++ {
		order := Resolve(pools, ModeRandom, nil, rng)
		offset := 0
		for pool := 1; pool <= NumPools; pool++ {
			n := len(pools[pool-1])
			for pos := 0; pos < n; pos++ {
				id := order[offset+pos]
				if idx[id].Pool != pool {
					out.BlockErrors++
				}
				k := key{pool, pos}
				if counts[k] == nil {
					counts[k] = make(map[string]int, n)
				}
				counts[k][id]++
			}
			offset += n
		}
	}

	var all []int
	for pool := 1; pool <= NumPools; pool++ {
		n := len(pools[pool-1])
		if n == 0 {
			continue
		}
		expected := float64(trials) / float64(n)
		for pos := 0; pos < n; pos++ {
			c := counts[key{pool, pos}]
			chi := 0.0
			for _, id := range pools.IDs(pool) {
				d := float64(c[id]) - expected
				chi += d * d / expected
				all = append(all, c[id])
			}
			out.Positions = append(out.Positions, PositionStats{Pool: pool, Position: pos, Counts: c, ChiSquare: chi})
			if chi > out.MaxChi {
				out.MaxChi = chi
			}
		}
	}

	out.Mean, out.StdDev, out.Min, out.Max = countStats(all)
	return out
}

// countStats computes mean, population stddev and range of xs.
func countStats(xs []int) (mean, stddev float64, lo, hi int) {
	n := len(xs)
	if n == 0 {
		return 0, 0, 0, 0
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean = sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	stddev = math.Sqrt(acc / float64(n))

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	return mean, stddev, cp[0], cp[n-1]
}

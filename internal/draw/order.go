package draw

// Resolve produces the linear draw order for one full pass.
//
//   - ModeFixed returns a copy of fixedOrder as given. Stale ids are left in
//     place; the machine skips them.
//   - ModeRandom shuffles each pool's ids (Fisher–Yates) and concatenates
//     pools 1..4, so every id of pool k precedes every id of pool k+1.
//
// Resolve has no side effects. A nil rng means DefaultRNG.
func Resolve(pools *Pools, mode Mode, fixedOrder []string, rng RandomSource) []string {
	if mode != ModeRandom {
		return append([]string(nil), fixedOrder...)
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	order := make([]string, 0, pools.Len())
	for pool := 1; pool <= NumPools; pool++ {
		ids := pools.IDs(pool)
		Shuffle(ids, rng)
		order = append(order, ids...)
	}
	return order
}

// Shuffle permutes ids in place; every permutation is equally likely given an unbiased rng.
func Shuffle(ids []string, rng RandomSource) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

package draw

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/big"
	"math/rand/v2"
)

// RandomSource abstracts the randomness behind shuffles and tie-breaks.
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n), unbiased; panics if n <= 0
}

// crypto random: default for live draws
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// 53 random bits => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

func (cryptoRNG) IntN(n int) int {
	if n <= 0 {
		panic("draw: IntN called with non-positive n")
	}
	v, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return rand.IntN(n)
	}
	return int(v.Int64())
}

// DefaultRNG returns the crypto-backed source used when none is configured.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (tests, simulations, replays of a seeded draw)
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic PCG-backed source.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }

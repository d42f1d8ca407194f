package world

import (
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Rand is the simulation's random source.
type Rand interface {
	Float64() float64 // uniform [0,1)
	Uint32() uint32
}

// NewRand returns a PCG source. A non-empty seed phrase makes the stream
// reproducible; an empty one seeds from the clock.
func NewRand(seed string) Rand {
	if seed == "" {
		now := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(now, now^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(
		xxhash.Sum64String(seed),
		xxhash.Sum64String("stream:"+seed),
	))
}

// NewSeededRand returns a PCG source from explicit seed words.
func NewSeededRand(s1, s2 uint64) Rand {
	return rand.New(rand.NewPCG(s1, s2))
}

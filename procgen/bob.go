package procgen

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Bob is a seeded sine oscillator. The seed is a fixed per-entity random
// phase chosen at creation so a crowd never bobs in lockstep.
type Bob struct {
	Height float64
	Freq   float64
	Seed   float64
}

// NewBob seeds an oscillator from the host random source.
func NewBob(r Rand, height, freq float64) Bob {
	return Bob{Height: height, Freq: freq, Seed: r.Float64(0, 1000)}
}

// Offset is the absolute oscillator value at a timestamp.
func (b Bob) Offset(t float64) float64 {
	return b.Height * math.Sin(b.Freq*(t+b.Seed))
}

// Delta is the position delta to apply when moving from one tick to the
// next. Summing deltas over adjacent ticks equals the direct delta over
// the whole span, so motion never drifts no matter how ticks are sliced.
func (b Bob) Delta(prev, now float64) float64 {
	return b.Offset(now) - b.Offset(prev)
}

// Wander pairs two oscillators at different frequencies per axis, which
// reads as organic drifting motion.
type Wander struct {
	X Bob
	Y Bob
}

// NewWander seeds a two-axis wander oscillator.
func NewWander(r Rand, height, freqX, freqY float64) Wander {
	return Wander{X: NewBob(r, height, freqX), Y: NewBob(r, height, freqY)}
}

// Delta is the two-axis position delta between ticks.
func (w Wander) Delta(prev, now float64) cp.Vector {
	return cp.Vector{X: w.X.Delta(prev, now), Y: w.Y.Delta(prev, now)}
}

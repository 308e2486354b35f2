// Package procgen holds the procedural math behind creature motion:
// random headings, seeded oscillators, closest-target selection, and the
// multi-phase teleport ease. Everything is a pure function of its inputs;
// randomness and time come in as parameters.
package procgen

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Rand is the slice of the host random source these helpers need.
type Rand interface {
	Float64(min, max float64) float64
}

// RandDir returns a unit vector in a uniformly random direction.
func RandDir(r Rand) cp.Vector {
	for {
		v := cp.Vector{X: r.Float64(-1, 1), Y: r.Float64(-1, 1)}
		if v.Length() > 1e-9 {
			return v.Normalize()
		}
	}
}

// RandVec returns a random-direction vector with magnitude uniform in
// [min, max]. Pass max <= min for a fixed-magnitude random direction.
func RandVec(r Rand, min, max float64) cp.Vector {
	mag := min
	if max > min {
		mag = r.Float64(min, max)
	}
	return RandDir(r).Mult(mag)
}

// Toward returns a step of the given length from one point toward
// another.
func Toward(from, to cp.Vector, step float64) cp.Vector {
	d := to.Sub(from)
	if d.Length() < 1e-9 {
		return cp.Vector{}
	}
	return d.Normalize().Mult(step)
}

// Lerp interpolates linearly between two scalars.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic 3t²-2t³ ramp, clamped to [0, 1].
func Smoothstep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// Clamp01 clamps to the unit interval.
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}

// Slerp interpolates between two direction vectors along the shorter
// arc, preserving magnitude interpolation linearly.
func Slerp(a, b cp.Vector, t float64) cp.Vector {
	la, lb := a.Length(), b.Length()
	if la < 1e-9 || lb < 1e-9 {
		return a.Lerp(b, t)
	}
	angle := math.Atan2(b.Y, b.X) - math.Atan2(a.Y, a.X)
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	dir := a.Normalize().Rotate(cp.ForAngle(angle * t))
	return dir.Mult(Lerp(la, lb, t))
}

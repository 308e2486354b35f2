package procgen

// BlendFactor is the multi-phase teleport blend: 0 at rest, ramping to 1
// over the first half second, holding 1 in transit, and ramping back to 0
// over the last half second. Callers lerp between a resting value and an
// in-transit value with it. Continuous at both phase boundaries.
func BlendFactor(elapsed, total float64) float64 {
	timeLeft := total - elapsed
	switch {
	case timeLeft < 0.5:
		return Clamp01(timeLeft / 0.5)
	case elapsed < 0.5:
		return Clamp01(elapsed / 0.5)
	default:
		return 1.0
	}
}

// TransitFraction is the smoothed progress of the teleport itself: the
// jump holds at the start position through the ramp-in, then smoothsteps
// from start to destination over the rest of the duration.
func TransitFraction(elapsed, total float64) float64 {
	if total <= 0.5 {
		return Clamp01(elapsed / total)
	}
	if elapsed <= 0.5 {
		return 0
	}
	return Smoothstep((elapsed - 0.5) / (total - 0.5))
}

package procgen

import "github.com/jakecoffman/cp"

// Closest returns the item whose position minimizes squared distance to
// ref. Ties go to the first-encountered item, which keeps selection
// stable across ticks. The candidate list must be non-empty: callers
// branch on emptiness first, so an empty call is a defect and panics.
func Closest[T any](ref cp.Vector, items []T, pos func(T) cp.Vector) T {
	if len(items) == 0 {
		panic("procgen: closest of empty candidate list")
	}
	best := items[0]
	bestDist := pos(best).Sub(ref).LengthSq()
	for _, it := range items[1:] {
		d := pos(it).Sub(ref).LengthSq()
		if d < bestDist {
			best = it
			bestDist = d
		}
	}
	return best
}

package nmg

import "math"

// DefaultDist is the default distance tolerance in model units.
const DefaultDist = 0.0005

// Tol carries the numeric tolerances used by every geometric predicate.
type Tol struct {
	Dist   float64 // two points closer than this are the same point
	DistSq float64 // Dist squared
	Perp   float64 // |cos| below this means perpendicular
	Para   float64 // |cos| above this means parallel
}

// DefaultTol returns the tolerance used when none is configured.
func DefaultTol() Tol {
	return NewTol(DefaultDist)
}

// NewTol returns a tolerance with the given distance and the default
// angular limits.
func NewTol(dist float64) Tol {
	return Tol{
		Dist:   dist,
		DistSq: dist * dist,
		Perp:   1e-6,
		Para:   1 - 1e-6,
	}
}

// Near reports whether a and b are within Dist of each other.
func (t Tol) Near(a, b float64) bool {
	return math.Abs(a-b) < t.Dist
}

// Zero reports whether x is within Dist of zero.
func (t Tol) Zero(x float64) bool {
	return math.Abs(x) < t.Dist
}

package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// EulerRotation returns the matrix rotating by x, then y, then z degrees
// about the fixed X, Y and Z axes.
func EulerRotation(x, y, z float64) sdf.M44 {
	rad := func(d float64) float64 { return d * math.Pi / 180.0 }
	return sdf.RotateZ(rad(z)).Mul(sdf.RotateY(rad(y))).Mul(sdf.RotateX(rad(x)))
}

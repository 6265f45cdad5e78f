// Package kernel defines the abstract geometry kernel interface.
// Implementations (nmgk, sdfx) provide solid modeling and Boolean
// operations behind this interface, so the tessellator can evaluate a
// design graph against either backend.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box. An empty solid
	// returns zero vectors.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Primitives have their minimum corner (box) or base (prism) where the
// caller puts it; no operation re-centres a solid. Operations never modify
// their operands.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Prism(base []v3.Vec, height v3.Vec) (Solid, error)
	Polyhedron(vertices []v3.Vec, faces [][]int) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) (Solid, error)
	Rotate(s Solid, x, y, z float64) (Solid, error) // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Releaser is implemented by kernels that keep solids in shared storage.
// Callers that create intermediate solids release them once consumed.
type Releaser interface {
	Release(s Solid) error
}

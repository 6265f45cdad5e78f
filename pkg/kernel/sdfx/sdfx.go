// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. It serves as a reference
// backend: results are approximate but never depend on B-rep topology, so
// they make an independent oracle for the NMG kernel.
package sdfx

import (
	"github.com/chazu/nmgkernel/pkg/kernel"
	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx. Prisms and polyhedra are
// built as NMG shells in a private store and read back through ShellSDF.
type SdfxKernel struct {
	cells int
	tol   nmg.Tol
	store *nmg.Store
	model nmg.ModelID
}

// New returns a new SdfxKernel meshing with the given number of marching
// cubes cells along the longest axis. A non-positive value uses
// DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	s := nmg.NewStore()
	m, _, _ := s.MakeModel()
	return &SdfxKernel{cells: cells, tol: nmg.DefaultTol(), store: s, model: m}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	w, ok := s.(*sdfxSolid)
	if !ok {
		return nil, errors.Wrapf(nmg.ErrUnsupported, "solid %T is not an sdfx solid", s)
	}
	return w.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that placement translations work
// intuitively: (place :at (vec3 10 0 0)) puts the box's corner at x=10.
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "sdfx.Box3D")
	}
	// Shift from center-origin to min-corner-origin.
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Prism extrudes the planar polygon base along height.
func (k *SdfxKernel) Prism(base []v3.Vec, height v3.Vec) (kernel.Solid, error) {
	return k.shell(func(b *nmg.Builder) error {
		_, err := nmg.MakePrism(b, base, height)
		return err
	})
}

// Polyhedron builds a solid bounded by explicit faces.
func (k *SdfxKernel) Polyhedron(vertices []v3.Vec, faces [][]int) (kernel.Solid, error) {
	return k.shell(func(b *nmg.Builder) error {
		_, err := nmg.MakePolyhedron(b, vertices, faces)
		return err
	})
}

func (k *SdfxKernel) shell(fn func(b *nmg.Builder) error) (kernel.Solid, error) {
	r, sh, err := k.store.MakeRegion(k.model)
	if err != nil {
		return nil, err
	}
	defer k.store.KillRegion(r)
	if err := fn(nmg.NewBuilder(k.store, sh, k.tol)); err != nil {
		return nil, err
	}
	f, err := NewShellSDF(k.store, sh)
	if err != nil {
		return nil, err
	}
	return wrap(f), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, func(a, b sdf.SDF3) sdf.SDF3 { return sdf.Union3D(a, b) })
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, sdf.Difference3D)
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, sdf.Intersect3D)
}

func (k *SdfxKernel) combine(a, b kernel.Solid, fn func(a, b sdf.SDF3) sdf.SDF3) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return wrap(fn(sa, sb)), nil
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	return k.transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	return k.transform(s, kernel.EulerRotation(x, y, z))
}

func (k *SdfxKernel) transform(s kernel.Solid, m sdf.M44) (kernel.Solid, error) {
	f, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Transform3D(f, m)), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	mesh := &kernel.Mesh{}
	for _, tri := range triangles {
		mesh.AddTriangle(tri[0], tri[1], tri[2])
	}
	return mesh, nil
}

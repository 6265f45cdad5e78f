// Package nmgk implements the kernel.Kernel interface on the NMG
// boundary representation in pkg/nmg, with Boolean operations from
// pkg/boolean.
//
// Every solid is a closed shell in its own region of one model. Operations
// copy their operands before cracking them, so solids stay usable after
// they have been combined.
package nmgk

import (
	"github.com/chazu/nmgkernel/pkg/boolean"
	"github.com/chazu/nmgkernel/pkg/kernel"
	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// solid is a shell owned by a Kernel. A zero shell is the empty solid.
type solid struct {
	k      *Kernel
	region nmg.RegionID
	shell  nmg.ShellID
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	if s.shell == 0 {
		return min, max
	}
	bb := s.k.store.Shell(s.shell).BBox
	if bb == nil {
		return min, max
	}
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// Kernel implements kernel.Kernel over an NMG store.
type Kernel struct {
	store *nmg.Store
	model nmg.ModelID
	opts  boolean.Options

	// Face pairs the Boolean driver could not crack, accumulated over all
	// operations.
	failures []boolean.PairFailure

	check    bool
	findings []nmg.ValidationError
}

// New returns a Kernel with an empty model. Zero-valued fields of opts take
// their defaults.
func New(opts boolean.Options) *Kernel {
	if opts.Tol.Dist == 0 {
		opts.Tol = nmg.DefaultTol()
	}
	if opts.Tracer == nil {
		opts.Tracer = nmg.NopTracer{}
	}
	s := nmg.NewStore()
	s.SetTracer(opts.Tracer)
	m, r, _ := s.MakeModel()
	k := &Kernel{store: s, model: m, opts: opts}
	// The initial region only carries the model; solids get their own.
	if _, err := s.KillRegion(r); err != nil {
		panic(err)
	}
	return k
}

// Store returns the NMG store holding every solid.
func (k *Kernel) Store() *nmg.Store { return k.store }

// Model returns the model holding every solid.
func (k *Kernel) Model() nmg.ModelID { return k.model }

// Shell returns the shell behind s, or zero for the empty solid.
func (k *Kernel) Shell(s kernel.Solid) (nmg.ShellID, error) {
	sol, err := k.unwrap(s)
	if err != nil {
		return 0, err
	}
	return sol.shell, nil
}

// Failures returns the face pairs that could not be intersected so far.
func (k *Kernel) Failures() []boolean.PairFailure { return k.failures }

// SetCheck turns on topology checking of every solid passed to ToMesh.
// Findings accumulate until read with Findings.
func (k *Kernel) SetCheck(on bool) { k.check = on }

// Findings returns what the topology checker reported for meshed solids.
func (k *Kernel) Findings() []nmg.ValidationError { return k.findings }

// Validate checks the topology of every solid.
func (k *Kernel) Validate() []nmg.ValidationError {
	return nmg.Validate(k.store, k.model)
}

// Release frees the topology behind s. The solid must not be used again.
func (k *Kernel) Release(s kernel.Solid) error {
	sol, err := k.unwrap(s)
	if err != nil {
		return err
	}
	if sol.region == 0 {
		return nil
	}
	_, err = k.store.KillRegion(sol.region)
	sol.region, sol.shell = 0, 0
	return err
}

func (k *Kernel) unwrap(s kernel.Solid) (*solid, error) {
	sol, ok := s.(*solid)
	if !ok || sol.k != k {
		return nil, errors.Wrapf(nmg.ErrUnsupported, "solid %T does not belong to this kernel", s)
	}
	return sol, nil
}

// build runs fn on a builder for a fresh shell in a fresh region.
func (k *Kernel) build(fn func(b *nmg.Builder) error) (kernel.Solid, error) {
	r, sh, err := k.store.MakeRegion(k.model)
	if err != nil {
		return nil, err
	}
	if err := fn(nmg.NewBuilder(k.store, sh, k.opts.Tol)); err != nil {
		if _, kerr := k.store.KillRegion(r); kerr != nil {
			return nil, kerr
		}
		return nil, err
	}
	return &solid{k: k, region: r, shell: sh}, nil
}

// copyOf duplicates sol into a new region.
func (k *Kernel) copyOf(sol *solid) (*solid, error) {
	if sol.shell == 0 {
		return &solid{k: k}, nil
	}
	r, lone, err := k.store.MakeRegion(k.model)
	if err != nil {
		return nil, err
	}
	c := &solid{k: k, region: r}
	sh, err := k.store.CopyShell(sol.shell, r, k.opts.Tol)
	if err != nil {
		return nil, k.discard(err, c)
	}
	if _, err := k.store.KillShell(lone); err != nil {
		return nil, k.discard(err, c)
	}
	c.shell = sh
	return c, nil
}

// discard releases sols after a failed operation and returns err, noting
// any release that also failed.
func (k *Kernel) discard(err error, sols ...*solid) error {
	for _, sol := range sols {
		if rerr := k.Release(sol); rerr != nil {
			err = errors.WithMessagef(err, "releasing region %d: %v", sol.region, rerr)
		}
	}
	return err
}

// Box creates a box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	return k.build(func(b *nmg.Builder) error {
		_, err := nmg.MakeBox(b, v3.Vec{}, v3.Vec{X: x, Y: y, Z: z})
		return err
	})
}

// Prism extrudes the planar polygon base along height.
func (k *Kernel) Prism(base []v3.Vec, height v3.Vec) (kernel.Solid, error) {
	return k.build(func(b *nmg.Builder) error {
		_, err := nmg.MakePrism(b, base, height)
		return err
	})
}

// Polyhedron builds a closed solid from explicit faces, each listing vertex
// indices counter-clockwise seen from outside.
func (k *Kernel) Polyhedron(vertices []v3.Vec, faces [][]int) (kernel.Solid, error) {
	return k.build(func(b *nmg.Builder) error {
		_, err := nmg.MakePolyhedron(b, vertices, faces)
		return err
	})
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, boolean.Union)
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, boolean.Subtract)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, boolean.Intersect)
}

func (k *Kernel) combine(a, b kernel.Solid, op boolean.Op) (kernel.Solid, error) {
	sa, err := k.unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := k.unwrap(b)
	if err != nil {
		return nil, err
	}

	// An empty operand decides the result without any cracking.
	switch {
	case sa.shell == 0 && sb.shell == 0:
		return &solid{k: k}, nil
	case sa.shell == 0:
		if op == boolean.Union {
			return k.copyOf(sb)
		}
		return &solid{k: k}, nil
	case sb.shell == 0:
		if op == boolean.Intersect {
			return &solid{k: k}, nil
		}
		return k.copyOf(sa)
	}

	ca, err := k.copyOf(sa)
	if err != nil {
		return nil, err
	}
	cb, err := k.copyOf(sb)
	if err != nil {
		return nil, k.discard(err, ca)
	}
	res, err := boolean.Evaluate(k.store, ca.shell, cb.shell, op, k.opts)
	if err != nil {
		return nil, k.discard(errors.WithMessagef(err, "%s", op), ca, cb)
	}
	k.failures = append(k.failures, res.Report.Failures...)
	for _, c := range []*solid{ca, cb} {
		if err := k.Release(c); err != nil {
			return nil, err
		}
	}
	if res.Shell == 0 {
		return &solid{k: k}, nil
	}
	return &solid{k: k, region: res.Region, shell: res.Shell}, nil
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	return k.transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	return k.transform(s, kernel.EulerRotation(x, y, z))
}

func (k *Kernel) transform(s kernel.Solid, m sdf.M44) (kernel.Solid, error) {
	sol, err := k.unwrap(s)
	if err != nil {
		return nil, err
	}
	c, err := k.copyOf(sol)
	if err != nil {
		return nil, err
	}
	if c.shell == 0 {
		return c, nil
	}
	if err := k.store.TransformShell(c.shell, m); err != nil {
		return nil, k.discard(err, c)
	}
	return c, nil
}

// ToMesh triangulates every face of the solid.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sol, err := k.unwrap(s)
	if err != nil {
		return nil, err
	}
	mesh := &kernel.Mesh{}
	if sol.shell == 0 {
		return mesh, nil
	}
	if k.check {
		k.findings = append(k.findings, nmg.ValidateShell(k.store, sol.shell)...)
	}
	tris, err := k.store.TriangulateShell(sol.shell)
	if err != nil {
		return nil, err
	}
	for _, t := range tris {
		mesh.AddTriangle(t[0], t[1], t[2])
	}
	return mesh, nil
}

// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per root-level solid: a
// primitive, or a Boolean node evaluated in full.
package tessellate

import (
	"github.com/chazu/nmgkernel/pkg/graph"
	"github.com/chazu/nmgkernel/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// placement is one transform node's rotation and translation.
type placement struct {
	rotation    graph.Vec3
	translation graph.Vec3
}

// transformStack accumulates spatial transforms during graph traversal.
// The outermost transform is at the bottom.
type transformStack struct {
	placements []placement
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(td graph.TransformData) {
	var p placement
	if td.Rotation != nil {
		p.rotation = *td.Rotation
	}
	if td.Translation != nil {
		p.translation = *td.Translation
	}
	ts.placements = append(ts.placements, p)
}

func (ts *transformStack) pop() {
	if len(ts.placements) > 0 {
		ts.placements = ts.placements[:len(ts.placements)-1]
	}
}

// apply moves s through every placement on the stack, innermost first.
// Each placement rotates before it translates.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) (kernel.Solid, error) {
	for i := len(ts.placements) - 1; i >= 0; i-- {
		p := ts.placements[i]
		if r := p.rotation; r != (graph.Vec3{}) {
			next, err := k.Rotate(s, r.X, r.Y, r.Z)
			if err != nil {
				return nil, err
			}
			if err := release(k, s); err != nil {
				return nil, err
			}
			s = next
		}
		if t := p.translation; t != (graph.Vec3{}) {
			next, err := k.Translate(s, t.X, t.Y, t.Z)
			if err != nil {
				return nil, err
			}
			if err := release(k, s); err != nil {
				return nil, err
			}
			s = next
		}
	}
	return s, nil
}

// release frees an intermediate solid on kernels that support it.
func release(k kernel.Kernel, s kernel.Solid) error {
	r, ok := k.(kernel.Releaser)
	if !ok {
		return nil
	}
	return errors.WithMessage(r.Release(s), "tessellate: release")
}

// releaseAll frees every solid in ss and reports the first failure.
func releaseAll(k kernel.Kernel, ss ...kernel.Solid) error {
	errs := make([]error, len(ss))
	for i, s := range ss {
		errs[i] = release(k, s)
	}
	return firstErr(errs...)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Tessellate walks the design graph and produces one triangle mesh per
// root-level solid using the provided geometry kernel. Groups and
// transforms above a solid are walked through; a Boolean node is evaluated
// to a single solid. The tessellator is read-only and never mutates the
// graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts)
		if err != nil {
			return nil, errors.WithMessagef(err, "tessellate: root %s", rootID.Short())
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting meshes.
func walkNode(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodePrimitive, graph.NodeBoolean:
		return meshSolid(g, k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts, walkNode)

	case graph.NodeGroup:
		return handleGroup(g, k, n, ts)

	default:
		return nil, errors.Errorf("unknown node kind: %v", n.Kind)
	}
}

// meshSolid evaluates n to a solid and meshes it.
func meshSolid(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	solid, err := solidOf(g, k, n, ts)
	if err != nil {
		return nil, err
	}

	mesh, err := k.ToMesh(solid)
	if err = firstErr(err, release(k, solid)); err != nil {
		return nil, errors.WithMessagef(err, "tessellate: meshing node %s", n.ID.Short())
	}

	// Set the part name: prefer the node's Name, fall back to short ID.
	if n.Name != "" {
		mesh.PartName = n.Name
	} else {
		mesh.PartName = n.ID.Short()
	}

	return []*kernel.Mesh{mesh}, nil
}

// handleTransform pushes the transform, runs visit on the child, then pops.
func handleTransform[T any](g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack,
	visit func(*graph.DesignGraph, kernel.Kernel, *graph.Node, *transformStack) (T, error)) (T, error) {
	var zero T
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return zero, errors.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 1 {
		return zero, errors.Errorf("transform node %s has %d children, want 1", n.ID.Short(), len(children))
	}

	ts.push(td)
	defer ts.pop()
	return visit(g, k, children[0], ts)
}

// handleGroup recurses into children transparently.
func handleGroup(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// solidOf evaluates the CSG subtree at n to one solid, placed by every
// transform on the stack.
func solidOf(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return handlePrimitive(k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts, solidOf)

	case graph.NodeBoolean:
		bd, ok := n.Data.(graph.BooleanData)
		if !ok {
			return nil, errors.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return fold(g, k, n, ts, bd.Op)

	case graph.NodeGroup:
		// A group used as an operand stands for the union of its members.
		return fold(g, k, n, ts, graph.OpUnion)

	default:
		return nil, errors.Errorf("unknown node kind: %v", n.Kind)
	}
}

// fold combines the children of n left to right with op.
func fold(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack, op graph.BoolOp) (kernel.Solid, error) {
	var combine func(a, b kernel.Solid) (kernel.Solid, error)
	switch op {
	case graph.OpUnion:
		combine = k.Union
	case graph.OpIntersect:
		combine = k.Intersection
	case graph.OpSubtract:
		combine = k.Difference
	default:
		return nil, errors.Errorf("node %s has unknown Boolean operation %v", n.ID.Short(), op)
	}

	children := g.Children(n)
	if len(children) == 0 {
		return nil, errors.Errorf("%s node %s has no operands", op, n.ID.Short())
	}
	acc, err := solidOf(g, k, children[0], ts)
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		operand, err := solidOf(g, k, child, ts)
		if err != nil {
			return nil, firstErr(err, releaseAll(k, acc))
		}
		next, err := combine(acc, operand)
		if err = firstErr(err, releaseAll(k, acc, operand)); err != nil {
			return nil, errors.WithMessagef(err, "%s node %s", op, n.ID.Short())
		}
		acc = next
	}
	return acc, nil
}

// handlePrimitive creates geometry for a primitive node.
func handlePrimitive(k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	var solid kernel.Solid
	var err error

	switch data := n.Data.(type) {
	case graph.BoxData:
		solid, err = k.Box(data.Size.X, data.Size.Y, data.Size.Z)
	case graph.PrismData:
		solid, err = k.Prism(lo.Map(data.Base, toV3), data.Height.V3())
	case graph.PolyhedronData:
		solid, err = k.Polyhedron(lo.Map(data.Vertices, toV3), data.Faces)
	default:
		return nil, errors.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "primitive node %s", n.ID.Short())
	}

	return ts.apply(k, solid)
}

func toV3(p graph.Vec3, _ int) v3.Vec { return p.V3() }

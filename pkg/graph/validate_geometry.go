package graph

import (
	"fmt"
	"math"

	"github.com/chazu/nmgkernel/pkg/nmg"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// V3 converts v to the vector type used by the geometry kernel.
func (v Vec3) V3() v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	tol := nmg.NewTol(g.tolerance())
	errs = append(errs, validateBoxSizes(g, tol)...)
	errs = append(errs, validatePrisms(g, tol)...)
	errs = append(errs, validatePolyhedra(g, tol)...)

	warnings = append(warnings, validateIdentityTransforms(g)...)
	warnings = append(warnings, validateSmallPrimitives(g, tol)...)

	return errs, warnings
}

func (g *DesignGraph) tolerance() float64 {
	if g.Defaults.Tolerance > 0 {
		return g.Defaults.Tolerance
	}
	return DefaultTolerance
}

func geomError(id NodeID, format string, args ...interface{}) ValidationError {
	return ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// validateBoxSizes checks that every BoxData has positive X, Y, Z larger
// than the tolerance.
func validateBoxSizes(g *DesignGraph, tol nmg.Tol) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		bd, ok := node.Data.(BoxData)
		if !ok {
			continue
		}
		for _, c := range []struct {
			axis string
			v    float64
		}{{"X", bd.Size.X}, {"Y", bd.Size.Y}, {"Z", bd.Size.Z}} {
			if c.v <= tol.Dist {
				errs = append(errs, geomError(node.ID, "box size %s is %.4f, must be positive", c.axis, c.v))
			}
		}
	}

	return errs
}

// validatePrisms checks that a prism base is a non-degenerate polygon and
// that the extrusion leaves its plane.
func validatePrisms(g *DesignGraph, tol nmg.Tol) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		pd, ok := node.Data.(PrismData)
		if !ok {
			continue
		}
		if len(pd.Base) < 3 {
			errs = append(errs, geomError(node.ID, "prism base has %d points, need at least 3", len(pd.Base)))
			continue
		}
		pl, err := nmg.PlaneFromPoints(lo.Map(pd.Base, func(v Vec3, _ int) v3.Vec { return v.V3() }), tol)
		if err != nil {
			errs = append(errs, geomError(node.ID, "prism base is degenerate: %v", err))
			continue
		}
		if math.Abs(pl.N.Dot(pd.Height.V3())) <= tol.Dist {
			errs = append(errs, geomError(node.ID, "prism height %s lies in the base plane", pd.Height))
		}
	}

	return errs
}

// validatePolyhedra checks face indices, face planarity and that the faces
// close up: every directed edge must be matched by exactly one reversed
// edge in another face.
func validatePolyhedra(g *DesignGraph, tol nmg.Tol) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		pd, ok := node.Data.(PolyhedronData)
		if !ok {
			continue
		}
		if len(pd.Faces) < 4 {
			errs = append(errs, geomError(node.ID, "polyhedron has %d faces, need at least 4", len(pd.Faces)))
			continue
		}
		type edge struct{ a, b int }
		edges := make(map[edge]int)
		bad := false
		for i, f := range pd.Faces {
			if len(f) < 3 {
				errs = append(errs, geomError(node.ID, "polyhedron face %d has %d vertices, need at least 3", i, len(f)))
				bad = true
				continue
			}
			if len(lo.Uniq(f)) != len(f) {
				errs = append(errs, geomError(node.ID, "polyhedron face %d repeats a vertex", i))
				bad = true
				continue
			}
			inRange := lo.EveryBy(f, func(k int) bool { return k >= 0 && k < len(pd.Vertices) })
			if !inRange {
				errs = append(errs, geomError(node.ID, "polyhedron face %d indexes outside %d vertices", i, len(pd.Vertices)))
				bad = true
				continue
			}
			pts := lo.Map(f, func(k int, _ int) v3.Vec { return pd.Vertices[k].V3() })
			pl, err := nmg.PlaneFromPoints(pts, tol)
			if err != nil {
				errs = append(errs, geomError(node.ID, "polyhedron face %d is degenerate: %v", i, err))
				bad = true
				continue
			}
			for _, p := range pts {
				if !tol.Zero(pl.Dist(p)) {
					errs = append(errs, geomError(node.ID, "polyhedron face %d is not planar", i))
					bad = true
					break
				}
			}
			for j := range f {
				edges[edge{f[j], f[(j+1)%len(f)]}]++
			}
		}
		if bad {
			continue
		}
		for e, n := range edges {
			if n != 1 || edges[edge{e.b, e.a}] != 1 {
				errs = append(errs, geomError(node.ID, "polyhedron is not closed at edge %d-%d", e.a, e.b))
				break
			}
		}
	}

	return errs
}

// validateIdentityTransforms warns about place forms that move nothing.
func validateIdentityTransforms(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		zero := func(v *Vec3) bool { return v == nil || *v == (Vec3{}) }
		if zero(td.Translation) && zero(td.Rotation) {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: "transform has no translation or rotation",
			})
		}
	}

	return warnings
}

// validateSmallPrimitives warns when a box is within ten tolerances of
// collapsing, where vertex fusing starts to merge distinct corners.
func validateSmallPrimitives(g *DesignGraph, tol nmg.Tol) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		bd, ok := node.Data.(BoxData)
		if !ok {
			continue
		}
		m := math.Min(bd.Size.X, math.Min(bd.Size.Y, bd.Size.Z))
		if m > tol.Dist && m < 10*tol.Dist {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("box size %.4f is close to the tolerance %.4f", m, tol.Dist),
			})
		}
	}

	return warnings
}

package sdfx

import (
	"math"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ShellSDF is a signed distance field for a closed NMG shell. It keeps its
// own triangulated copy, so it stays valid after the shell changes.
//
// The magnitude is the distance to the nearest triangle; the sign comes
// from the generalised winding number, which tolerates the small gaps
// T-junctions leave behind.
type ShellSDF struct {
	tris []*sdf.Triangle3
	bb   sdf.Box3
}

// NewShellSDF triangulates sh.
func NewShellSDF(s *nmg.Store, sh nmg.ShellID) (*ShellSDF, error) {
	tris, err := s.TriangulateShell(sh)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, errors.Wrapf(nmg.ErrDegenerateGeometry, "shell %d has no faces", sh)
	}
	bb := sdf.Box3{Min: tris[0][0], Max: tris[0][0]}
	for _, t := range tris {
		for _, p := range t {
			bb = bb.Include(p)
		}
	}
	return &ShellSDF{tris: tris, bb: bb}, nil
}

// Evaluate returns the signed distance from p to the shell, negative inside.
func (f *ShellSDF) Evaluate(p v3.Vec) float64 {
	d2 := math.Inf(1)
	w := 0.0
	for _, t := range f.tris {
		q := closestOnTriangle(p, t)
		if e := q.Sub(p); e.Dot(e) < d2 {
			d2 = e.Dot(e)
		}
		w += solidAngle(p, t)
	}
	d := math.Sqrt(d2)
	if w/(4*math.Pi) > 0.5 {
		return -d
	}
	return d
}

// BoundingBox returns the bounding box of the shell.
func (f *ShellSDF) BoundingBox() sdf.Box3 { return f.bb }

// solidAngle is the signed solid angle t subtends at p (Van Oosterom and
// Strackee).
func solidAngle(p v3.Vec, t *sdf.Triangle3) float64 {
	a, b, c := t[0].Sub(p), t[1].Sub(p), t[2].Sub(p)
	la, lb, lc := a.Length(), b.Length(), c.Length()
	num := a.Dot(b.Cross(c))
	den := la*lb*lc + a.Dot(b)*lc + a.Dot(c)*lb + b.Dot(c)*la
	return 2 * math.Atan2(num, den)
}

// closestOnTriangle returns the point of t nearest p, by Voronoi region.
func closestOnTriangle(p v3.Vec, t *sdf.Triangle3) v3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}
	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.MulScalar(d1 / (d1 - d3)))
	}
	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.MulScalar(d2 / (d2 - d6)))
	}
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).MulScalar((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}
	denom := 1 / (va + vb + vc)
	v, w := vb*denom, vc*denom
	return a.Add(ab.MulScalar(v)).Add(ac.MulScalar(w))
}

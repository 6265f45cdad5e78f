package boolean

import (
	"math"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Class is the position of a point relative to a closed shell.
type Class int

const (
	ClassOut Class = iota
	ClassIn
	ClassOn
)

func (c Class) String() string {
	switch c {
	case ClassIn:
		return "in"
	case ClassOn:
		return "on"
	default:
		return "out"
	}
}

// Ray directions tried in turn until one gives an unambiguous crossing
// count. None of them is parallel to a coordinate plane.
var rayDirs = []v3.Vec{
	{X: -0.40475415, Y: 0.86174632, Z: -0.30588783},
	{X: 0.57735027, Y: 0.57735027, Z: 0.57735027},
	{X: 0.26726124, Y: -0.53452248, Z: 0.80178373},
	{X: -0.70710678, Y: 0.40824829, Z: 0.57735027},
}

type faceTri struct {
	fu  nmg.FaceuseID
	tri *sdf.Triangle3
}

// shellTriangles triangulates the outward faces of sh.
func shellTriangles(s *nmg.Store, sh nmg.ShellID) ([]faceTri, error) {
	var out []faceTri
	for _, fu := range s.OrientedFaceuses(sh) {
		tris, err := s.TriangulateFace(fu)
		if err != nil {
			return nil, errors.WithMessagef(err, "classify: faceuse %d", fu)
		}
		out = append(out, lo.Map(tris, func(t *sdf.Triangle3, _ int) faceTri {
			return faceTri{fu: fu, tri: t}
		})...)
	}
	return out, nil
}

// ClassifyPoint reports whether pt lies inside, outside or on the closed
// shell sh. For ClassOn the faceuse pt lies on is returned as well.
//
// Membership is decided by the parity of ray crossings. A ray that passes
// within tolerance of a triangle edge is discarded and the next direction
// is tried.
func ClassifyPoint(s *nmg.Store, sh nmg.ShellID, pt v3.Vec, tol nmg.Tol) (Class, nmg.FaceuseID, error) {
	tris, err := shellTriangles(s, sh)
	if err != nil {
		return ClassOut, 0, err
	}
	return classify(tris, pt, tol)
}

func classify(tris []faceTri, pt v3.Vec, tol nmg.Tol) (Class, nmg.FaceuseID, error) {
	for _, ft := range tris {
		if onTriangle(pt, ft.tri, tol) {
			return ClassOn, ft.fu, nil
		}
	}
	for _, dir := range rayDirs {
		n, ok := crossings(tris, pt, dir, tol)
		if !ok {
			continue
		}
		if n%2 == 1 {
			return ClassIn, 0, nil
		}
		return ClassOut, 0, nil
	}
	return ClassOut, 0, errors.Wrapf(nmg.ErrDegenerateGeometry, "classify %v: every ray grazes the shell", pt)
}

// crossings counts the triangles hit by the ray from p along dir. ok is
// false when the ray meets a triangle edge or lies in a triangle's plane.
func crossings(tris []faceTri, p, dir v3.Vec, tol nmg.Tol) (n int, ok bool) {
	const eps = 1e-9
	for _, ft := range tris {
		a, b, c := ft.tri[0], ft.tri[1], ft.tri[2]
		e1, e2 := b.Sub(a), c.Sub(a)
		h := dir.Cross(e2)
		det := e1.Dot(h)
		if math.Abs(det) < eps {
			// Parallel to the triangle; only a problem if the ray lies in it.
			nrm := e1.Cross(e2)
			if l := nrm.Length(); l > 0 && math.Abs(p.Sub(a).Dot(nrm)/l) < tol.Dist {
				return 0, false
			}
			continue
		}
		inv := 1 / det
		sv := p.Sub(a)
		u := sv.Dot(h) * inv
		q := sv.Cross(e1)
		v := dir.Dot(q) * inv
		t := e2.Dot(q) * inv
		if t <= 0 {
			continue
		}
		if u < -eps || v < -eps || u+v > 1+eps {
			continue
		}
		if u < eps || v < eps || u+v > 1-eps {
			return 0, false
		}
		n++
	}
	return n, true
}

// onTriangle reports whether p is within tolerance of triangle t.
func onTriangle(p v3.Vec, t *sdf.Triangle3, tol nmg.Tol) bool {
	a, b, c := t[0], t[1], t[2]
	nrm := b.Sub(a).Cross(c.Sub(a))
	l := nrm.Length()
	if l == 0 {
		return false
	}
	nrm = nrm.MulScalar(1 / l)
	d := p.Sub(a).Dot(nrm)
	if math.Abs(d) >= tol.Dist {
		return false
	}
	q := p.Sub(nrm.MulScalar(d))
	inside := true
	for i := 0; i < 3; i++ {
		e0, e1 := t[i], t[(i+1)%3]
		if e1.Sub(e0).Cross(q.Sub(e0)).Dot(nrm) < 0 {
			inside = false
			break
		}
	}
	if inside {
		return true
	}
	return segmentDistSq(p, a, b) < tol.DistSq ||
		segmentDistSq(p, b, c) < tol.DistSq ||
		segmentDistSq(p, c, a) < tol.DistSq
}

package boolean

import (
	"github.com/chazu/nmgkernel/pkg/nmg"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// IntersectFaces finds where the boundary of each face crosses the plane
// of the other. Crossing edges are split at a vertex shared by both faces
// and every on-plane vertex is recorded in the table of the face it was
// found on. The other face receives the same vertex, as an existing use
// or as a new point loop, recorded in its own table.
//
// ta collects vertexuses of fuA and tb those of fuB.
func IntersectFaces(s *nmg.Store, fuA, fuB nmg.FaceuseID, tol nmg.Tol, tr nmg.Tracer) (ta, tb *VertexTable, err error) {
	if tr == nil {
		tr = nmg.NopTracer{}
	}
	plA, err := s.FaceusePlane(fuA)
	if err != nil {
		return nil, nil, err
	}
	plB, err := s.FaceusePlane(fuB)
	if err != nil {
		return nil, nil, err
	}
	ta, tb = NewVertexTable(), NewVertexTable()
	x := &isect{s: s, tol: tol, tr: tr}
	if err := x.face(fuA, fuB, plB, ta, tb); err != nil {
		return nil, nil, errors.WithMessagef(err, "faceuse %d against %d", fuA, fuB)
	}
	if err := x.face(fuB, fuA, plA, tb, ta); err != nil {
		return nil, nil, errors.WithMessagef(err, "faceuse %d against %d", fuB, fuA)
	}
	tr.Tracef("IntersectFaces(%d, %d): %d/%d on-line vertexuses", fuA, fuB, ta.Len(), tb.Len())
	return ta, tb, nil
}

type isect struct {
	s   *nmg.Store
	tol nmg.Tol
	tr  nmg.Tracer
}

// face walks the loops of fu against the plane of other.
func (x *isect) face(fu, other nmg.FaceuseID, pl nmg.Plane, mine, theirs *VertexTable) error {
	s := x.s
	for _, lu := range s.Loopuses(fu) {
		rec := s.Loopuse(lu)
		if rec == nil {
			continue
		}
		if rec.Vertexuse != 0 {
			p, ok := s.Coord(s.Vertexuse(rec.Vertexuse).Vertex)
			if ok && x.tol.Zero(pl.Dist(p)) {
				mine.Add(rec.Vertexuse)
			}
			continue
		}
		// Edges created by splits below are not in the snapshot; they start
		// on the plane and need no second look.
		for _, eu := range s.LoopEdgeuses(lu) {
			if err := x.edge(eu, other, pl, mine, theirs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *isect) edge(eu nmg.EdgeuseID, other nmg.FaceuseID, pl nmg.Plane, mine, theirs *VertexTable) error {
	s := x.s
	v0, v1 := s.EdgeuseVertex(eu), s.EdgeuseEndVertex(eu)
	p0, ok0 := s.Coord(v0)
	p1, ok1 := s.Coord(v1)
	if !ok0 || !ok1 {
		return errors.Wrapf(nmg.ErrDegenerateGeometry, "edgeuse %d has unlocated vertices", eu)
	}
	d0, d1 := pl.Dist(p0), pl.Dist(p1)

	if x.tol.Zero(d0) {
		mine.Add(s.Edgeuse(eu).Vertexuse)
		return x.share(other, v0, theirs)
	}
	dir := p1.Sub(p0)
	if dir.Dot(dir) < x.tol.DistSq {
		x.tr.Tracef("polysect: edgeuse %d has zero length, skipped", eu)
		return nil
	}
	if x.tol.Zero(d1) || (d0 < 0) == (d1 < 0) {
		return nil
	}

	// The edge crosses the plane strictly inside its span.
	t := d0 / (d0 - d1)
	pt := p0.Add(dir.MulScalar(t))
	v := x.findVertex(eu, other, pt)
	neu, err := s.SplitEdge(v, eu)
	if err != nil {
		return err
	}
	if v == 0 {
		v = s.EdgeuseVertex(neu)
		if err := s.SetVertexGeometry(v, pt); err != nil {
			return err
		}
	}
	x.tr.Tracef("polysect: split edgeuse %d at vertex %d %v", eu, v, pt)
	mine.Add(s.Edgeuse(neu).Vertexuse)
	return x.share(other, v, theirs)
}

// findVertex looks for an existing vertex at pt in the shells of both
// faces so the two faces end up sharing it.
func (x *isect) findVertex(eu nmg.EdgeuseID, other nmg.FaceuseID, pt v3.Vec) nmg.VertexID {
	s := x.s
	if v := s.FindVertexNear(s.ShellOfEdgeuse(eu), pt, x.tol); v != 0 {
		return v
	}
	return s.FindVertexNear(s.Faceuse(other).Shell, pt, x.tol)
}

// share records v in fu's table, making a point loop for it in fu first if
// fu does not use it yet.
func (x *isect) share(fu nmg.FaceuseID, v nmg.VertexID, table *VertexTable) error {
	s := x.s
	if vu := s.FindVertexInFaceuse(fu, v); vu != 0 {
		table.Add(vu)
		return nil
	}
	lu, err := s.MakeLoopOnVertex(nmg.FaceuseParent(fu), v, nmg.OTSame)
	if err != nil {
		return err
	}
	table.Add(s.Loopuse(lu).Vertexuse)
	return nil
}

package boolean

import (
	"math"
	"sort"

	"github.com/chazu/nmgkernel/pkg/nmg"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// CutFace divides the loops of fu along the line where fu's plane meets
// other, using the on-line vertices recorded in table.
//
// Point loops in the table only mark where the other face's boundary
// touched this plane; they are killed. The remaining vertices are sorted
// by their position along the line, ties going to the older vertex. Each
// gap between neighbours is then examined: when the two vertices already
// share an edge the line runs along the boundary and nothing is done; when
// the middle of the gap lies strictly inside a loop the loop is divided
// there with CutLoop; otherwise the line only grazes the face.
//
// A gap whose ends lie on different loops would need the loops joined,
// which is reported as nmg.ErrUnsupported.
func CutFace(s *nmg.Store, fu nmg.FaceuseID, other nmg.Plane, table *VertexTable, tol nmg.Tol, tr nmg.Tracer) error {
	if tr == nil {
		tr = nmg.NopTracer{}
	}
	pl, err := s.FaceusePlane(fu)
	if err != nil {
		return err
	}
	dir := pl.N.Cross(other.N)
	if math.Abs(pl.N.Dot(other.N)) > tol.Para || dir.Length() == 0 {
		return nil
	}

	var verts []nmg.VertexID
	var points []nmg.LoopuseID
	for _, vu := range table.Vertexuses() {
		rec := s.Vertexuse(vu)
		if rec == nil {
			continue
		}
		if lu := rec.Parent.Loopuse(); lu != 0 {
			points = append(points, lu)
			continue
		}
		verts = append(verts, rec.Vertex)
	}
	for _, lu := range points {
		if s.Loopuse(lu) == nil {
			continue
		}
		if _, err := s.KillLoop(lu); err != nil {
			return err
		}
	}
	verts = lo.Uniq(lo.Filter(verts, func(v nmg.VertexID, _ int) bool { return s.Vertex(v) != nil }))
	if len(verts) < 2 {
		return s.ComputeFaceBBox(s.Faceuse(fu).Face)
	}

	type entry struct {
		v   nmg.VertexID
		p   v3.Vec
		t   float64
		seq uint64
	}
	entries := make([]entry, 0, len(verts))
	for _, v := range verts {
		p, ok := s.Coord(v)
		if !ok {
			return errors.Wrapf(nmg.ErrDegenerateGeometry, "cut face %d: vertex %d has no coordinates", fu, v)
		}
		entries = append(entries, entry{v: v, p: p, t: dir.Dot(p), seq: s.Vertex(v).Seq})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].t != entries[j].t {
			return entries[i].t < entries[j].t
		}
		return entries[i].seq < entries[j].seq
	})

	c := &cutter{s: s, fu: fu, n: pl.N, tol: tol, tr: tr}
	for i := 0; i+1 < len(entries); i++ {
		a, b := entries[i], entries[i+1]
		if err := c.gap(a.v, b.v, a.p, b.p); err != nil {
			return err
		}
	}
	return s.ComputeFaceBBox(s.Faceuse(fu).Face)
}

type cutter struct {
	s   *nmg.Store
	fu  nmg.FaceuseID
	n   v3.Vec
	tol nmg.Tol
	tr  nmg.Tracer
}

func (c *cutter) gap(va, vb nmg.VertexID, pa, pb v3.Vec) error {
	s := c.s
	d := pb.Sub(pa)
	if va == vb || d.Dot(d) < c.tol.DistSq {
		return nil
	}
	if c.hasEdge(va, vb) {
		return nil
	}
	mid := pa.Add(d.MulScalar(0.5))
	lu := c.loopContaining(mid)
	if lu == 0 {
		c.tr.Tracef("cutter: gap %d-%d grazes faceuse %d", va, vb, c.fu)
		return nil
	}
	vua, vub := vuInLoop(s, lu, va), vuInLoop(s, lu, vb)
	if vua == 0 || vub == 0 {
		return errors.Wrapf(nmg.ErrUnsupported,
			"cut face %d: gap %d-%d crosses loopuse %d but its ends lie on different loops", c.fu, va, vb, lu)
	}
	nlu, err := s.CutLoop(vua, vub)
	if err != nil {
		return err
	}
	c.tr.Tracef("cutter: cut loopuse %d between vertices %d and %d, new loopuse %d", lu, va, vb, nlu)
	return nil
}

// hasEdge reports whether some loop of the face already runs from va to
// vb or back.
func (c *cutter) hasEdge(va, vb nmg.VertexID) bool {
	s := c.s
	for _, lu := range s.Loopuses(c.fu) {
		for _, eu := range s.LoopEdgeuses(lu) {
			a, b := s.EdgeuseVertex(eu), s.EdgeuseEndVertex(eu)
			if (a == va && b == vb) || (a == vb && b == va) {
				return true
			}
		}
	}
	return false
}

// loopContaining returns the edge loop of the face whose interior holds p
// clear of its boundary, or zero when p is outside every loop, on a
// boundary, or inside a hole.
func (c *cutter) loopContaining(p v3.Vec) nmg.LoopuseID {
	s := c.s
	var hit nmg.LoopuseID
	for _, lu := range s.Loopuses(c.fu) {
		rec := s.Loopuse(lu)
		if rec.Vertexuse != 0 {
			continue
		}
		pts, err := s.LoopCoords(lu)
		if err != nil {
			continue
		}
		if nearBoundary(p, pts, c.tol) {
			return 0
		}
		if !insidePolygon(p, pts, c.n) {
			continue
		}
		if rec.Orient == nmg.OTOpposite {
			return 0
		}
		hit = lu
	}
	return hit
}

func vuInLoop(s *nmg.Store, lu nmg.LoopuseID, v nmg.VertexID) nmg.VertexuseID {
	for _, eu := range s.LoopEdgeuses(lu) {
		if s.EdgeuseVertex(eu) == v {
			return s.Edgeuse(eu).Vertexuse
		}
	}
	return 0
}

// insidePolygon is a crossing-number test of p against the polygon pts,
// both projected along the dominant axis of n.
func insidePolygon(p v3.Vec, pts []v3.Vec, n v3.Vec) bool {
	proj := projector(n)
	px, py := proj(p)
	in := false
	for i := range pts {
		ax, ay := proj(pts[i])
		bx, by := proj(pts[(i+1)%len(pts)])
		if (ay > py) != (by > py) {
			x := ax + (py-ay)*(bx-ax)/(by-ay)
			if px < x {
				in = !in
			}
		}
	}
	return in
}

func projector(n v3.Vec) func(v3.Vec) (float64, float64) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		return func(p v3.Vec) (float64, float64) { return p.X, p.Y }
	case ay >= ax:
		return func(p v3.Vec) (float64, float64) { return p.Z, p.X }
	default:
		return func(p v3.Vec) (float64, float64) { return p.Y, p.Z }
	}
}

func nearBoundary(p v3.Vec, pts []v3.Vec, tol nmg.Tol) bool {
	for i := range pts {
		if segmentDistSq(p, pts[i], pts[(i+1)%len(pts)]) < tol.DistSq {
			return true
		}
	}
	return false
}

func segmentDistSq(p, a, b v3.Vec) float64 {
	ab := b.Sub(a)
	l := ab.Dot(ab)
	t := 0.0
	if l > 0 {
		t = math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l))
	}
	d := p.Sub(a.Add(ab.MulScalar(t)))
	return d.Dot(d)
}

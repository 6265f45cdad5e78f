package nmg

import (
	"math"

	"github.com/pkg/errors"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SetVertexGeometry attaches coordinates p to v, replacing any previous
// ones. Bounding boxes already computed for loops, faces and shells that
// use v are refreshed.
func (s *Store) SetVertexGeometry(v VertexID, p v3.Vec) error {
	rec := s.Vertex(v)
	if rec == nil {
		return notFound(KindVertex, int32(v))
	}
	rec.Coord = &p
	for _, vu := range s.vuRing().collect(rec.uses) {
		lu := s.LoopuseOfVertexuse(vu)
		if lu == 0 {
			continue
		}
		l := s.loops.recs[s.loopuses.recs[lu].Loop]
		if l.BBox == nil {
			continue
		}
		l.BBox = nil
		if err := s.ComputeLoopBBox(lu); err != nil {
			return errors.Wrapf(err, "set vertex %d", v)
		}
		if fu := s.FaceuseOfLoopuse(lu); fu != 0 {
			f := s.faces.recs[s.faceuses.recs[fu].Face]
			if f.BBox != nil {
				if err := s.ComputeFaceBBox(s.faceuses.recs[fu].Face); err != nil {
					return errors.Wrapf(err, "set vertex %d", v)
				}
			}
		}
		if sh := s.ShellOfLoopuse(lu); sh != 0 && s.shells.recs[sh].BBox != nil {
			if err := s.ComputeShellBBox(sh); err != nil {
				return errors.Wrapf(err, "set vertex %d", v)
			}
		}
	}
	return nil
}

// Coord returns the coordinates of v, or false when it has none.
func (s *Store) Coord(v VertexID) (v3.Vec, bool) {
	rec := s.Vertex(v)
	if rec == nil || rec.Coord == nil {
		return v3.Vec{}, false
	}
	return *rec.Coord, true
}

func (s *Store) invalidateLoopBBox(lu LoopuseID) {
	if rec := s.Loopuse(lu); rec != nil {
		s.loops.recs[rec.Loop].BBox = nil
	}
}

// loopVertices lists the vertices of lu in walk order; a point loop
// yields its one vertex.
func (s *Store) loopVertices(lu LoopuseID) []VertexID {
	rec := s.loopuses.recs[lu]
	if rec.Vertexuse != 0 {
		return []VertexID{s.vertexuses.recs[rec.Vertexuse].Vertex}
	}
	eus := s.euRing().collect(rec.edgeuses)
	out := make([]VertexID, len(eus))
	for i, eu := range eus {
		out[i] = s.euVertex(eu)
	}
	return out
}

// LoopCoords returns the coordinates of the vertices of lu in walk order.
func (s *Store) LoopCoords(lu LoopuseID) ([]v3.Vec, error) {
	if s.Loopuse(lu) == nil {
		return nil, notFound(KindLoopuse, int32(lu))
	}
	vs := s.loopVertices(lu)
	out := make([]v3.Vec, len(vs))
	for i, v := range vs {
		c, ok := s.Coord(v)
		if !ok {
			return nil, degeneratef("loopuse %d: vertex %d has no coordinates", lu, v)
		}
		out[i] = c
	}
	return out, nil
}

func boxOf(pts []v3.Vec) sdf.Box3 {
	b := sdf.Box3{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.Include(p)
	}
	return b
}

// ComputeLoopBBox stores the bounding box of lu's loop.
func (s *Store) ComputeLoopBBox(lu LoopuseID) error {
	pts, err := s.LoopCoords(lu)
	if err != nil {
		return err
	}
	if len(pts) == 0 {
		return invariantf("loopuse %d has no children", lu)
	}
	b := boxOf(pts)
	s.loops.recs[s.loopuses.recs[lu].Loop].BBox = &b
	return nil
}

// ComputeFaceBBox stores the bounding box of every loop in f and of f
// itself.
func (s *Store) ComputeFaceBBox(f FaceID) error {
	rec := s.Face(f)
	if rec == nil {
		return notFound(KindFace, int32(f))
	}
	var b *sdf.Box3
	for _, lu := range s.Loopuses(rec.Faceuse) {
		if err := s.ComputeLoopBBox(lu); err != nil {
			return err
		}
		lb := *s.loops.recs[s.loopuses.recs[lu].Loop].BBox
		if b == nil {
			b = &lb
		} else {
			e := b.Extend(lb)
			b = &e
		}
	}
	if b == nil {
		return invariantf("face %d has no loops", f)
	}
	rec.BBox = b
	return nil
}

// ComputeShellBBox stores the bounding box of everything in sh.
func (s *Store) ComputeShellBBox(sh ShellID) error {
	shell := s.Shell(sh)
	if shell == nil {
		return notFound(KindShell, int32(sh))
	}
	var pts []v3.Vec
	for _, v := range s.ShellVertices(sh) {
		if c, ok := s.Coord(v); ok {
			pts = append(pts, c)
		}
	}
	if len(pts) == 0 {
		return invariantf("shell %d has no located vertices", sh)
	}
	b := boxOf(pts)
	shell.BBox = &b
	return nil
}

// NewellNormal returns the area-weighted normal of the polygon pts, with
// length equal to twice its area.
func NewellNormal(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// PlaneFromPoints fits a plane to the polygon pts using Newell's method.
// The normal follows the polygon's winding.
func PlaneFromPoints(pts []v3.Vec, tol Tol) (Plane, error) {
	if len(pts) < 3 {
		return Plane{}, degeneratef("plane needs 3 points, have %d", len(pts))
	}
	n := NewellNormal(pts)
	l := n.Length()
	if l < tol.DistSq {
		return Plane{}, degeneratef("polygon of %d points has no area", len(pts))
	}
	n = n.MulScalar(1 / l)
	var c v3.Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.MulScalar(1 / float64(len(pts)))
	return Plane{N: n, D: n.Dot(c)}, nil
}

// FacePlaneFromLoop fits a plane to the vertices of lu.
func (s *Store) FacePlaneFromLoop(lu LoopuseID, tol Tol) (Plane, error) {
	pts, err := s.LoopCoords(lu)
	if err != nil {
		return Plane{}, err
	}
	return PlaneFromPoints(pts, tol)
}

// SetFacePlane attaches pl to the face of fu. fu becomes the use facing
// along the normal and its mate the use facing against it. The face's
// bounding box is recomputed when its vertices are located.
func (s *Store) SetFacePlane(fu FaceuseID, pl Plane) error {
	rec := s.Faceuse(fu)
	if rec == nil {
		return notFound(KindFaceuse, int32(fu))
	}
	l := pl.N.Length()
	if l == 0 || math.IsNaN(l) {
		return degeneratef("faceuse %d: plane normal has zero length", fu)
	}
	pl = Plane{N: pl.N.MulScalar(1 / l), D: pl.D / l}
	face := s.faces.recs[rec.Face]
	face.Plane = &pl
	face.Faceuse = fu
	rec.Orient = OTSame
	s.faceuses.recs[rec.Mate].Orient = OTOpposite
	if err := s.ComputeFaceBBox(rec.Face); err != nil && !isDegenerate(err) {
		return err
	}
	return nil
}

// FaceusePlane returns the plane of fu's face oriented as fu sees it.
func (s *Store) FaceusePlane(fu FaceuseID) (Plane, error) {
	rec := s.Faceuse(fu)
	if rec == nil {
		return Plane{}, notFound(KindFaceuse, int32(fu))
	}
	pl := s.faces.recs[rec.Face].Plane
	if pl == nil {
		return Plane{}, degeneratef("face %d has no plane", rec.Face)
	}
	if rec.Orient == OTOpposite {
		return pl.Flip(), nil
	}
	return *pl, nil
}

// FaceuseNormal returns the outward normal of fu.
func (s *Store) FaceuseNormal(fu FaceuseID) (v3.Vec, error) {
	pl, err := s.FaceusePlane(fu)
	if err != nil {
		return v3.Vec{}, err
	}
	return pl.N, nil
}

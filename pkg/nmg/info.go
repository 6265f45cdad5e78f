package nmg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Read-only traversal. The list accessors return snapshots, so callers may
// edit the store while ranging over the result.
// ---------------------------------------------------------------------------

// Regions lists the regions of m.
func (s *Store) Regions(m ModelID) []RegionID {
	rec := s.Model(m)
	if rec == nil {
		return nil
	}
	return s.regionRing().collect(rec.regions)
}

// Shells lists the shells of r.
func (s *Store) Shells(r RegionID) []ShellID {
	rec := s.Region(r)
	if rec == nil {
		return nil
	}
	return s.shellRing().collect(rec.shells)
}

// ShellFaceuses lists every faceuse of sh, both sides of each face.
func (s *Store) ShellFaceuses(sh ShellID) []FaceuseID {
	rec := s.Shell(sh)
	if rec == nil {
		return nil
	}
	return s.fuRing().collect(rec.faceuses)
}

// ShellLoopuses lists the wire loopuses of sh.
func (s *Store) ShellLoopuses(sh ShellID) []LoopuseID {
	rec := s.Shell(sh)
	if rec == nil {
		return nil
	}
	return s.luRing().collect(rec.loopuses)
}

// ShellEdgeuses lists the wire edgeuses of sh.
func (s *Store) ShellEdgeuses(sh ShellID) []EdgeuseID {
	rec := s.Shell(sh)
	if rec == nil {
		return nil
	}
	return s.euRing().collect(rec.edgeuses)
}

// Loopuses lists the loopuses of fu.
func (s *Store) Loopuses(fu FaceuseID) []LoopuseID {
	rec := s.Faceuse(fu)
	if rec == nil {
		return nil
	}
	return s.luRing().collect(rec.loopuses)
}

// LoopEdgeuses lists the edgeuses of lu in walk order. A point loop has
// none.
func (s *Store) LoopEdgeuses(lu LoopuseID) []EdgeuseID {
	rec := s.Loopuse(lu)
	if rec == nil {
		return nil
	}
	return s.euRing().collect(rec.edgeuses)
}

// VertexUses lists every use of v.
func (s *Store) VertexUses(v VertexID) []VertexuseID {
	rec := s.Vertex(v)
	if rec == nil {
		return nil
	}
	return s.vuRing().collect(rec.uses)
}

// EdgeuseVertex returns the vertex eu starts at.
func (s *Store) EdgeuseVertex(eu EdgeuseID) VertexID {
	if s.Edgeuse(eu) == nil {
		return 0
	}
	return s.euVertex(eu)
}

// EdgeuseEndVertex returns the vertex eu ends at, which is where its mate
// starts.
func (s *Store) EdgeuseEndVertex(eu EdgeuseID) VertexID {
	rec := s.Edgeuse(eu)
	if rec == nil {
		return 0
	}
	return s.euVertex(rec.Mate)
}

// EdgeuseNext returns the use following eu in its parent's list.
func (s *Store) EdgeuseNext(eu EdgeuseID) EdgeuseID {
	if s.Edgeuse(eu) == nil {
		return 0
	}
	return s.euRing().next(eu)
}

// EdgeusePrev returns the use preceding eu in its parent's list.
func (s *Store) EdgeusePrev(eu EdgeuseID) EdgeuseID {
	if s.Edgeuse(eu) == nil {
		return 0
	}
	return s.euRing().prev(eu)
}

// RadialFan lists the uses around eu's edge, starting at eu and stepping
// to the radial of each use's mate.
func (s *Store) RadialFan(eu EdgeuseID) []EdgeuseID {
	if s.Edgeuse(eu) == nil {
		return nil
	}
	var out []EdgeuseID
	x := eu
	for {
		out = append(out, x)
		x = s.edgeuses.recs[s.edgeuses.recs[x].Radial].Mate
		if x == eu || len(out) > s.edgeuses.n {
			return out
		}
	}
}

// LoopuseOfVertexuse returns the loopuse vu belongs to, directly or through
// an edgeuse, or zero.
func (s *Store) LoopuseOfVertexuse(vu VertexuseID) LoopuseID {
	rec := s.Vertexuse(vu)
	if rec == nil {
		return 0
	}
	switch rec.Parent.kind {
	case KindLoopuse:
		return rec.Parent.Loopuse()
	case KindEdgeuse:
		return s.edgeuses.recs[rec.Parent.Edgeuse()].Parent.Loopuse()
	}
	return 0
}

// FaceuseOfLoopuse returns the faceuse holding lu, or zero for a wire
// loop.
func (s *Store) FaceuseOfLoopuse(lu LoopuseID) FaceuseID {
	rec := s.Loopuse(lu)
	if rec == nil {
		return 0
	}
	return rec.Parent.Faceuse()
}

// ShellOfLoopuse returns the shell lu lives in.
func (s *Store) ShellOfLoopuse(lu LoopuseID) ShellID {
	rec := s.Loopuse(lu)
	if rec == nil {
		return 0
	}
	if fu := rec.Parent.Faceuse(); fu != 0 {
		return s.faceuses.recs[fu].Shell
	}
	return rec.Parent.Shell()
}

// ShellOfEdgeuse returns the shell eu lives in.
func (s *Store) ShellOfEdgeuse(eu EdgeuseID) ShellID {
	rec := s.Edgeuse(eu)
	if rec == nil {
		return 0
	}
	if lu := rec.Parent.Loopuse(); lu != 0 {
		return s.ShellOfLoopuse(lu)
	}
	return rec.Parent.Shell()
}

// EdgeCount returns the number of edgeuses in lu.
func (s *Store) EdgeCount(lu LoopuseID) int {
	return len(s.LoopEdgeuses(lu))
}

// FindVertexInFaceuse returns a use of v inside fu, or zero.
func (s *Store) FindVertexInFaceuse(fu FaceuseID, v VertexID) VertexuseID {
	for _, vu := range s.VertexUses(v) {
		if lu := s.LoopuseOfVertexuse(vu); lu != 0 && s.FaceuseOfLoopuse(lu) == fu {
			return vu
		}
	}
	return 0
}

// ShellVertices lists each vertex used anywhere in sh once, in first-seen
// order.
func (s *Store) ShellVertices(sh ShellID) []VertexID {
	shell := s.Shell(sh)
	if shell == nil {
		return nil
	}
	seen := make(map[VertexID]bool)
	var out []VertexID
	add := func(v VertexID) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	loops := s.ShellLoopuses(sh)
	for _, fu := range s.ShellFaceuses(sh) {
		loops = append(loops, s.Loopuses(fu)...)
	}
	for _, lu := range loops {
		for _, v := range s.loopVertices(lu) {
			add(v)
		}
	}
	for _, eu := range s.ShellEdgeuses(sh) {
		add(s.euVertex(eu))
	}
	if shell.Vertexuse != 0 {
		add(s.vertexuses.recs[shell.Vertexuse].Vertex)
	}
	return out
}

// FindVertexNear returns a vertex of sh lying within tol.Dist of p, or
// zero. When several qualify the nearest wins.
func (s *Store) FindVertexNear(sh ShellID, p v3.Vec, tol Tol) VertexID {
	var best VertexID
	bestD := tol.DistSq
	for _, v := range s.ShellVertices(sh) {
		c, ok := s.Coord(v)
		if !ok {
			continue
		}
		d := c.Sub(p)
		if dd := d.Dot(d); dd < bestD || (dd == 0 && best == 0) {
			best, bestD = v, dd
		}
	}
	return best
}

// FaceuseOfFace returns the use of f currently stored as its
// representative.
func (s *Store) FaceuseOfFace(f FaceID) FaceuseID {
	rec := s.Face(f)
	if rec == nil {
		return 0
	}
	return rec.Faceuse
}

// OrientedFaceuses returns one use of each face of sh, preferring the use
// whose orientation is OTSame.
func (s *Store) OrientedFaceuses(sh ShellID) []FaceuseID {
	seen := make(map[FaceID]bool)
	var out []FaceuseID
	for _, fu := range s.ShellFaceuses(sh) {
		rec := s.faceuses.recs[fu]
		if seen[rec.Face] {
			continue
		}
		seen[rec.Face] = true
		if rec.Orient == OTOpposite {
			fu = rec.Mate
		}
		out = append(out, fu)
	}
	return out
}

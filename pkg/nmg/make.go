package nmg

import (
	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// Internal constructors. These allocate and wire records without touching
// the parent's child slots or lists; callers finish the job.
// ---------------------------------------------------------------------------

func (s *Store) newVertex() VertexID {
	i, v := s.vertices.alloc()
	s.seq++
	v.Seq = s.seq
	return VertexID(i)
}

// newVertexuse makes a use of v (or of a fresh vertex when v is zero) with
// parent p, linked at the head of the vertex's use list.
func (s *Store) newVertexuse(v VertexID, p Parent) VertexuseID {
	if v == 0 {
		v = s.newVertex()
	}
	i, vu := s.vertexuses.alloc()
	id := VertexuseID(i)
	vu.Parent = p
	vu.Vertex = v
	s.vuRing().insertHead(&s.vertices.recs[v].uses, id)
	return id
}

// newEdgeusePair makes a fresh edge with two mated, mutually radial uses.
// Neither use is linked into a list and neither has a vertexuse yet.
func (s *Store) newEdgeusePair(p1, p2 Parent) (EdgeuseID, EdgeuseID) {
	ei, e := s.edges.alloc()
	i1, eu1 := s.edgeuses.alloc()
	i2, eu2 := s.edgeuses.alloc()
	id1, id2 := EdgeuseID(i1), EdgeuseID(i2)
	e.Edgeuse = id1
	eu1.Edge, eu2.Edge = EdgeID(ei), EdgeID(ei)
	eu1.Mate, eu1.Radial = id2, id2
	eu2.Mate, eu2.Radial = id1, id1
	eu1.Parent, eu2.Parent = p1, p2
	eu1.Orient, eu2.Orient = OTNone, OTNone
	return id1, id2
}

// newLoopusePair makes a fresh loop with two mated, childless uses.
func (s *Store) newLoopusePair(p1, p2 Parent, o Orientation) (LoopuseID, LoopuseID) {
	li, l := s.loops.alloc()
	i1, lu1 := s.loopuses.alloc()
	i2, lu2 := s.loopuses.alloc()
	id1, id2 := LoopuseID(i1), LoopuseID(i2)
	l.Loopuse = id1
	lu1.Loop, lu2.Loop = LoopID(li), LoopID(li)
	lu1.Mate, lu2.Mate = id2, id1
	lu1.Parent, lu2.Parent = p1, p2
	lu1.Orient, lu2.Orient = o, o
	return id1, id2
}

func (s *Store) newShell(r RegionID) ShellID {
	i, sh := s.shells.alloc()
	id := ShellID(i)
	sh.Region = r
	s.shellRing().insertHead(&s.regions.recs[r].shells, id)
	sh.Vertexuse = s.newVertexuse(0, ShellParent(id))
	return id
}

func (s *Store) newRegion(m ModelID) (RegionID, ShellID) {
	i, r := s.regions.alloc()
	id := RegionID(i)
	r.Model = m
	s.regionRing().insertHead(&s.models.recs[m].regions, id)
	return id, s.newShell(id)
}

// ---------------------------------------------------------------------------
// Make primitives
// ---------------------------------------------------------------------------

// MakeModel creates a model holding one region whose single shell contains
// one lone vertexuse on a fresh vertex.
func (s *Store) MakeModel() (ModelID, RegionID, ShellID) {
	i, _ := s.models.alloc()
	m := ModelID(i)
	r, sh := s.newRegion(m)
	s.tracef("MakeModel() m=%d r=%d s=%d", m, r, sh)
	return m, r, sh
}

// MakeRegion creates a region with a minimal shell and links it at the
// head of the model's region list.
func (s *Store) MakeRegion(m ModelID) (RegionID, ShellID, error) {
	if s.Model(m) == nil {
		return 0, 0, notFound(KindModel, int32(m))
	}
	r, sh := s.newRegion(m)
	s.tracef("MakeRegion(m=%d) r=%d s=%d", m, r, sh)
	return r, sh, nil
}

// MakeShell creates a shell holding one lone vertexuse and links it at the
// head of the region's shell list.
func (s *Store) MakeShell(r RegionID) (ShellID, error) {
	if s.Region(r) == nil {
		return 0, notFound(KindRegion, int32(r))
	}
	sh := s.newShell(r)
	s.tracef("MakeShell(r=%d) s=%d", r, sh)
	return sh, nil
}

// MakeVertexuse creates a use of v under parent p and stores it in the
// parent's vertexuse slot. A zero v makes a fresh vertex. The parent must
// be a shell, loopuse or edgeuse whose slot is empty; a loopuse must also
// have no edges.
func (s *Store) MakeVertexuse(v VertexID, p Parent) (VertexuseID, error) {
	if v != 0 && s.Vertex(v) == nil {
		return 0, notFound(KindVertex, int32(v))
	}
	var slot *VertexuseID
	switch p.kind {
	case KindShell:
		sh := s.Shell(p.Shell())
		if sh == nil {
			return 0, notFound(KindShell, p.id)
		}
		slot = &sh.Vertexuse
	case KindLoopuse:
		lu := s.Loopuse(p.Loopuse())
		if lu == nil {
			return 0, notFound(KindLoopuse, p.id)
		}
		if lu.edgeuses != 0 {
			return 0, invariantf("make vertexuse: loopuse %d already has edges", p.id)
		}
		slot = &lu.Vertexuse
	case KindEdgeuse:
		eu := s.Edgeuse(p.Edgeuse())
		if eu == nil {
			return 0, notFound(KindEdgeuse, p.id)
		}
		slot = &eu.Vertexuse
	default:
		return 0, errors.Wrapf(ErrInvalidParentKind, "make vertexuse: parent %s", p)
	}
	if *slot != 0 {
		return 0, invariantf("make vertexuse: %s already holds vertexuse %d", p, *slot)
	}
	vu := s.newVertexuse(v, p)
	*slot = vu
	return vu, nil
}

// MakeVertexuseAndVertex creates a fresh vertex and a use of it under p.
func (s *Store) MakeVertexuseAndVertex(p Parent) (VertexuseID, error) {
	return s.MakeVertexuse(0, p)
}

// MakeEdge creates a wire edge in shell sh from v1 to v2 and returns the
// use that starts at v1. A zero vertex is satisfied by stealing the shell's
// lone vertexuse if it has one, else by a fresh vertex. Any lone vertexuse
// left over afterwards is killed. The pair is linked at the head of the
// shell's edgeuse list as eu1, eu2.
func (s *Store) MakeEdge(v1, v2 VertexID, sh ShellID) (EdgeuseID, error) {
	shell := s.Shell(sh)
	if shell == nil {
		return 0, notFound(KindShell, int32(sh))
	}
	for _, v := range []VertexID{v1, v2} {
		if v != 0 && s.Vertex(v) == nil {
			return 0, notFound(KindVertex, int32(v))
		}
	}
	p := ShellParent(sh)
	eu1, eu2 := s.newEdgeusePair(p, p)
	attach := func(eu EdgeuseID, v VertexID) {
		rec := s.edgeuses.recs[eu]
		switch {
		case v != 0:
			rec.Vertexuse = s.newVertexuse(v, EdgeuseParent(eu))
		case shell.Vertexuse != 0:
			vu := shell.Vertexuse
			shell.Vertexuse = 0
			s.vertexuses.recs[vu].Parent = EdgeuseParent(eu)
			rec.Vertexuse = vu
		default:
			rec.Vertexuse = s.newVertexuse(0, EdgeuseParent(eu))
		}
	}
	attach(eu1, v1)
	attach(eu2, v2)
	if shell.Vertexuse != 0 {
		s.killVertexuse(shell.Vertexuse)
	}
	r := s.euRing()
	r.insertHead(&shell.edgeuses, eu2)
	r.insertHead(&shell.edgeuses, eu1)
	s.tracef("MakeEdge(v1=%d, v2=%d, s=%d) eu=%d", v1, v2, sh, eu1)
	return eu1, nil
}

// MakeEdgeOnVertexuse turns the sole vertexuse of a shell or of a point
// loop into a zero-length edge from that vertex to itself, and returns the
// edgeuse that took over vu.
func (s *Store) MakeEdgeOnVertexuse(vu VertexuseID) (EdgeuseID, error) {
	rec := s.Vertexuse(vu)
	if rec == nil {
		return 0, notFound(KindVertexuse, int32(vu))
	}
	switch rec.Parent.kind {
	case KindShell:
		sh := rec.Parent.Shell()
		shell := s.Shell(sh)
		if shell.Vertexuse != vu {
			return 0, invariantf("make edge on vertexuse: shell %d disowns vertexuse %d", sh, vu)
		}
		p := ShellParent(sh)
		eu1, eu2 := s.newEdgeusePair(p, p)
		shell.Vertexuse = 0
		rec.Parent = EdgeuseParent(eu1)
		s.edgeuses.recs[eu1].Vertexuse = vu
		s.edgeuses.recs[eu2].Vertexuse = s.newVertexuse(rec.Vertex, EdgeuseParent(eu2))
		r := s.euRing()
		r.insertHead(&shell.edgeuses, eu2)
		r.insertHead(&shell.edgeuses, eu1)
		s.tracef("MakeEdgeOnVertexuse(vu=%d) eu=%d", vu, eu1)
		return eu1, nil

	case KindLoopuse:
		lu := rec.Parent.Loopuse()
		loop := s.Loopuse(lu)
		mate := s.Loopuse(loop.Mate)
		if loop.Mate == lu || mate == nil {
			return 0, invariantf("make edge on vertexuse: loopuse %d has no mate", lu)
		}
		if loop.Vertexuse != vu || mate.Vertexuse == 0 || mate.edgeuses != 0 {
			return 0, invariantf("make edge on vertexuse: mate of point loop %d is not a point loop", lu)
		}
		vumate := mate.Vertexuse
		if vumate == vu {
			return 0, invariantf("make edge on vertexuse: vertexuse %d is its own mate", vu)
		}
		eu1, eu2 := s.newEdgeusePair(LoopuseParent(lu), LoopuseParent(loop.Mate))
		loop.Vertexuse, mate.Vertexuse = 0, 0
		s.edgeuses.recs[eu1].Vertexuse = vu
		s.edgeuses.recs[eu2].Vertexuse = vumate
		rec.Parent = EdgeuseParent(eu1)
		s.vertexuses.recs[vumate].Parent = EdgeuseParent(eu2)
		r := s.euRing()
		r.insertHead(&loop.edgeuses, eu1)
		r.insertHead(&mate.edgeuses, eu2)
		s.tracef("MakeEdgeOnVertexuse(vu=%d) eu=%d in lu=%d", vu, eu1, lu)
		return eu1, nil
	}
	return 0, errors.Wrapf(ErrInvalidParentKind,
		"make edge on vertexuse: vertexuse %d is not the sole element of a shell or loopuse (parent %s)", vu, rec.Parent)
}

// MakeLoop builds a loop pair from the first contiguous run of wire edges
// in shell sh. Starting at the head of the shell's edgeuse list, each use
// is taken together with its mate while the next remaining use starts where
// the previous one ended. The run must close; if it does not, the call
// fails and the shell's edge list is left exactly as it was.
//
// Taken uses are appended to the new loopuse in run order and their mates
// are inserted at the head of the mate loopuse, so the mate walks the loop
// backwards. The loopuse pair is linked at the head of the shell's loopuse
// list as lu1, lu2.
//
// A shell with no wire edges but a lone vertexuse yields a point loop.
func (s *Store) MakeLoop(sh ShellID) (LoopuseID, error) {
	shell := s.Shell(sh)
	if shell == nil {
		return 0, notFound(KindShell, int32(sh))
	}
	if shell.edgeuses == 0 {
		if shell.Vertexuse == 0 {
			return 0, invariantf("make loop: shell %d has no wire edges", sh)
		}
		return s.MakeLoopOnVertex(ShellParent(sh), s.vertexuses.recs[shell.Vertexuse].Vertex, OTUnspec)
	}

	r := s.euRing()
	order := r.collect(shell.edgeuses)
	taken := make(map[EdgeuseID]bool, len(order))
	first := func() EdgeuseID {
		for _, eu := range order {
			if !taken[eu] {
				return eu
			}
		}
		return 0
	}

	feu := first()
	var run []EdgeuseID
	var last EdgeuseID
	for {
		p1 := first()
		if p1 == 0 {
			break
		}
		p2 := s.edgeuses.recs[p1].Mate
		if s.edgeuses.recs[p1].Parent != ShellParent(sh) || s.edgeuses.recs[p2].Parent != ShellParent(sh) {
			return 0, invariantf("make loop: edgeuse mates %d/%d do not belong to shell %d", p1, p2, sh)
		}
		taken[p1] = true
		if first() == 0 {
			return 0, invariantf("make loop: mate of edgeuse %d missing from shell %d", p1, sh)
		}
		taken[p2] = true
		run = append(run, p1)
		last = p2
		nxt := first()
		if nxt == 0 || s.euVertex(nxt) != s.euVertex(last) {
			break
		}
	}
	if s.euVertex(last) != s.euVertex(feu) {
		return 0, invariantf("make loop: edge run of %d edges in shell %d does not close", len(run), sh)
	}

	lu1, lu2 := s.newLoopusePair(ShellParent(sh), ShellParent(sh), OTUnspec)
	l1, l2 := s.loopuses.recs[lu1], s.loopuses.recs[lu2]
	for _, p1 := range run {
		p2 := s.edgeuses.recs[p1].Mate
		r.remove(&shell.edgeuses, p1)
		r.remove(&shell.edgeuses, p2)
		r.insertTail(&l1.edgeuses, p1)
		r.insertHead(&l2.edgeuses, p2)
		s.edgeuses.recs[p1].Parent = LoopuseParent(lu1)
		s.edgeuses.recs[p2].Parent = LoopuseParent(lu2)
	}
	lr := s.luRing()
	lr.insertHead(&shell.loopuses, lu2)
	lr.insertHead(&shell.loopuses, lu1)
	s.tracef("MakeLoop(s=%d) lu=%d with %d edges", sh, lu1, len(run))
	return lu1, nil
}

// MakeLoopOnVertex makes a point loop on v under a shell or faceuse. A
// shell parent's lone vertexuse is stolen (and moved to v if v is given).
// The new loopuses are linked at the tail of the parent lists.
func (s *Store) MakeLoopOnVertex(p Parent, v VertexID, o Orientation) (LoopuseID, error) {
	if v != 0 && s.Vertex(v) == nil {
		return 0, notFound(KindVertex, int32(v))
	}
	lr := s.luRing()
	switch p.kind {
	case KindShell:
		shell := s.Shell(p.Shell())
		if shell == nil {
			return 0, notFound(KindShell, p.id)
		}
		lu1, lu2 := s.newLoopusePair(p, p, o)
		lr.insertTail(&shell.loopuses, lu1)
		lr.insertTail(&shell.loopuses, lu2)
		var vu1 VertexuseID
		if shell.Vertexuse != 0 {
			vu1 = shell.Vertexuse
			shell.Vertexuse = 0
			s.vertexuses.recs[vu1].Parent = LoopuseParent(lu1)
			if v != 0 {
				s.moveVertexuse(vu1, v)
			}
		} else {
			vu1 = s.newVertexuse(v, LoopuseParent(lu1))
		}
		s.loopuses.recs[lu1].Vertexuse = vu1
		s.loopuses.recs[lu2].Vertexuse = s.newVertexuse(s.vertexuses.recs[vu1].Vertex, LoopuseParent(lu2))
		s.tracef("MakeLoopOnVertex(%s, v=%d) lu=%d", p, v, lu1)
		return lu1, nil

	case KindFaceuse:
		fu := s.Faceuse(p.Faceuse())
		if fu == nil {
			return 0, notFound(KindFaceuse, p.id)
		}
		mate := s.faceuses.recs[fu.Mate]
		lu1, lu2 := s.newLoopusePair(p, FaceuseParent(fu.Mate), o)
		lr.insertTail(&fu.loopuses, lu1)
		lr.insertTail(&mate.loopuses, lu2)
		vu1 := s.newVertexuse(v, LoopuseParent(lu1))
		s.loopuses.recs[lu1].Vertexuse = vu1
		s.loopuses.recs[lu2].Vertexuse = s.newVertexuse(s.vertexuses.recs[vu1].Vertex, LoopuseParent(lu2))
		s.tracef("MakeLoopOnVertex(%s, v=%d) lu=%d", p, v, lu1)
		return lu1, nil
	}
	return 0, errors.Wrapf(ErrInvalidParentKind, "make loop on vertex: parent %s", p)
}

// MakeFace moves a wire loop pair out of its shell into a new mated faceuse
// pair. The faceuses are linked at the head of the shell's faceuse list as
// fu1, fu2, with orientation unspecified until a plane is attached.
func (s *Store) MakeFace(lu LoopuseID) (FaceuseID, error) {
	l1 := s.Loopuse(lu)
	if l1 == nil {
		return 0, notFound(KindLoopuse, int32(lu))
	}
	if l1.Parent.kind != KindShell {
		return 0, invariantf("make face: loopuse %d must be a child of a shell, not %s", lu, l1.Parent)
	}
	l2 := s.Loopuse(l1.Mate)
	if l2 == nil || l2.Parent != l1.Parent {
		return 0, invariantf("make face: mate of loopuse %d does not share its parent", lu)
	}
	sh := l1.Parent.Shell()
	shell := s.shells.recs[sh]

	fi, face := s.faces.alloc()
	i1, fu1 := s.faceuses.alloc()
	i2, fu2 := s.faceuses.alloc()
	id1, id2 := FaceuseID(i1), FaceuseID(i2)
	face.Faceuse = id1
	fu1.Shell, fu2.Shell = sh, sh
	fu1.Mate, fu2.Mate = id2, id1
	fu1.Face, fu2.Face = FaceID(fi), FaceID(fi)
	fu1.Orient, fu2.Orient = OTUnspec, OTUnspec

	lr := s.luRing()
	lr.remove(&shell.loopuses, lu)
	lr.remove(&shell.loopuses, l1.Mate)
	lr.insertHead(&fu1.loopuses, lu)
	lr.insertHead(&fu2.loopuses, l1.Mate)
	l1.Parent = FaceuseParent(id1)
	l2.Parent = FaceuseParent(id2)
	l1.Orient, l2.Orient = OTSame, OTSame

	fr := s.fuRing()
	fr.insertHead(&shell.faceuses, id2)
	fr.insertHead(&shell.faceuses, id1)
	s.tracef("MakeFace(lu=%d) fu=%d", lu, id1)
	return id1, nil
}

package nmg

import "github.com/pkg/errors"

// moveVertexuse rebinds vu to v and frees the old vertex if vu was its
// last use.
func (s *Store) moveVertexuse(vu VertexuseID, v VertexID) {
	rec := s.vertexuses.recs[vu]
	old := rec.Vertex
	if old == v {
		return
	}
	vr := s.vuRing()
	ov := s.vertices.recs[old]
	vr.remove(&ov.uses, vu)
	if ov.uses == 0 {
		s.vertices.release(int32(old))
	}
	vr.insertHead(&s.vertices.recs[v].uses, vu)
	rec.Vertex = v
}

// MoveVertexuse rebinds vu to vertex v. The vertex vu used before is
// freed when it has no uses left.
func (s *Store) MoveVertexuse(vu VertexuseID, v VertexID) error {
	if s.Vertexuse(vu) == nil {
		return notFound(KindVertexuse, int32(vu))
	}
	if s.Vertex(v) == nil {
		return notFound(KindVertex, int32(v))
	}
	s.moveVertexuse(vu, v)
	return nil
}

// JoinVertices moves every use of v2 onto v1 and frees v2. v1 adopts
// v2's coordinates when it has none of its own.
func (s *Store) JoinVertices(v1, v2 VertexID) error {
	a, b := s.Vertex(v1), s.Vertex(v2)
	if a == nil {
		return notFound(KindVertex, int32(v1))
	}
	if b == nil {
		return notFound(KindVertex, int32(v2))
	}
	if v1 == v2 {
		return nil
	}
	if a.Coord == nil && b.Coord != nil {
		c := *b.Coord
		a.Coord = &c
	}
	vr := s.vuRing()
	for _, vu := range vr.collect(b.uses) {
		vr.remove(&b.uses, vu)
		vr.insertTail(&a.uses, vu)
		s.vertexuses.recs[vu].Vertex = v1
	}
	s.vertices.release(int32(v2))
	s.tracef("JoinVertices(v1=%d, v2=%d)", v1, v2)
	return nil
}

// UnglueEdge detaches eu and its mate from the radial ring they share
// with other uses and gives them an edge of their own.
func (s *Store) UnglueEdge(eu EdgeuseID) error {
	e1 := s.Edgeuse(eu)
	if e1 == nil {
		return notFound(KindEdgeuse, int32(eu))
	}
	mate := e1.Mate
	if e1.Radial == mate {
		return nil
	}
	e2 := s.edgeuses.recs[mate]
	r1, r2 := e1.Radial, e2.Radial
	s.edgeuses.recs[r1].Radial = r2
	s.edgeuses.recs[r2].Radial = r1
	e1.Radial, e2.Radial = mate, eu

	old := s.edges.recs[e1.Edge]
	if old.Edgeuse == eu || old.Edgeuse == mate {
		old.Edgeuse = r1
	}
	ni, ne := s.edges.alloc()
	ne.Edgeuse = eu
	e1.Edge, e2.Edge = EdgeID(ni), EdgeID(ni)
	s.tracef("UnglueEdge(eu=%d) e=%d", eu, ni)
	return nil
}

// MoveEdgeuseToEdge makes src and its mate radial uses of the edge used by
// dst, freeing src's former edge if nothing else used it. When the two
// pairs do not already share both end vertices, src's vertexuses are moved
// onto dst's vertices, pairing src with dst's mate.
func (s *Store) MoveEdgeuseToEdge(dst, src EdgeuseID) error {
	d, sr := s.Edgeuse(dst), s.Edgeuse(src)
	if d == nil {
		return notFound(KindEdgeuse, int32(dst))
	}
	if sr == nil {
		return notFound(KindEdgeuse, int32(src))
	}
	if d.Edge == sr.Edge {
		return nil
	}
	dm, sm := d.Mate, sr.Mate
	dv, dmv := s.euVertex(dst), s.euVertex(dm)
	sv, smv := s.euVertex(src), s.euVertex(sm)
	switch {
	case sv == dmv && smv == dv:
	case sv == dv && smv == dmv:
	default:
		s.moveVertexuse(sr.Vertexuse, dmv)
		s.moveVertexuse(s.edgeuses.recs[sm].Vertexuse, dv)
	}

	if err := s.UnglueEdge(src); err != nil {
		return err
	}
	s.edges.release(int32(sr.Edge))
	sr.Edge = d.Edge
	s.edgeuses.recs[sm].Edge = d.Edge

	old := d.Radial
	sr.Radial = dst
	s.edgeuses.recs[sm].Radial = old
	s.edgeuses.recs[old].Radial = sm
	d.Radial = src
	s.tracef("MoveEdgeuseToEdge(dst=%d, src=%d)", dst, src)
	return nil
}

// SplitEdge splits the edge used by eu at vertex v (a fresh vertex when v
// is zero). For eu running A→B it returns the new use running V→B; eu
// itself becomes A→V. Radial neighbours of eu are first unglued so only
// eu's own edge is split.
//
// In a loop the new uses are linked directly after eu and after its mate,
// keeping both loops closed. For a wire edge the shell's list afterwards
// reads eu, mate, new, newmate.
func (s *Store) SplitEdge(v VertexID, eu EdgeuseID) (EdgeuseID, error) {
	old := s.Edgeuse(eu)
	if old == nil {
		return 0, notFound(KindEdgeuse, int32(eu))
	}
	if v != 0 && s.Vertex(v) == nil {
		return 0, notFound(KindVertex, int32(v))
	}
	if old.Radial != old.Mate {
		if err := s.UnglueEdge(eu); err != nil {
			return 0, err
		}
	}
	oldmate := old.Mate
	om := s.edgeuses.recs[oldmate]
	er := s.euRing()

	switch old.Parent.kind {
	case KindShell:
		sh := old.Parent.Shell()
		if v == 0 {
			v = s.newVertex()
		}
		eu1, err := s.MakeEdge(v, s.euVertex(oldmate), sh)
		if err != nil {
			return 0, err
		}
		eu2 := s.edgeuses.recs[eu1].Mate
		s.moveVertexuse(om.Vertexuse, v)
		shell := s.shells.recs[sh]
		er.remove(&shell.edgeuses, eu1)
		er.remove(&shell.edgeuses, eu2)
		if s.edgeuses.recs[oldmate].l.next != 0 {
			er.remove(&shell.edgeuses, oldmate)
			er.insertAfter(eu, oldmate)
		}
		er.insertAfter(oldmate, eu1)
		er.insertAfter(eu1, eu2)
		s.tracef("SplitEdge(v=%d, eu=%d) wire eu=%d", v, eu, eu1)
		return eu1, nil

	case KindLoopuse:
		if v == 0 {
			v = s.newVertex()
		}
		eu1, eu2 := s.newEdgeusePair(old.Parent, om.Parent)
		e1, e2 := s.edgeuses.recs[eu1], s.edgeuses.recs[eu2]
		e1.Vertexuse = s.newVertexuse(v, EdgeuseParent(eu1))
		e2.Vertexuse = s.newVertexuse(v, EdgeuseParent(eu2))
		e1.Orient, e2.Orient = old.Orient, om.Orient
		er.insertAfter(eu, eu1)
		er.insertAfter(oldmate, eu2)

		// eu1 and oldmate share the new edge; eu2 takes over the old one.
		newEdge, oldEdge := e1.Edge, old.Edge
		e1.Mate, om.Mate = oldmate, eu1
		e1.Radial, om.Radial = oldmate, eu1
		e2.Mate, old.Mate = eu, eu2
		e2.Radial, old.Radial = eu, eu2
		om.Edge = newEdge
		e2.Edge = oldEdge
		s.edges.recs[newEdge].Edgeuse = eu1
		s.edges.recs[oldEdge].Edgeuse = eu
		s.invalidateLoopBBox(old.Parent.Loopuse())
		s.invalidateLoopBBox(om.Parent.Loopuse())
		s.tracef("SplitEdge(v=%d, eu=%d) loop eu=%d", v, eu, eu1)
		return eu1, nil
	}
	return 0, errors.Wrapf(ErrInvalidParentKind, "split edge: edgeuse %d parent %s", eu, old.Parent)
}

// InsertNullEdge inserts a zero-length edge at the start vertex of eu,
// directly before eu in its loop. The mate use goes directly after eu's
// mate. It returns the new use in eu's loop.
func (s *Store) InsertNullEdge(eu EdgeuseID) (EdgeuseID, error) {
	rec := s.Edgeuse(eu)
	if rec == nil {
		return 0, notFound(KindEdgeuse, int32(eu))
	}
	if rec.Parent.kind != KindLoopuse {
		return 0, errors.Wrapf(ErrInvalidParentKind, "insert null edge: edgeuse %d parent %s", eu, rec.Parent)
	}
	mate := rec.Mate
	v := s.euVertex(eu)
	eu1, eu2 := s.newEdgeusePair(rec.Parent, s.edgeuses.recs[mate].Parent)
	s.edgeuses.recs[eu1].Vertexuse = s.newVertexuse(v, EdgeuseParent(eu1))
	s.edgeuses.recs[eu2].Vertexuse = s.newVertexuse(v, EdgeuseParent(eu2))
	er := s.euRing()
	er.insertBefore(eu, eu1)
	er.insertAfter(mate, eu2)
	s.tracef("InsertNullEdge(eu=%d) eu=%d", eu, eu1)
	return eu1, nil
}

package nmg

import "github.com/pkg/errors"

// CutLoop splits the loop holding vu1 and vu2 into two loops joined by a
// new edge between their vertices. Both must be edge vertexuses of the
// same loopuse and must sit on different vertices.
//
// The edges from vu2's edgeuse up to (but not including) vu1's edgeuse
// move into a new loopuse in the same parent, closed by a new edge v1→v2.
// The original loop is closed by a v2→v1 use inserted before vu1's
// edgeuse; both new uses share one edge. The new loopuse is returned and
// keeps the orientation of the original.
func (s *Store) CutLoop(vu1, vu2 VertexuseID) (LoopuseID, error) {
	a, b := s.Vertexuse(vu1), s.Vertexuse(vu2)
	if a == nil {
		return 0, notFound(KindVertexuse, int32(vu1))
	}
	if b == nil {
		return 0, notFound(KindVertexuse, int32(vu2))
	}
	eu1, eu2 := a.Parent.Edgeuse(), b.Parent.Edgeuse()
	if eu1 == 0 || eu2 == 0 {
		return 0, invariantf("cut loop: vertexuses %d and %d must both belong to edgeuses", vu1, vu2)
	}
	e1, e2 := s.edgeuses.recs[eu1], s.edgeuses.recs[eu2]
	oldlu := e1.Parent.Loopuse()
	if oldlu == 0 || e2.Parent.Loopuse() == 0 {
		return 0, invariantf("cut loop: edgeuses %d and %d are not in loops", eu1, eu2)
	}
	if e2.Parent.Loopuse() != oldlu {
		return 0, errors.Wrapf(ErrUnsupported, "cut loop: vertexuses %d and %d lie in different loops", vu1, vu2)
	}
	v1, v2 := a.Vertex, b.Vertex
	if v1 == v2 {
		return 0, errors.Wrapf(ErrUnsupported, "cut loop: both vertexuses use vertex %d", v1)
	}

	old := s.loopuses.recs[oldlu]
	oldmate := old.Mate
	lu, lumate := s.newLoopusePair(old.Parent, s.loopuses.recs[oldmate].Parent, old.Orient)
	lr := s.luRing()
	if head := s.luListHead(old.Parent); head != nil {
		lr.insertTail(head, lu)
	}
	if head := s.luListHead(s.loopuses.recs[oldmate].Parent); head != nil {
		lr.insertTail(head, lumate)
	}
	nl, nm := s.loopuses.recs[lu], s.loopuses.recs[lumate]
	om := s.loopuses.recs[oldmate]

	er := s.euRing()
	moved := 0
	for eu := eu2; eu != eu1; {
		next := er.next(eu)
		m := s.edgeuses.recs[eu].Mate
		er.remove(&old.edgeuses, eu)
		er.remove(&om.edgeuses, m)
		er.insertTail(&nl.edgeuses, eu)
		er.insertHead(&nm.edgeuses, m)
		s.edgeuses.recs[eu].Parent = LoopuseParent(lu)
		s.edgeuses.recs[m].Parent = LoopuseParent(lumate)
		eu = next
		moved++
	}

	neweu, newmate := s.newEdgeusePair(LoopuseParent(lu), LoopuseParent(lumate))
	s.edgeuses.recs[neweu].Vertexuse = s.newVertexuse(v1, EdgeuseParent(neweu))
	s.edgeuses.recs[newmate].Vertexuse = s.newVertexuse(v2, EdgeuseParent(newmate))
	s.edgeuses.recs[neweu].Orient = e1.Orient
	s.edgeuses.recs[newmate].Orient = s.edgeuses.recs[e1.Mate].Orient
	er.insertTail(&nl.edgeuses, neweu)
	er.insertHead(&nm.edgeuses, newmate)

	closer, closemate := s.newEdgeusePair(LoopuseParent(oldlu), LoopuseParent(oldmate))
	s.edgeuses.recs[closer].Vertexuse = s.newVertexuse(v2, EdgeuseParent(closer))
	s.edgeuses.recs[closemate].Vertexuse = s.newVertexuse(v1, EdgeuseParent(closemate))
	s.edgeuses.recs[closer].Orient = e1.Orient
	s.edgeuses.recs[closemate].Orient = s.edgeuses.recs[e1.Mate].Orient
	er.insertBefore(eu1, closer)
	er.insertAfter(e1.Mate, closemate)

	if err := s.MoveEdgeuseToEdge(neweu, closer); err != nil {
		return 0, err
	}
	s.invalidateLoopBBox(oldlu)
	s.invalidateLoopBBox(lu)
	s.tracef("CutLoop(vu1=%d, vu2=%d) lu=%d moved %d edges", vu1, vu2, lu, moved)
	return lu, nil
}

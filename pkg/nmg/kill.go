package nmg

// The Kill operations free a record and everything beneath it. Each one
// reports whether the parent it was removed from has become empty, which
// for a shell means the shell is now illegal and should be killed too.

// euVertex returns the vertex the edgeuse starts at.
func (s *Store) euVertex(eu EdgeuseID) VertexID {
	return s.vertexuses.recs[s.edgeuses.recs[eu].Vertexuse].Vertex
}

// killVertexuse unlinks vu from its vertex, frees the vertex when vu was
// its last use and clears the parent's slot if it points at vu.
func (s *Store) killVertexuse(vu VertexuseID) {
	rec := s.vertexuses.recs[vu]
	v := rec.Vertex
	vr := s.vertices.recs[v]
	s.vuRing().remove(&vr.uses, vu)
	if vr.uses == 0 {
		s.vertices.release(int32(v))
	}
	switch rec.Parent.kind {
	case KindShell:
		if sh := s.Shell(rec.Parent.Shell()); sh != nil && sh.Vertexuse == vu {
			sh.Vertexuse = 0
		}
	case KindLoopuse:
		if lu := s.Loopuse(rec.Parent.Loopuse()); lu != nil && lu.Vertexuse == vu {
			lu.Vertexuse = 0
		}
	case KindEdgeuse:
		if eu := s.Edgeuse(rec.Parent.Edgeuse()); eu != nil && eu.Vertexuse == vu {
			eu.Vertexuse = 0
		}
	}
	s.vertexuses.release(int32(vu))
}

// KillVertexuse frees vu. parentEmpty is true when the owning shell,
// loopuse or edgeuse is left with no vertexuse. An edgeuse stripped this
// way is illegal until it gets a new one or is killed.
func (s *Store) KillVertexuse(vu VertexuseID) (parentEmpty bool, err error) {
	rec := s.Vertexuse(vu)
	if rec == nil {
		return false, notFound(KindVertexuse, int32(vu))
	}
	p := rec.Parent
	switch p.kind {
	case KindShell:
		s.killVertexuse(vu)
		s.tracef("KillVertexuse(vu=%d) from %s", vu, p)
		return s.shellIsEmpty(p.Shell()), nil
	case KindLoopuse, KindEdgeuse:
		s.killVertexuse(vu)
		s.tracef("KillVertexuse(vu=%d) from %s", vu, p)
		return true, nil
	}
	return false, invariantf("kill vertexuse: vertexuse %d has unrecognised parent %s", vu, p)
}

// KillEdge frees eu and its mate. They are removed from the radial ring of
// their edge; the edge itself is freed when no other uses remain.
func (s *Store) KillEdge(eu EdgeuseID) (parentEmpty bool, err error) {
	e1 := s.Edgeuse(eu)
	if e1 == nil {
		return false, notFound(KindEdgeuse, int32(eu))
	}
	eu2 := e1.Mate
	e2 := s.Edgeuse(eu2)
	if e2 == nil || e2.Mate != eu {
		return false, invariantf("kill edge: edgeuse %d has a broken mate", eu)
	}
	p := e1.Parent
	if p.kind == KindLoopuse && e2.Parent.kind != KindLoopuse {
		return false, invariantf("kill edge: edgeuse %d and its mate have different parent kinds", eu)
	}

	// Unlink the pair from the radial ring. eu2 is always reached from
	// eu1 by Radial then Mate steps, so splicing the outer neighbours
	// together closes the ring.
	edge := s.edges.recs[e1.Edge]
	if e1.Radial == eu2 {
		s.edges.release(int32(e1.Edge))
	} else {
		r1, r2 := e1.Radial, e2.Radial
		s.edgeuses.recs[r1].Radial = r2
		s.edgeuses.recs[r2].Radial = r1
		if edge.Edgeuse == eu || edge.Edgeuse == eu2 {
			edge.Edgeuse = r1
		}
	}

	er := s.euRing()
	var empty bool
	for _, x := range []EdgeuseID{eu, eu2} {
		xp := s.edgeuses.recs[x].Parent
		if head := s.euListHead(xp); head != nil {
			er.remove(head, x)
			if xp == p {
				empty = *head == 0
			}
		}
		if vu := s.edgeuses.recs[x].Vertexuse; vu != 0 {
			s.killVertexuse(vu)
		}
		s.edgeuses.release(int32(x))
	}
	if p.kind == KindShell {
		empty = s.shellIsEmpty(p.Shell())
	}
	s.tracef("KillEdge(eu=%d) from %s", eu, p)
	return empty, nil
}

// KillLoop frees lu and its mate. The loop's edges are killed when the
// loop lies in a face; in a shell they are demoted to wire edges. A point
// loop takes its vertexuses with it.
func (s *Store) KillLoop(lu LoopuseID) (parentEmpty bool, err error) {
	l1 := s.Loopuse(lu)
	if l1 == nil {
		return false, notFound(KindLoopuse, int32(lu))
	}
	mate := l1.Mate
	l2 := s.Loopuse(mate)
	if l2 == nil || l2.Loop != l1.Loop || mate == lu {
		return false, invariantf("kill loop: loopuse %d and mate %d do not share a loop", lu, mate)
	}
	if l1.Parent.kind != l2.Parent.kind {
		return false, invariantf("kill loop: loopuse %d and mate have different parent kinds", lu)
	}
	if (l1.Vertexuse != 0) != (l2.Vertexuse != 0) {
		return false, invariantf("kill loop: loopuse %d and mate have different child kinds", lu)
	}
	if l1.Vertexuse == 0 && s.EdgeCount(lu) != s.EdgeCount(mate) {
		return false, invariantf("kill loop: loopuse %d has %d edges, mate %d has %d",
			lu, s.EdgeCount(lu), mate, s.EdgeCount(mate))
	}
	p := l1.Parent

	switch {
	case l1.Vertexuse != 0:
		s.killVertexuse(l1.Vertexuse)
		s.killVertexuse(l2.Vertexuse)
	case p.kind == KindShell:
		sh := s.shells.recs[p.Shell()]
		er := s.euRing()
		for _, x := range er.collect(l1.edgeuses) {
			m := s.edgeuses.recs[x].Mate
			er.remove(&l1.edgeuses, x)
			er.remove(&l2.edgeuses, m)
			er.insertTail(&sh.edgeuses, x)
			er.insertTail(&sh.edgeuses, m)
			s.edgeuses.recs[x].Parent = p
			s.edgeuses.recs[m].Parent = p
		}
	default:
		for l1.edgeuses != 0 {
			if _, err := s.KillEdge(l1.edgeuses); err != nil {
				return false, err
			}
		}
	}

	lr := s.luRing()
	var empty bool
	for _, x := range []LoopuseID{lu, mate} {
		xp := s.loopuses.recs[x].Parent
		if head := s.luListHead(xp); head != nil {
			lr.remove(head, x)
			if xp == p {
				empty = *head == 0
			}
		}
	}
	s.loops.release(int32(l1.Loop))
	s.loopuses.release(int32(lu))
	s.loopuses.release(int32(mate))
	if p.kind == KindShell {
		empty = s.shellIsEmpty(p.Shell())
	}
	s.tracef("KillLoop(lu=%d) from %s", lu, p)
	return empty, nil
}

// KillFace frees fu, its mate, their loops and the face.
func (s *Store) KillFace(fu FaceuseID) (parentEmpty bool, err error) {
	f1 := s.Faceuse(fu)
	if f1 == nil {
		return false, notFound(KindFaceuse, int32(fu))
	}
	mate := f1.Mate
	f2 := s.Faceuse(mate)
	if f2 == nil || f2.Face != f1.Face || mate == fu {
		return false, invariantf("kill face: faceuse %d and mate %d do not share a face", fu, mate)
	}
	for f1.loopuses != 0 {
		if _, err := s.KillLoop(f1.loopuses); err != nil {
			return false, err
		}
	}
	if f2.loopuses != 0 {
		return false, invariantf("kill face: faceuse %d still holds loops its mate lacks", mate)
	}
	sh := f1.Shell
	shell := s.shells.recs[sh]
	fr := s.fuRing()
	fr.remove(&shell.faceuses, fu)
	fr.remove(&shell.faceuses, mate)
	s.faces.release(int32(f1.Face))
	s.faceuses.release(int32(fu))
	s.faceuses.release(int32(mate))
	s.tracef("KillFace(fu=%d) from shell %d", fu, sh)
	return s.shellIsEmpty(sh), nil
}

// KillShell frees sh and all of its contents.
func (s *Store) KillShell(sh ShellID) (parentEmpty bool, err error) {
	shell := s.Shell(sh)
	if shell == nil {
		return false, notFound(KindShell, int32(sh))
	}
	for shell.faceuses != 0 {
		if _, err := s.KillFace(shell.faceuses); err != nil {
			return false, err
		}
	}
	for shell.loopuses != 0 {
		if _, err := s.KillLoop(shell.loopuses); err != nil {
			return false, err
		}
	}
	for shell.edgeuses != 0 {
		if _, err := s.KillEdge(shell.edgeuses); err != nil {
			return false, err
		}
	}
	if shell.Vertexuse != 0 {
		s.killVertexuse(shell.Vertexuse)
	}
	r := s.regions.recs[shell.Region]
	s.shellRing().remove(&r.shells, sh)
	s.shells.release(int32(sh))
	s.tracef("KillShell(s=%d)", sh)
	return r.shells == 0, nil
}

// KillRegion frees r and all of its shells.
func (s *Store) KillRegion(r RegionID) (parentEmpty bool, err error) {
	reg := s.Region(r)
	if reg == nil {
		return false, notFound(KindRegion, int32(r))
	}
	for reg.shells != 0 {
		if _, err := s.KillShell(reg.shells); err != nil {
			return false, err
		}
	}
	m := s.models.recs[reg.Model]
	s.regionRing().remove(&m.regions, r)
	s.regions.release(int32(r))
	s.tracef("KillRegion(r=%d)", r)
	return m.regions == 0, nil
}

// KillModel frees m and everything in it.
func (s *Store) KillModel(m ModelID) error {
	mod := s.Model(m)
	if mod == nil {
		return notFound(KindModel, int32(m))
	}
	for mod.regions != 0 {
		if _, err := s.KillRegion(mod.regions); err != nil {
			return err
		}
	}
	s.models.release(int32(m))
	s.tracef("KillModel(m=%d)", m)
	return nil
}

func (s *Store) shellIsEmpty(sh ShellID) bool {
	shell := s.Shell(sh)
	return shell == nil ||
		shell.faceuses == 0 && shell.loopuses == 0 && shell.edgeuses == 0 && shell.Vertexuse == 0
}

package nmg

import "fmt"

// Severity indicates whether a finding means the topology is broken or is
// merely unusual.
type Severity int

const (
	SeverityError   Severity = iota // invariant violated
	SeverityWarning                 // legal but suspicious
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single consistency finding.
type ValidationError struct {
	Kind     Kind     // kind of the offending record
	ID       int32    // its ID
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s %d: %s", e.Severity, e.Kind, e.ID, e.Message)
}

// Errors filters out warnings.
func Errors(findings []ValidationError) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

type checker struct {
	s    *Store
	errs []ValidationError
}

func (c *checker) fail(k Kind, id int32, format string, args ...interface{}) {
	c.errs = append(c.errs, ValidationError{Kind: k, ID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (c *checker) warn(k Kind, id int32, format string, args ...interface{}) {
	c.errs = append(c.errs, ValidationError{Kind: k, ID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// Validate walks every record reachable from m and checks the structural
// invariants of the representation. It never modifies the store. An empty
// result means the model is consistent.
func Validate(s *Store, m ModelID) []ValidationError {
	c := &checker{s: s}
	if s.Model(m) == nil {
		c.fail(KindModel, int32(m), "no such model")
		return c.errs
	}
	for _, r := range s.Regions(m) {
		if s.regions.recs[r].Model != m {
			c.fail(KindRegion, int32(r), "model back-pointer is %d, want %d", s.regions.recs[r].Model, m)
		}
		for _, sh := range s.Shells(r) {
			if s.shells.recs[sh].Region != r {
				c.fail(KindShell, int32(sh), "region back-pointer is %d, want %d", s.shells.recs[sh].Region, r)
			}
			c.checkShell(sh)
		}
	}
	for i, live := range s.vertices.live {
		if live && s.vertices.recs[i].uses == 0 {
			c.fail(KindVertex, int32(i), "vertex has no uses")
		}
	}
	return c.errs
}

// ValidateShell checks one shell and everything below it.
func ValidateShell(s *Store, sh ShellID) []ValidationError {
	c := &checker{s: s}
	if s.Shell(sh) == nil {
		c.fail(KindShell, int32(sh), "no such shell")
		return c.errs
	}
	c.checkShell(sh)
	return c.errs
}

func (c *checker) checkShell(sh ShellID) {
	s := c.s
	shell := s.shells.recs[sh]
	if s.shellIsEmpty(sh) {
		c.fail(KindShell, int32(sh), "shell is empty")
		return
	}
	if shell.Vertexuse != 0 {
		if shell.faceuses != 0 || shell.loopuses != 0 || shell.edgeuses != 0 {
			c.fail(KindShell, int32(sh), "lone vertexuse %d coexists with other children", shell.Vertexuse)
		} else {
			c.warn(KindShell, int32(sh), "shell holds only a lone vertex")
		}
		c.checkVertexuse(shell.Vertexuse, ShellParent(sh))
	}
	for _, fu := range s.ShellFaceuses(sh) {
		c.checkFaceuse(fu, sh)
	}
	for _, lu := range s.ShellLoopuses(sh) {
		c.checkLoopuse(lu, ShellParent(sh))
	}
	for _, eu := range s.ShellEdgeuses(sh) {
		c.checkEdgeuse(eu, ShellParent(sh))
	}
}

func (c *checker) checkFaceuse(fu FaceuseID, sh ShellID) {
	s := c.s
	rec := s.faceuses.recs[fu]
	if rec.Shell != sh {
		c.fail(KindFaceuse, int32(fu), "shell back-pointer is %d, want %d", rec.Shell, sh)
	}
	mate := s.Faceuse(rec.Mate)
	switch {
	case mate == nil || rec.Mate == fu:
		c.fail(KindFaceuse, int32(fu), "mate %d missing", rec.Mate)
		return
	case mate.Mate != fu:
		c.fail(KindFaceuse, int32(fu), "mate %d does not point back", rec.Mate)
	case mate.Face != rec.Face:
		c.fail(KindFaceuse, int32(fu), "mate %d uses face %d, not %d", rec.Mate, mate.Face, rec.Face)
	case mate.Orient != rec.Orient.Flip():
		c.fail(KindFaceuse, int32(fu), "orientation %s does not oppose mate's %s", rec.Orient, mate.Orient)
	}
	face := s.Face(rec.Face)
	if face == nil {
		c.fail(KindFaceuse, int32(fu), "face %d missing", rec.Face)
		return
	}
	if face.Faceuse != fu && face.Faceuse != rec.Mate {
		c.fail(KindFace, int32(rec.Face), "representative %d is not a use of the face", face.Faceuse)
	}
	if face.Plane == nil && face.Faceuse == fu {
		c.warn(KindFace, int32(rec.Face), "face has no plane")
	}
	if rec.loopuses == 0 {
		c.fail(KindFaceuse, int32(fu), "faceuse has no loops")
	}
	for _, lu := range s.Loopuses(fu) {
		c.checkLoopuse(lu, FaceuseParent(fu))
		if ml := s.Loopuse(s.loopuses.recs[lu].Mate); ml != nil && ml.Parent != FaceuseParent(rec.Mate) {
			c.fail(KindLoopuse, int32(lu), "mate lives in %s, want faceuse %d", ml.Parent, rec.Mate)
		}
	}
}

func (c *checker) checkLoopuse(lu LoopuseID, p Parent) {
	s := c.s
	rec := s.loopuses.recs[lu]
	if rec.Parent != p {
		c.fail(KindLoopuse, int32(lu), "parent is %s, want %s", rec.Parent, p)
	}
	mate := s.Loopuse(rec.Mate)
	if mate == nil || rec.Mate == lu {
		c.fail(KindLoopuse, int32(lu), "mate %d missing", rec.Mate)
		return
	}
	if mate.Mate != lu {
		c.fail(KindLoopuse, int32(lu), "mate %d does not point back", rec.Mate)
	}
	if mate.Loop != rec.Loop {
		c.fail(KindLoopuse, int32(lu), "mate uses loop %d, not %d", mate.Loop, rec.Loop)
	}
	if l := s.Loop(rec.Loop); l == nil {
		c.fail(KindLoopuse, int32(lu), "loop %d missing", rec.Loop)
	} else if l.Loopuse != lu && l.Loopuse != rec.Mate {
		c.fail(KindLoop, int32(rec.Loop), "representative %d is not a use of the loop", l.Loopuse)
	}

	switch {
	case rec.Vertexuse != 0 && rec.edgeuses != 0:
		c.fail(KindLoopuse, int32(lu), "holds both a vertexuse and edges")
	case rec.Vertexuse == 0 && rec.edgeuses == 0:
		c.fail(KindLoopuse, int32(lu), "loopuse is empty")
	case rec.Vertexuse != 0:
		if mate.Vertexuse == 0 {
			c.fail(KindLoopuse, int32(lu), "point loop mate is not a point loop")
		}
		c.checkVertexuse(rec.Vertexuse, LoopuseParent(lu))
	default:
		eus := s.LoopEdgeuses(lu)
		if n := s.EdgeCount(rec.Mate); n != len(eus) {
			c.fail(KindLoopuse, int32(lu), "has %d edges, mate has %d", len(eus), n)
		}
		for i, eu := range eus {
			c.checkEdgeuse(eu, LoopuseParent(lu))
			next := eus[(i+1)%len(eus)]
			if s.EdgeuseEndVertex(eu) != s.euVertex(next) {
				c.fail(KindLoopuse, int32(lu), "edgeuse %d ends at vertex %d but %d starts at %d",
					eu, s.EdgeuseEndVertex(eu), next, s.euVertex(next))
			}
		}
	}
}

func (c *checker) checkEdgeuse(eu EdgeuseID, p Parent) {
	s := c.s
	rec := s.edgeuses.recs[eu]
	if rec.Parent != p {
		c.fail(KindEdgeuse, int32(eu), "parent is %s, want %s", rec.Parent, p)
	}
	mate := s.Edgeuse(rec.Mate)
	if mate == nil || rec.Mate == eu {
		c.fail(KindEdgeuse, int32(eu), "mate %d missing", rec.Mate)
		return
	}
	if mate.Mate != eu {
		c.fail(KindEdgeuse, int32(eu), "mate %d does not point back", rec.Mate)
	}
	if mate.Edge != rec.Edge {
		c.fail(KindEdgeuse, int32(eu), "mate uses edge %d, not %d", mate.Edge, rec.Edge)
	}
	if p.kind == KindShell && mate.Parent != p {
		c.fail(KindEdgeuse, int32(eu), "wire edge mate lives in %s", mate.Parent)
	}
	radial := s.Edgeuse(rec.Radial)
	if radial == nil {
		c.fail(KindEdgeuse, int32(eu), "radial %d missing", rec.Radial)
		return
	}
	if radial.Radial != eu {
		c.fail(KindEdgeuse, int32(eu), "radial %d does not point back", rec.Radial)
	}
	if radial.Edge != rec.Edge {
		c.fail(KindEdgeuse, int32(eu), "radial uses edge %d, not %d", radial.Edge, rec.Edge)
	}
	fan := s.RadialFan(eu)
	if len(fan) > s.edgeuses.n {
		c.fail(KindEdgeuse, int32(eu), "radial fan does not close")
	}
	edge := s.Edge(rec.Edge)
	if edge == nil {
		c.fail(KindEdgeuse, int32(eu), "edge %d missing", rec.Edge)
	} else if s.Edgeuse(edge.Edgeuse) == nil || s.edgeuses.recs[edge.Edgeuse].Edge != rec.Edge {
		c.fail(KindEdge, int32(rec.Edge), "representative %d is not a live use of the edge", edge.Edgeuse)
	}
	if rec.Vertexuse == 0 {
		c.fail(KindEdgeuse, int32(eu), "no vertexuse")
		return
	}
	c.checkVertexuse(rec.Vertexuse, EdgeuseParent(eu))
}

func (c *checker) checkVertexuse(vu VertexuseID, p Parent) {
	s := c.s
	rec := s.Vertexuse(vu)
	if rec == nil {
		c.fail(KindVertexuse, int32(vu), "vertexuse is not live")
		return
	}
	if rec.Parent != p {
		c.fail(KindVertexuse, int32(vu), "parent is %s, want %s", rec.Parent, p)
	}
	v := s.Vertex(rec.Vertex)
	if v == nil {
		c.fail(KindVertexuse, int32(vu), "vertex %d is not live", rec.Vertex)
		return
	}
	found := false
	for _, u := range s.vuRing().collect(v.uses) {
		if u == vu {
			found = true
			break
		}
	}
	if !found {
		c.fail(KindVertex, int32(rec.Vertex), "use list is missing vertexuse %d", vu)
	}
}

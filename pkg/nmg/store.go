package nmg

// pool is a free-listing arena of records of one kind. Records are held
// by pointer so that a *T stays valid while the pool grows. Index 0 is
// reserved.
type pool[T any] struct {
	recs []*T
	live []bool
	free []int32
	n    int
}

func (p *pool[T]) alloc() (int32, *T) {
	if k := len(p.free); k > 0 {
		i := p.free[k-1]
		p.free = p.free[:k-1]
		var zero T
		*p.recs[i] = zero
		p.live[i] = true
		p.n++
		return i, p.recs[i]
	}
	if len(p.recs) == 0 {
		p.recs = append(p.recs, nil)
		p.live = append(p.live, false)
	}
	r := new(T)
	p.recs = append(p.recs, r)
	p.live = append(p.live, true)
	p.n++
	return int32(len(p.recs) - 1), r
}

func (p *pool[T]) get(i int32) *T {
	if i <= 0 || int(i) >= len(p.recs) || !p.live[i] {
		return nil
	}
	return p.recs[i]
}

func (p *pool[T]) release(i int32) {
	if p.get(i) == nil {
		return
	}
	p.live[i] = false
	p.free = append(p.free, i)
	p.n--
}

// Store is the arena holding every record of every model built in it.
type Store struct {
	models     pool[Model]
	regions    pool[Region]
	shells     pool[Shell]
	faceuses   pool[Faceuse]
	faces      pool[Face]
	loopuses   pool[Loopuse]
	loops      pool[Loop]
	edgeuses   pool[Edgeuse]
	edges      pool[Edge]
	vertexuses pool[Vertexuse]
	vertices   pool[Vertex]

	seq    uint64
	tracer Tracer
}

// NewStore returns an empty store with tracing disabled.
func NewStore() *Store {
	return &Store{tracer: NopTracer{}}
}

// SetTracer installs t as the diagnostic sink. A nil t disables tracing.
func (s *Store) SetTracer(t Tracer) {
	if t == nil {
		t = NopTracer{}
	}
	s.tracer = t
}

func (s *Store) tracef(format string, args ...interface{}) {
	s.tracer.Tracef(format, args...)
}

// Record accessors return nil for IDs that do not name a live record.

func (s *Store) Model(id ModelID) *Model { return s.models.get(int32(id)) }
func (s *Store) Region(id RegionID) *Region { return s.regions.get(int32(id)) }
func (s *Store) Shell(id ShellID) *Shell { return s.shells.get(int32(id)) }
func (s *Store) Faceuse(id FaceuseID) *Faceuse { return s.faceuses.get(int32(id)) }
func (s *Store) Face(id FaceID) *Face { return s.faces.get(int32(id)) }
func (s *Store) Loopuse(id LoopuseID) *Loopuse { return s.loopuses.get(int32(id)) }
func (s *Store) Loop(id LoopID) *Loop { return s.loops.get(int32(id)) }
func (s *Store) Edgeuse(id EdgeuseID) *Edgeuse { return s.edgeuses.get(int32(id)) }
func (s *Store) Edge(id EdgeID) *Edge { return s.edges.get(int32(id)) }
func (s *Store) Vertexuse(id VertexuseID) *Vertexuse { return s.vertexuses.get(int32(id)) }
func (s *Store) Vertex(id VertexID) *Vertex { return s.vertices.get(int32(id)) }

// Counts is a census of live records.
type Counts struct {
	Models     int
	Regions    int
	Shells     int
	Faceuses   int
	Faces      int
	Loopuses   int
	Loops      int
	Edgeuses   int
	Edges      int
	Vertexuses int
	Vertices   int
}

// Total returns the number of live records of every kind.
func (c Counts) Total() int {
	return c.Models + c.Regions + c.Shells + c.Faceuses + c.Faces +
		c.Loopuses + c.Loops + c.Edgeuses + c.Edges + c.Vertexuses + c.Vertices
}

// Live reports how many records of each kind are currently allocated.
func (s *Store) Live() Counts {
	return Counts{
		Models:     s.models.n,
		Regions:    s.regions.n,
		Shells:     s.shells.n,
		Faceuses:   s.faceuses.n,
		Faces:      s.faces.n,
		Loopuses:   s.loopuses.n,
		Loops:      s.loops.n,
		Edgeuses:   s.edgeuses.n,
		Edges:      s.edges.n,
		Vertexuses: s.vertexuses.n,
		Vertices:   s.vertices.n,
	}
}

// ---------------------------------------------------------------------------
// Circular lists
// ---------------------------------------------------------------------------

// ring resolves the list link embedded in the record named by an ID.
type ring[ID ~int32] func(ID) *link[ID]

// insertHead links n in front of *head and makes it the new head.
func (r ring[ID]) insertHead(head *ID, n ID) {
	r.insertTail(head, n)
	*head = n
}

// insertTail links n in front of *head without moving the head, which
// places it last in iteration order.
func (r ring[ID]) insertTail(head *ID, n ID) {
	ln := r(n)
	if *head == 0 {
		ln.next, ln.prev = n, n
		*head = n
		return
	}
	h := r(*head)
	ln.next = *head
	ln.prev = h.prev
	r(h.prev).next = n
	h.prev = n
}

// insertAfter links n immediately after at.
func (r ring[ID]) insertAfter(at, n ID) {
	la, ln := r(at), r(n)
	ln.prev = at
	ln.next = la.next
	r(la.next).prev = n
	la.next = n
}

// insertBefore links n immediately before at.
func (r ring[ID]) insertBefore(at, n ID) {
	r.insertAfter(r(at).prev, n)
}

// remove unlinks n. It returns the successor of n, or n itself when the
// list became empty, in which case *head is cleared.
func (r ring[ID]) remove(head *ID, n ID) ID {
	ln := r(n)
	next := ln.next
	if next == n {
		*head = 0
		ln.next, ln.prev = 0, 0
		return n
	}
	r(ln.prev).next = next
	r(next).prev = ln.prev
	if *head == n {
		*head = next
	}
	ln.next, ln.prev = 0, 0
	return next
}

// collect returns the members of the list starting at head, in order.
func (r ring[ID]) collect(head ID) []ID {
	if head == 0 {
		return nil
	}
	var out []ID
	for n := head; ; {
		out = append(out, n)
		n = r(n).next
		if n == head {
			return out
		}
	}
}

func (r ring[ID]) next(n ID) ID { return r(n).next }
func (r ring[ID]) prev(n ID) ID { return r(n).prev }

func (s *Store) regionRing() ring[RegionID] {
	return func(id RegionID) *link[RegionID] { return &s.regions.recs[id].l }
}

func (s *Store) shellRing() ring[ShellID] {
	return func(id ShellID) *link[ShellID] { return &s.shells.recs[id].l }
}

func (s *Store) fuRing() ring[FaceuseID] {
	return func(id FaceuseID) *link[FaceuseID] { return &s.faceuses.recs[id].l }
}

func (s *Store) luRing() ring[LoopuseID] {
	return func(id LoopuseID) *link[LoopuseID] { return &s.loopuses.recs[id].l }
}

func (s *Store) euRing() ring[EdgeuseID] {
	return func(id EdgeuseID) *link[EdgeuseID] { return &s.edgeuses.recs[id].l }
}

func (s *Store) vuRing() ring[VertexuseID] {
	return func(id VertexuseID) *link[VertexuseID] { return &s.vertexuses.recs[id].l }
}

// euListHead returns the head slot of the edgeuse list owned by p.
func (s *Store) euListHead(p Parent) *EdgeuseID {
	switch p.kind {
	case KindShell:
		if sh := s.Shell(p.Shell()); sh != nil {
			return &sh.edgeuses
		}
	case KindLoopuse:
		if lu := s.Loopuse(p.Loopuse()); lu != nil {
			return &lu.edgeuses
		}
	}
	return nil
}

// luListHead returns the head slot of the loopuse list owned by p.
func (s *Store) luListHead(p Parent) *LoopuseID {
	switch p.kind {
	case KindShell:
		if sh := s.Shell(p.Shell()); sh != nil {
			return &sh.loopuses
		}
	case KindFaceuse:
		if fu := s.Faceuse(p.Faceuse()); fu != nil {
			return &fu.loopuses
		}
	}
	return nil
}

package boolean

import (
	"github.com/chazu/nmgkernel/pkg/nmg"
)

// VertexTable is the ordered set of vertexuses one face contributes to the
// line where it meets another face. Insertion order is kept and a
// vertexuse is recorded at most once.
type VertexTable struct {
	vus  []nmg.VertexuseID
	seen map[nmg.VertexuseID]bool
}

// NewVertexTable returns an empty table.
func NewVertexTable() *VertexTable {
	return &VertexTable{seen: make(map[nmg.VertexuseID]bool)}
}

// Add records vu unless it is already present and reports whether it was
// added.
func (t *VertexTable) Add(vu nmg.VertexuseID) bool {
	if vu == 0 || t.seen[vu] {
		return false
	}
	t.seen[vu] = true
	t.vus = append(t.vus, vu)
	return true
}

// Len returns the number of recorded vertexuses.
func (t *VertexTable) Len() int { return len(t.vus) }

// Vertexuses returns the recorded vertexuses in insertion order.
func (t *VertexTable) Vertexuses() []nmg.VertexuseID {
	return append([]nmg.VertexuseID(nil), t.vus...)
}

// Vertices returns the distinct live vertices behind the recorded
// vertexuses, in insertion order. Uses freed since they were recorded are
// ignored.
func (t *VertexTable) Vertices(s *nmg.Store) []nmg.VertexID {
	seen := make(map[nmg.VertexID]bool)
	var out []nmg.VertexID
	for _, vu := range t.vus {
		rec := s.Vertexuse(vu)
		if rec == nil || seen[rec.Vertex] {
			continue
		}
		seen[rec.Vertex] = true
		out = append(out, rec.Vertex)
	}
	return out
}

package nmg

import (
	"errors"
	"testing"
)

func TestSplitWireEdge(t *testing.T) {
	s := NewStore()
	m, _, sh := s.MakeModel()
	eu, err := s.MakeEdge(0, 0, sh)
	if err != nil {
		t.Fatalf("MakeEdge: %v", err)
	}
	a, b := s.EdgeuseVertex(eu), s.EdgeuseEndVertex(eu)

	neu, err := s.SplitEdge(0, eu)
	if err != nil {
		t.Fatalf("SplitEdge: %v", err)
	}
	mid := s.EdgeuseVertex(neu)
	if mid == a || mid == b {
		t.Fatal("SplitEdge(0, eu) should create a new vertex")
	}
	if got := s.EdgeuseEndVertex(eu); got != mid {
		t.Errorf("eu now ends at %d, want %d", got, mid)
	}
	if got := s.EdgeuseEndVertex(neu); got != b {
		t.Errorf("new edgeuse ends at %d, want %d", got, b)
	}
	want := []EdgeuseID{eu, s.Edgeuse(eu).Mate, neu, s.Edgeuse(neu).Mate}
	got := s.ShellEdgeuses(sh)
	if len(got) != 4 {
		t.Fatalf("ShellEdgeuses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ShellEdgeuses() = %v, want %v", got, want)
		}
	}
	mustValid(t, s, m)
}

func TestSplitLoopEdgeKeepsLoopsClosed(t *testing.T) {
	s := NewStore()
	m, _, fu := squareFace(t, s)
	lu := s.Loopuses(fu)[0]
	eu := s.LoopEdgeuses(lu)[0]
	a, b := s.EdgeuseVertex(eu), s.EdgeuseEndVertex(eu)

	neu, err := s.SplitEdge(0, eu)
	if err != nil {
		t.Fatalf("SplitEdge: %v", err)
	}
	mid := s.EdgeuseVertex(neu)
	if s.EdgeuseNext(eu) != neu {
		t.Error("new edgeuse should follow the split one")
	}
	if s.EdgeuseEndVertex(eu) != mid || s.EdgeuseEndVertex(neu) != b || s.EdgeuseVertex(eu) != a {
		t.Error("split should turn A→B into A→V, V→B")
	}
	if n := s.EdgeCount(lu); n != 5 {
		t.Errorf("EdgeCount(lu) = %d, want 5", n)
	}
	if n := s.EdgeCount(s.Loopuse(lu).Mate); n != 5 {
		t.Errorf("EdgeCount(mate) = %d, want 5", n)
	}
	if s.Edgeuse(eu).Edge == s.Edgeuse(neu).Edge {
		t.Error("the two halves should be different edges")
	}
	if got := len(s.VertexUses(mid)); got != 2 {
		t.Errorf("uses of the split vertex = %d, want 2", got)
	}
	mustValid(t, s, m)
}

func TestSplitGluedEdgeUnglues(t *testing.T) {
	s := NewStore()
	m, _, sh := s.MakeModel()
	if _, err := MakeBox(NewBuilder(s, sh, DefaultTol()), vec(0, 0, 0), vec(1, 1, 1)); err != nil {
		t.Fatalf("MakeBox: %v", err)
	}
	fu := s.OrientedFaceuses(sh)[0]
	eu := s.LoopEdgeuses(s.Loopuses(fu)[0])[0]
	if n := len(s.RadialFan(eu)); n != 2 {
		t.Fatalf("RadialFan() = %d uses, want 2", n)
	}
	if _, err := s.SplitEdge(0, eu); err != nil {
		t.Fatalf("SplitEdge: %v", err)
	}
	if n := len(s.RadialFan(eu)); n != 1 {
		t.Errorf("RadialFan() after split = %d uses, want 1", n)
	}
	mustValid(t, s, m)
}

func TestUnglueAndRejoinEdge(t *testing.T) {
	s := NewStore()
	m, _, sh := s.MakeModel()
	if _, err := MakeBox(NewBuilder(s, sh, DefaultTol()), vec(0, 0, 0), vec(1, 1, 1)); err != nil {
		t.Fatalf("MakeBox: %v", err)
	}
	fu := s.OrientedFaceuses(sh)[0]
	eu := s.LoopEdgeuses(s.Loopuses(fu)[0])[0]
	other := s.Edgeuse(s.Edgeuse(eu).Radial).Mate
	edges := s.Live().Edges

	if err := s.UnglueEdge(eu); err != nil {
		t.Fatalf("UnglueEdge: %v", err)
	}
	if got := s.Live().Edges; got != edges+1 {
		t.Errorf("edges after unglue = %d, want %d", got, edges+1)
	}
	if s.Edgeuse(eu).Edge == s.Edgeuse(other).Edge {
		t.Error("unglued edgeuse still shares its edge")
	}
	mustValid(t, s, m)

	if err := s.MoveEdgeuseToEdge(other, eu); err != nil {
		t.Fatalf("MoveEdgeuseToEdge: %v", err)
	}
	if got := s.Live().Edges; got != edges {
		t.Errorf("edges after rejoin = %d, want %d", got, edges)
	}
	if n := len(s.RadialFan(eu)); n != 2 {
		t.Errorf("RadialFan() after rejoin = %d uses, want 2", n)
	}
	mustValid(t, s, m)
}

func TestMoveEdgeuseToEdgeMovesVertices(t *testing.T) {
	s := NewStore()
	m, _, sh := s.MakeModel()
	dst, err := s.MakeEdge(0, 0, sh)
	if err != nil {
		t.Fatalf("MakeEdge: %v", err)
	}
	src, err := s.MakeEdge(0, 0, sh)
	if err != nil {
		t.Fatalf("MakeEdge: %v", err)
	}
	if err := s.MoveEdgeuseToEdge(dst, src); err != nil {
		t.Fatalf("MoveEdgeuseToEdge: %v", err)
	}
	if s.EdgeuseVertex(src) != s.EdgeuseEndVertex(dst) || s.EdgeuseEndVertex(src) != s.EdgeuseVertex(dst) {
		t.Error("src should run antiparallel to dst on dst's vertices")
	}
	want := Counts{Models: 1, Regions: 1, Shells: 1, Edgeuses: 4, Edges: 1, Vertexuses: 4, Vertices: 2}
	if got := s.Live(); got != want {
		t.Errorf("Live() = %+v, want %+v", got, want)
	}
	mustValid(t, s, m)
}

func TestJoinVertices(t *testing.T) {
	s := NewStore()
	m, _, sh := s.MakeModel()
	e1, _ := s.MakeEdge(0, 0, sh)
	e2, _ := s.MakeEdge(0, 0, sh)
	v1, v2 := s.EdgeuseEndVertex(e1), s.EdgeuseVertex(e2)
	if err := s.SetVertexGeometry(v2, vec(3, 4, 5)); err != nil {
		t.Fatalf("SetVertexGeometry: %v", err)
	}
	if err := s.JoinVertices(v1, v2); err != nil {
		t.Fatalf("JoinVertices: %v", err)
	}
	if s.Vertex(v2) != nil {
		t.Error("v2 should be freed")
	}
	if s.EdgeuseVertex(e2) != v1 {
		t.Error("uses of v2 should move to v1")
	}
	if got, ok := s.Coord(v1); !ok || got != vec(3, 4, 5) {
		t.Errorf("Coord(v1) = %v, %v; want adopted (3,4,5)", got, ok)
	}
	if got := len(s.VertexUses(v1)); got != 2 {
		t.Errorf("uses of v1 = %d, want 2", got)
	}
	mustValid(t, s, m)
}

func TestMoveVertexuseFreesOldVertex(t *testing.T) {
	s := NewStore()
	m, _, sh := s.MakeModel()
	eu, _ := s.MakeEdge(0, 0, sh)
	mate := s.Edgeuse(eu).Mate
	old := s.EdgeuseVertex(mate)
	if err := s.MoveVertexuse(s.Edgeuse(mate).Vertexuse, s.EdgeuseVertex(eu)); err != nil {
		t.Fatalf("MoveVertexuse: %v", err)
	}
	if s.Vertex(old) != nil {
		t.Error("vertex without uses should be freed")
	}
	mustValid(t, s, m)
}

func TestInsertNullEdge(t *testing.T) {
	s := NewStore()
	m, _, fu := squareFace(t, s)
	lu := s.Loopuses(fu)[0]
	eu := s.LoopEdgeuses(lu)[1]

	null, err := s.InsertNullEdge(eu)
	if err != nil {
		t.Fatalf("InsertNullEdge: %v", err)
	}
	if s.EdgeusePrev(eu) != null {
		t.Error("null edge should precede eu")
	}
	if s.EdgeuseVertex(null) != s.EdgeuseVertex(eu) || s.EdgeuseEndVertex(null) != s.EdgeuseVertex(eu) {
		t.Error("null edge should start and end at eu's vertex")
	}
	if s.EdgeCount(lu) != 5 || s.EdgeCount(s.Loopuse(lu).Mate) != 5 {
		t.Error("both loopuses should gain one edgeuse")
	}
	mustValid(t, s, m)

	_, _, sh := s.MakeModel()
	wire, _ := s.MakeEdge(0, 0, sh)
	if _, err := s.InsertNullEdge(wire); !errors.Is(err, ErrInvalidParentKind) {
		t.Errorf("InsertNullEdge on a wire edge: err = %v, want ErrInvalidParentKind", err)
	}
}

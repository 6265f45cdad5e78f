package boolean

import (
	"math"
	"testing"

	"github.com/chazu/nmgkernel/pkg/nmg"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func mustValid(t *testing.T, s *nmg.Store, m nmg.ModelID) {
	t.Helper()
	for _, e := range nmg.Errors(nmg.Validate(s, m)) {
		t.Errorf("Validate: %v", e)
	}
}

// twoBoxes builds the unit cube and a second box in separate regions of
// one model.
func twoBoxes(t *testing.T, s *nmg.Store, min, max v3.Vec) (nmg.ModelID, nmg.ShellID, nmg.ShellID) {
	t.Helper()
	m, _, a := s.MakeModel()
	if _, err := nmg.MakeBox(nmg.NewBuilder(s, a, nmg.DefaultTol()), vec(0, 0, 0), vec(1, 1, 1)); err != nil {
		t.Fatalf("MakeBox: %v", err)
	}
	_, b, err := s.MakeRegion(m)
	if err != nil {
		t.Fatalf("MakeRegion: %v", err)
	}
	if _, err := nmg.MakeBox(nmg.NewBuilder(s, b, nmg.DefaultTol()), min, max); err != nil {
		t.Fatalf("MakeBox: %v", err)
	}
	return m, a, b
}

// crossedSquares builds the unit square in z=0 facing +z and, in a second
// region, a larger square standing in the plane y=0.5 that passes through
// it.
func crossedSquares(t *testing.T, s *nmg.Store) (nmg.ModelID, nmg.FaceuseID, nmg.FaceuseID) {
	t.Helper()
	m, _, sa := s.MakeModel()
	fa, err := nmg.NewBuilder(s, sa, nmg.DefaultTol()).Face(
		vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 1, 0))
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	_, sb, err := s.MakeRegion(m)
	if err != nil {
		t.Fatalf("MakeRegion: %v", err)
	}
	fb, err := nmg.NewBuilder(s, sb, nmg.DefaultTol()).Face(
		vec(-1, 0.5, -1), vec(-1, 0.5, 1), vec(2, 0.5, 1), vec(2, 0.5, -1))
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	return m, fa, fb
}

func edgeLoops(s *nmg.Store, fu nmg.FaceuseID) []nmg.LoopuseID {
	var out []nmg.LoopuseID
	for _, lu := range s.Loopuses(fu) {
		if s.Loopuse(lu).Vertexuse == 0 {
			out = append(out, lu)
		}
	}
	return out
}

func faceCoords(s *nmg.Store, fu nmg.FaceuseID) []v3.Vec {
	var out []v3.Vec
	for _, lu := range edgeLoops(s, fu) {
		pts, _ := s.LoopCoords(lu)
		out = append(out, pts...)
	}
	return out
}

func coordsOf(s *nmg.Store, vus []nmg.VertexuseID) []v3.Vec {
	out := make([]v3.Vec, 0, len(vus))
	for _, vu := range vus {
		p, _ := s.Coord(s.Vertexuse(vu).Vertex)
		out = append(out, p)
	}
	return out
}

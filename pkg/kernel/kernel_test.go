package kernel

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshAddTriangle(t *testing.T) {
	m := &Mesh{}
	m.AddTriangle(v3.Vec{}, v3.Vec{X: 2}, v3.Vec{Y: 2})
	m.AddTriangle(v3.Vec{}, v3.Vec{Y: 1}, v3.Vec{Z: 1})

	if m.VertexCount() != 6 || m.TriangleCount() != 2 {
		t.Fatalf("got %d vertices and %d triangles, want 6 and 2", m.VertexCount(), m.TriangleCount())
	}
	for i, want := range []uint32{0, 1, 2, 3, 4, 5} {
		if m.Indices[i] != want {
			t.Errorf("Indices[%d] = %d, want %d", i, m.Indices[i], want)
		}
	}
	// Counter-clockwise in the XY plane faces +Z; the second faces +X.
	if got := m.Normals[0:3]; got[0] != 0 || got[1] != 0 || got[2] != 1 {
		t.Errorf("first normal = %v, want [0 0 1]", got)
	}
	if got := m.Normals[9:12]; got[0] != 1 || got[1] != 0 || got[2] != 0 {
		t.Errorf("second normal = %v, want [1 0 0]", got)
	}
}

func TestMeshTrianglesRoundTrip(t *testing.T) {
	m := &Mesh{}
	m.AddTriangle(v3.Vec{X: 1}, v3.Vec{X: 2}, v3.Vec{X: 1, Y: 3})
	tris := m.Triangles()
	if len(tris) != 1 {
		t.Fatalf("got %d triangles, want 1", len(tris))
	}
	if tris[0][2] != (v3.Vec{X: 1, Y: 3}) {
		t.Errorf("third corner = %v, want (1, 3, 0)", tris[0][2])
	}
}

func TestMeshAppend(t *testing.T) {
	a, b := &Mesh{}, &Mesh{}
	a.AddTriangle(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1})
	b.AddTriangle(v3.Vec{Z: 1}, v3.Vec{X: 1, Z: 1}, v3.Vec{Y: 1, Z: 1})
	a.Append(b)
	if a.TriangleCount() != 2 {
		t.Fatalf("TriangleCount() = %d, want 2", a.TriangleCount())
	}
	if a.Indices[3] != 3 {
		t.Errorf("appended indices start at %d, want 3", a.Indices[3])
	}
	if got := a.Triangles()[1][0]; got != (v3.Vec{Z: 1}) {
		t.Errorf("appended triangle starts at %v", got)
	}
}

func TestEulerRotation(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		in      v3.Vec
		want    v3.Vec
	}{
		{"identity", 0, 0, 0, v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}},
		{"quarter turn about Z", 0, 0, 90, v3.Vec{X: 1}, v3.Vec{Y: 1}},
		{"quarter turn about X", 90, 0, 0, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		{"X then Z", 90, 0, 90, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		{"half turn about Y", 0, 180, 0, v3.Vec{X: 1}, v3.Vec{X: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EulerRotation(tt.x, tt.y, tt.z).MulPosition(tt.in)
			if d := got.Sub(tt.want).Length(); d > 1e-9 || math.IsNaN(d) {
				t.Errorf("rotate %v = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

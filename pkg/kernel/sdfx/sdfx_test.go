package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/nmgkernel/pkg/kernel"
	"github.com/chazu/nmgkernel/pkg/nmg"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// testCells keeps marching cubes cheap; these tests check shape, not
// resolution.
const testCells = 40

func mustMesh(t *testing.T, k *SdfxKernel, s kernel.Solid) *kernel.Mesh {
	t.Helper()
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	return mesh
}

func TestBox(t *testing.T) {
	k := New(testCells)
	box, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	mesh := mustMesh(t, k, box)
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoxRejectsNegativeSize(t *testing.T) {
	k := New(testCells)
	if _, err := k.Box(-1, 1, 1); err == nil {
		t.Fatal("expected an error for a negative size")
	}
}

func TestDifference(t *testing.T) {
	k := New(testCells)

	box, _ := k.Box(100, 100, 100)
	boxMesh := mustMesh(t, k, box)

	post, _ := k.Box(20, 20, 120)
	post, _ = k.Translate(post, 40, 40, -10)
	diff, err := k.Difference(box, post)
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	diffMesh := mustMesh(t, k, diff)
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	// A box with a hole should have more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(testCells)
	box1, _ := k.Box(50, 50, 50)
	box2, _ := k.Box(50, 50, 50)
	box2, _ = k.Translate(box2, 30, 0, 0)

	u, err := k.Union(box1, box2)
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	min, max := u.BoundingBox()
	if math.Abs(min[0]) > 0.5 || math.Abs(max[0]-80) > 0.5 {
		t.Errorf("union X extent = %f..%f, want 0..80", min[0], max[0])
	}

	inter, err := k.Intersection(box1, box2)
	if err != nil {
		t.Fatalf("Intersection failed: %v", err)
	}
	if mustMesh(t, k, inter).IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	box, _ := k.Box(10, 10, 10)
	translated, _ := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	// The box's minimum corner starts at the origin, so it moves to
	// (100,200,300).
	const tol = 0.5
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBoundingBox(t *testing.T) {
	k := New(testCells)
	box, _ := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New(testCells)
	box, _ := k.Box(100, 10, 10)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated, err := k.Rotate(box, 0, 0, 90)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	min, max := rotated.BoundingBox()

	// After 90-degree Z rotation, the X extent should be small and Y extent large.
	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestPrismAndPolyhedron(t *testing.T) {
	k := New(testCells)
	prism, err := k.Prism([]v3.Vec{{}, {X: 4}, {Y: 3}}, v3.Vec{Z: 2})
	if err != nil {
		t.Fatalf("Prism failed: %v", err)
	}
	_, max := prism.BoundingBox()
	if max != [3]float64{4, 3, 2} {
		t.Errorf("prism max = %v, want [4 3 2]", max)
	}
	if mustMesh(t, k, prism).IsEmpty() {
		t.Error("prism mesh is empty")
	}

	tet, err := k.Polyhedron(
		[]v3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		[][]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}},
	)
	if err != nil {
		t.Fatalf("Polyhedron failed: %v", err)
	}
	if mustMesh(t, k, tet).IsEmpty() {
		t.Error("tetrahedron mesh is empty")
	}
	// The builder's scratch regions are released.
	if n := k.store.Live().Regions; n != 1 {
		t.Errorf("%d regions live, want only the model's first", n)
	}
}

func TestShellSDF(t *testing.T) {
	s := nmg.NewStore()
	_, _, sh := s.MakeModel()
	if _, err := nmg.MakeBox(nmg.NewBuilder(s, sh, nmg.DefaultTol()), v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}); err != nil {
		t.Fatalf("MakeBox: %v", err)
	}
	f, err := NewShellSDF(s, sh)
	if err != nil {
		t.Fatalf("NewShellSDF: %v", err)
	}

	tests := []struct {
		name string
		p    v3.Vec
		want float64
	}{
		{"centre", v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, -0.5},
		{"inside near face", v3.Vec{X: 0.5, Y: 0.5, Z: 0.9}, -0.1},
		{"on face", v3.Vec{X: 0.5, Y: 0.5, Z: 1}, 0},
		{"above face", v3.Vec{X: 0.5, Y: 0.5, Z: 3}, 2},
		{"off corner", v3.Vec{X: 2, Y: 2, Z: 1}, math.Sqrt(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Evaluate(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	bb := f.BoundingBox()
	if bb.Min != (v3.Vec{}) || bb.Max != (v3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("BoundingBox() = %v, want unit cube", bb)
	}
}

func TestShellSDFNeedsFaces(t *testing.T) {
	s := nmg.NewStore()
	_, _, sh := s.MakeModel()
	if _, err := NewShellSDF(s, sh); err == nil {
		t.Fatal("expected an error for a shell without faces")
	}
}

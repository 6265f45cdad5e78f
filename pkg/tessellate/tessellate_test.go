package tessellate_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chazu/nmgkernel/pkg/boolean"
	"github.com/chazu/nmgkernel/pkg/graph"
	"github.com/chazu/nmgkernel/pkg/kernel"
	"github.com/chazu/nmgkernel/pkg/kernel/nmgk"
	"github.com/chazu/nmgkernel/pkg/kernel/sdfx"
	"github.com/chazu/nmgkernel/pkg/tessellate"
)

// kernels returns one fresh instance of every backend. The SDF kernel
// meshes coarsely to keep the tests fast.
func kernels() map[string]kernel.Kernel {
	return map[string]kernel.Kernel{
		"nmg":  nmgk.New(boolean.Options{}),
		"sdfx": sdfx.New(50),
	}
}

// makeBox creates a box primitive node with the given name and dimensions.
func makeBox(name string, x, y, z float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID(name),
		Kind: graph.NodePrimitive,
		Name: name,
		Data: graph.BoxData{Size: graph.Vec3{X: x, Y: y, Z: z}},
	}
}

// makePlace creates a transform node with a translation and an optional
// rotation.
func makePlace(name string, at graph.Vec3, rot *graph.Vec3, child graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{child},
		Data:     graph.TransformData{Translation: &at, Rotation: rot},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

// makeBoolean creates a Boolean node over its operands.
func makeBoolean(name string, op graph.BoolOp, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeBoolean,
		Name:     name,
		Children: children,
		Data:     graph.BooleanData{Op: op},
	}
}

// bounds returns the bounding box of the mesh vertices.
func bounds(m *kernel.Mesh) (min, max [3]float64) {
	for i := range min {
		min[i], max[i] = math.Inf(1), math.Inf(-1)
	}
	for i, v := range m.Vertices {
		min[i%3] = math.Min(min[i%3], float64(v))
		max[i%3] = math.Max(max[i%3], float64(v))
	}
	return min, max
}

// meshVolume sums the signed tetrahedra each triangle spans with the
// origin.
func meshVolume(m *kernel.Mesh) float64 {
	vol := 0.0
	for _, t := range m.Triangles() {
		vol += t[0].Dot(t[1].Cross(t[2])) / 6
	}
	return vol
}

func tessellateOne(t *testing.T, g *graph.DesignGraph, k kernel.Kernel) *kernel.Mesh {
	t.Helper()
	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	return meshes[0]
}

func TestSingleBox(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			g := graph.New()
			box := makeBox("block", 600, 300, 18)
			g.AddNode(box)
			g.AddRoot(box.ID)

			m := tessellateOne(t, g, k)
			if m.PartName != "block" {
				t.Errorf("expected PartName %q, got %q", "block", m.PartName)
			}
			if name == "nmg" && m.TriangleCount() != 12 {
				t.Errorf("B-rep box has %d triangles, want 12", m.TriangleCount())
			}
		})
	}
}

func TestTwoParts(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			g := graph.New()
			side := makeBox("base-plate", 400, 300, 18)
			top := makeBox("cover-plate", 600, 300, 18)
			g.AddNode(side)
			g.AddNode(top)
			g.AddRoot(side.ID)
			g.AddRoot(top.ID)

			meshes, err := tessellate.Tessellate(g, k)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if len(meshes) != 2 {
				t.Fatalf("expected 2 meshes, got %d", len(meshes))
			}
			if meshes[0].PartName != "base-plate" || meshes[1].PartName != "cover-plate" {
				t.Errorf("meshes out of root order: %q, %q", meshes[0].PartName, meshes[1].PartName)
			}
		})
	}
}

func TestPartWithTransform(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			g := graph.New()
			box := makeBox("block", 100, 50, 10)
			g.AddNode(box)
			place := makePlace("place-block", graph.Vec3{X: 200, Y: 100, Z: 50}, nil, box.ID)
			g.AddNode(place)
			g.AddRoot(place.ID)

			m := tessellateOne(t, g, k)
			if m.PartName != "block" {
				t.Errorf("expected PartName %q, got %q", "block", m.PartName)
			}

			// Box has min-corner at origin, so it spans (200,100,50)-(300,150,60).
			min, max := bounds(m)
			wantMin := [3]float64{200, 100, 50}
			wantMax := [3]float64{300, 150, 60}
			const tol = 3.0 // marching cubes is approximate
			for i := 0; i < 3; i++ {
				if math.Abs(min[i]-wantMin[i]) > tol || math.Abs(max[i]-wantMax[i]) > tol {
					t.Errorf("axis %d spans %.2f..%.2f, want %.0f..%.0f", i, min[i], max[i], wantMin[i], wantMax[i])
				}
			}
		})
	}
}

func TestNestedTransformsApplyInnermostFirst(t *testing.T) {
	k := nmgk.New(boolean.Options{})
	g := graph.New()
	bar := makeBox("bar", 10, 1, 1)
	g.AddNode(bar)
	// Rotate the bar onto +Y, then move it along X.
	spin := makePlace("spin", graph.Vec3{}, &graph.Vec3{Z: 90}, bar.ID)
	g.AddNode(spin)
	shift := makePlace("shift", graph.Vec3{X: 5}, nil, spin.ID)
	g.AddNode(shift)
	g.AddRoot(shift.ID)

	min, max := bounds(tessellateOne(t, g, k))
	want := [2][3]float64{{4, 0, 0}, {5, 10, 1}}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-want[0][i]) > 1e-4 || math.Abs(max[i]-want[1][i]) > 1e-4 {
			t.Errorf("axis %d spans %.4f..%.4f, want %.0f..%.0f", i, min[i], max[i], want[0][i], want[1][i])
		}
	}
}

func TestAssembly(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			g := graph.New()
			left := makeBox("left-jaw", 400, 300, 18)
			right := makeBox("right-jaw", 400, 300, 18)
			top := makeBox("bridge", 600, 300, 18)
			g.AddNode(left)
			g.AddNode(right)
			g.AddNode(top)

			placeLeft := makePlace("place-left", graph.Vec3{}, nil, left.ID)
			placeRight := makePlace("place-right", graph.Vec3{X: 582}, nil, right.ID)
			placeTop := makePlace("place-top", graph.Vec3{X: 300, Y: 400}, nil, top.ID)
			g.AddNode(placeLeft)
			g.AddNode(placeRight)
			g.AddNode(placeTop)

			assembly := makeGroup("clamp", placeLeft.ID, placeRight.ID, placeTop.ID)
			g.AddNode(assembly)
			g.AddRoot(assembly.ID)

			meshes, err := tessellate.Tessellate(g, k)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if len(meshes) != 3 {
				t.Fatalf("expected 3 meshes, got %d", len(meshes))
			}
			for i, want := range []string{"left-jaw", "right-jaw", "bridge"} {
				if meshes[i].PartName != want {
					t.Errorf("mesh %d is %q, want %q", i, meshes[i].PartName, want)
				}
				if meshes[i].IsEmpty() {
					t.Errorf("mesh %q should not be empty", want)
				}
			}
		})
	}
}

// drilledCube is a 10 mm cube with a 5 mm square post subtracted through
// its middle: 1000 - 250 mm³.
func drilledCube() *graph.DesignGraph {
	g := graph.New()
	cube := makeBox("cube", 10, 10, 10)
	post := makeBox("post", 5, 5, 20)
	g.AddNode(cube)
	g.AddNode(post)
	place := makePlace("place-post", graph.Vec3{X: 2.5, Y: 2.5, Z: -5}, nil, post.ID)
	g.AddNode(place)
	cut := makeBoolean("drilled", graph.OpSubtract, cube.ID, place.ID)
	g.AddNode(cut)
	g.AddRoot(cut.ID)
	return g
}

func TestBooleanRootIsOneSolid(t *testing.T) {
	results := map[string]float64{}
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			m := tessellateOne(t, drilledCube(), k)
			if m.PartName != "drilled" {
				t.Errorf("expected PartName %q, got %q", "drilled", m.PartName)
			}
			results[name] = meshVolume(m)
		})
	}
	if got := results["nmg"]; math.Abs(got-750) > 1e-6 {
		t.Errorf("B-rep volume = %v, want 750", got)
	}
	// The SDF kernel is an independent approximation of the same solid.
	if got := results["sdfx"]; math.Abs(got-750) > 75 {
		t.Errorf("SDF volume = %v, want about 750", got)
	}
}

func TestGroupOperandIsUnion(t *testing.T) {
	k := nmgk.New(boolean.Options{})
	g := graph.New()
	bar := makeBox("bar", 3, 1, 1)
	a := makeBox("a", 1, 2, 2)
	b := makeBox("b", 1, 2, 2)
	g.AddNode(bar)
	g.AddNode(a)
	g.AddNode(b)
	// Two caps swallow the ends of the bar.
	placeA := makePlace("place-a", graph.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, nil, a.ID)
	placeB := makePlace("place-b", graph.Vec3{X: 2.5, Y: -0.5, Z: -0.5}, nil, b.ID)
	g.AddNode(placeA)
	g.AddNode(placeB)
	caps := makeGroup("caps", placeA.ID, placeB.ID)
	g.AddNode(caps)
	// The bar minus both caps leaves its middle, x in [0.5, 2.5].
	middle := makeBoolean("middle", graph.OpSubtract, bar.ID, caps.ID)
	g.AddNode(middle)
	g.AddRoot(middle.ID)

	if got := meshVolume(tessellateOne(t, g, k)); math.Abs(got-2) > 1e-6 {
		t.Errorf("volume = %v, want 2", got)
	}
}

func TestIntermediateSolidsAreReleased(t *testing.T) {
	k := nmgk.New(boolean.Options{})
	if _, err := tessellate.Tessellate(drilledCube(), k); err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if n := k.Store().Live().Faces; n != 0 {
		t.Errorf("%d faces still live after tessellation", n)
	}
}

// stuckKernel is an NMG kernel whose Release always fails.
type stuckKernel struct {
	*nmgk.Kernel
}

func (stuckKernel) Release(kernel.Solid) error {
	return errors.New("store is read-only")
}

func TestReleaseFailuresAreReported(t *testing.T) {
	k := stuckKernel{nmgk.New(boolean.Options{})}
	_, err := tessellate.Tessellate(drilledCube(), k)
	if err == nil || !strings.Contains(err.Error(), "store is read-only") {
		t.Errorf("Tessellate error = %v, want the release failure", err)
	}
}

func TestEmptyGraph(t *testing.T) {
	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			meshes, err := tessellate.Tessellate(graph.New(), k)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if len(meshes) != 0 {
				t.Fatalf("expected 0 meshes, got %d", len(meshes))
			}
		})
	}
}

func TestBadNodesFail(t *testing.T) {
	tests := []struct {
		name string
		node *graph.Node
		want string
	}{
		{
			"degenerate box",
			makeBox("flat", 1, 0, 1),
			"primitive node",
		},
		{
			"wrong payload",
			&graph.Node{ID: graph.NewNodeID("odd"), Kind: graph.NodePrimitive, Data: graph.GroupData{}},
			"unsupported data type",
		},
		{
			"empty boolean",
			makeBoolean("none", graph.OpUnion),
			"no operands",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			g.AddNode(tt.node)
			g.AddRoot(tt.node.ID)
			_, err := tessellate.Tessellate(g, nmgk.New(boolean.Options{}))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Tessellate error = %v, want one mentioning %q", err, tt.want)
			}
		})
	}
}

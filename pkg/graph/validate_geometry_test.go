package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers for ValidationResult
// ---------------------------------------------------------------------------

// resultHasError returns true if result.Errors contains at least one entry
// whose Message contains substr.
func resultHasError(r ValidationResult, substr string) bool {
	for _, e := range r.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// resultHasWarning returns true if result.Warnings contains at least one entry
// whose Message contains substr.
func resultHasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation tests
// ---------------------------------------------------------------------------

// singlePrimitive builds a graph whose only root is one primitive node.
func singlePrimitive(name string, data NodeData) (*DesignGraph, NodeID) {
	g := New()
	id := NewNodeID("primitive/" + name)
	g.AddNode(&Node{ID: id, Kind: NodePrimitive, Name: name, Data: data})
	g.AddRoot(id)
	return g, id
}

var tetraVertices = []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func tetrahedron() PolyhedronData {
	return PolyhedronData{
		Vertices: tetraVertices,
		Faces:    [][]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}},
	}
}

func TestValidateAll_BoxSizes(t *testing.T) {
	tests := []struct {
		name      string
		size      Vec3
		wantErrs  int
		wantMatch string
	}{
		{"zero X", Vec3{0, 200, 19}, 1, "box size X"},
		{"negative Y", Vec3{10, -5, 19}, 1, "box size Y"},
		{"all zero", Vec3{}, 3, "must be positive"},
		{"valid", Vec3{10, 20, 30}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := singlePrimitive("box", BoxData{Size: tt.size})
			result := ValidateAll(g)
			if len(result.Errors) != tt.wantErrs {
				t.Errorf("got %d errors, want %d", len(result.Errors), tt.wantErrs)
				for _, e := range result.Errors {
					t.Logf("  %s", e)
				}
			}
			if tt.wantMatch != "" && !resultHasError(result, tt.wantMatch) {
				t.Errorf("expected error containing %q", tt.wantMatch)
			}
		})
	}
}

func TestValidateAll_Prisms(t *testing.T) {
	square := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	tests := []struct {
		name      string
		data      PrismData
		wantMatch string
	}{
		{"valid", PrismData{Base: square, Height: Vec3{0, 0, 2}}, ""},
		{"slanted", PrismData{Base: square, Height: Vec3{1, 1, 2}}, ""},
		{"too few points", PrismData{Base: square[:2], Height: Vec3{0, 0, 1}}, "need at least 3"},
		{"collinear base", PrismData{Base: []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, Height: Vec3{0, 0, 1}}, "degenerate"},
		{"flat height", PrismData{Base: square, Height: Vec3{1, 0, 0}}, "lies in the base plane"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := singlePrimitive("prism", tt.data)
			result := ValidateAll(g)
			if tt.wantMatch == "" {
				if len(result.Errors) != 0 {
					t.Errorf("unexpected errors: %v", result.Errors)
				}
				return
			}
			if !resultHasError(result, tt.wantMatch) {
				t.Errorf("expected error containing %q, got %v", tt.wantMatch, result.Errors)
			}
		})
	}
}

func TestValidateAll_Polyhedra(t *testing.T) {
	reversed := tetrahedron()
	reversed.Faces[0] = []int{0, 1, 2}

	outside := tetrahedron()
	outside.Faces[3] = []int{0, 3, 7}

	repeat := tetrahedron()
	repeat.Faces[1] = []int{0, 1, 1}

	warped := tetrahedron()
	warped.Faces = append(warped.Faces, []int{0, 1, 2, 3})

	tests := []struct {
		name      string
		data      PolyhedronData
		wantMatch string
	}{
		{"tetrahedron", tetrahedron(), ""},
		{"too few faces", PolyhedronData{Vertices: tetraVertices, Faces: tetrahedron().Faces[:3]}, "need at least 4"},
		{"inconsistent orientation", reversed, "not closed"},
		{"index out of range", outside, "indexes outside"},
		{"repeated vertex", repeat, "repeats a vertex"},
		{"warped face", warped, "not planar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := singlePrimitive("poly", tt.data)
			result := ValidateAll(g)
			if tt.wantMatch == "" {
				if len(result.Errors) != 0 {
					t.Errorf("unexpected errors: %v", result.Errors)
				}
				return
			}
			if !resultHasError(result, tt.wantMatch) {
				t.Errorf("expected error containing %q, got %v", tt.wantMatch, result.Errors)
			}
		})
	}
}

func TestValidateAll_IdentityTransformWarns(t *testing.T) {
	g := New()
	boxID := NewNodeID("box/a")
	placeID := NewNodeID("place/a")
	g.AddNode(&Node{ID: boxID, Kind: NodePrimitive, Name: "a", Data: BoxData{Size: Vec3{1, 1, 1}}})
	g.AddNode(&Node{
		ID: placeID, Kind: NodeTransform,
		Children: []NodeID{boxID},
		Data:     TransformData{Translation: &Vec3{}},
	})
	g.AddRoot(placeID)

	result := ValidateAll(g)
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if !resultHasWarning(result, "no translation or rotation") {
		t.Error("expected identity transform warning")
	}
}

func TestValidateAll_SmallBoxWarns(t *testing.T) {
	g, _ := singlePrimitive("sliver", BoxData{Size: Vec3{10, 10, 0.002}})

	result := ValidateAll(g)
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if !resultHasWarning(result, "close to the tolerance") {
		t.Error("expected small box warning")
	}
}

func TestValidateAll_CustomTolerance(t *testing.T) {
	g, _ := singlePrimitive("box", BoxData{Size: Vec3{0.05, 1, 1}})
	g.Defaults.Tolerance = 0.1

	result := ValidateAll(g)
	if !resultHasError(result, "box size X") {
		t.Errorf("expected size error under a coarse tolerance, got %v", result.Errors)
	}
}

func TestValidateAll_ValidGraph(t *testing.T) {
	g := buildValidUnion()
	result := ValidateAll(g)
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestValidateAll_EmptyGraph(t *testing.T) {
	result := ValidateAll(New())
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("empty graph: errors=%v warnings=%v", result.Errors, result.Warnings)
	}
}

package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox        PrimitiveKind = iota // axis-aligned box
	PrimPrism                           // extruded planar polygon
	PrimPolyhedron                      // explicit vertex and face lists
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimPrism:
		return "prism"
	case PrimPolyhedron:
		return "polyhedron"
	default:
		return "unknown"
	}
}

// BoxData is an axis-aligned box with one corner at the origin.
type BoxData struct {
	Size Vec3 `json:"size"`
}

func (BoxData) nodeData() {}

// PrismData extrudes the planar polygon Base along Height.
type PrismData struct {
	Base   []Vec3 `json:"base"`
	Height Vec3   `json:"height"`
}

func (PrismData) nodeData() {}

// PolyhedronData lists vertices and faces; each face indexes Vertices
// counter-clockwise seen from outside.
type PolyhedronData struct {
	Vertices []Vec3  `json:"vertices"`
	Faces    [][]int `json:"faces"`
}

func (PolyhedronData) nodeData() {}

// PrimitiveOf returns the primitive kind of d, or false if d is not a primitive.
func PrimitiveOf(d NodeData) (PrimitiveKind, bool) {
	switch d.(type) {
	case BoxData:
		return PrimBox, true
	case PrismData:
		return PrimPrism, true
	case PolyhedronData:
		return PrimPolyhedron, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) form. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BoolOp enumerates the Boolean operations.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpIntersect
	OpSubtract // first child minus the rest
)

func (op BoolOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersect:
		return "intersect"
	case OpSubtract:
		return "subtract"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's children, in order, with Op.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

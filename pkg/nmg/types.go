package nmg

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind enumerates the record kinds held by a Store.
type Kind uint8

const (
	KindNone Kind = iota
	KindModel
	KindRegion
	KindShell
	KindFaceuse
	KindFace
	KindLoopuse
	KindLoop
	KindEdgeuse
	KindEdge
	KindVertexuse
	KindVertex
)

var kindNames = [...]string{
	KindNone:      "none",
	KindModel:     "model",
	KindRegion:    "region",
	KindShell:     "shell",
	KindFaceuse:   "faceuse",
	KindFace:      "face",
	KindLoopuse:   "loopuse",
	KindLoop:      "loop",
	KindEdgeuse:   "edgeuse",
	KindEdge:      "edge",
	KindVertexuse: "vertexuse",
	KindVertex:    "vertex",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Typed arena indices. The zero value of each is "none".
type (
	ModelID     int32
	RegionID    int32
	ShellID     int32
	FaceuseID   int32
	FaceID      int32
	LoopuseID   int32
	LoopID      int32
	EdgeuseID   int32
	EdgeID      int32
	VertexuseID int32
	VertexID    int32
)

// Orientation of a use relative to its underlying geometry.
type Orientation uint8

const (
	OTNone Orientation = iota
	OTSame
	OTOpposite
	OTUnspec
)

func (o Orientation) String() string {
	switch o {
	case OTNone:
		return "none"
	case OTSame:
		return "same"
	case OTOpposite:
		return "opposite"
	case OTUnspec:
		return "unspec"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Flip returns the orientation of the mate of a use with orientation o.
func (o Orientation) Flip() Orientation {
	switch o {
	case OTSame:
		return OTOpposite
	case OTOpposite:
		return OTSame
	}
	return o
}

// Parent is the polymorphic "up" reference of a loopuse, edgeuse or
// vertexuse. Which kinds are legal depends on the child: loopuses live in
// shells or faceuses, edgeuses in shells or loopuses, vertexuses in
// shells, loopuses or edgeuses.
type Parent struct {
	kind Kind
	id   int32
}

func ShellParent(id ShellID) Parent { return Parent{KindShell, int32(id)} }
func FaceuseParent(id FaceuseID) Parent { return Parent{KindFaceuse, int32(id)} }
func LoopuseParent(id LoopuseID) Parent { return Parent{KindLoopuse, int32(id)} }
func EdgeuseParent(id EdgeuseID) Parent { return Parent{KindEdgeuse, int32(id)} }
func (p Parent) Kind() Kind { return p.kind }
func (p Parent) IsZero() bool { return p.kind == KindNone }
func (p Parent) Shell() ShellID { return ShellID(p.pick(KindShell)) }
func (p Parent) Faceuse() FaceuseID { return FaceuseID(p.pick(KindFaceuse)) }
func (p Parent) Loopuse() LoopuseID { return LoopuseID(p.pick(KindLoopuse)) }
func (p Parent) Edgeuse() EdgeuseID { return EdgeuseID(p.pick(KindEdgeuse)) }
func (p Parent) String() string { return fmt.Sprintf("%s %d", p.kind, p.id) }
func (p Parent) pick(k Kind) int32 {
	if p.kind != k {
		return 0
	}
	return p.id
}

// link threads a record into a circular doubly-linked sibling list.
type link[ID ~int32] struct {
	next, prev ID
}

// Model is the root of a topology.
type Model struct {
	regions RegionID
}

// Region groups shells.
type Region struct {
	Model  ModelID
	l      link[RegionID]
	shells ShellID
	BBox   *sdf.Box3
}

// Shell holds any mix of faces, wire loops and wire edges, or a single
// lone vertexuse. A shell with none of these is illegal.
type Shell struct {
	Region    RegionID
	l         link[ShellID]
	faceuses  FaceuseID
	loopuses  LoopuseID
	edgeuses  EdgeuseID
	Vertexuse VertexuseID
	BBox      *sdf.Box3
}

// Faceuse is one side of a Face.
type Faceuse struct {
	Shell    ShellID
	l        link[FaceuseID]
	Mate     FaceuseID
	Face     FaceID
	Orient   Orientation
	loopuses LoopuseID
}

// Face is the undirected surface shared by two mated faceuses.
type Face struct {
	Faceuse FaceuseID
	Plane   *Plane
	BBox    *sdf.Box3
}

// Loopuse is one direction of a Loop. Its children are either a single
// Vertexuse (a point loop) or a ring of edgeuses, never both.
type Loopuse struct {
	Parent    Parent
	l         link[LoopuseID]
	Mate      LoopuseID
	Loop      LoopID
	Orient    Orientation
	Vertexuse VertexuseID
	edgeuses  EdgeuseID
}

// Loop is the undirected closed boundary shared by two mated loopuses.
type Loop struct {
	Loopuse LoopuseID
	BBox    *sdf.Box3
}

// Edgeuse is a directed use of an Edge starting at Vertexuse. Mate is the
// opposite-direction use in the mate loop; Radial is the next use around
// the edge.
type Edgeuse struct {
	Parent    Parent
	l         link[EdgeuseID]
	Mate      EdgeuseID
	Radial    EdgeuseID
	Edge      EdgeID
	Vertexuse VertexuseID
	Orient    Orientation
}

// Edge is the undirected segment. Edgeuse is a representative use that is
// always alive.
type Edge struct {
	Edgeuse EdgeuseID
}

// Vertexuse is one occurrence of a Vertex in a shell, loopuse or edgeuse.
type Vertexuse struct {
	Parent Parent
	Vertex VertexID
	l      link[VertexuseID]
}

// Vertex is a point. Seq increases with creation order and is used as a
// deterministic tie-break.
type Vertex struct {
	uses  VertexuseID
	Coord *v3.Vec
	Seq   uint64
}

// Plane is the plane N·p = D with N of unit length.
type Plane struct {
	N v3.Vec
	D float64
}

// Dist returns the signed distance from p to the plane.
func (pl Plane) Dist(p v3.Vec) float64 {
	return pl.N.Dot(p) - pl.D
}

// Flip returns the same plane facing the other way.
func (pl Plane) Flip() Plane {
	return Plane{N: pl.N.MulScalar(-1), D: -pl.D}
}

package graph

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// designSpace namespaces the name-based node IDs.
var designSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("nmgkernel/design"))

// NodeID is a content-addressed node identifier: the SHA-1 name-based UUID
// of the node's path in the design script.
type NodeID uuid.UUID

// NewNodeID returns the ID for path. The same path always yields the same
// ID.
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(designSpace, []byte(path)))
}

// IsZero reports whether id is the zero value.
func (id NodeID) IsZero() bool { return id == NodeID{} }

// Short returns the first six bytes of id in hex, for messages.
func (id NodeID) Short() string { return hex.EncodeToString(id[:6]) }

func (id NodeID) String() string { return uuid.UUID(id).String() }

// SourceRef locates the form that created a node.
type SourceRef struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Vec3 is a point or direction in model units.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) String() string { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }

package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// idNamespace scopes node ids so that the same path always yields the
// same id.
var idNamespace = uuid.MustParse("6f1c9a52-3b0e-5d7a-9c44-2e8b1f0d7a13")

// NodeID is a deterministic identifier derived from a node's path.
type NodeID uuid.UUID

// ZeroID is the empty node id.
var ZeroID NodeID

// NewNodeID returns the id for a path such as "cuboid/floor".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(idNamespace, []byte(path)))
}

// IsZero reports whether id is ZeroID.
func (id NodeID) IsZero() bool { return id == ZeroID }

func (id NodeID) String() string { return uuid.UUID(id).String() }

// Short returns the first eight hex digits.
func (id NodeID) Short() string { return id.String()[:8] }

// MarshalText lets ids key JSON objects.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Vec3 is a point or direction in scene units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// VecOf converts an sdfx vector.
func VecOf(v v3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) IsZero() bool { return v == Vec3{} }

// Vec returns v as an sdfx vector.
func (v Vec3) Vec() v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// SourceRef locates the source expression that produced a node.
type SourceRef struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// ContentHash is the hex SHA-256 of a node's kind, children and payload.
type ContentHash string

// hashInput is the canonical form hashed by ComputeHash. Names and source
// positions are excluded so that renaming a node keeps its hash.
type hashInput struct {
	Kind     NodeKind `json:"kind"`
	Children []NodeID `json:"children"`
	Data     NodeData `json:"data"`
}

// ComputeHash returns the content hash of n.
func ComputeHash(n *Node) ContentHash {
	b, err := json.Marshal(hashInput{Kind: n.Kind, Children: n.Children, Data: n.Data})
	if err != nil {
		panic("graph: hash node: " + err.Error())
	}
	sum := sha256.Sum256(b)
	return ContentHash(hex.EncodeToString(sum[:]))
}

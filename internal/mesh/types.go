// Package mesh converts between host polygon meshes and the R3D mesh model.
//
// The exporter reads a Source (polygons with per-loop UVs and normals),
// triangulates it, aggregates per-vertex attributes and groups triangles by
// material. The importer stages a complete R3D model in memory and then
// drives a Builder to reconstruct the host mesh.
package mesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Export and import errors.
var (
	ErrNoActiveMesh    = errors.New("no mesh selected for export")
	ErrWrongObjectType = errors.New("selected object is not a mesh")
	ErrUVNotUnified    = errors.New("some vertices use multiple UV loops, part of the UV map can be distorted")
)

// Loop is one corner of a polygon: the vertex it references plus the
// attributes stored for that corner only.
type Loop struct {
	Vertex int32
	UV     mgl32.Vec2
	Normal mgl32.Vec3
}

// Polygon is a face with three or more loops in winding order.
type Polygon struct {
	Loops    []Loop
	Material int
}

// Source is the read side of a host mesh.
type Source interface {
	VertexCount() int
	Position(i int) mgl32.Vec3
	// VertexNormal returns the normal the host stores for vertex i.
	VertexNormal(i int) mgl32.Vec3
	Polygons() []Polygon
	MaterialCount() int
	// HasUV reports whether the mesh has an active UV layer.
	HasUV() bool
}

// Builder is the mesh-construction side of a host mesh. The importer calls
// Build first and the remaining methods afterwards.
type Builder interface {
	Build(positions []mgl32.Vec3, triangles [][3]int32) error
	SetCustomNormals(normals []mgl32.Vec3) error
	// SetCornerUVs assigns one UV per triangle corner, in triangle order.
	SetCornerUVs(uvs [][3]mgl32.Vec2) error
	SetMaterialIndex(face int, material int) error
	AppendMaterial(name string) error
}

// ObjectKind classifies scene objects.
type ObjectKind int

const (
	KindMesh  ObjectKind = iota // Polygon mesh
	KindCurve                   // Lines or points only
	KindEmpty                   // No geometry
)

// String returns a human-readable kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindMesh:
		return "Mesh"
	case KindCurve:
		return "Curve"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// Object is a placed scene object.
type Object struct {
	Name       string
	Kind       ObjectKind
	Data       Source
	Collection string     // Collection the object is linked into
	Matrix     mgl32.Mat4 // World placement
}

// NormalMode selects how vertex normals are produced on export.
type NormalMode int

const (
	// NormalsStoredVertex uses the normal the host stores per vertex.
	NormalsStoredVertex NormalMode = iota
	// NormalsAveragedLoops sums the per-loop normals of every vertex and normalizes the sum.
	NormalsAveragedLoops
)

// ZeroNormalPolicy decides what an averaged normal becomes when the loop
// normals of a vertex cancel out.
type ZeroNormalPolicy int

const (
	// ZeroNormalFirstLoop substitutes the normal of the first loop touching the vertex.
	ZeroNormalFirstLoop ZeroNormalPolicy = iota
	// ZeroNormalKeep writes the zero vector.
	ZeroNormalKeep
)

// ParseZeroNormalPolicy maps a config name to a policy. Unknown names use ZeroNormalFirstLoop.
func ParseZeroNormalPolicy(name string) ZeroNormalPolicy {
	if name == "zero" {
		return ZeroNormalKeep
	}
	return ZeroNormalFirstLoop
}

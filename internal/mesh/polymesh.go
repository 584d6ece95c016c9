package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMeshNotBuilt is returned by Builder calls made before Build.
var ErrMeshNotBuilt = errors.New("mesh has not been built")

// PolyMesh is an in-memory polygon mesh. It is both a Source for export and
// a Builder for import.
type PolyMesh struct {
	Positions     []mgl32.Vec3
	VertexNormals []mgl32.Vec3
	Polys         []Polygon
	Materials     []string
	UV            bool
}

var (
	_ Source  = (*PolyMesh)(nil)
	_ Builder = (*PolyMesh)(nil)
)

// VertexCount implements Source.
func (m *PolyMesh) VertexCount() int { return len(m.Positions) }

// Position implements Source.
func (m *PolyMesh) Position(i int) mgl32.Vec3 { return m.Positions[i] }

// VertexNormal implements Source. Meshes without stored normals report zero.
func (m *PolyMesh) VertexNormal(i int) mgl32.Vec3 {
	if i < len(m.VertexNormals) {
		return m.VertexNormals[i]
	}
	return mgl32.Vec3{}
}

// Polygons implements Source.
func (m *PolyMesh) Polygons() []Polygon { return m.Polys }

// MaterialCount implements Source.
func (m *PolyMesh) MaterialCount() int { return len(m.Materials) }

// MaterialName returns the name of material slot i.
func (m *PolyMesh) MaterialName(i int) string { return m.Materials[i] }

// HasUV implements Source.
func (m *PolyMesh) HasUV() bool { return m.UV }

// Build implements Builder. It replaces any existing geometry with one
// triangle polygon per index triple.
func (m *PolyMesh) Build(positions []mgl32.Vec3, triangles [][3]int32) error {
	n := int32(len(positions))
	polys := make([]Polygon, len(triangles))
	for i, t := range triangles {
		loops := make([]Loop, 3)
		for c, vi := range t {
			if vi < 0 || vi >= n {
				return fmt.Errorf("%w: triangle %d vertex %d", ErrInvalidPolygon, i, vi)
			}
			loops[c] = Loop{Vertex: vi}
		}
		polys[i] = Polygon{Loops: loops}
	}

	m.Positions = positions
	m.VertexNormals = make([]mgl32.Vec3, len(positions))
	m.Polys = polys
	m.Materials = nil
	m.UV = false
	return nil
}

// SetCustomNormals implements Builder. Normals are stored per vertex and
// copied onto every loop that references the vertex.
func (m *PolyMesh) SetCustomNormals(normals []mgl32.Vec3) error {
	if m.Positions == nil {
		return ErrMeshNotBuilt
	}
	if len(normals) != len(m.Positions) {
		return fmt.Errorf("got %d normals for %d vertices", len(normals), len(m.Positions))
	}
	copy(m.VertexNormals, normals)
	for pi := range m.Polys {
		for li := range m.Polys[pi].Loops {
			l := &m.Polys[pi].Loops[li]
			l.Normal = normals[l.Vertex]
		}
	}
	return nil
}

// SetCornerUVs implements Builder and enables the UV layer.
func (m *PolyMesh) SetCornerUVs(uvs [][3]mgl32.Vec2) error {
	if m.Positions == nil {
		return ErrMeshNotBuilt
	}
	if len(uvs) != len(m.Polys) {
		return fmt.Errorf("got UVs for %d faces, mesh has %d", len(uvs), len(m.Polys))
	}
	for f := range m.Polys {
		for c := range m.Polys[f].Loops {
			m.Polys[f].Loops[c].UV = uvs[f][c]
		}
	}
	m.UV = true
	return nil
}

// SetMaterialIndex implements Builder.
func (m *PolyMesh) SetMaterialIndex(face int, material int) error {
	if face < 0 || face >= len(m.Polys) {
		return fmt.Errorf("face %d out of range (%d faces)", face, len(m.Polys))
	}
	m.Polys[face].Material = material
	return nil
}

// AppendMaterial implements Builder.
func (m *PolyMesh) AppendMaterial(name string) error {
	m.Materials = append(m.Materials, name)
	return nil
}

// ComputeVertexNormals sets every vertex normal to the normalized sum of the
// area-weighted normals of the faces using it.
func (m *PolyMesh) ComputeVertexNormals() {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for _, p := range m.Polys {
		n := polygonNormal(m.Positions, p)
		for _, l := range p.Loops {
			normals[l.Vertex] = normals[l.Vertex].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normalizeOrZero(normals[i])
	}
	m.VertexNormals = normals
}

// polygonNormal returns the Newell normal of p, whose length is twice the polygon area.
func polygonNormal(positions []mgl32.Vec3, p Polygon) mgl32.Vec3 {
	var n mgl32.Vec3
	for i, l := range p.Loops {
		cur := positions[l.Vertex]
		next := positions[p.Loops[(i+1)%len(p.Loops)].Vertex]
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	return n
}

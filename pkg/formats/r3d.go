package formats

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// R3DVersion is the only mesh version this package reads and writes.
const R3DVersion int32 = 0

// R3DExtension is the file extension of R3D meshes.
const R3DExtension = ".r3d"

// Record sizes in bytes.
const (
	r3dHeaderSize        = 6
	r3dVertexSize        = 24 // position + normal
	r3dUVSize            = 8
	r3dTriangleSize      = 12
	r3dMaterialGroupSize = 12
)

// R3D format errors.
var (
	ErrUnsupportedR3DVersion = errors.New("unsupported R3D mesh version")
	ErrTruncatedR3DData      = errors.New("truncated R3D data")
	ErrInvalidR3DCount       = errors.New("invalid R3D element count")
	ErrInvalidTriangleIndex  = errors.New("triangle references missing vertex")
	ErrInvalidMaterialGroups = errors.New("invalid R3D material groups")
)

// R3DHeader is the fixed header at the start of every R3D file.
type R3DHeader struct {
	Version    int32
	LeftHanded uint8 // Reserved, always written as 0
	HasUV      uint8
}

// R3DVertex holds the per-vertex attributes. UV is meaningful only when
// the header has HasUV set and is kept in source orientation (V not flipped).
type R3DVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// R3DTriangle is a triple of vertex indices in winding order.
type R3DTriangle [3]int32

// R3DMaterialGroup is a contiguous run of triangles sharing one material.
type R3DMaterialGroup struct {
	MaterialID int32 // 1-based
	StartFace  int32
	FaceCount  int32
}

// End returns the index one past the last face of the group.
func (g R3DMaterialGroup) End() int32 {
	return g.StartFace + g.FaceCount
}

// R3D represents a parsed R3D mesh.
type R3D struct {
	Header    R3DHeader
	Vertices  []R3DVertex
	Triangles []R3DTriangle
	Groups    []R3DMaterialGroup
}

// HasUV reports whether the mesh carries per-vertex texture coordinates.
func (m *R3D) HasUV() bool {
	return m.Header.HasUV != 0
}

// MaterialName returns the placeholder material name for a 1-based material id.
func MaterialName(id int32) string {
	return fmt.Sprintf("R3d Material %d", id)
}

// MaterialIndices returns the 0-based material index of every triangle.
// Triangles not covered by any group keep index 0.
func (m *R3D) MaterialIndices() []int32 {
	idx := make([]int32, len(m.Triangles))
	for _, g := range m.Groups {
		for f := g.StartFace; f < g.End() && int(f) < len(idx); f++ {
			if f >= 0 {
				idx[f] = g.MaterialID - 1
			}
		}
	}
	return idx
}

// Validate checks the structural invariants of the mesh: supported version,
// triangle indices within range, and material groups that partition the
// triangle list in ascending id order starting at 1.
func (m *R3D) Validate() error {
	if m.Header.Version != R3DVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedR3DVersion, m.Header.Version)
	}
	if err := m.checkTriangles(); err != nil {
		return err
	}

	var next int32
	for i, g := range m.Groups {
		if g.MaterialID != int32(i+1) {
			return fmt.Errorf("%w: group %d has id %d, want %d", ErrInvalidMaterialGroups, i, g.MaterialID, i+1)
		}
		if g.FaceCount < 0 {
			return fmt.Errorf("%w: group %d has negative face count %d", ErrInvalidMaterialGroups, i, g.FaceCount)
		}
		if g.StartFace != next {
			return fmt.Errorf("%w: group %d starts at %d, want %d", ErrInvalidMaterialGroups, i, g.StartFace, next)
		}
		next = g.End()
	}
	if int(next) != len(m.Triangles) {
		return fmt.Errorf("%w: groups cover %d of %d triangles", ErrInvalidMaterialGroups, next, len(m.Triangles))
	}
	return nil
}

func (m *R3D) checkTriangles() error {
	n := int32(len(m.Vertices))
	for i, tri := range m.Triangles {
		for _, vi := range tri {
			if vi < 0 || vi >= n {
				return fmt.Errorf("%w: triangle %d index %d (vertex count %d)", ErrInvalidTriangleIndex, i, vi, n)
			}
		}
	}
	return nil
}

// r3dStep is one state of the sequential R3D parser. It returns the next
// state, or nil once the mesh is complete.
type r3dStep func(p *r3dParser) (r3dStep, error)

type r3dParser struct {
	r    *r3dReader
	mesh *R3D
}

// ParseR3D parses an R3D mesh from a byte slice. The mesh is returned only
// once every section has been read; a short read anywhere yields
// ErrTruncatedR3DData and no mesh.
func ParseR3D(data []byte) (*R3D, error) {
	p := &r3dParser{r: newR3DReader(data), mesh: &R3D{}}

	var err error
	for step := r3dStep(readR3DHeader); step != nil; {
		if step, err = step(p); err != nil {
			return nil, err
		}
	}
	return p.mesh, nil
}

// ReadR3D reads an entire R3D mesh from r.
func ReadR3D(r io.Reader) (*R3D, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading R3D data: %w", err)
	}
	return ParseR3D(data)
}

// ParseR3DFile parses an R3D file from disk.
func ParseR3DFile(path string) (*R3D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading R3D file: %w", err)
	}
	return ParseR3D(data)
}

func readR3DHeader(p *r3dParser) (r3dStep, error) {
	version, err := p.r.readI32("version")
	if err != nil {
		return nil, err
	}
	// Nothing else is read from a file with an unknown version.
	if version != R3DVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedR3DVersion, version)
	}
	h := &p.mesh.Header
	h.Version = version
	if h.LeftHanded, err = p.r.readU8("left-handed flag"); err != nil {
		return nil, err
	}
	if h.HasUV, err = p.r.readU8("uv flag"); err != nil {
		return nil, err
	}
	return readR3DVertices, nil
}

func readR3DVertices(p *r3dParser) (r3dStep, error) {
	stride := r3dVertexSize
	if p.mesh.HasUV() {
		stride += r3dUVSize
	}
	count, err := p.readCount("vertex", stride)
	if err != nil {
		return nil, err
	}

	p.mesh.Vertices = make([]R3DVertex, count)
	for i := range p.mesh.Vertices {
		v := &p.mesh.Vertices[i]
		if v.Position, err = p.r.readVec3("vertex position"); err != nil {
			return nil, err
		}
		if v.Normal, err = p.r.readVec3("vertex normal"); err != nil {
			return nil, err
		}
		if p.mesh.HasUV() {
			uv, err := p.r.readVec2("vertex uv")
			if err != nil {
				return nil, err
			}
			v.UV = flipV(uv)
		}
	}
	return readR3DTriangles, nil
}

func readR3DTriangles(p *r3dParser) (r3dStep, error) {
	count, err := p.readCount("triangle", r3dTriangleSize)
	if err != nil {
		return nil, err
	}

	p.mesh.Triangles = make([]R3DTriangle, count)
	for i := range p.mesh.Triangles {
		tri, err := p.r.readIVec3("triangle")
		if err != nil {
			return nil, err
		}
		p.mesh.Triangles[i] = tri
	}
	if err := p.mesh.checkTriangles(); err != nil {
		return nil, err
	}
	return readR3DMaterials, nil
}

func readR3DMaterials(p *r3dParser) (r3dStep, error) {
	count, err := p.readCount("material group", r3dMaterialGroupSize)
	if err != nil {
		return nil, err
	}

	numFaces := int32(len(p.mesh.Triangles))
	p.mesh.Groups = make([]R3DMaterialGroup, count)
	for i := range p.mesh.Groups {
		g := &p.mesh.Groups[i]
		if g.MaterialID, err = p.r.readI32("material id"); err != nil {
			return nil, err
		}
		if g.StartFace, err = p.r.readI32("material start face"); err != nil {
			return nil, err
		}
		if g.FaceCount, err = p.r.readI32("material face count"); err != nil {
			return nil, err
		}
		if g.MaterialID < 1 || g.StartFace < 0 || g.FaceCount < 0 || g.StartFace > numFaces-g.FaceCount {
			return nil, fmt.Errorf("%w: group %d (id %d, faces %d+%d of %d)",
				ErrInvalidMaterialGroups, i, g.MaterialID, g.StartFace, g.FaceCount, numFaces)
		}
	}
	return nil, nil
}

// readCount reads an element count and checks that count records of the
// given size fit in the unread data, so corrupt counts never allocate.
func (p *r3dParser) readCount(what string, size int) (int, error) {
	count, err := p.r.readI32(what + " count")
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: %s count %d", ErrInvalidR3DCount, what, count)
	}
	if need := int64(count) * int64(size); need > int64(p.r.remaining()) {
		return 0, fmt.Errorf("%w: %d %s records need %d bytes, have %d",
			ErrTruncatedR3DData, count, what, need, p.r.remaining())
	}
	return int(count), nil
}

// flipV converts between source UV orientation and the stored one (v' = 1 - v).
func flipV(uv mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{uv[0], 1 - uv[1]}
}

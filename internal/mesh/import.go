package mesh

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/r3d/internal/logger"
	"github.com/Faultbox/r3d/pkg/formats"
)

// ImportedObjectName is the name given to every imported object.
const ImportedObjectName = "R3D Object"

// ImportOptions controls mesh import.
type ImportOptions struct {
	// Collection names the collection the object is linked into.
	Collection string
	// Matrix is the placement of the imported object. The zero matrix means identity.
	Matrix mgl32.Mat4
}

// Importer reconstructs host meshes from R3D data.
type Importer struct {
	Log *zap.Logger
}

// NewImporter returns an importer logging through the global logger.
func NewImporter() *Importer {
	return &Importer{Log: logger.Named("import")}
}

// Import decodes data and hands the mesh to b. The whole file is parsed
// before b is touched, so a bad version or a truncated stream never leaves
// a partially built mesh behind.
func (im *Importer) Import(data []byte, b Builder, opts ImportOptions) (*formats.R3D, error) {
	m, err := formats.ParseR3D(data)
	if err != nil {
		return nil, err
	}
	if err := im.build(m, b); err != nil {
		return nil, fmt.Errorf("building mesh: %w", err)
	}

	im.log().Debug("mesh imported",
		zap.String("collection", opts.Collection),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("materials", len(m.Groups)))
	return m, nil
}

// ImportFile imports the R3D file at path into a new PolyMesh and returns
// the placed object. The collection defaults to the file's base name.
func (im *Importer) ImportFile(path string, opts ImportOptions) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading R3D file: %w", err)
	}
	if opts.Collection == "" {
		opts.Collection = filepath.Base(path)
	}

	pm := &PolyMesh{}
	if _, err := im.Import(data, pm, opts); err != nil {
		return nil, err
	}
	return place(pm, opts), nil
}

func (im *Importer) build(m *formats.R3D, b Builder) error {
	positions := make([]mgl32.Vec3, len(m.Vertices))
	normals := make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position
		normals[i] = v.Normal
	}
	tris := make([][3]int32, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = t
	}

	if err := b.Build(positions, tris); err != nil {
		return err
	}
	if err := b.SetCustomNormals(normals); err != nil {
		return err
	}

	// Per-corner UVs come from the vertex each corner references.
	if m.HasUV() {
		uvs := make([][3]mgl32.Vec2, len(m.Triangles))
		for f, t := range m.Triangles {
			for c, vi := range t {
				uvs[f][c] = m.Vertices[vi].UV
			}
		}
		if err := b.SetCornerUVs(uvs); err != nil {
			return err
		}
	}

	// One slot per id up to the largest, so a face's index always names
	// its own slot even when ids skip.
	var maxID int32
	for _, g := range m.Groups {
		maxID = max(maxID, g.MaterialID)
	}
	for id := int32(1); id <= maxID; id++ {
		if err := b.AppendMaterial(formats.MaterialName(id)); err != nil {
			return err
		}
	}
	for f, idx := range m.MaterialIndices() {
		if err := b.SetMaterialIndex(f, int(idx)); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) log() *zap.Logger {
	if im.Log == nil {
		return logger.Log
	}
	return im.Log
}

func place(src Source, opts ImportOptions) *Object {
	matrix := opts.Matrix
	if matrix == (mgl32.Mat4{}) {
		matrix = mgl32.Ident4()
	}
	return &Object{
		Name:       ImportedObjectName,
		Kind:       KindMesh,
		Data:       src,
		Collection: opts.Collection,
		Matrix:     matrix,
	}
}

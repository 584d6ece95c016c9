package mesh

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/r3d/internal/logger"
	"github.com/Faultbox/r3d/pkg/formats"
)

// ErrInvalidPolygon is returned when a polygon loop references a vertex the mesh does not have.
var ErrInvalidPolygon = errors.New("polygon references missing vertex")

// ExportOptions controls mesh export.
type ExportOptions struct {
	Normals    NormalMode
	ZeroNormal ZeroNormalPolicy
}

// ExportResult is a converted mesh plus the non-fatal diagnostics raised
// while building it.
type ExportResult struct {
	Mesh     *formats.R3D
	Warnings []error
}

// Exporter converts host objects to R3D meshes.
type Exporter struct {
	Triangulator Triangulator
	Log          *zap.Logger
}

// NewExporter returns an exporter using fan triangulation and the global logger.
func NewExporter() *Exporter {
	return &Exporter{
		Triangulator: FanTriangulator{},
		Log:          logger.Named("export"),
	}
}

// Export builds the R3D model for the active object. It fails with
// ErrNoActiveMesh when obj is nil and ErrWrongObjectType when obj holds no
// polygon mesh.
func (e *Exporter) Export(obj *Object, opts ExportOptions) (*ExportResult, error) {
	if obj == nil {
		return nil, ErrNoActiveMesh
	}
	if obj.Kind != KindMesh || obj.Data == nil {
		return nil, fmt.Errorf("%w: %q is %s", ErrWrongObjectType, obj.Name, obj.Kind)
	}
	src := obj.Data
	if err := checkPolygons(src); err != nil {
		return nil, err
	}

	log := e.log().With(zap.String("object", obj.Name))
	res := &ExportResult{}

	m := &formats.R3D{Header: formats.R3DHeader{Version: formats.R3DVersion}}
	m.Vertices = make([]formats.R3DVertex, src.VertexCount())
	for i := range m.Vertices {
		m.Vertices[i].Position = src.Position(i)
	}

	if src.HasUV() {
		m.Header.HasUV = 1
		uvs, split := collectVertexUVs(src)
		for i := range m.Vertices {
			m.Vertices[i].UV = uvs[i]
		}
		if len(split) > 0 {
			log.Warn("vertices with split UVs keep their first UV", zap.Int("vertices", len(split)))
			res.Warnings = append(res.Warnings, fmt.Errorf("%w (%d vertices)", ErrUVNotUnified, len(split)))
		}
	}

	tris := e.triangulator().Triangulate(src.Polygons())
	m.Triangles, m.Groups = groupTriangles(tris, src.MaterialCount())

	for i, n := range vertexNormals(src, opts.Normals, opts.ZeroNormal) {
		m.Vertices[i].Normal = n
	}

	log.Debug("mesh exported",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("groups", len(m.Groups)),
		zap.Bool("uv", m.HasUV()))

	res.Mesh = m
	return res, nil
}

// ExportFile exports obj and writes it to path. The file is replaced only
// when the whole mesh has been written.
func (e *Exporter) ExportFile(path string, obj *Object, opts ExportOptions) (*ExportResult, error) {
	res, err := e.Export(obj, opts)
	if err != nil {
		return nil, err
	}
	if err := formats.WriteR3DFile(path, res.Mesh); err != nil {
		return nil, err
	}
	e.log().Info("wrote R3D mesh", zap.String("path", path), zap.Int("triangles", len(res.Mesh.Triangles)))
	return res, nil
}

func (e *Exporter) triangulator() Triangulator {
	if e.Triangulator == nil {
		return FanTriangulator{}
	}
	return e.Triangulator
}

func (e *Exporter) log() *zap.Logger {
	if e.Log == nil {
		return logger.Log
	}
	return e.Log
}

func checkPolygons(src Source) error {
	n := int32(src.VertexCount())
	for pi, p := range src.Polygons() {
		for _, l := range p.Loops {
			if l.Vertex < 0 || l.Vertex >= n {
				return fmt.Errorf("%w: polygon %d loop vertex %d (vertex count %d)", ErrInvalidPolygon, pi, l.Vertex, n)
			}
		}
	}
	return nil
}

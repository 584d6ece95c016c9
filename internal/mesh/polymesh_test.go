package mesh

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFanTriangulator(t *testing.T) {
	loops := func(n int) []Loop {
		ls := make([]Loop, n)
		for i := range ls {
			ls[i] = Loop{Vertex: int32(i)}
		}
		return ls
	}

	tests := []struct {
		name  string
		polys []Polygon
		want  [][3]int32
	}{
		{"triangle", []Polygon{{Loops: loops(3)}}, [][3]int32{{0, 1, 2}}},
		{"quad", []Polygon{{Loops: loops(4)}}, [][3]int32{{0, 1, 2}, {0, 2, 3}}},
		{"pentagon", []Polygon{{Loops: loops(5)}}, [][3]int32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}},
		{"degenerate", []Polygon{{Loops: loops(2)}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := FanTriangulator{}.Triangulate(tt.polys)
			if len(tris) != len(tt.want) {
				t.Fatalf("got %d triangles, want %d", len(tris), len(tt.want))
			}
			for i, tri := range tris {
				got := [3]int32{tri.Loops[0].Vertex, tri.Loops[1].Vertex, tri.Loops[2].Vertex}
				if got != tt.want[i] {
					t.Errorf("triangle %d = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestFanTriangulator_KeepsMaterialAndLoopData(t *testing.T) {
	poly := Polygon{Material: 3, Loops: []Loop{
		{Vertex: 0, UV: mgl32.Vec2{0, 0}},
		{Vertex: 1, UV: mgl32.Vec2{1, 0}},
		{Vertex: 2, UV: mgl32.Vec2{1, 1}},
		{Vertex: 3, UV: mgl32.Vec2{0, 1}},
	}}

	tris := FanTriangulator{}.Triangulate([]Polygon{poly})
	for i, tri := range tris {
		if tri.Material != 3 {
			t.Errorf("triangle %d material = %d, want 3", i, tri.Material)
		}
	}
	if tris[1].Loops[2].UV != (mgl32.Vec2{0, 1}) {
		t.Errorf("loop UV not carried: %v", tris[1].Loops[2].UV)
	}
}

func TestPolyMesh_BuildRejectsBadIndex(t *testing.T) {
	pm := &PolyMesh{}
	err := pm.Build([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}, [][3]int32{{0, 1, 2}})
	if !errors.Is(err, ErrInvalidPolygon) {
		t.Errorf("got %v, want ErrInvalidPolygon", err)
	}
	if pm.Positions != nil {
		t.Error("failed Build modified the mesh")
	}
}

func TestPolyMesh_CallsBeforeBuild(t *testing.T) {
	pm := &PolyMesh{}
	if err := pm.SetCustomNormals(nil); !errors.Is(err, ErrMeshNotBuilt) {
		t.Errorf("SetCustomNormals: got %v, want ErrMeshNotBuilt", err)
	}
	if err := pm.SetCornerUVs(nil); !errors.Is(err, ErrMeshNotBuilt) {
		t.Errorf("SetCornerUVs: got %v, want ErrMeshNotBuilt", err)
	}
	if err := pm.SetMaterialIndex(0, 0); err == nil {
		t.Error("SetMaterialIndex on an empty mesh succeeded")
	}
}

func TestPolyMesh_BuilderLengthChecks(t *testing.T) {
	pm := &PolyMesh{}
	if err := pm.Build([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, [][3]int32{{0, 1, 2}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := pm.SetCustomNormals(make([]mgl32.Vec3, 2)); err == nil {
		t.Error("SetCustomNormals accepted a short slice")
	}
	if err := pm.SetCornerUVs(make([][3]mgl32.Vec2, 2)); err == nil {
		t.Error("SetCornerUVs accepted a long slice")
	}
}

func TestPolyMesh_SetCustomNormalsFillsLoops(t *testing.T) {
	pm := &PolyMesh{}
	if err := pm.Build([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, [][3]int32{{0, 1, 2}, {2, 1, 3}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	normals := []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0, 0, -1}}
	if err := pm.SetCustomNormals(normals); err != nil {
		t.Fatalf("SetCustomNormals failed: %v", err)
	}

	for _, p := range pm.Polys {
		for _, l := range p.Loops {
			if l.Normal != normals[l.Vertex] {
				t.Errorf("loop of vertex %d normal = %v, want %v", l.Vertex, l.Normal, normals[l.Vertex])
			}
		}
	}
	if pm.VertexNormal(3) != normals[3] {
		t.Errorf("VertexNormal(3) = %v", pm.VertexNormal(3))
	}
}

func TestPolyMesh_ComputeVertexNormals(t *testing.T) {
	pm := cubeMesh()

	// Every cube corner touches three faces with axis-aligned outward normals.
	for i, p := range pm.Positions {
		want := p.Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Normalize()
		if got := pm.VertexNormal(i); !got.ApproxEqualThreshold(want, 1e-5) {
			t.Errorf("vertex %d normal = %v, want %v", i, got, want)
		}
	}
}

func TestPolyMesh_VertexNormalWithoutStoredNormals(t *testing.T) {
	pm := &PolyMesh{Positions: []mgl32.Vec3{{0, 0, 0}}}
	if n := pm.VertexNormal(0); n != (mgl32.Vec3{}) {
		t.Errorf("VertexNormal = %v, want zero", n)
	}
}

func TestObjectKindString(t *testing.T) {
	tests := map[ObjectKind]string{
		KindMesh:       "Mesh",
		KindCurve:      "Curve",
		KindEmpty:      "Empty",
		ObjectKind(42): "Unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}

package mesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/r3d/pkg/formats"
)

// ObjectsFromOBJ converts every object of an OBJ file into a scene object.
// Vertices are renumbered per object in ascending file order. Materials are
// numbered per object in order of first use; faces without usemtl take
// material 0. Objects with only lines or points become KindCurve.
func ObjectsFromOBJ(o *formats.OBJ) []*Object {
	objects := make([]*Object, 0, len(o.Objects))
	for i := range o.Objects {
		objects = append(objects, objectFromOBJ(o, &o.Objects[i]))
	}
	return objects
}

func objectFromOBJ(o *formats.OBJ, src *formats.OBJObject) *Object {
	obj := &Object{Name: src.Name, Matrix: mgl32.Ident4()}
	switch {
	case len(src.Faces) > 0:
		obj.Kind = KindMesh
	case src.Lines > 0 || src.Points > 0:
		obj.Kind = KindCurve
		return obj
	default:
		obj.Kind = KindEmpty
		return obj
	}

	// Local vertex numbering keeps the file order of the positions used.
	var used []int
	local := make(map[int]int32)
	for _, f := range src.Faces {
		for _, c := range f.Corners {
			if _, ok := local[c.Position]; !ok {
				local[c.Position] = 0
				used = append(used, c.Position)
			}
		}
	}
	sort.Ints(used)

	pm := &PolyMesh{Positions: make([]mgl32.Vec3, len(used))}
	for i, gi := range used {
		local[gi] = int32(i)
		pm.Positions[i] = o.Positions[gi]
	}

	matLocal := make(map[int]int)
	pm.Polys = make([]Polygon, len(src.Faces))
	for fi, f := range src.Faces {
		poly := Polygon{Loops: make([]Loop, len(f.Corners))}
		if f.Material >= 0 {
			idx, ok := matLocal[f.Material]
			if !ok {
				idx = len(pm.Materials)
				matLocal[f.Material] = idx
				pm.Materials = append(pm.Materials, o.Materials[f.Material])
			}
			poly.Material = idx
		}
		for ci, c := range f.Corners {
			l := Loop{Vertex: local[c.Position]}
			if c.TexCoord >= 0 {
				l.UV = o.TexCoords[c.TexCoord]
				pm.UV = true
			}
			if c.Normal >= 0 {
				l.Normal = o.Normals[c.Normal]
			}
			poly.Loops[ci] = l
		}
		pm.Polys[fi] = poly
	}

	// Loops without an authored normal take the face normal.
	for fi, f := range src.Faces {
		var faceNormal mgl32.Vec3
		for ci, c := range f.Corners {
			if c.Normal >= 0 {
				continue
			}
			if faceNormal == (mgl32.Vec3{}) {
				faceNormal = normalizeOrZero(polygonNormal(pm.Positions, pm.Polys[fi]))
			}
			pm.Polys[fi].Loops[ci].Normal = faceNormal
		}
	}

	pm.ComputeVertexNormals()
	obj.Data = pm
	return obj
}

// FindObject returns the object with the given name, or the first object
// when name is empty. It returns nil when nothing matches.
func FindObject(objects []*Object, name string) *Object {
	for _, obj := range objects {
		if name == "" || obj.Name == name {
			return obj
		}
	}
	return nil
}

// ToOBJ converts a mesh object to OBJ with the object's placement applied
// to positions and normals. Texture coordinates are written per corner.
func ToOBJ(obj *Object) *formats.OBJ {
	src := obj.Data
	out := &formats.OBJ{}

	matrix := obj.Matrix
	if matrix == (mgl32.Mat4{}) {
		matrix = mgl32.Ident4()
	}
	normalMatrix := matrix.Mat3().Inv().Transpose()

	n := src.VertexCount()
	out.Positions = make([]mgl32.Vec3, n)
	out.Normals = make([]mgl32.Vec3, n)
	for i := 0; i < n; i++ {
		out.Positions[i] = mgl32.TransformCoordinate(src.Position(i), matrix)
		out.Normals[i] = normalizeOrZero(normalMatrix.Mul3x1(src.VertexNormal(i)))
	}

	out.Materials = materialNames(src)

	o := formats.OBJObject{Name: obj.Name}
	for _, p := range src.Polygons() {
		face := formats.OBJFace{Corners: make([]formats.OBJCorner, len(p.Loops)), Material: -1}
		if len(out.Materials) > 0 {
			face.Material = p.Material
		}
		for ci, l := range p.Loops {
			c := formats.OBJCorner{Position: int(l.Vertex), TexCoord: -1, Normal: int(l.Vertex)}
			if src.HasUV() {
				c.TexCoord = len(out.TexCoords)
				out.TexCoords = append(out.TexCoords, l.UV)
			}
			face.Corners[ci] = c
		}
		o.Faces = append(o.Faces, face)
	}
	out.Objects = []formats.OBJObject{o}
	return out
}

func materialNames(src Source) []string {
	names := make([]string, src.MaterialCount())
	named, ok := src.(interface{ MaterialName(i int) string })
	for i := range names {
		if ok {
			names[i] = named.MaterialName(i)
		} else {
			names[i] = formats.MaterialName(int32(i + 1))
		}
	}
	return names
}

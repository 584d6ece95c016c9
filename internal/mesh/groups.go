package mesh

import "github.com/Faultbox/r3d/pkg/formats"

// groupTriangles buckets triangles by material into max(1, materialCount)
// groups and concatenates them in ascending group order. Material indices
// outside the valid range are clamped to the nearest group.
func groupTriangles(tris []Triangle, materialCount int) ([]formats.R3DTriangle, []formats.R3DMaterialGroup) {
	numGroups := max(1, materialCount)
	buckets := make([][]formats.R3DTriangle, numGroups)

	for _, t := range tris {
		g := min(max(t.Material, 0), numGroups-1)
		buckets[g] = append(buckets[g], formats.R3DTriangle{t.Loops[0].Vertex, t.Loops[1].Vertex, t.Loops[2].Vertex})
	}

	out := make([]formats.R3DTriangle, 0, len(tris))
	groups := make([]formats.R3DMaterialGroup, numGroups)
	for i, b := range buckets {
		groups[i] = formats.R3DMaterialGroup{
			MaterialID: int32(i + 1),
			StartFace:  int32(len(out)),
			FaceCount:  int32(len(b)),
		}
		out = append(out, b...)
	}
	return out, groups
}

package mesh

import "github.com/go-gl/mathgl/mgl32"

// collectVertexUVs keeps the first UV seen for every vertex and returns the
// vertices whose loops disagree on it. Vertices without loops get the zero UV.
func collectVertexUVs(src Source) (uvs []mgl32.Vec2, split []int32) {
	n := src.VertexCount()
	uvs = make([]mgl32.Vec2, n)
	seen := make([]bool, n)
	conflict := make([]bool, n)

	for _, poly := range src.Polygons() {
		for _, l := range poly.Loops {
			vi := l.Vertex
			switch {
			case !seen[vi]:
				uvs[vi] = l.UV
				seen[vi] = true
			case uvs[vi] != l.UV && !conflict[vi]:
				conflict[vi] = true
				split = append(split, vi)
			}
		}
	}
	return uvs, split
}

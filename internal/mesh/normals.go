package mesh

import "github.com/go-gl/mathgl/mgl32"

// vertexNormals produces one normal per vertex according to mode.
func vertexNormals(src Source, mode NormalMode, zero ZeroNormalPolicy) []mgl32.Vec3 {
	if mode == NormalsStoredVertex {
		normals := make([]mgl32.Vec3, src.VertexCount())
		for i := range normals {
			normals[i] = src.VertexNormal(i)
		}
		return normals
	}
	return averagedLoopNormals(src, zero)
}

// averagedLoopNormals sums the loop normals touching each vertex and
// normalizes the sum. A zero sum is resolved by the zero policy.
func averagedLoopNormals(src Source, zero ZeroNormalPolicy) []mgl32.Vec3 {
	n := src.VertexCount()
	sums := make([]mgl32.Vec3, n)
	first := make([]mgl32.Vec3, n)
	seen := make([]bool, n)

	for _, poly := range src.Polygons() {
		for _, l := range poly.Loops {
			sums[l.Vertex] = sums[l.Vertex].Add(l.Normal)
			if !seen[l.Vertex] {
				first[l.Vertex] = l.Normal
				seen[l.Vertex] = true
			}
		}
	}

	for i, s := range sums {
		if l := s.Len(); l > 1e-12 {
			sums[i] = s.Mul(1 / l)
			continue
		}
		if zero == ZeroNormalFirstLoop {
			sums[i] = normalizeOrZero(first[i])
		} else {
			sums[i] = mgl32.Vec3{}
		}
	}
	return sums
}

// normalizeOrZero is Vec3.Normalize without the NaN on zero-length input.
func normalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

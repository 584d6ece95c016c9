package mesh

// Triangle is a triangulated face: three loops in winding order and the
// material of the polygon it came from.
type Triangle struct {
	Loops    [3]Loop
	Material int
}

// Triangulator reduces polygons to triangles. Implementations must keep the
// polygon winding and carry the polygon material onto each triangle.
type Triangulator interface {
	Triangulate(polys []Polygon) []Triangle
}

// FanTriangulator splits every polygon into a fan around its first loop.
// It is exact for convex polygons.
type FanTriangulator struct{}

// Triangulate implements Triangulator.
func (FanTriangulator) Triangulate(polys []Polygon) []Triangle {
	n := 0
	for _, p := range polys {
		if len(p.Loops) >= 3 {
			n += len(p.Loops) - 2
		}
	}

	tris := make([]Triangle, 0, n)
	for _, p := range polys {
		for j := 1; j+1 < len(p.Loops); j++ {
			tris = append(tris, Triangle{
				Loops:    [3]Loop{p.Loops[0], p.Loops[j], p.Loops[j+1]},
				Material: p.Material,
			})
		}
	}
	return tris
}

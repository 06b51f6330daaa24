package orthogonal

import (
	"math"

	"github.com/notargets/OrthoBoundary/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// cancelTolerance is the smallest normal sum length, per incident face, that
// still defines a direction. Shorter sums are rounding noise of faces that
// cancel
const cancelTolerance = 1.e-12

// EstimateNormal averages the unit normals of the region faces incident to
// local vertex index local and normalises the sum
func EstimateNormal(r *mesh.Region, local int) (r3.Vec, error) {
	normals := r.IncidentNormals(local)

	var sum r3.Vec
	for _, n := range normals {
		sum = r3.Add(sum, n)
	}
	norm := r3.Norm(sum)
	if norm <= cancelTolerance*float64(len(normals)) || math.IsNaN(norm) || math.IsInf(norm, 0) {
		vertex := -1
		if local >= 0 && local < len(r.MeshPoints) {
			vertex = r.MeshPoints[local]
		}
		return r3.Vec{}, &DegenerateNormalError{Region: r.Name, Vertex: vertex, Faces: len(normals)}
	}
	return r3.Scale(1/norm, sum), nil
}

// FindAnchor returns the first vertex adjacent to v, in connectivity order,
// that is not on the physical boundary
func FindAnchor(m *mesh.Mesh, v int, onBoundary *mesh.VertexSet) (int, bool) {
	for _, w := range m.AdjacentVertices(v) {
		if !onBoundary.Contains(w) {
			return w, true
		}
	}
	return -1, false
}

// Project removes the component of p-anchor perpendicular to the unit
// normal n, so the returned point lies on the line through anchor along n
//
//	d        = p - anchor
//	movement = d - (d·n) n
//	p'       = p - movement = anchor + (d·n) n
func Project(p, anchor, n r3.Vec) r3.Vec {
	d := r3.Sub(p, anchor)
	movement := r3.Sub(d, r3.Scale(r3.Dot(d, n), n))
	return r3.Sub(p, movement)
}

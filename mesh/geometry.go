package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// GeometryType identifies the shape of a cell
type GeometryType uint8

const (
	Tet     GeometryType = iota // Tetrahedron
	Hex                         // Hexahedron
	Prism                       // Triangular prism
	Pyramid                     // Square-based pyramid
)

func (g GeometryType) String() string {
	switch g {
	case Tet:
		return "Tet"
	case Hex:
		return "Hex"
	case Prism:
		return "Prism"
	case Pyramid:
		return "Pyramid"
	}
	return fmt.Sprintf("GeometryType(%d)", uint8(g))
}

// NumVertices returns the number of defining vertices of the shape
func (g GeometryType) NumVertices() int {
	switch g {
	case Tet:
		return 4
	case Hex:
		return 8
	case Prism:
		return 6
	case Pyramid:
		return 5
	}
	return 0
}

// Faces returns the local vertex indices of each face, in Gambit face order.
// Vertex ordering within the cell follows the Gambit neutral convention:
//
//	Hex:     0=(0,0,0) 1=(1,0,0) 2=(0,1,0) 3=(1,1,0) then 4..7 at z=1
//	Prism:   0,1,2 bottom triangle, 3,4,5 top triangle
//	Pyramid: 0..3 base ordered as the bottom of a Hex, 4 apex
func (g GeometryType) Faces() [][]int {
	return cellFaces[g]
}

var cellFaces = map[GeometryType][][]int{
	Tet: {
		{1, 0, 2},
		{0, 1, 3},
		{1, 2, 3},
		{2, 0, 3},
	},
	Hex: {
		{0, 1, 5, 4},
		{1, 3, 7, 5},
		{3, 2, 6, 7},
		{2, 0, 4, 6},
		{1, 0, 2, 3},
		{4, 5, 7, 6},
	},
	Prism: {
		{0, 1, 4, 3},
		{1, 2, 5, 4},
		{2, 0, 3, 5},
		{0, 2, 1},
		{3, 4, 5},
	},
	Pyramid: {
		{0, 2, 3, 1},
		{0, 1, 4},
		{1, 3, 4},
		{3, 2, 4},
		{2, 0, 4},
	},
}

// Cell is a volume element referencing global vertex indices
type Cell struct {
	Type     GeometryType
	Vertices []int
}

// FaceVertices returns the global vertex indices of local face f
func (c Cell) FaceVertices(f int) []int {
	local := c.Type.Faces()[f]
	verts := make([]int, len(local))
	for i, lv := range local {
		verts[i] = c.Vertices[lv]
	}
	return verts
}

func centroid(pts []r3.Vec, ids []int) r3.Vec {
	var sum r3.Vec
	for _, id := range ids {
		sum = r3.Add(sum, pts[id])
	}
	return r3.Scale(1/float64(len(ids)), sum)
}

// polygonNormal computes the unit normal of a (possibly non-planar) polygon
// with Newell's method, oriented away from the point inside
func polygonNormal(pts []r3.Vec, ids []int, inside r3.Vec) (r3.Vec, error) {
	fc := centroid(pts, ids)
	var sum r3.Vec
	for i := range ids {
		p := r3.Sub(pts[ids[i]], fc)
		q := r3.Sub(pts[ids[(i+1)%len(ids)]], fc)
		sum = r3.Add(sum, r3.Cross(p, q))
	}
	norm := r3.Norm(sum)
	if norm == 0 {
		return r3.Vec{}, fmt.Errorf("face %v has zero area", ids)
	}
	n := r3.Scale(1/norm, sum)
	if r3.Dot(n, r3.Sub(fc, inside)) < 0 {
		n = r3.Scale(-1, n)
	}
	return n, nil
}

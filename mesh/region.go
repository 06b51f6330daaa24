package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// FaceRef identifies a cell face by cell index and local face index (0-based)
type FaceRef struct {
	Cell int
	Face int
}

// Boundary describes a region before connectivity is built
type Boundary struct {
	Name  string
	Kind  Kind
	Codes []int // Format specific boundary codes, carried through on write
	Faces []FaceRef
}

// Region is a named group of boundary faces ("patch")
type Region struct {
	Name  string
	Kind  Kind
	Codes []int

	Faces []FaceRef

	// MeshPoints are the global vertex indices touched by the region, in
	// order of first appearance over Faces
	MeshPoints []int

	// FaceNormals holds the unit outward normal of each face in Faces
	FaceNormals []r3.Vec

	// PointFaces lists, per local vertex index, the faces incident to it
	PointFaces [][]int

	localIndex map[int]int // global vertex → local vertex
}

func newRegion(m *Mesh, b Boundary) (*Region, error) {
	r := &Region{
		Name:        b.Name,
		Kind:        b.Kind,
		Codes:       b.Codes,
		Faces:       make([]FaceRef, 0, len(b.Faces)),
		FaceNormals: make([]r3.Vec, 0, len(b.Faces)),
		localIndex:  make(map[int]int),
	}

	for fi, ref := range b.Faces {
		if ref.Cell < 0 || ref.Cell >= len(m.Cells) {
			return nil, fmt.Errorf("region %s: face %d references cell %d, mesh has %d cells",
				b.Name, fi, ref.Cell, len(m.Cells))
		}
		cell := m.Cells[ref.Cell]
		if ref.Face < 0 || ref.Face >= len(cell.Type.Faces()) {
			return nil, fmt.Errorf("region %s: face %d references face %d of a %v cell",
				b.Name, fi, ref.Face, cell.Type)
		}

		verts := cell.FaceVertices(ref.Face)
		n, err := polygonNormal(m.Vertices, verts, centroid(m.Vertices, cell.Vertices))
		if err != nil {
			return nil, fmt.Errorf("region %s, cell %d: %w", b.Name, ref.Cell, err)
		}
		r.Faces = append(r.Faces, ref)
		r.FaceNormals = append(r.FaceNormals, n)

		for _, v := range verts {
			local, ok := r.localIndex[v]
			if !ok {
				local = len(r.MeshPoints)
				r.localIndex[v] = local
				r.MeshPoints = append(r.MeshPoints, v)
				r.PointFaces = append(r.PointFaces, nil)
			}
			r.PointFaces[local] = append(r.PointFaces[local], fi)
		}
	}

	return r, nil
}

// WhichPoint returns the local index of global vertex v in this region
func (r *Region) WhichPoint(v int) (int, bool) {
	local, ok := r.localIndex[v]
	return local, ok
}

// IncidentNormals returns the unit normals of the region faces that touch
// local vertex index local
func (r *Region) IncidentNormals(local int) []r3.Vec {
	if local < 0 || local >= len(r.PointFaces) {
		return nil
	}
	normals := make([]r3.Vec, len(r.PointFaces[local]))
	for i, f := range r.PointFaces[local] {
		normals[i] = r.FaceNormals[f]
	}
	return normals
}

// NumPoints returns the number of vertices touched by the region
func (r *Region) NumPoints() int {
	return len(r.MeshPoints)
}

func (r *Region) boundary() Boundary {
	return Boundary{
		Name:  r.Name,
		Kind:  r.Kind,
		Codes: r.Codes,
		Faces: r.Faces,
	}
}

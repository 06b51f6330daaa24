package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Block region names, one per bounding plane
const (
	BlockXMin = "xmin"
	BlockXMax = "xmax"
	BlockYMin = "ymin"
	BlockYMax = "ymax"
	BlockZMin = "zmin"
	BlockZMax = "zmax"
)

// BlockVertex returns the vertex index of lattice point (i, j, k) in a block
// built with NewBlock(nx, ny, nz, ...)
func BlockVertex(nx, ny, i, j, k int) int {
	return i + (nx+1)*(j+(ny+1)*k)
}

// NewBlock builds a structured hexahedral block of nx*ny*nz cells spanning
// lo..hi, with one region per bounding plane
func NewBlock(nx, ny, nz int, lo, hi r3.Vec) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("invalid block dimensions: nx=%d, ny=%d, nz=%d", nx, ny, nz)
	}
	span := r3.Sub(hi, lo)
	if span.X <= 0 || span.Y <= 0 || span.Z <= 0 {
		return nil, fmt.Errorf("block extent %v..%v is empty", lo, hi)
	}

	verts := make([]r3.Vec, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				verts[BlockVertex(nx, ny, i, j, k)] = r3.Vec{
					X: lo.X + span.X*float64(i)/float64(nx),
					Y: lo.Y + span.Y*float64(j)/float64(ny),
					Z: lo.Z + span.Z*float64(k)/float64(nz),
				}
			}
		}
	}

	// Gambit hex face numbering: 0 y-, 1 x+, 2 y+, 3 x-, 4 z-, 5 z+
	faces := map[string][]FaceRef{}
	cells := make([]Cell, 0, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				cell := len(cells)
				cells = append(cells, Cell{
					Type: Hex,
					Vertices: []int{
						BlockVertex(nx, ny, i, j, k),
						BlockVertex(nx, ny, i+1, j, k),
						BlockVertex(nx, ny, i, j+1, k),
						BlockVertex(nx, ny, i+1, j+1, k),
						BlockVertex(nx, ny, i, j, k+1),
						BlockVertex(nx, ny, i+1, j, k+1),
						BlockVertex(nx, ny, i, j+1, k+1),
						BlockVertex(nx, ny, i+1, j+1, k+1),
					},
				})
				if j == 0 {
					faces[BlockYMin] = append(faces[BlockYMin], FaceRef{cell, 0})
				}
				if i == nx-1 {
					faces[BlockXMax] = append(faces[BlockXMax], FaceRef{cell, 1})
				}
				if j == ny-1 {
					faces[BlockYMax] = append(faces[BlockYMax], FaceRef{cell, 2})
				}
				if i == 0 {
					faces[BlockXMin] = append(faces[BlockXMin], FaceRef{cell, 3})
				}
				if k == 0 {
					faces[BlockZMin] = append(faces[BlockZMin], FaceRef{cell, 4})
				}
				if k == nz-1 {
					faces[BlockZMax] = append(faces[BlockZMax], FaceRef{cell, 5})
				}
			}
		}
	}

	names := []string{BlockXMin, BlockXMax, BlockYMin, BlockYMax, BlockZMin, BlockZMax}
	boundaries := make([]Boundary, len(names))
	for i, name := range names {
		boundaries[i] = Boundary{Name: name, Kind: ParseKind(name), Faces: faces[name]}
	}

	m, err := NewMesh(verts, cells, boundaries)
	if err != nil {
		return nil, err
	}
	m.Title = fmt.Sprintf("block %dx%dx%d", nx, ny, nz)
	m.Zones = []Zone{{Name: "fluid", Material: 2, Flags: []int{0}, Cells: seq(len(cells))}}
	return m, nil
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

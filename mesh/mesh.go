package mesh

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Zone is a named group of cells (a Gambit element group)
type Zone struct {
	Name     string
	Material int
	Flags    []int
	Cells    []int
}

// PointSet holds node based boundary data that does not form a region
type PointSet struct {
	Name   string
	Codes  []int
	Points []int
	Values [][]float64
}

// Mesh is a volume mesh with named boundary regions and vertex connectivity
type Mesh struct {
	Title     string
	Vertices  []r3.Vec
	Cells     []Cell
	Regions   []*Region
	Zones     []Zone
	PointSets []PointSet

	// adjacency lists, per vertex, the vertices sharing a cell edge with it,
	// in order of first encounter scanning cells, faces and face edges
	adjacency [][]int
}

// NewMesh builds vertex connectivity and region data from raw cells and
// boundary face lists
func NewMesh(vertices []r3.Vec, cells []Cell, boundaries []Boundary) (*Mesh, error) {
	m := &Mesh{
		Vertices: vertices,
		Cells:    cells,
	}

	for k, c := range cells {
		if nv := c.Type.NumVertices(); nv == 0 || len(c.Vertices) != nv {
			return nil, fmt.Errorf("cell %d: %v needs %d vertices, got %d",
				k, c.Type, c.Type.NumVertices(), len(c.Vertices))
		}
		for _, v := range c.Vertices {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("cell %d references vertex %d, mesh has %d vertices",
					k, v, len(vertices))
			}
		}
	}

	m.buildAdjacency()

	seen := make(map[string]bool, len(boundaries))
	m.Regions = make([]*Region, 0, len(boundaries))
	for _, b := range boundaries {
		if seen[b.Name] {
			return nil, fmt.Errorf("duplicate region name %q", b.Name)
		}
		seen[b.Name] = true
		r, err := newRegion(m, b)
		if err != nil {
			return nil, err
		}
		m.Regions = append(m.Regions, r)
	}

	return m, nil
}

func (m *Mesh) buildAdjacency() {
	m.adjacency = make([][]int, len(m.Vertices))
	link := func(a, b int) {
		for _, existing := range m.adjacency[a] {
			if existing == b {
				return
			}
		}
		m.adjacency[a] = append(m.adjacency[a], b)
	}
	for _, c := range m.Cells {
		for f := range c.Type.Faces() {
			verts := c.FaceVertices(f)
			for i := range verts {
				a, b := verts[i], verts[(i+1)%len(verts)]
				link(a, b)
				link(b, a)
			}
		}
	}
}

// NumVertices returns the number of mesh vertices
func (m *Mesh) NumVertices() int {
	return len(m.Vertices)
}

// Position returns the position of vertex v
func (m *Mesh) Position(v int) r3.Vec {
	return m.Vertices[v]
}

// AdjacentVertices returns the vertices directly connected to v by a cell edge.
// The order is connectivity order and is not sorted
func (m *Mesh) AdjacentVertices(v int) []int {
	if v < 0 || v >= len(m.adjacency) {
		return nil
	}
	return m.adjacency[v]
}

// RegionNames returns region names in region order
func (m *Mesh) RegionNames() []string {
	names := make([]string, len(m.Regions))
	for i, r := range m.Regions {
		names[i] = r.Name
	}
	return names
}

// Region looks a region up by exact name
func (m *Mesh) Region(name string) (*Region, bool) {
	for _, r := range m.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// ApplyKinds overrides region kinds by exact region name
func (m *Mesh) ApplyKinds(kinds map[string]Kind) error {
	var missing []string
	for name, k := range kinds {
		r, ok := m.Region(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		r.Kind = k
	}
	if len(missing) > 0 {
		return fmt.Errorf("kind override for unknown region(s) %s, valid regions are %v",
			strings.Join(missing, ", "), m.RegionNames())
	}
	return nil
}

// WithPositions returns a copy of the mesh with all vertex positions replaced.
// Region normals are recomputed from the new positions
func (m *Mesh) WithPositions(positions []r3.Vec) (*Mesh, error) {
	if len(positions) != len(m.Vertices) {
		return nil, fmt.Errorf("position array has %d entries, mesh has %d vertices",
			len(positions), len(m.Vertices))
	}
	verts := make([]r3.Vec, len(positions))
	copy(verts, positions)

	boundaries := make([]Boundary, len(m.Regions))
	for i, r := range m.Regions {
		boundaries[i] = r.boundary()
	}
	out, err := NewMesh(verts, m.Cells, boundaries)
	if err != nil {
		return nil, err
	}
	out.Title = m.Title
	out.Zones = m.Zones
	out.PointSets = m.PointSets
	return out, nil
}

package orthogonal

import (
	"github.com/notargets/OrthoBoundary/mesh"
)

// Classification holds the regions selected by the include and exclude lists,
// as region indices in mesh region order
type Classification struct {
	Included []int
	Excluded []int
}

// Classify resolves the include and exclude pattern lists against the mesh
// region names. Only names are read; either list matching nothing is a
// ConfigurationError
func Classify(m *mesh.Mesh, included, excluded []string) (Classification, error) {
	var (
		cls Classification
		err error
	)
	if cls.Included, err = resolve(m, "include", included); err != nil {
		return Classification{}, err
	}
	if cls.Excluded, err = resolve(m, "exclude", excluded); err != nil {
		return Classification{}, err
	}
	return cls, nil
}

func resolve(m *mesh.Mesh, list string, patterns []string) ([]int, error) {
	ids, err := m.ResolveRegions(patterns)
	if err != nil {
		return nil, &ConfigurationError{List: list, Patterns: patterns, Valid: m.RegionNames(), Err: err}
	}
	if len(ids) == 0 {
		return nil, &ConfigurationError{List: list, Patterns: patterns, Valid: m.RegionNames()}
	}
	return ids, nil
}

// Markers are the vertex sets computed once per pass from the original mesh
type Markers struct {
	// OnBoundary holds vertices of every region with a physical kind;
	// periodic, symmetry, degenerate and interface regions do not contribute
	OnBoundary *mesh.VertexSet

	// OnExclude holds vertices of every excluded region, whatever its kind
	OnExclude *mesh.VertexSet
}

// MarkVertices builds the boundary and exclusion vertex sets
func MarkVertices(m *mesh.Mesh, excluded []int) Markers {
	var boundary, exclude [][]int
	for _, r := range m.Regions {
		if !r.Kind.IsPhysical() {
			continue
		}
		boundary = append(boundary, r.MeshPoints)
	}
	for _, ri := range excluded {
		exclude = append(exclude, m.Regions[ri].MeshPoints)
	}
	return Markers{
		OnBoundary: mesh.NewVertexSet(m.NumVertices(), boundary...),
		OnExclude:  mesh.NewVertexSet(m.NumVertices(), exclude...),
	}
}

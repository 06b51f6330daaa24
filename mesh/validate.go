package mesh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type faceSignature struct {
	cell  int
	face  int
	count int
}

// faceKey builds a canonical signature from sorted face vertex ids
func faceKey(verts []int) string {
	v := append([]int(nil), verts...)
	sort.Ints(v)
	parts := make([]string, len(v))
	for i, id := range v {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "-")
}

// Validate checks that every region face lies on the exterior of the mesh,
// i.e. no other cell shares it, and that no face belongs to two regions
func (m *Mesh) Validate() error {
	faceMap := make(map[string]*faceSignature)
	for k, c := range m.Cells {
		for f := range c.Type.Faces() {
			key := faceKey(c.FaceVertices(f))
			if existing, found := faceMap[key]; found {
				existing.count++
			} else {
				faceMap[key] = &faceSignature{cell: k, face: f, count: 1}
			}
		}
	}

	owner := make(map[string]string)
	for _, r := range m.Regions {
		for _, ref := range r.Faces {
			key := faceKey(m.Cells[ref.Cell].FaceVertices(ref.Face))
			sig := faceMap[key]
			if sig.count > 1 {
				return fmt.Errorf("region %s: face %d of cell %d is shared by %d cells",
					r.Name, ref.Face, ref.Cell, sig.count)
			}
			if other, dup := owner[key]; dup {
				return fmt.Errorf("face %d of cell %d is in both region %s and region %s",
					ref.Face, ref.Cell, other, r.Name)
			}
			owner[key] = r.Name
		}
	}

	// Adjacency must be symmetric
	for a, nbrs := range m.adjacency {
		for _, b := range nbrs {
			if !contains(m.adjacency[b], a) {
				return fmt.Errorf("adjacency of vertex %d lists %d but not the reverse", a, b)
			}
		}
	}
	return nil
}

// UncoveredFaces returns the number of exterior faces not assigned to any region
func (m *Mesh) UncoveredFaces() int {
	counts := make(map[string]int)
	for _, c := range m.Cells {
		for f := range c.Type.Faces() {
			counts[faceKey(c.FaceVertices(f))]++
		}
	}
	for _, r := range m.Regions {
		for _, ref := range r.Faces {
			delete(counts, faceKey(m.Cells[ref.Cell].FaceVertices(ref.Face)))
		}
	}
	n := 0
	for _, c := range counts {
		if c == 1 {
			n++
		}
	}
	return n
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestBlock(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewBlock(2, 2, 2, r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2})
	require.NoError(t, err)
	return m
}

func TestNewBlock(t *testing.T) {
	m := newTestBlock(t)

	assert.Equal(t, 27, m.NumVertices())
	assert.Len(t, m.Cells, 8)
	assert.Equal(t, []string{"xmin", "xmax", "ymin", "ymax", "zmin", "zmax"}, m.RegionNames())
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, m.Position(BlockVertex(2, 2, 1, 1, 1)))
	require.NoError(t, m.Validate())
	assert.Equal(t, 0, m.UncoveredFaces())

	_, err := NewBlock(0, 1, 1, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	assert.Error(t, err)
	_, err = NewBlock(1, 1, 1, r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 1})
	assert.Error(t, err)
}

func TestAdjacency(t *testing.T) {
	m := newTestBlock(t)

	// Corner vertex: connectivity order follows cell face edges
	assert.Equal(t, []int{1, 9, 3}, m.AdjacentVertices(0))

	center := BlockVertex(2, 2, 1, 1, 1)
	assert.ElementsMatch(t, []int{
		BlockVertex(2, 2, 0, 1, 1), BlockVertex(2, 2, 2, 1, 1),
		BlockVertex(2, 2, 1, 0, 1), BlockVertex(2, 2, 1, 2, 1),
		BlockVertex(2, 2, 1, 1, 0), BlockVertex(2, 2, 1, 1, 2),
	}, m.AdjacentVertices(center))

	for a := 0; a < m.NumVertices(); a++ {
		for _, b := range m.AdjacentVertices(a) {
			assert.Contains(t, m.AdjacentVertices(b), a, "adjacency %d-%d not symmetric", a, b)
		}
	}
	assert.Nil(t, m.AdjacentVertices(-1))
	assert.Nil(t, m.AdjacentVertices(m.NumVertices()))
}

func TestRegionData(t *testing.T) {
	m := newTestBlock(t)

	tests := []struct {
		name   string
		normal r3.Vec
	}{
		{BlockXMin, r3.Vec{X: -1}},
		{BlockXMax, r3.Vec{X: 1}},
		{BlockYMin, r3.Vec{Y: -1}},
		{BlockYMax, r3.Vec{Y: 1}},
		{BlockZMin, r3.Vec{Z: -1}},
		{BlockZMax, r3.Vec{Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := m.Region(tt.name)
			require.True(t, ok)
			assert.Equal(t, Ordinary, r.Kind)
			assert.Len(t, r.Faces, 4)
			assert.Equal(t, 9, r.NumPoints())
			for _, n := range r.FaceNormals {
				assert.InDelta(t, tt.normal.X, n.X, 1.e-12)
				assert.InDelta(t, tt.normal.Y, n.Y, 1.e-12)
				assert.InDelta(t, tt.normal.Z, n.Z, 1.e-12)
			}
			// The middle point of each plane touches all four faces
			counts := map[int]int{}
			for local := range r.MeshPoints {
				counts[len(r.IncidentNormals(local))]++
			}
			assert.Equal(t, map[int]int{1: 4, 2: 4, 4: 1}, counts)
		})
	}
}

func TestWhichPoint(t *testing.T) {
	m := newTestBlock(t)
	r, _ := m.Region(BlockYMin)

	for local, v := range r.MeshPoints {
		got, ok := r.WhichPoint(v)
		require.True(t, ok)
		assert.Equal(t, local, got)
	}
	_, ok := r.WhichPoint(BlockVertex(2, 2, 1, 1, 1))
	assert.False(t, ok)
	assert.Nil(t, r.IncidentNormals(-1))
	assert.Nil(t, r.IncidentNormals(r.NumPoints()))
}

func TestNewMeshErrors(t *testing.T) {
	verts := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	tet := Cell{Type: Tet, Vertices: []int{0, 1, 2, 3}}

	_, err := NewMesh(verts, []Cell{{Type: Tet, Vertices: []int{0, 1, 2}}}, nil)
	assert.Error(t, err)

	_, err = NewMesh(verts, []Cell{{Type: Tet, Vertices: []int{0, 1, 2, 7}}}, nil)
	assert.Error(t, err)

	_, err = NewMesh(verts, []Cell{tet}, []Boundary{{Name: "a", Faces: []FaceRef{{Cell: 1}}}})
	assert.Error(t, err)

	_, err = NewMesh(verts, []Cell{tet}, []Boundary{{Name: "a", Faces: []FaceRef{{Face: 4}}}})
	assert.Error(t, err)

	_, err = NewMesh(verts, []Cell{tet}, []Boundary{{Name: "a"}, {Name: "a"}})
	assert.ErrorContains(t, err, "duplicate")

	flat := []r3.Vec{{}, {X: 1}, {X: 2}, {Z: 1}}
	_, err = NewMesh(flat, []Cell{tet}, []Boundary{{Name: "a", Faces: []FaceRef{{Face: 0}}}})
	assert.ErrorContains(t, err, "zero area")
}

func TestTetNormalsPointOutward(t *testing.T) {
	verts := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	tet := Cell{Type: Tet, Vertices: []int{0, 1, 2, 3}}
	faces := []FaceRef{{Face: 0}, {Face: 1}, {Face: 2}, {Face: 3}}
	m, err := NewMesh(verts, []Cell{tet}, []Boundary{{Name: "all", Faces: faces}})
	require.NoError(t, err)

	r, _ := m.Region("all")
	c := centroid(verts, tet.Vertices)
	for i, ref := range r.Faces {
		fc := centroid(verts, tet.FaceVertices(ref.Face))
		assert.Greater(t, r3.Dot(r.FaceNormals[i], r3.Sub(fc, c)), 0.)
		assert.InDelta(t, 1., r3.Norm(r.FaceNormals[i]), 1.e-12)
	}
	assert.Equal(t, r3.Vec{Z: -1}, r.FaceNormals[0])
	assert.Len(t, m.AdjacentVertices(0), 3)
	require.NoError(t, m.Validate())
}

func TestWithPositions(t *testing.T) {
	m := newTestBlock(t)
	m.Regions[0].Kind = Degenerate

	pos := make([]r3.Vec, m.NumVertices())
	for i, v := range m.Vertices {
		pos[i] = r3.Scale(2, v)
	}
	out, err := m.WithPositions(pos)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 4, Y: 4, Z: 4}, out.Position(26))
	assert.Equal(t, r3.Vec{X: 2, Y: 2, Z: 2}, m.Position(26), "source mesh must not change")
	assert.Equal(t, Degenerate, out.Regions[0].Kind)
	assert.Equal(t, m.Zones, out.Zones)

	pos[0] = r3.Vec{X: 99}
	assert.NotEqual(t, pos[0], out.Position(0), "positions must be copied")

	_, err = m.WithPositions(pos[:3])
	assert.Error(t, err)
}

func TestApplyKinds(t *testing.T) {
	m := newTestBlock(t)
	require.NoError(t, m.ApplyKinds(map[string]Kind{BlockZMin: Degenerate, BlockZMax: Degenerate}))
	r, _ := m.Region(BlockZMin)
	assert.Equal(t, Degenerate, r.Kind)

	err := m.ApplyKinds(map[string]Kind{"nope": Symmetry})
	assert.ErrorContains(t, err, "nope")
}

func TestValidateRejectsInteriorFace(t *testing.T) {
	m, err := NewBlock(2, 1, 1, r3.Vec{}, r3.Vec{X: 2, Y: 1, Z: 1})
	require.NoError(t, err)
	// Face 1 (x+) of cell 0 is shared with cell 1
	bad, err := NewMesh(m.Vertices, m.Cells, []Boundary{{Name: "inner", Faces: []FaceRef{{Cell: 0, Face: 1}}}})
	require.NoError(t, err)
	assert.ErrorContains(t, bad.Validate(), "shared by 2 cells")

	dup, err := NewMesh(m.Vertices, m.Cells, []Boundary{
		{Name: "a", Faces: []FaceRef{{Cell: 0, Face: 0}}},
		{Name: "b", Faces: []FaceRef{{Cell: 0, Face: 0}}},
	})
	require.NoError(t, err)
	assert.ErrorContains(t, dup.Validate(), "in both region")
	assert.Equal(t, 9, dup.UncoveredFaces())
}

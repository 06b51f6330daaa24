package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/OrthoBoundary/casestore"
	"github.com/notargets/OrthoBoundary/config"
	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/notargets/OrthoBoundary/orthogonal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"wall", []string{"wall"}},
		{"(wall inlet)", []string{"wall", "inlet"}},
		{"( wall,inlet , outlet )", []string{"wall", "inlet", "outlet"}},
		{`(wall "inlet.*")`, []string{"wall", `"inlet.*"`}},
		{`("side wall")`, []string{`"side wall"`}},
		{"()", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseList(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"(wall", `(wall "inlet)`} {
		_, err := ParseList(bad)
		assert.Error(t, err, bad)
	}
}

// perturbedCase writes a 2x2x2 block whose middle ymin vertex has been
// dragged along the wall
func perturbedCase(t *testing.T) (string, int) {
	t.Helper()
	m, err := mesh.NewBlock(2, 2, 2, r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2})
	require.NoError(t, err)
	v := mesh.BlockVertex(2, 2, 1, 0, 1)
	pos := append([]r3.Vec(nil), m.Vertices...)
	pos[v] = r3.Vec{X: 1.3, Z: 0.8}
	m, err = m.WithPositions(pos)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "case")
	_, err = casestore.Create(dir, m, false, nil)
	require.NoError(t, err)
	return dir, v
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunWritesNewSnapshot(t *testing.T) {
	dir, v := perturbedCase(t)

	out, logs, err := run(t, "-c", dir, "(ymin)", "(zmax)")
	require.NoError(t, err)
	assert.Contains(t, out, "Corrected:        1")
	assert.Contains(t, out, "excluded=3 no-anchor=5 degenerate=0")
	assert.Contains(t, out, "snapshot 1")
	assert.Contains(t, logs, "Adjusting points on region")

	s, err := casestore.Open(dir, nil)
	require.NoError(t, err)
	m, snap, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "orthboundary (ymin) (zmax)", snap.Manifest.Command)
	assert.InDelta(t, 1, m.Vertices[v].X, 1.e-12)
	assert.InDelta(t, 0, m.Vertices[v].Y, 1.e-12)
	assert.InDelta(t, 1, m.Vertices[v].Z, 1.e-12)
}

func TestRunDryRun(t *testing.T) {
	dir, _ := perturbedCase(t)

	out, _, err := run(t, "--case", dir, "--dry-run", "ymin", "zmax")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing (dry run)")

	s, err := casestore.Open(dir, nil)
	require.NoError(t, err)
	snaps, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, snaps)
}

func TestRunOverwrite(t *testing.T) {
	dir, v := perturbedCase(t)

	_, _, err := run(t, "-c", dir, "--overwrite", `("y.*")`, "zmax")
	require.NoError(t, err)

	s, err := casestore.Open(dir, nil)
	require.NoError(t, err)
	m, snap, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Index)
	assert.InDelta(t, 1, m.Vertices[v].X, 1.e-12)
}

func TestRunConfigurationError(t *testing.T) {
	dir, _ := perturbedCase(t)

	_, _, err := run(t, "-c", dir, "(inlet)", "(zmax)")
	require.Error(t, err)
	assert.ErrorIs(t, err, orthogonal.ErrConfiguration)
	assert.Contains(t, err.Error(), "valid regions are (xmin xmax ymin ymax zmin zmax)")

	_, _, err = run(t, "-c", dir, "ymin")
	assert.Error(t, err)
}

func TestRunUsesConfig(t *testing.T) {
	dir, v := perturbedCase(t)
	cfg := config.Default()
	cfg.RegionKinds[mesh.BlockZMin] = mesh.Degenerate
	cfg.Snapshot.Compress = true
	cfg.Log.File = filepath.Join(dir, "logs", "orthboundary.log")
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))

	_, _, err := run(t, "-c", dir, "ymin", "zmax")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "1", casestore.CompressedMeshFile))
	require.NoError(t, err)
	b, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Adjusting points on region")

	s, err := casestore.Open(dir, nil)
	require.NoError(t, err)
	m, _, err := s.LoadMesh()
	require.NoError(t, err)
	assert.InDelta(t, 1, m.Vertices[v].X, 1.e-12)
}

func TestRegionsCommand(t *testing.T) {
	dir, _ := perturbedCase(t)

	out, _, err := run(t, "regions", "-c", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "# snapshot 0: block 2x2x2")
	assert.Regexp(t, `ymin\s+ordinary\s+4\s+9`, out)
}

func TestBlockCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cavity")

	out, _, err := run(t, "block", "-c", dir, "--cells", "3,2,1", "--size", "3,2,0.5", "--compress")
	require.NoError(t, err)
	assert.Contains(t, out, "block 3x2x1")

	s, err := casestore.Open(dir, nil)
	require.NoError(t, err)
	m, snap, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "0", casestore.CompressedMeshFile), snap.MeshPath)
	assert.Equal(t, 4*3*2, m.NumVertices())

	_, _, err = run(t, "block", "-c", dir)
	assert.ErrorIs(t, err, casestore.ErrSnapshotExists)

	_, _, err = run(t, "block", "-c", filepath.Join(t.TempDir(), "x"), "--cells", "3,2")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	dir, _ := perturbedCase(t)

	out, _, err := run(t, "config", "-c", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "degeneratePolicy: skip")
	_, err = os.Stat(filepath.Join(dir, config.FileName))
	assert.True(t, os.IsNotExist(err))

	out, _, err = run(t, "config", "-c", dir, "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRunWarnsAboutUnknownNames(t *testing.T) {
	dir, _ := perturbedCase(t)

	_, logs, err := run(t, "-c", dir, "--dry-run", "(ymin ymni)", "zmax")
	require.NoError(t, err)
	assert.Contains(t, logs, "No region named")
	assert.Contains(t, logs, "name=ymni")
}

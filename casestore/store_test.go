package casestore

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newCase(t *testing.T, compress bool) (*Store, *mesh.Mesh) {
	t.Helper()
	m, err := mesh.NewBlock(2, 2, 2, r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2})
	require.NoError(t, err)
	s, err := Create(filepath.Join(t.TempDir(), "case"), m, compress, nil)
	require.NoError(t, err)
	return s, m
}

func shifted(m *mesh.Mesh, v int, d r3.Vec) []r3.Vec {
	pos := append([]r3.Vec(nil), m.Vertices...)
	pos[v] = r3.Add(pos[v], d)
	return pos
}

func TestCreateAndLoad(t *testing.T) {
	s, m := newCase(t, false)

	n, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, snap, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, filepath.Join(s.Dir(0), MeshFile), snap.MeshPath)
	assert.NotEmpty(t, snap.Manifest.RunID)
	assert.Empty(t, snap.Manifest.Parent)
	assert.Len(t, snap.Manifest.Blake3, 64)
	assert.Equal(t, m.RegionNames(), got.RegionNames())
	assert.Equal(t, m.NumVertices(), got.NumVertices())
	require.NoError(t, s.Verify(snap))

	_, err = Create(s.Root(), m, false, nil)
	assert.ErrorIs(t, err, ErrSnapshotExists)
}

func TestOpenEmptyCase(t *testing.T) {
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	_, _, err = s.LoadMesh()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = Open(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestSnapshotsIgnoresOtherEntries(t *testing.T) {
	s, _ := newCase(t, false)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "constant"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "7"), 0o755)) // no mesh
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "007"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "3"), nil, 0o644))

	snaps, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, snaps)
}

func TestCommitNewSnapshot(t *testing.T) {
	s, m := newCase(t, false)
	_, snap, err := s.LoadMesh()
	require.NoError(t, err)

	c := s.Committer(m, snap, CommitOptions{Compress: true, Command: "orthboundary wall"})
	pos := shifted(m, 13, r3.Vec{X: 0.25})
	require.NoError(t, c.CommitPositions(pos))
	assert.Equal(t, 1, c.Committed())

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, cur)

	got, next, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(1), CompressedMeshFile), next.MeshPath)
	assert.Equal(t, snap.Manifest.RunID, next.Manifest.Parent)
	assert.NotEqual(t, snap.Manifest.RunID, next.Manifest.RunID)
	assert.Equal(t, "orthboundary wall", next.Manifest.Command)
	assert.Equal(t, pos, got.Vertices)
	require.NoError(t, s.Verify(next))

	// The base snapshot is untouched
	base, err := s.Snapshot(0)
	require.NoError(t, err)
	assert.Equal(t, snap.Manifest, base.Manifest)
	require.NoError(t, s.Verify(base))

	// Committing twice from the same base collides with the snapshot just written
	err = c.CommitPositions(pos)
	assert.ErrorIs(t, err, ErrSnapshotExists)
}

func TestCommitOverwrite(t *testing.T) {
	s, m := newCase(t, true)
	_, snap, err := s.LoadMesh()
	require.NoError(t, err)

	c := s.Committer(m, snap, CommitOptions{Overwrite: true, RunID: "run-2"})
	pos := shifted(m, 13, r3.Vec{Z: -0.5})
	require.NoError(t, c.CommitPositions(pos))
	assert.Equal(t, 0, c.Committed())

	snaps, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, snaps)

	got, after, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, snap.MeshPath, after.MeshPath)
	assert.Equal(t, "run-2", after.Manifest.RunID)
	assert.Equal(t, snap.Manifest.RunID, after.Manifest.Parent)
	assert.NotEqual(t, snap.Manifest.Blake3, after.Manifest.Blake3)
	assert.Equal(t, pos, got.Vertices)

	entries, err := os.ReadDir(s.Dir(0))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "staging files are removed")
}

func TestCommitOverwriteRestoresOnFailure(t *testing.T) {
	s, m := newCase(t, false)
	_, snap, err := s.LoadMesh()
	require.NoError(t, err)
	before, err := os.ReadFile(snap.MeshPath)
	require.NoError(t, err)

	calls := 0
	osRename = func(from, to string) error {
		calls++
		if filepath.Base(to) == ManifestFile {
			return errors.New("device busy")
		}
		return os.Rename(from, to)
	}
	defer func() { osRename = os.Rename }()

	c := s.Committer(m, snap, CommitOptions{Overwrite: true})
	err = c.CommitPositions(shifted(m, 13, r3.Vec{X: 0.1}))
	require.ErrorContains(t, err, "device busy")
	assert.Equal(t, -1, c.Committed())
	assert.Equal(t, 4, calls)

	after, err := os.ReadFile(snap.MeshPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	reread, err := s.Snapshot(0)
	require.NoError(t, err)
	require.NoError(t, s.Verify(reread))
}

func TestCommitOverwriteKeepsOriginalWhenRestoreFails(t *testing.T) {
	s, m := newCase(t, false)
	_, snap, err := s.LoadMesh()
	require.NoError(t, err)
	before, err := os.ReadFile(snap.MeshPath)
	require.NoError(t, err)

	calls := 0
	osRename = func(from, to string) error {
		calls++
		if calls >= 3 {
			return errors.New("io error")
		}
		return os.Rename(from, to)
	}
	defer func() { osRename = os.Rename }()

	c := s.Committer(m, snap, CommitOptions{Overwrite: true})
	err = c.CommitPositions(shifted(m, 10, r3.Vec{X: 0.1}))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to rename manifest")
	assert.ErrorContains(t, err, "failed to restore mesh")
	assert.Equal(t, -1, c.Committed())

	// The original mesh survives in the staging directory named by the error
	matches, err2 := filepath.Glob(filepath.Join(s.Dir(0), ".stage-*", MeshFile+".orig"))
	require.NoError(t, err2)
	require.Len(t, matches, 1)
	assert.Contains(t, err.Error(), matches[0])
	kept, err2 := os.ReadFile(matches[0])
	require.NoError(t, err2)
	assert.Equal(t, before, kept)
}

func TestCommitNewSnapshotRenameFailure(t *testing.T) {
	s, m := newCase(t, false)
	_, snap, err := s.LoadMesh()
	require.NoError(t, err)

	osRename = func(string, string) error { return errors.New("read-only file system") }
	defer func() { osRename = os.Rename }()

	err = s.Committer(m, snap, CommitOptions{}).CommitPositions(m.Vertices)
	require.Error(t, err)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0", entries[0].Name())
}

func TestCommitRejectsWrongLength(t *testing.T) {
	s, m := newCase(t, false)
	_, snap, err := s.LoadMesh()
	require.NoError(t, err)

	err = s.Committer(m, snap, CommitOptions{}).CommitPositions(m.Vertices[:3])
	require.Error(t, err)
	snaps, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, snaps)
}

func TestLoadMeshWarnsOnChecksumMismatch(t *testing.T) {
	s, m := newCase(t, false)
	var buf bytes.Buffer
	s.log = slog.New(slog.NewTextHandler(&buf, nil))

	// Rewrite the mesh with different content behind the manifest's back
	snap, err := s.Snapshot(0)
	require.NoError(t, err)
	f, err := os.OpenFile(snap.MeshPath, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, _, err := s.LoadMesh()
	require.NoError(t, err)
	assert.Equal(t, m.NumVertices(), got.NumVertices())
	assert.Contains(t, buf.String(), "Mesh checksum mismatch")
}

func TestSnapshotWithoutManifest(t *testing.T) {
	s, _ := newCase(t, false)
	require.NoError(t, os.Remove(filepath.Join(s.Dir(0), ManifestFile)))

	snap, err := s.Snapshot(0)
	require.NoError(t, err)
	assert.Equal(t, MeshFile, snap.Manifest.MeshFile)
	assert.Empty(t, snap.Manifest.Blake3)
	require.NoError(t, s.Verify(snap))
}

// Package casestore keeps a case directory of numbered mesh snapshots.
//
//	<case>/0/mesh.neu
//	<case>/0/manifest.yaml
//	<case>/1/mesh.neu.xz
//	<case>/1/manifest.yaml
//
// The highest numbered snapshot is the current one.
package casestore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/notargets/OrthoBoundary/mesh/readers"
)

// Mesh file names, plain and compressed
const (
	MeshFile           = "mesh.neu"
	CompressedMeshFile = "mesh.neu.xz"
)

var (
	ErrNoSnapshot     = errors.New("no mesh snapshot")
	ErrSnapshotExists = errors.New("snapshot already exists")
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// Store is an opened case directory
type Store struct {
	root string
	log  *slog.Logger
}

// Snapshot is one loaded snapshot directory
type Snapshot struct {
	Index    int
	Dir      string
	MeshPath string
	Manifest Manifest
}

// Open opens an existing case directory
func Open(root string, log *slog.Logger) (*Store, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open case: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("case %s is not a directory", root)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{root: root, log: log}, nil
}

// Create writes m as snapshot 0 of a new case directory
func Create(root string, m *mesh.Mesh, compress bool, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create case directory: %w", err)
	}
	s, err := Open(root, log)
	if err != nil {
		return nil, err
	}
	if _, err := s.Current(); err == nil {
		return nil, fmt.Errorf("case %s: %w", root, ErrSnapshotExists)
	}
	man := Manifest{RunID: uuid.NewString(), Command: "create"}
	if err := s.writeSnapshot(0, m, meshName(compress), man); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the case directory
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory of snapshot n
func (s *Store) Dir(n int) string {
	return filepath.Join(s.root, strconv.Itoa(n))
}

// Snapshots lists the snapshot indices in ascending order
func (s *Store) Snapshots() ([]int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 || strconv.Itoa(n) != e.Name() {
			continue
		}
		if _, err := findMesh(filepath.Join(s.root, e.Name())); err != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// Current returns the highest snapshot index
func (s *Store) Current() (int, error) {
	snaps, err := s.Snapshots()
	if err != nil {
		return 0, err
	}
	if len(snaps) == 0 {
		return 0, fmt.Errorf("case %s: %w", s.root, ErrNoSnapshot)
	}
	return snaps[len(snaps)-1], nil
}

// Snapshot reads the manifest of snapshot n. A snapshot without a manifest
// gets one synthesised from its mesh file, with no checksum
func (s *Store) Snapshot(n int) (Snapshot, error) {
	dir := s.Dir(n)
	meshPath, err := findMesh(dir)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Index: n, Dir: dir, MeshPath: meshPath}

	man, err := readManifest(filepath.Join(dir, ManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		snap.Manifest = Manifest{Snapshot: n, MeshFile: filepath.Base(meshPath)}
	case err != nil:
		return Snapshot{}, err
	default:
		snap.Manifest = man
		if man.MeshFile != "" {
			snap.MeshPath = filepath.Join(dir, man.MeshFile)
		}
	}
	return snap, nil
}

// LoadMesh reads the mesh of the current snapshot. A checksum that does not
// match the manifest is logged, not fatal
func (s *Store) LoadMesh() (*mesh.Mesh, Snapshot, error) {
	n, err := s.Current()
	if err != nil {
		return nil, Snapshot{}, err
	}
	snap, err := s.Snapshot(n)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if err := s.Verify(snap); err != nil {
		s.log.Warn("Mesh checksum mismatch", "snapshot", n, "error", err)
	}

	m, err := readers.ReadMeshFile(snap.MeshPath)
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("snapshot %d: %w", n, err)
	}
	s.log.Info("Loaded mesh", "snapshot", n, "path", snap.MeshPath,
		"vertices", m.NumVertices(), "cells", len(m.Cells), "regions", len(m.Regions))
	return m, snap, nil
}

// Verify compares the mesh file checksum with the manifest
func (s *Store) Verify(snap Snapshot) error {
	if snap.Manifest.Blake3 == "" {
		return nil
	}
	sum, err := FileBlake3(snap.MeshPath)
	if err != nil {
		return err
	}
	if sum != snap.Manifest.Blake3 {
		return fmt.Errorf("%s: blake3 %s, manifest records %s", snap.MeshPath, sum, snap.Manifest.Blake3)
	}
	return nil
}

// writeSnapshot builds snapshot n in a temporary directory and renames it
// into place, so a partial snapshot is never visible
func (s *Store) writeSnapshot(n int, m *mesh.Mesh, meshFile string, man Manifest) error {
	final := s.Dir(n)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("snapshot %d: %w", n, ErrSnapshotExists)
	}

	tmp, err := os.MkdirTemp(s.root, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := writeFiles(tmp, m, meshFile, n, man); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := osRename(tmp, final); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	s.log.Info("Wrote snapshot", "snapshot", n, "dir", final, "run", man.RunID)
	return nil
}

// writeFiles writes the mesh and a completed manifest into dir
func writeFiles(dir string, m *mesh.Mesh, meshFile string, n int, man Manifest) error {
	meshPath := filepath.Join(dir, meshFile)
	if err := readers.WriteMeshFile(meshPath, m); err != nil {
		return fmt.Errorf("failed to write mesh: %w", err)
	}
	sum, err := FileBlake3(meshPath)
	if err != nil {
		return err
	}
	man.Snapshot = n
	man.MeshFile = meshFile
	man.Blake3 = sum
	if man.Created.IsZero() {
		man.Created = time.Now().UTC()
	}
	b, err := marshalManifest(man)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), b, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func findMesh(dir string) (string, error) {
	for _, name := range []string{MeshFile, CompressedMeshFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", dir, ErrNoSnapshot)
}

func meshName(compress bool) string {
	if compress {
		return CompressedMeshFile
	}
	return MeshFile
}

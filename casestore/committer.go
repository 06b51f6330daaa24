package casestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/notargets/OrthoBoundary/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// CommitOptions select where corrected positions are written
type CommitOptions struct {
	// Overwrite replaces the base snapshot's mesh in place instead of
	// writing a new snapshot
	Overwrite bool
	// Compress writes a new snapshot's mesh as mesh.neu.xz. An overwritten
	// snapshot keeps its existing file name
	Compress bool
	// RunID identifies the run in the manifest, a fresh uuid when empty
	RunID   string
	Command string
}

// Committer writes a replacement vertex array for a loaded snapshot. Each
// commit is all-or-nothing
type Committer struct {
	store *Store
	base  *mesh.Mesh
	snap  Snapshot
	opts  CommitOptions

	committed int
}

// Committer returns a committer for mesh m loaded from snap
func (s *Store) Committer(m *mesh.Mesh, snap Snapshot, opts CommitOptions) *Committer {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Committer{store: s, base: m, snap: snap, opts: opts, committed: -1}
}

// Committed returns the snapshot written by the last successful commit, or -1
func (c *Committer) Committed() int {
	return c.committed
}

// CommitPositions writes the mesh with all vertex positions replaced
func (c *Committer) CommitPositions(positions []r3.Vec) error {
	m, err := c.base.WithPositions(positions)
	if err != nil {
		return err
	}
	man := Manifest{RunID: c.opts.RunID, Parent: c.snap.Manifest.RunID, Command: c.opts.Command}

	if !c.opts.Overwrite {
		n := c.snap.Index + 1
		if err := c.store.writeSnapshot(n, m, meshName(c.opts.Compress), man); err != nil {
			return err
		}
		c.committed = n
		return nil
	}

	if err := c.overwrite(m, man); err != nil {
		return err
	}
	c.committed = c.snap.Index
	return nil
}

// overwrite stages the new mesh and manifest next to the old ones, then
// swaps them in. The old mesh is restored if the manifest cannot be swapped
func (c *Committer) overwrite(m *mesh.Mesh, man Manifest) error {
	dir := c.snap.Dir
	meshFile := filepath.Base(c.snap.MeshPath)

	stage, err := os.MkdirTemp(dir, ".stage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	keepStage := false
	defer func() {
		if !keepStage {
			os.RemoveAll(stage)
		}
	}()

	if err := writeFiles(stage, m, meshFile, c.snap.Index, man); err != nil {
		return err
	}

	meshPath := filepath.Join(dir, meshFile)
	manPath := filepath.Join(dir, ManifestFile)
	backup := filepath.Join(stage, meshFile+".orig")

	// restore puts the original mesh back. When that fails too, the staging
	// directory holding the original is kept and named in the error
	restore := func(cause error) error {
		if rerr := osRename(backup, meshPath); rerr != nil {
			keepStage = true
			c.store.log.Error("Failed to restore mesh", "snapshot", c.snap.Index, "backup", backup, "error", rerr)
			return errors.Join(cause, fmt.Errorf("failed to restore mesh, original kept at %s: %w", backup, rerr))
		}
		return cause
	}

	if err := osRename(meshPath, backup); err != nil {
		return fmt.Errorf("failed to move mesh aside: %w", err)
	}
	if err := osRename(filepath.Join(stage, meshFile), meshPath); err != nil {
		return restore(fmt.Errorf("failed to rename mesh: %w", err))
	}
	if err := osRename(filepath.Join(stage, ManifestFile), manPath); err != nil {
		return restore(fmt.Errorf("failed to rename manifest: %w", err))
	}
	c.store.log.Info("Overwrote snapshot", "snapshot", c.snap.Index, "dir", dir, "run", man.RunID)
	return nil
}

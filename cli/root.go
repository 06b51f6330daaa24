// Package cli implements the orthboundary command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/OrthoBoundary/casestore"
	"github.com/notargets/OrthoBoundary/config"
	"github.com/notargets/OrthoBoundary/logger"
	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/notargets/OrthoBoundary/orthogonal"
	"github.com/spf13/cobra"
)

// verifyTolerance bounds the relative error accepted when re-checking a pass
const verifyTolerance = 1.e-9

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, orthogonal.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	caseDir    string
	configPath string
	debug      bool
}

// session is the state shared by commands that work on an existing case
type session struct {
	cfg     config.Config
	store   *casestore.Store
	cleanup func() error
}

func (g *globalFlags) settingsPath() string {
	if g.configPath != "" {
		return g.configPath
	}
	return filepath.Join(g.caseDir, config.FileName)
}

func (g *globalFlags) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(g.settingsPath())
	if err != nil {
		return nil, err
	}

	cleanup, err := logger.Setup(logger.Config{
		Debug:  g.debug,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	if p := logger.Path(); p != "" {
		logger.L().Debug("Logging to file", "path", p)
	}

	store, err := casestore.Open(g.caseDir, logger.L())
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	return &session{cfg: cfg, store: store, cleanup: cleanup}, nil
}

// loadMesh reads the current snapshot and applies the configured kinds
func (s *session) loadMesh() (*mesh.Mesh, casestore.Snapshot, error) {
	m, snap, err := s.store.LoadMesh()
	if err != nil {
		return nil, casestore.Snapshot{}, err
	}
	if err := m.ApplyKinds(s.cfg.RegionKinds); err != nil {
		return nil, casestore.Snapshot{}, err
	}
	if err := m.Validate(); err != nil {
		logger.L().Warn("Mesh validation failed", "error", err)
	}
	if n := m.UncoveredFaces(); n > 0 {
		logger.L().Debug("Exterior faces not in any region", "faces", n)
	}
	return m, snap, nil
}

func newRootCmd() *cobra.Command {
	var (
		g         globalFlags
		overwrite bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "orthboundary [flags] <regions> <excludeRegions>",
		Short: "Make boundary-adjacent cell edges orthogonal to the boundary",
		Long: `Moves the vertices of the selected boundary regions so that the edge to
the neighbouring interior vertex is parallel to the boundary normal.
Vertices on any of the excluded regions are never moved.

Region lists accept names and patterns, e.g. '(wall "inlet.*")'.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			included, err := ParseList(args[0])
			if err != nil {
				return err
			}
			excluded, err := ParseList(args[1])
			if err != nil {
				return err
			}

			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.cleanup() }()
			log := logger.L()

			m, snap, err := s.loadMesh()
			if err != nil {
				return err
			}

			for _, name := range m.UnmatchedLiterals(append(included, excluded...)) {
				log.Warn("No region named", "name", name, "valid", m.RegionNames())
			}

			var (
				committer orthogonal.PositionCommitter
				c         *casestore.Committer
			)
			if !dryRun {
				c = s.store.Committer(m, snap, casestore.CommitOptions{
					Overwrite: overwrite,
					Compress:  s.cfg.Snapshot.Compress,
					RunID:     logger.RunID(),
					Command:   strings.Join(append([]string{cmd.Name()}, args...), " "),
				})
				committer = c
			}

			res, err := orthogonal.Orthogonalize(m, included, excluded, committer, orthogonal.Options{
				Policy: s.cfg.DegeneratePolicy,
				Logger: log,
			})
			if err != nil {
				return err
			}
			if err := res.Verify(verifyTolerance); err != nil {
				log.Error("Orthogonality check failed", "error", err)
			}

			written := "nothing (dry run)"
			if c != nil {
				written = fmt.Sprintf("snapshot %d (%s)", c.Committed(), s.store.Dir(c.Committed()))
			}
			printReport(cmd.OutOrStdout(), m, res, written)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&g.caseDir, "case", "c", ".", "Case directory")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Settings file (default <case>/"+config.FileName+")")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the current snapshot instead of writing a new one")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pass and report without writing anything")

	cmd.AddCommand(regionsCmd(&g), blockCmd(&g), configCmd(&g))
	return cmd
}

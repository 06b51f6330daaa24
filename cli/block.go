package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/OrthoBoundary/casestore"
	"github.com/notargets/OrthoBoundary/logger"
	"github.com/notargets/OrthoBoundary/mesh"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

func blockCmd(g *globalFlags) *cobra.Command {
	var (
		cells    string
		size     string
		compress bool
	)
	c := &cobra.Command{
		Use:   "block",
		Short: "Create a case holding a structured hexahedral block mesh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := parseTriple(cells, strconv.Atoi)
			if err != nil {
				return fmt.Errorf("--cells: %w", err)
			}
			hi, err := parseTriple(size, func(s string) (float64, error) {
				return strconv.ParseFloat(s, 64)
			})
			if err != nil {
				return fmt.Errorf("--size: %w", err)
			}

			cleanup, err := logger.Setup(logger.Config{Debug: g.debug, Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			m, err := mesh.NewBlock(n[0], n[1], n[2], r3.Vec{}, r3.Vec{X: hi[0], Y: hi[1], Z: hi[2]})
			if err != nil {
				return err
			}
			store, err := casestore.Create(g.caseDir, m, compress, logger.L())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d vertices in %s\n",
				m.Title, m.NumVertices(), store.Dir(0))
			return nil
		},
	}
	c.Flags().StringVar(&cells, "cells", "4,4,4", "Cells along x,y,z")
	c.Flags().StringVar(&size, "size", "1,1,1", "Block extent along x,y,z")
	c.Flags().BoolVar(&compress, "compress", false, "Write the mesh xz compressed")
	return c
}

func parseTriple[T any](s string, parse func(string) (T, error)) ([3]T, error) {
	var out [3]T
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected three comma separated values, got %q", s)
	}
	for i, p := range parts {
		v, err := parse(strings.TrimSpace(p))
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

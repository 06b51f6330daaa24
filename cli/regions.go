package cli

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func regionsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the boundary regions of the current snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.cleanup() }()

			m, snap, err := s.loadMesh()
			if err != nil {
				return err
			}

			table := uitable.New()
			table.Separator = "  "
			table.AddRow("NAME", "KIND", "FACES", "POINTS")
			for _, r := range m.Regions {
				table.AddRow(r.Name, r.Kind, len(r.Faces), r.NumPoints())
			}
			for _, ps := range m.PointSets {
				table.AddRow(ps.Name, "points", "-", len(ps.Points))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# snapshot %d: %s\n", snap.Index, m.Title)
			_, err = fmt.Fprintln(w, table)
			return err
		},
	}
}

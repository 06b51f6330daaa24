package cli

import (
	"fmt"

	"github.com/notargets/OrthoBoundary/config"
	"github.com/spf13/cobra"
)

func configCmd(g *globalFlags) *cobra.Command {
	var write bool
	c := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings, or write them to the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := g.settingsPath()
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if !write {
				return config.Encode(cmd.OutOrStdout(), cfg)
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	c.Flags().BoolVar(&write, "write", false, "Write the settings file, filling in defaults")
	return c
}

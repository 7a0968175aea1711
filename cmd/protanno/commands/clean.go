package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/protanno/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	var (
		input    inputFlags
		settings settingsFlags
	)
	cmd := &cobra.Command{
		Use:   "clean [identifiers...]",
		Short: "Remove the cache, or the entry of one identifier set",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Input:      input.input(args),
				ConfigPath: c.configPath,
				Override:   settings.override(cmd.Flags()),
			})
		},
	}
	input.register(cmd.Flags())
	settings.registerCache(cmd.Flags())
	return cmd
}

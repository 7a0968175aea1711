package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/protanno/internal/app"
)

func (c *CLI) newAnnotateCmd() *cobra.Command {
	var (
		input    inputFlags
		settings settingsFlags
		output   string
	)
	cmd := &cobra.Command{
		Use:   "annotate [identifiers...]",
		Short: "Annotate identifiers and write the table",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Annotate(cmd.Context(), app.AnnotateOptions{
				Input:      input.input(args),
				ConfigPath: c.configPath,
				OutputPath: output,
				Stdout:     cmd.OutOrStdout(),
				Override:   settings.override(cmd.Flags()),
			})
			return err
		},
	}
	input.register(cmd.Flags())
	settings.registerRun(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

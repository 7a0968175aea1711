// Package commands implements the CLI commands for protanno.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/protanno/internal/app"
	"go.trai.ch/protanno/internal/build"
	"go.trai.ch/protanno/internal/core/ports"
)

// outputConfigurer is implemented by loggers whose format and destination can change.
type outputConfigurer interface {
	SetJSON(enable bool)
	SetOutput(w io.Writer)
}

// CLI represents the command line interface for protanno.
type CLI struct {
	app     *app.App
	logger  ports.Logger
	rootCmd *cobra.Command

	configPath string
	jsonLogs   bool
}

// New creates a new CLI instance with the given app.
func New(a *app.App, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "protanno",
		Short:         "Annotate protein identifiers from UniProt, InterPro and taxonomy sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to the configuration file (default protanno.yaml)")
	rootCmd.PersistentFlags().BoolVar(&c.jsonLogs, "json", false, "Write logs as JSON")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if l, ok := c.logger.(outputConfigurer); ok {
			l.SetOutput(cmd.ErrOrStderr())
			l.SetJSON(c.jsonLogs)
		}
	}

	rootCmd.AddCommand(c.newAnnotateCmd())
	rootCmd.AddCommand(c.newFieldsCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and errors.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}

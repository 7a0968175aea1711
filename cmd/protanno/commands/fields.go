package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func (c *CLI) newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List annotation fields and groups",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			rows := make([][]string, 0)
			for _, f := range c.app.Fields() {
				always := ""
				if f.Always {
					always = "yes"
				}
				rows = append(rows, []string{f.Name, f.Source, strings.Join(f.Groups, ", "), always})
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("FIELD", "SOURCE", "GROUPS", "ALWAYS").
				Rows(rows...)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		},
	}
}

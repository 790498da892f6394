package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"erblint/internal/linters"
)

var lintersCmd = &cobra.Command{
	Use:   "linters",
	Short: "List available linters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		colored, err := useColor(cmd, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		name := lipgloss.NewStyle().Bold(true)
		faint := lipgloss.NewStyle().Faint(true)
		if !colored {
			name, faint = lipgloss.NewStyle(), lipgloss.NewStyle()
		}

		entries := linters.Default().Entries()
		width := 0
		for _, e := range entries {
			width = max(width, runewidth.StringWidth(e.Name))
		}
		for _, e := range entries {
			var flags []string
			if e.EnabledByDefault {
				flags = append(flags, "default")
			}
			if e.Correctable {
				flags = append(flags, "autocorrect")
			}
			tags := "[" + strings.Join(flags, ", ") + "]"
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s  %s%s %s\n",
				name.Render(e.Name), strings.Repeat(" ", width-runewidth.StringWidth(e.Name)),
				faint.Render(tags), strings.Repeat(" ", max(0, 23-len(tags))),
				e.Description)
		}
		return nil
	},
}

package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the n8n-local version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			color.Green("n8n-local %s", version)
		},
	}
}

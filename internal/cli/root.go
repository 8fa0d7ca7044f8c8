// Package cli defines the n8n-local commands.
package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/refinedigital/n8n-local/internal/clone"
	"github.com/refinedigital/n8n-local/internal/site"
	"github.com/refinedigital/n8n-local/pkg/logger"
)

// NewRootCommand creates the root command running the clone pipeline.
func NewRootCommand(version string) *cobra.Command {
	var clean bool
	var yes bool

	rootCmd := &cobra.Command{
		Use:   "n8n-local <infrastructure> <domain> [folder|.]",
		Short: "Clone a production n8n deployment into a local Docker environment",
		Long: `n8n-local mirrors a running n8n site from a remote production server
into a local Docker-based development environment: site files and data are
transferred, the environment is repointed at a local domain, and a two
service stack (n8n + nginx) is started behind the shared proxy.

The infrastructure must be registered locally and reachable through a Host
block in your SSH config whose alias contains the infrastructure name.`,
		Example: `  n8n-local dev-fi-01 ai.refine.digital
  n8n-local dev-fi-01 ai.refine.digital . --clean`,
		Version: version,
		Args:    cobra.RangeArgs(2, 3),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return site.ValidateDomain(args[1])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// A malformed invocation should print the usage text, but a
			// pipeline failure should not drown its error in it.
			cmd.SilenceUsage = true

			opts := clone.Options{
				Infrastructure: args[0],
				Domain:         args[1],
				Clean:          clean,
			}
			if len(args) == 3 {
				opts.Folder = args[2]
			}

			if clean && !yes {
				proceed, err := confirmClean(opts)
				if err != nil {
					return err
				}
				if !proceed {
					return fmt.Errorf("clone cancelled")
				}
			}

			logger.GetLogger().ConfigureFromEnv()
			return clone.Run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().BoolVar(&clean, "clean", false, "restore a pristine local state before cloning (removes containers, network and site directory)")
	rootCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt for --clean")

	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewVersionCommand(version))

	return rootCmd
}

func confirmClean(opts clone.Options) (bool, error) {
	var proceed bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("--clean removes all local state for %s (containers, network, directory). Continue?", "local-"+opts.Domain),
		Default: false,
	}
	if err := survey.AskOne(prompt, &proceed); err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return proceed, nil
}

// Package cmd wires the CLI together and owns process exit codes.
package cmd

import (
	"fmt"
	"os"

	"github.com/refinedigital/n8n-local/internal/cli"
)

// ExecuteCLI builds the command tree and runs it. Any error, usage or
// runtime, exits with status 1; the failing command already reported it.
func ExecuteCLI(version, commit, date string) {
	if version == "" {
		version = "dev"
	}
	versionString := version
	if commit != "" {
		versionString = fmt.Sprintf("%s (%s, built %s)", version, commit, date)
	}

	rootCmd := cli.NewRootCommand(versionString)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

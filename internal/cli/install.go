package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/refinedigital/n8n-local/pkg/logger"
)

// NewInstallCommand creates the install command: copies the running
// binary into the user's bin directory and checks it is on PATH.
func NewInstallCommand() *cobra.Command {
	var dir string

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the n8n-local binary into your user bin directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := installBinary(dir)
			if err != nil {
				return err
			}

			color.Green("Installed %s", target)
			if !onPath(filepath.Dir(target)) {
				color.Yellow("%s is not on your PATH. Add it to your shell profile:", filepath.Dir(target))
				fmt.Printf("  export PATH=\"%s:$PATH\"\n", filepath.Dir(target))
			}
			return nil
		},
	}

	installCmd.Flags().StringVar(&dir, "dir", "", "installation directory (default ~/.local/bin)")

	return installCmd
}

func installBinary(dir string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate running binary: %w", err)
	}

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "bin")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	target := filepath.Join(dir, "n8n-local")
	if same, err := sameFile(self, target); err == nil && same {
		logger.Info("Binary already installed", "path", target)
		return target, nil
	}

	if err := copyFile(self, target); err != nil {
		return "", err
	}
	return target, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	// Write to a temp name first so a running installed binary is never
	// truncated in place.
	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to copy binary: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finish copy: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install to %s: %w", dst, err)
	}
	return nil
}

func sameFile(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ia, ib), nil
}

func onPath(dir string) bool {
	for _, p := range filepath.SplitList(os.Getenv("PATH")) {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil && abs == dir {
			return true
		}
	}
	return false
}

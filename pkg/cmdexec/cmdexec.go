// Package cmdexec invokes external tools (rsync, ssh, scp, tar, docker
// compose) through typed command requests instead of formatted shell
// strings. A Runner interface keeps the pipeline testable without the
// tools installed.
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/refinedigital/n8n-local/pkg/logger"
)

// Command is one external tool invocation. Args are passed verbatim to the
// process, never through a shell.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Validate rejects commands that cannot be executed.
func (c Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name is empty")
	}
	for _, arg := range c.Args {
		if strings.ContainsRune(arg, '\x00') {
			return fmt.Errorf("command %s: argument contains NUL byte", c.Name)
		}
	}
	return nil
}

// Runner executes commands. Implementations must honor ctx cancellation.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands as child processes, streaming their output to
// the console and the session log.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process stdio through the
// session log tee.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: logger.Writer(os.Stdout),
		Stderr: logger.Writer(os.Stderr),
	}
}

// Run executes cmd and waits for completion.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	logger.Debug("Running command", "cmd", cmd.String())

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", cmd.String(), err)
	}
	return nil
}

// Output executes cmd and returns its trimmed standard output.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	logger.Debug("Running command", "cmd", cmd.String())

	var out, errOut bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &out
	c.Stderr = &errOut
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("command %q failed: %s: %w", cmd.String(), strings.TrimSpace(errOut.String()), err)
	}
	return strings.TrimSpace(out.String()), nil
}

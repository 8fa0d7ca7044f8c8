// Package clone sequences the full pipeline: resolve, check, fetch,
// rewrite, generate, start, report. It owns ordering and step banners,
// nothing else.
package clone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/refinedigital/n8n-local/internal/compose"
	"github.com/refinedigital/n8n-local/internal/envfile"
	"github.com/refinedigital/n8n-local/internal/infra"
	"github.com/refinedigital/n8n-local/internal/lifecycle"
	"github.com/refinedigital/n8n-local/internal/remote"
	"github.com/refinedigital/n8n-local/internal/report"
	"github.com/refinedigital/n8n-local/internal/site"
	"github.com/refinedigital/n8n-local/internal/sshcfg"
	"github.com/refinedigital/n8n-local/pkg/cmdexec"
	"github.com/refinedigital/n8n-local/pkg/docker"
	"github.com/refinedigital/n8n-local/pkg/logger"
)

// Options are the resolved CLI inputs.
type Options struct {
	Infrastructure string
	Domain         string
	Folder         string
	Clean          bool
}

// Runtime is the container runtime surface the pipeline needs, satisfied
// by *docker.Client.
type Runtime interface {
	Ping(ctx context.Context) error
	IsContainerRunning(ctx context.Context, name string) (bool, error)
	NetworkExists(ctx context.Context, name string) (bool, error)
	EnsureNetwork(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, name string) error
	RemoveContainerByName(ctx context.Context, name string) error
	WaitForContainerRunning(ctx context.Context, name string, timeout time.Duration) error
}

// Deps are the pipeline's external touchpoints. The zero value wires the
// real implementations.
type Deps struct {
	Runtime       Runtime
	Runner        cmdexec.Runner
	ProfilesRoot  string
	SSHConfigPath string
	LogsDir       string
}

const totalSteps = 8

var banner = color.New(color.FgCyan, color.Bold)

func step(n int, format string, args ...interface{}) {
	w := logger.Writer(os.Stdout)
	fmt.Fprintln(w, banner.Sprintf("==> [%d/%d] "+format, append([]interface{}{n, totalSteps}, args...)...))
}

// Run executes the clone pipeline top to bottom, fail-fast.
func Run(ctx context.Context, opts Options) error {
	return RunWith(ctx, opts, Deps{})
}

// RunWith executes the pipeline with explicit dependencies.
func RunWith(ctx context.Context, opts Options, deps Deps) error {
	d, err := site.Derive(opts.Infrastructure, opts.Domain, opts.Folder)
	if err != nil {
		return err
	}

	if deps.LogsDir == "" {
		deps.LogsDir = logsDir()
	}
	logPath, err := logger.StartSession(deps.LogsDir, "clone-"+d.Directory)
	if err != nil {
		return err
	}
	defer logger.EndSession()

	step(1, "Resolving site %s for infrastructure %s", d.LocalDomain, opts.Infrastructure)
	logger.Info("Destination resolved", "dir", d.Dir)

	if deps.ProfilesRoot == "" {
		deps.ProfilesRoot, err = infra.Root()
		if err != nil {
			return err
		}
	}
	profile, err := infra.Load(deps.ProfilesRoot, opts.Infrastructure)
	if err != nil {
		return err
	}

	if deps.Runtime == nil {
		dockerCli, err := docker.NewClient()
		if err != nil {
			return err
		}
		defer dockerCli.Close()
		deps.Runtime = dockerCli
	}
	if deps.Runner == nil {
		deps.Runner = cmdexec.NewExecRunner()
	}

	driver := lifecycle.NewDriver(deps.Runtime, deps.Runner)

	step(2, "Checking infrastructure preconditions")
	checker := &infra.Checker{Runtime: deps.Runtime, Runner: deps.Runner}
	if err := checker.Check(ctx, profile); err != nil {
		return err
	}

	step(3, "Resolving SSH endpoint for %s", opts.Infrastructure)
	if deps.SSHConfigPath == "" {
		deps.SSHConfigPath, err = sshcfg.DefaultPath()
		if err != nil {
			return err
		}
	}
	endpoint, err := sshcfg.Resolve(deps.SSHConfigPath, opts.Infrastructure)
	if err != nil {
		return err
	}
	logger.Info("SSH endpoint resolved", "alias", endpoint.Alias, "host", endpoint.HostName)

	if opts.Clean {
		step(4, "Cleaning previous local state for %s", d.LocalDomain)
		if err := driver.Clean(ctx, d); err != nil {
			return err
		}
	} else {
		step(4, "Keeping existing local state (no --clean)")
	}

	step(5, "Fetching remote snapshot from %s", endpoint.HostName)
	fetcher := &remote.Fetcher{Runner: deps.Runner, Endpoint: endpoint, Profile: profile, Site: d}
	if err := fetcher.Mirror(ctx); err != nil {
		return err
	}
	if err := fetcher.FetchData(ctx); err != nil {
		return err
	}

	step(6, "Rewriting environment for %s", d.LocalDomain)
	if _, err := envfile.Rewrite(d.EnvFile(), d.Domain, d.LocalDomain); err != nil {
		return err
	}

	step(7, "Generating compose definition and starting containers")
	if err := compose.Generate(d, profile).Write(d.ComposeFile()); err != nil {
		return err
	}
	if err := driver.Up(ctx, d); err != nil {
		return err
	}

	step(8, "Cleaning up and reporting")
	reporter := &report.Reporter{Out: logger.Writer(os.Stdout), Prober: deps.Runtime}
	if err := reporter.CleanupArchive(d); err != nil {
		return err
	}
	reporter.Print(ctx, d, profile, logPath)

	return nil
}

// logsDir returns where session logs are persisted,
// $XDG_STATE_HOME/n8n-local/logs or the ~/.local/state fallback.
func logsDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "n8n-local", "logs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "n8n-local", "logs")
	}
	return filepath.Join(home, ".local", "state", "n8n-local", "logs")
}

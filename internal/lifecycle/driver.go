// Package lifecycle drives the local container stack: per-site network,
// compose up/down, orphan teardown and readiness polling.
package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/refinedigital/n8n-local/internal/site"
	"github.com/refinedigital/n8n-local/pkg/cmdexec"
	"github.com/refinedigital/n8n-local/pkg/logger"
)

// Runtime is the slice of the Docker client the driver needs.
type Runtime interface {
	EnsureNetwork(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, name string) error
	RemoveContainerByName(ctx context.Context, name string) error
	WaitForContainerRunning(ctx context.Context, name string, timeout time.Duration) error
}

// Driver brings the site stack up and down.
type Driver struct {
	Runtime Runtime
	Runner  cmdexec.Runner

	// ProxyAddr is where the shared proxy listens locally. The readiness
	// probe sends requests there with the site's local domain as Host.
	ProxyAddr string

	// ReadyTimeout bounds container start polling and the HTTP probe.
	ReadyTimeout time.Duration

	HTTPClient *http.Client
}

// NewDriver returns a driver with production defaults.
func NewDriver(rt Runtime, runner cmdexec.Runner) *Driver {
	return &Driver{
		Runtime:      rt,
		Runner:       runner,
		ProxyAddr:    "127.0.0.1:80",
		ReadyTimeout: 90 * time.Second,
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Up creates the per-site network, clears colliding containers from any
// prior run, starts the stack detached and waits for readiness.
func (dr *Driver) Up(ctx context.Context, d *site.Descriptor) error {
	if err := dr.Runtime.EnsureNetwork(ctx, d.Network); err != nil {
		return err
	}

	// Stale stacks from interrupted runs may or may not exist; a failing
	// down is not a failure.
	if err := dr.composeCmd(ctx, d, "down", "--remove-orphans"); err != nil {
		logger.Warn("Compose down reported an error, continuing", "error", err)
	}

	// Same-named containers are force-removed regardless of which stack
	// created them, otherwise compose up collides.
	for _, name := range []string{d.N8NContainer, d.NginxContainer} {
		if err := dr.Runtime.RemoveContainerByName(ctx, name); err != nil {
			return err
		}
	}

	logger.Info("Starting local stack", "project", d.Directory)
	if err := dr.composeCmd(ctx, d, "up", "-d"); err != nil {
		return fmt.Errorf("failed to start stack for %s: %w", d.LocalDomain, err)
	}

	for _, name := range []string{d.N8NContainer, d.NginxContainer} {
		if err := dr.Runtime.WaitForContainerRunning(ctx, name, dr.ReadyTimeout); err != nil {
			return err
		}
		logger.Info("Container running", "name", name)
	}

	if err := dr.probe(ctx, d); err != nil {
		return err
	}

	logger.Info("Site is ready", "url", d.URL())
	return nil
}

// Clean restores the pristine pre-clone state: stack down, named
// containers and per-site network removed, site directory and stale
// archive deleted. Every step tolerates absence.
func (dr *Driver) Clean(ctx context.Context, d *site.Descriptor) error {
	if _, err := os.Stat(d.ComposeFile()); err == nil {
		if err := dr.composeCmd(ctx, d, "down", "--remove-orphans"); err != nil {
			logger.Warn("Compose down reported an error, continuing", "error", err)
		}
	}

	for _, name := range []string{d.N8NContainer, d.NginxContainer} {
		if err := dr.Runtime.RemoveContainerByName(ctx, name); err != nil {
			return err
		}
	}

	if err := dr.Runtime.RemoveNetwork(ctx, d.Network); err != nil {
		return err
	}

	if err := os.Remove(d.LocalArchive()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale archive: %w", err)
	}
	if err := os.RemoveAll(d.Dir); err != nil {
		return fmt.Errorf("failed to remove site directory %s: %w", d.Dir, err)
	}

	logger.Info("Clean state restored", "site", d.LocalDomain)
	return nil
}

func (dr *Driver) composeCmd(ctx context.Context, d *site.Descriptor, args ...string) error {
	cmdArgs := append([]string{"compose", "-f", d.ComposeFile(), "-p", d.Directory}, args...)
	return dr.Runner.Run(ctx, cmdexec.Command{Name: "docker", Args: cmdArgs, Dir: d.Dir})
}

// probe polls the site through the shared proxy until it answers, with
// bounded backoff. Any response below 500 counts as ready: the editor may
// answer 200 or 401 depending on basic auth.
func (dr *Driver) probe(ctx context.Context, d *site.Descriptor) error {
	ctx, cancel := context.WithTimeout(ctx, dr.ReadyTimeout)
	defer cancel()

	backoff := 500 * time.Millisecond
	const maxBackoff = 5 * time.Second

	logger.Info("Waiting for site to answer", "host", d.LocalDomain, "via", dr.ProxyAddr)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+dr.ProxyAddr+"/", nil)
		if err != nil {
			return fmt.Errorf("failed to build readiness request: %w", err)
		}
		req.Host = d.LocalDomain

		resp, err := dr.HTTPClient.Do(req)
		if err == nil {
			status := resp.StatusCode
			resp.Body.Close()
			if status < http.StatusInternalServerError {
				logger.Debug("Readiness probe answered", "status", status)
				return nil
			}
			logger.Debug("Readiness probe not ready", "status", status)
		} else {
			logger.Debug("Readiness probe failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("site %s did not become ready within %s", d.LocalDomain, dr.ReadyTimeout)
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

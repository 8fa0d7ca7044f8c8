package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/refinedigital/n8n-local/pkg/cmdexec"
	"github.com/refinedigital/n8n-local/pkg/logger"
)

// minComposeVersion is the oldest docker compose plugin the generated
// stack definition is known to work with.
var minComposeVersion = semver.MustParse("2.0.0")

// ContainerRuntime is the slice of the Docker client the checker needs.
type ContainerRuntime interface {
	Ping(ctx context.Context) error
	IsContainerRunning(ctx context.Context, name string) (bool, error)
	NetworkExists(ctx context.Context, name string) (bool, error)
}

// Checker validates that an infrastructure profile's runtime objects are
// in place. It fails closed: the first failing check aborts the pipeline
// before any remote command or file mutation happens.
type Checker struct {
	Runtime ContainerRuntime
	Runner  cmdexec.Runner
}

// Check runs every precondition for the profile, logging one confirmation
// line per passing check.
func (c *Checker) Check(ctx context.Context, p *Profile) error {
	if err := c.Runtime.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon is not reachable (is Docker running?): %w", err)
	}
	logger.Info("Docker daemon reachable")

	if err := c.checkComposeVersion(ctx); err != nil {
		return err
	}

	for _, name := range p.RequiredContainers() {
		running, err := c.Runtime.IsContainerRunning(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check container %s: %w", name, err)
		}
		if !running {
			return fmt.Errorf("required container %q is not running (start it with: docker start %s)", name, name)
		}
		logger.Info("Required container running", "name", name)
	}

	for _, name := range p.RequiredNetworks() {
		exists, err := c.Runtime.NetworkExists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check network %s: %w", name, err)
		}
		if !exists {
			return fmt.Errorf("required network %q does not exist (create it with: docker network create %s)", name, name)
		}
		logger.Info("Required network present", "name", name)
	}

	logger.Info("Infrastructure preconditions satisfied", "infrastructure", p.Name)
	return nil
}

func (c *Checker) checkComposeVersion(ctx context.Context) error {
	out, err := c.Runner.Output(ctx, cmdexec.Command{
		Name: "docker",
		Args: []string{"compose", "version", "--short"},
	})
	if err != nil {
		return fmt.Errorf("docker compose plugin not available (install docker-compose-plugin): %w", err)
	}

	v, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(out), "v"))
	if err != nil {
		return fmt.Errorf("failed to parse docker compose version %q: %w", out, err)
	}
	if v.LessThan(minComposeVersion) {
		return fmt.Errorf("docker compose %s is too old, need at least %s", v, minComposeVersion)
	}

	logger.Info("docker compose available", "version", v.String())
	return nil
}

package docker

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/refinedigital/n8n-local/pkg/logger"
)

// stopTimeoutSeconds is passed to the daemon when stopping containers.
const stopTimeoutSeconds = 30

// FindContainerByName returns the ID and running state of the container
// with the given name. An empty ID means no such container exists.
func (c *Client) FindContainerByName(ctx context.Context, name string) (string, bool, error) {
	containers, err := c.api.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return "", false, fmt.Errorf("failed to list containers: %w", err)
	}

	for _, cont := range containers {
		for _, n := range cont.Names {
			// Container names in the Docker API have a leading slash
			if strings.TrimPrefix(n, "/") == name {
				return cont.ID, cont.State == "running", nil
			}
		}
	}
	return "", false, nil
}

// IsContainerRunning reports whether a container with the given name is
// currently running.
func (c *Client) IsContainerRunning(ctx context.Context, name string) (bool, error) {
	_, running, err := c.FindContainerByName(ctx, name)
	return running, err
}

// StopContainer stops a container by ID.
func (c *Client) StopContainer(ctx context.Context, containerID string) error {
	timeout := stopTimeoutSeconds
	if err := c.api.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", containerID, err)
	}
	logger.Debug("Container stopped", "id", containerID)
	return nil
}

// RemoveContainer force-removes a container by ID.
func (c *Client) RemoveContainer(ctx context.Context, containerID string) error {
	if err := c.api.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}
	logger.Debug("Container removed", "id", containerID)
	return nil
}

// RemoveContainerByName force-stops and removes the container with the
// given name. A missing container is the expected steady state during
// teardown and is not an error.
func (c *Client) RemoveContainerByName(ctx context.Context, name string) error {
	id, running, err := c.FindContainerByName(ctx, name)
	if err != nil {
		return err
	}
	if id == "" {
		logger.Debug("No container to remove", "name", name)
		return nil
	}

	if running {
		if err := c.StopContainer(ctx, id); err != nil {
			logger.Warn("Failed to stop container, removing anyway", "name", name, "error", err)
		}
	}
	if err := c.RemoveContainer(ctx, id); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return err
	}
	logger.Info("Removed stale container", "name", name)
	return nil
}

// ContainerState returns the state string ("running", "exited", ...) of a
// container by name, or "" when the container does not exist.
func (c *Client) ContainerState(ctx context.Context, name string) (string, error) {
	id, _, err := c.FindContainerByName(ctx, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", nil
	}

	info, err := c.api.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to inspect container %s: %w", name, err)
	}
	return info.State.Status, nil
}

// ContainerLogs returns the collected logs of a container by name, used
// for diagnostics when a container exits during readiness polling.
func (c *Client) ContainerLogs(ctx context.Context, name string) (string, error) {
	id, _, err := c.FindContainerByName(ctx, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("no container named %s", name)
	}

	rc, err := c.api.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true, Tail: "50"})
	if err != nil {
		return "", fmt.Errorf("failed to get logs for container %s: %w", name, err)
	}
	defer rc.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(rc); err != nil {
		return "", fmt.Errorf("failed to read container logs: %w", err)
	}
	return buf.String(), nil
}

// WaitForContainerRunning polls a container by name until it is running,
// the timeout elapses, or it exits. On exit the container logs are folded
// into the error.
func (c *Client) WaitForContainerRunning(ctx context.Context, name string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for container %s to start", name)
		case <-time.After(time.Second):
			state, err := c.ContainerState(ctx, name)
			if err != nil {
				return fmt.Errorf("error checking state of container %s: %w", name, err)
			}

			switch state {
			case "running":
				return nil
			case "exited", "dead":
				logs, _ := c.ContainerLogs(context.WithoutCancel(ctx), name)
				return fmt.Errorf("container %s exited unexpectedly. Logs:\n%s", name, logs)
			}
		}
	}
}

package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"

	"github.com/refinedigital/n8n-local/pkg/logger"
)

// NetworkExists reports whether a network with the given name exists.
func (c *Client) NetworkExists(ctx context.Context, name string) (bool, error) {
	networks, err := c.api.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to list networks: %w", err)
	}
	for _, n := range networks {
		if n.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// EnsureNetwork creates the named bridge network when it does not exist
// yet. An already existing network is fine.
func (c *Client) EnsureNetwork(ctx context.Context, name string) error {
	exists, err := c.NetworkExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug("Network already exists", "name", name)
		return nil
	}

	if _, err := c.api.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"}); err != nil {
		if errdefs.IsConflict(err) {
			return nil
		}
		return fmt.Errorf("failed to create network %s: %w", name, err)
	}
	logger.Info("Network created", "name", name)
	return nil
}

// RemoveNetwork removes the named network. A missing network is the
// expected steady state during teardown and is not an error.
func (c *Client) RemoveNetwork(ctx context.Context, name string) error {
	exists, err := c.NetworkExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		logger.Debug("No network to remove", "name", name)
		return nil
	}

	if err := c.api.NetworkRemove(ctx, name); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to remove network %s: %w", name, err)
	}
	logger.Info("Network removed", "name", name)
	return nil
}

// Package docker wraps the Docker API client with the handful of
// operations the clone pipeline needs: name-based container lookup and
// teardown, network management and readiness polling.
package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/client"

	"github.com/refinedigital/n8n-local/pkg/logger"
)

// Client wraps the Docker API client.
type Client struct {
	api *client.Client
}

// NewClient creates a Docker client from the environment (DOCKER_HOST or
// the default socket) with API version negotiation.
func NewClient() (*Client, error) {
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &Client{api: api}, nil
}

// Ping checks that the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("cannot connect to Docker daemon: %w", err)
	}
	logger.Debug("Docker daemon reachable")
	return nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.api.Close()
}

// Package infra loads locally registered infrastructure profiles and
// verifies their preconditions before any remote command runs.
package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Profile is the structured configuration of one infrastructure, loaded
// from its env file. It is passed by value to later pipeline stages
// instead of being sourced into the process environment.
type Profile struct {
	Name string
	Dir  string

	// Local runtime objects the clone depends on.
	ProxyContainer  string // shared reverse proxy, must be running
	TunnelContainer string // optional ingress tunnel, advisory only
	SharedNetwork   string // network the proxy discovers services on

	// Remote side of the clone.
	RemoteUser string // login user on the production host
	RemoteRoot string // directory holding one site directory per domain

	// Values templated into the local stack.
	N8NImage          string
	BasicAuthUser     string
	BasicAuthPassword string
}

const (
	defaultProxyContainer  = "nginx-proxy"
	defaultTunnelContainer = "cloudflared"
	defaultSharedNetwork   = "proxy"
	defaultRemoteRoot      = "~/sites"
	defaultN8NImage        = "docker.n8n.io/n8nio/n8n:1.94.1"
)

// Root returns the directory holding infrastructure profiles,
// $XDG_CONFIG_HOME/n8n-local/infrastructures or the ~/.config fallback.
func Root() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "n8n-local", "infrastructures"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "n8n-local", "infrastructures"), nil
}

// Load reads the profile for the named infrastructure from root. It fails
// with a remediation hint when the profile directory or its env file is
// missing.
func Load(root, name string) (*Profile, error) {
	dir := filepath.Join(root, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("infrastructure %q not found under %s (register it with your infrastructure tool first)", name, root)
	}

	envFile := filepath.Join(dir, ".env")
	values, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("infrastructure %q has no readable env file at %s: %w", name, envFile, err)
	}

	p := &Profile{
		Name:              name,
		Dir:               dir,
		ProxyContainer:    defaultProxyContainer,
		TunnelContainer:   defaultTunnelContainer,
		SharedNetwork:     defaultSharedNetwork,
		RemoteUser:        values["REMOTE_USER"],
		RemoteRoot:        defaultRemoteRoot,
		N8NImage:          defaultN8NImage,
		BasicAuthUser:     values["BASIC_AUTH_USER"],
		BasicAuthPassword: values["BASIC_AUTH_PASSWORD"],
	}

	if v := values["PROXY_CONTAINER"]; v != "" {
		p.ProxyContainer = v
	}
	if v := values["TUNNEL_CONTAINER"]; v != "" {
		p.TunnelContainer = v
	}
	if v := values["SHARED_NETWORK"]; v != "" {
		p.SharedNetwork = v
	}
	if v := values["REMOTE_ROOT"]; v != "" {
		p.RemoteRoot = v
	}
	if v := values["N8N_IMAGE"]; v != "" {
		p.N8NImage = v
	}

	return p, nil
}

// RequiredContainers lists the container names that must be running before
// the pipeline proceeds.
func (p *Profile) RequiredContainers() []string {
	return []string{p.ProxyContainer}
}

// RequiredNetworks lists the network names that must exist before the
// pipeline proceeds.
func (p *Profile) RequiredNetworks() []string {
	return []string{p.SharedNetwork}
}

// RemoteSiteDir returns the site directory on the production host for the
// given domain.
func (p *Profile) RemoteSiteDir(domain string) string {
	return p.RemoteRoot + "/" + domain
}

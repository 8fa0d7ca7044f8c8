// Package sshcfg resolves the SSH connection target for an infrastructure
// by searching the user's SSH client configuration for a matching host
// alias. The config file is owned by the user, not by this tool; only a
// substring match against host patterns is contractual.
package sshcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// Endpoint is the resolved connection target for the remote fetch stage.
type Endpoint struct {
	Alias    string // host alias as written in the SSH config
	HostName string // actual connection target
	User     string // optional, empty means the profile's remote user
	Port     string // optional, empty means 22
}

// Target returns user@host when the endpoint carries a user, host
// otherwise.
func (e Endpoint) Target(fallbackUser string) string {
	user := e.User
	if user == "" {
		user = fallbackUser
	}
	if user == "" {
		return e.HostName
	}
	return user + "@" + e.HostName
}

// DefaultPath returns the user's SSH client configuration path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "config"), nil
}

// Resolve searches the SSH config at path for the first Host block whose
// alias contains the infrastructure name and returns its endpoint.
func Resolve(path, infrastructure string) (*Endpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH config %s: %w", path, err)
	}

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if alias == "*" || !strings.Contains(alias, infrastructure) {
				continue
			}

			ep := &Endpoint{Alias: alias, HostName: alias}
			for _, node := range host.Nodes {
				kv, ok := node.(*ssh_config.KV)
				if !ok {
					continue
				}
				switch strings.ToLower(kv.Key) {
				case "hostname":
					ep.HostName = kv.Value
				case "user":
					ep.User = kv.Value
				case "port":
					ep.Port = kv.Value
				}
			}
			return ep, nil
		}
	}

	return nil, fmt.Errorf("no host matching %q in %s (add a Host block for the infrastructure to your SSH config)", infrastructure, path)
}

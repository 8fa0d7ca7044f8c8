package sshcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_MatchesAliasContainingInfrastructure(t *testing.T) {
	path := writeConfig(t, `Host github.com
    HostName github.com

Host dev-fi-01.refine
    HostName 203.0.113.17
    User deploy
    Port 2222
`)

	ep, err := Resolve(path, "dev-fi-01")
	require.NoError(t, err)
	assert.Equal(t, "dev-fi-01.refine", ep.Alias)
	assert.Equal(t, "203.0.113.17", ep.HostName)
	assert.Equal(t, "deploy", ep.User)
	assert.Equal(t, "2222", ep.Port)
}

func TestResolve_HostNameDefaultsToAlias(t *testing.T) {
	path := writeConfig(t, `Host dev-fi-01
    User deploy
`)

	ep, err := Resolve(path, "dev-fi-01")
	require.NoError(t, err)
	assert.Equal(t, "dev-fi-01", ep.HostName)
}

func TestResolve_SkipsWildcardBlocks(t *testing.T) {
	path := writeConfig(t, `Host *
    ServerAliveInterval 60

Host dev-fi-01
    HostName 203.0.113.17
`)

	ep, err := Resolve(path, "dev-fi-01")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.17", ep.HostName)
}

func TestResolve_NoMatchFails(t *testing.T) {
	path := writeConfig(t, `Host github.com
    HostName github.com
`)

	_, err := Resolve(path, "dev-fi-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev-fi-01")
	assert.Contains(t, err.Error(), "SSH config")
}

func TestResolve_MissingFileFails(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "absent"), "dev-fi-01")
	assert.Error(t, err)
}

func TestEndpoint_Target(t *testing.T) {
	assert.Equal(t, "deploy@h", Endpoint{HostName: "h", User: "deploy"}.Target("other"))
	assert.Equal(t, "other@h", Endpoint{HostName: "h"}.Target("other"))
	assert.Equal(t, "h", Endpoint{HostName: "h"}.Target(""))
}

package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	writeProfile(t, root, "dev-fi-01", "REMOTE_USER=deploy\n")

	p, err := Load(root, "dev-fi-01")
	require.NoError(t, err)

	assert.Equal(t, "dev-fi-01", p.Name)
	assert.Equal(t, "deploy", p.RemoteUser)
	assert.Equal(t, "nginx-proxy", p.ProxyContainer)
	assert.Equal(t, "cloudflared", p.TunnelContainer)
	assert.Equal(t, "proxy", p.SharedNetwork)
	assert.Equal(t, "~/sites", p.RemoteRoot)
	assert.NotEmpty(t, p.N8NImage)
}

func TestLoad_Overrides(t *testing.T) {
	root := t.TempDir()
	writeProfile(t, root, "dev-fi-01", `REMOTE_USER=deploy
REMOTE_ROOT=/srv/sites
PROXY_CONTAINER=traefik
SHARED_NETWORK=edge
N8N_IMAGE=docker.n8n.io/n8nio/n8n:1.90.0
BASIC_AUTH_USER=dev
BASIC_AUTH_PASSWORD=hunter2
`)

	p, err := Load(root, "dev-fi-01")
	require.NoError(t, err)

	assert.Equal(t, "/srv/sites", p.RemoteRoot)
	assert.Equal(t, "traefik", p.ProxyContainer)
	assert.Equal(t, "edge", p.SharedNetwork)
	assert.Equal(t, "docker.n8n.io/n8nio/n8n:1.90.0", p.N8NImage)
	assert.Equal(t, "dev", p.BasicAuthUser)
	assert.Equal(t, "hunter2", p.BasicAuthPassword)

	assert.Equal(t, []string{"traefik"}, p.RequiredContainers())
	assert.Equal(t, []string{"edge"}, p.RequiredNetworks())
	assert.Equal(t, "/srv/sites/ai.refine.digital", p.RemoteSiteDir("ai.refine.digital"))
}

func TestLoad_MissingProfileDir(t *testing.T) {
	_, err := Load(t.TempDir(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_MissingEnvFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dev-fi-01"), 0o755))

	_, err := Load(root, "dev-fi-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env file")
}

package compose

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/refinedigital/n8n-local/internal/infra"
	"github.com/refinedigital/n8n-local/internal/site"
)

func testSite(t *testing.T) *site.Descriptor {
	t.Helper()
	d, err := site.Derive("dev-fi-01", "ai.refine.digital", t.TempDir())
	require.NoError(t, err)
	return d
}

func testProfile() *infra.Profile {
	return &infra.Profile{
		Name:          "dev-fi-01",
		SharedNetwork: "proxy",
		N8NImage:      "docker.n8n.io/n8nio/n8n:1.94.1",
	}
}

func TestGenerate_TwoServicesTwoNetworks(t *testing.T) {
	f := Generate(testSite(t), testProfile())

	assert.Equal(t, "local-ai-refine-digital", f.Name)
	require.Len(t, f.Services, 2)
	require.Len(t, f.Networks, 2)

	n8n := f.Services["n8n"]
	assert.Equal(t, "docker.n8n.io/n8nio/n8n:1.94.1", n8n.Image)
	assert.Equal(t, "local-ai-refine-digital-n8n-1", n8n.ContainerName)
	assert.Equal(t, "unless-stopped", n8n.Restart)
	assert.Contains(t, n8n.Environment, "N8N_HOST=local-ai.refine.digital")
	assert.Contains(t, n8n.Environment, "N8N_PROTOCOL=http")
	assert.Contains(t, n8n.Environment, "WEBHOOK_URL=http://local-ai.refine.digital/")
	assert.Contains(t, n8n.Environment, "N8N_DIAGNOSTICS_ENABLED=false")
	assert.Contains(t, n8n.Volumes, "./n8n-data:/home/node/.n8n")
	assert.Equal(t, []string{"site"}, n8n.Networks)

	nginx := f.Services["nginx"]
	assert.Equal(t, "local-ai-refine-digital-nginx-1", nginx.ContainerName)
	assert.Contains(t, nginx.Environment, "VIRTUAL_HOST=local-ai.refine.digital")
	assert.Contains(t, nginx.Environment, "VIRTUAL_PORT=80")
	assert.Equal(t, []string{"n8n"}, nginx.DependsOn)
	assert.ElementsMatch(t, []string{"site", "proxy"}, nginx.Networks)

	assert.Equal(t, Network{External: true, Name: "local-ai.refine.digital"}, f.Networks["site"])
	assert.Equal(t, Network{External: true, Name: "proxy"}, f.Networks["proxy"])
}

func TestGenerate_BasicAuth(t *testing.T) {
	p := testProfile()
	p.BasicAuthUser = "dev"
	p.BasicAuthPassword = "hunter2"

	f := Generate(testSite(t), p)
	env := f.Services["n8n"].Environment
	assert.Contains(t, env, "N8N_BASIC_AUTH_ACTIVE=true")
	assert.Contains(t, env, "N8N_BASIC_AUTH_USER=dev")
	assert.Contains(t, env, "N8N_BASIC_AUTH_PASSWORD=hunter2")
}

func TestGenerate_BasicAuthDisabledWithoutUser(t *testing.T) {
	f := Generate(testSite(t), testProfile())
	assert.Contains(t, f.Services["n8n"].Environment, "N8N_BASIC_AUTH_ACTIVE=false")
}

func TestWrite_ProducesParsableYAML(t *testing.T) {
	d := testSite(t)
	f := Generate(d, testProfile())

	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, f.Write(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# Generated by n8n-local"))

	var parsed File
	require.NoError(t, yaml.Unmarshal(raw, &parsed))
	assert.Equal(t, f.Name, parsed.Name)
	assert.Equal(t, f.Services["n8n"].ContainerName, parsed.Services["n8n"].ContainerName)
	assert.Equal(t, f.Networks["site"], parsed.Networks["site"])
}

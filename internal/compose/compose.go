// Package compose emits the declarative two-service stack definition for
// one local site: the n8n workflow engine and an nginx sidecar that the
// shared proxy discovers through VIRTUAL_HOST.
package compose

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/refinedigital/n8n-local/internal/infra"
	"github.com/refinedigital/n8n-local/internal/site"
)

const header = "# Generated by n8n-local. Re-running the clone overwrites this file.\n"

// File is the compose definition document.
type File struct {
	Name     string             `yaml:"name"`
	Services map[string]Service `yaml:"services"`
	Networks map[string]Network `yaml:"networks"`
}

// Service is one compose service entry.
type Service struct {
	Image         string   `yaml:"image"`
	ContainerName string   `yaml:"container_name"`
	Restart       string   `yaml:"restart"`
	Environment   []string `yaml:"environment,omitempty"`
	Volumes       []string `yaml:"volumes,omitempty"`
	Expose        []string `yaml:"expose,omitempty"`
	DependsOn     []string `yaml:"depends_on,omitempty"`
	Networks      []string `yaml:"networks"`
}

// Network is one compose network entry. Both networks are external: the
// per-site network is pre-created by the lifecycle driver, the shared one
// belongs to the infrastructure.
type Network struct {
	External bool   `yaml:"external"`
	Name     string `yaml:"name"`
}

// Generate builds the stack definition for a site.
func Generate(d *site.Descriptor, p *infra.Profile) *File {
	n8nEnv := []string{
		"N8N_HOST=" + d.LocalDomain,
		"N8N_PORT=5678",
		"N8N_PROTOCOL=http",
		"WEBHOOK_URL=http://" + d.LocalDomain + "/",
		"N8N_DIAGNOSTICS_ENABLED=false",
		"N8N_VERSION_NOTIFICATIONS_ENABLED=false",
	}
	if p.BasicAuthUser != "" {
		n8nEnv = append(n8nEnv,
			"N8N_BASIC_AUTH_ACTIVE=true",
			"N8N_BASIC_AUTH_USER="+p.BasicAuthUser,
			"N8N_BASIC_AUTH_PASSWORD="+p.BasicAuthPassword,
		)
	} else {
		n8nEnv = append(n8nEnv, "N8N_BASIC_AUTH_ACTIVE=false")
	}

	return &File{
		Name: d.Directory,
		Services: map[string]Service{
			"n8n": {
				Image:         p.N8NImage,
				ContainerName: d.N8NContainer,
				Restart:       "unless-stopped",
				Environment:   n8nEnv,
				Volumes:       []string{"./n8n-data:/home/node/.n8n"},
				Expose:        []string{"5678"},
				Networks:      []string{"site"},
			},
			"nginx": {
				Image:         "nginx:1.27-alpine",
				ContainerName: d.NginxContainer,
				Restart:       "unless-stopped",
				Environment: []string{
					"VIRTUAL_HOST=" + d.LocalDomain,
					"VIRTUAL_PORT=80",
				},
				Volumes: []string{
					"./nginx/default.conf:/etc/nginx/conf.d/default.conf:ro",
					"./logs/nginx:/var/log/nginx",
				},
				DependsOn: []string{"n8n"},
				Networks:  []string{"site", "proxy"},
			},
		},
		Networks: map[string]Network{
			"site":  {External: true, Name: d.Network},
			"proxy": {External: true, Name: p.SharedNetwork},
		},
	}
}

// Write marshals the definition and writes it to path.
func (f *File) Write(path string) error {
	out, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal compose definition: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(header), out...), 0o644); err != nil {
		return fmt.Errorf("failed to write compose file %s: %w", path, err)
	}
	return nil
}

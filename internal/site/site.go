// Package site derives every local name the clone pipeline needs from the
// two required CLI inputs. The derivation is pure: same inputs, same names.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// domainRe accepts dotted DNS names only. Anything else is rejected up
// front so malformed input never reaches a remote shell command.
var domainRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

// Descriptor holds the resolved identity of one local site clone.
type Descriptor struct {
	Infrastructure string
	Domain         string // production domain, e.g. ai.refine.digital
	LocalDomain    string // local-ai.refine.digital
	Directory      string // local-ai-refine-digital
	Network        string // per-site network, equals LocalDomain
	N8NContainer   string // local-ai-refine-digital-n8n-1
	NginxContainer string // local-ai-refine-digital-nginx-1
	Dir            string // absolute destination directory
}

// Derive resolves the site descriptor. folder may be empty (default sites
// root under the user home), "." (current working directory) or a path.
// The domain is normalized to lowercase: DNS is case-insensitive, while
// compose project names and container names must be lowercase.
func Derive(infrastructure, domain, folder string) (*Descriptor, error) {
	if infrastructure == "" {
		return nil, fmt.Errorf("infrastructure name is required")
	}
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	domain = strings.ToLower(domain)

	localDomain := "local-" + domain
	directory := strings.ReplaceAll(localDomain, ".", "-")

	base, err := resolveBase(folder)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		Infrastructure: infrastructure,
		Domain:         domain,
		LocalDomain:    localDomain,
		Directory:      directory,
		Network:        localDomain,
		N8NContainer:   directory + "-n8n-1",
		NginxContainer: directory + "-nginx-1",
		Dir:            filepath.Join(base, directory),
	}, nil
}

// ValidateDomain rejects anything that is not a plain dotted DNS name.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain is required")
	}
	if len(domain) > 253 {
		return fmt.Errorf("domain %q is too long", domain)
	}
	if !domainRe.MatchString(strings.ToLower(domain)) {
		return fmt.Errorf("invalid domain %q: expected a dotted DNS name like ai.example.com", domain)
	}
	return nil
}

// URL returns the local editor URL served through the shared proxy.
func (d *Descriptor) URL() string {
	return "http://" + d.LocalDomain
}

// EnvFile returns the path of the site's environment file.
func (d *Descriptor) EnvFile() string {
	return filepath.Join(d.Dir, ".env")
}

// ComposeFile returns the path of the generated compose definition.
func (d *Descriptor) ComposeFile() string {
	return filepath.Join(d.Dir, "docker-compose.yml")
}

// DataDir returns the path of the extracted n8n data directory.
func (d *Descriptor) DataDir() string {
	return filepath.Join(d.Dir, "n8n-data")
}

// ArchiveName returns the name of the transient data archive used for the
// remote-side compression step. The same name is used on both ends.
func (d *Descriptor) ArchiveName() string {
	return "n8n-data-" + d.Directory + ".tar.gz"
}

// LocalArchive returns where the transferred archive lands before
// extraction. It is removed again at the end of the run.
func (d *Descriptor) LocalArchive() string {
	return filepath.Join(d.Dir, d.ArchiveName())
}

func resolveBase(folder string) (string, error) {
	switch folder {
	case ".":
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		return cwd, nil
	case "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, "n8n-local"), nil
	default:
		abs, err := filepath.Abs(folder)
		if err != nil {
			return "", fmt.Errorf("failed to resolve folder %q: %w", folder, err)
		}
		return abs, nil
	}
}

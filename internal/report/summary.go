// Package report prints the end-of-run summary and removes the transient
// data archive.
package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/refinedigital/n8n-local/internal/infra"
	"github.com/refinedigital/n8n-local/internal/site"
	"github.com/refinedigital/n8n-local/pkg/logger"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(14)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// TunnelProber is the slice of the Docker client the tunnel advisory
// needs.
type TunnelProber interface {
	IsContainerRunning(ctx context.Context, name string) (bool, error)
}

// Reporter finishes a run: archive cleanup, tunnel advisory, summary.
type Reporter struct {
	Out    io.Writer
	Prober TunnelProber
}

// CleanupArchive deletes the local transient data archive left by the
// fetch stage. A missing archive is fine.
func (r *Reporter) CleanupArchive(d *site.Descriptor) error {
	err := os.Remove(d.LocalArchive())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove transient archive: %w", err)
	}
	if err == nil {
		logger.Info("Removed transient archive", "path", d.LocalArchive())
	}
	return nil
}

// Print writes the human-readable run summary. The tunnel probe only
// changes the printed guidance, never the outcome.
func (r *Reporter) Print(ctx context.Context, d *site.Descriptor, p *infra.Profile, logPath string) {
	lines := []string{
		titleStyle.Render("Local n8n site cloned: " + d.LocalDomain),
		"",
		labelStyle.Render("Editor") + d.URL(),
		labelStyle.Render("Containers") + d.N8NContainer + ", " + d.NginxContainer,
		labelStyle.Render("Network") + d.Network,
		labelStyle.Render("Storage") + d.Dir,
		labelStyle.Render("Session log") + logPath,
		"",
		labelStyle.Render("Manage") + fmt.Sprintf("docker compose -f %s -p %s {logs|restart|down}", d.ComposeFile(), d.Directory),
	}

	fmt.Fprintln(r.Out, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))

	if p.TunnelContainer == "" {
		return
	}
	running, err := r.Prober.IsContainerRunning(ctx, p.TunnelContainer)
	if err != nil {
		logger.Warn("Could not probe tunnel container", "name", p.TunnelContainer, "error", err)
		return
	}
	if running {
		fmt.Fprintln(r.Out, hintStyle.Render(fmt.Sprintf(
			"Tunnel container %q is running: the site may also be reachable through your tunnel ingress.", p.TunnelContainer)))
	} else {
		fmt.Fprintln(r.Out, hintStyle.Render(fmt.Sprintf(
			"Tunnel container %q is not running: add %s to /etc/hosts (127.0.0.1) to reach the site by name.", p.TunnelContainer, d.LocalDomain)))
	}
}

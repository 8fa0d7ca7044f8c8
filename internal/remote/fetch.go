// Package remote mirrors the production site directory and transfers the
// n8n data bundle. All transport goes through external tools (rsync, ssh,
// scp, tar) invoked with typed, locally validated command requests.
package remote

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/refinedigital/n8n-local/internal/infra"
	"github.com/refinedigital/n8n-local/internal/site"
	"github.com/refinedigital/n8n-local/internal/sshcfg"
	"github.com/refinedigital/n8n-local/pkg/cmdexec"
	"github.com/refinedigital/n8n-local/pkg/logger"
)

// dataDirName is the nested directory on the remote site holding the n8n
// state: SQLite database, binary data, custom nodes, credentials.
const dataDirName = "n8n-data"

// remotePathRe is the only shape of path ever interpolated into a remote
// shell command. Anything else is rejected before a connection is opened.
var remotePathRe = regexp.MustCompile(`^[A-Za-z0-9._~/-]+$`)

// Fetcher transfers one site from the resolved endpoint into the local
// site directory. Mirror must run before FetchData: extraction lands
// inside the freshly mirrored tree.
type Fetcher struct {
	Runner   cmdexec.Runner
	Endpoint *sshcfg.Endpoint
	Profile  *infra.Profile
	Site     *site.Descriptor
}

// Mirror performs a one-way mirror sync of the remote site directory into
// the local destination, deleting local files absent remotely. Re-running
// converges to the remote state.
func (f *Fetcher) Mirror(ctx context.Context) error {
	remoteDir := f.Profile.RemoteSiteDir(f.Site.Domain)
	if err := validateRemotePath(remoteDir); err != nil {
		return err
	}

	if err := os.MkdirAll(f.Site.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory %s: %w", f.Site.Dir, err)
	}

	target := f.Endpoint.Target(f.Profile.RemoteUser)
	args := []string{"-az", "--delete"}
	if f.Endpoint.Port != "" {
		args = append(args, "-e", "ssh -p "+f.Endpoint.Port)
	}
	args = append(args, target+":"+remoteDir+"/", f.Site.Dir+"/")

	logger.Info("Mirroring remote site", "from", target+":"+remoteDir, "to", f.Site.Dir)
	if err := f.Runner.Run(ctx, cmdexec.Command{Name: "rsync", Args: args}); err != nil {
		return fmt.Errorf("failed to mirror site from %s: %w", target, err)
	}
	return nil
}

// FetchData compresses the remote data directory into a transient archive,
// copies it down, removes the remote copy and extracts it into the site
// directory. The local archive is left in place for the cleanup stage.
func (f *Fetcher) FetchData(ctx context.Context) error {
	remoteDir := f.Profile.RemoteSiteDir(f.Site.Domain)
	remoteArchive := "/tmp/" + f.Site.ArchiveName()
	for _, p := range []string{remoteDir, remoteArchive} {
		if err := validateRemotePath(p); err != nil {
			return err
		}
	}

	target := f.Endpoint.Target(f.Profile.RemoteUser)

	logger.Info("Compressing remote data directory", "host", target, "archive", remoteArchive)
	if err := f.Runner.Run(ctx, f.sshCommand(target,
		"tar", "czf", remoteArchive, "-C", remoteDir, dataDirName)); err != nil {
		return fmt.Errorf("failed to compress remote data directory: %w", err)
	}

	logger.Info("Transferring data archive", "to", f.Site.LocalArchive())
	scpArgs := []string{}
	if f.Endpoint.Port != "" {
		scpArgs = append(scpArgs, "-P", f.Endpoint.Port)
	}
	scpArgs = append(scpArgs, target+":"+remoteArchive, f.Site.LocalArchive())
	if err := f.Runner.Run(ctx, cmdexec.Command{Name: "scp", Args: scpArgs}); err != nil {
		return fmt.Errorf("failed to transfer data archive: %w", err)
	}

	logger.Info("Removing remote archive", "host", target, "archive", remoteArchive)
	if err := f.Runner.Run(ctx, f.sshCommand(target, "rm", "-f", remoteArchive)); err != nil {
		return fmt.Errorf("failed to remove remote archive: %w", err)
	}

	logger.Info("Extracting data archive", "into", f.Site.Dir)
	if err := f.Runner.Run(ctx, cmdexec.Command{
		Name: "tar",
		Args: []string{"xzf", f.Site.LocalArchive(), "-C", f.Site.Dir},
	}); err != nil {
		return fmt.Errorf("failed to extract data archive: %w", err)
	}

	return nil
}

func (f *Fetcher) sshCommand(target string, remoteArgs ...string) cmdexec.Command {
	args := []string{}
	if f.Endpoint.Port != "" {
		args = append(args, "-p", f.Endpoint.Port)
	}
	args = append(args, target)
	args = append(args, remoteArgs...)
	return cmdexec.Command{Name: "ssh", Args: args}
}

func validateRemotePath(path string) error {
	if path == "" {
		return fmt.Errorf("remote path is empty")
	}
	if !remotePathRe.MatchString(path) {
		return fmt.Errorf("remote path %q contains unsafe characters", path)
	}
	return nil
}

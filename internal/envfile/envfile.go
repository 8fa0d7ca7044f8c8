// Package envfile repoints the cloned site's environment file at the
// local domain. Values are matched by key and rewritten structurally, so
// formatting drift in the production file cannot silently break the
// substitution.
package envfile

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"github.com/refinedigital/n8n-local/pkg/logger"
)

// Keys rewritten in the site env file. The host key carries a bare
// domain; the webhook keys carry full URLs whose scheme drops to http
// locally, since TLS terminates at the production proxy only.
const (
	KeyHost       = "N8N_HOST"
	KeyWebhook    = "WEBHOOK_URL"
	KeyWebhookAlt = "WEBHOOK_TUNNEL_URL"
)

// Change records one rewritten key.
type Change struct {
	Key string
	Old string
	New string
}

// Result reports what the rewrite did. Skipped lists keys that were
// absent or already pointed at the local domain.
type Result struct {
	Changes []Change
	Skipped []string
}

// Rewrite loads the env file at path and repoints the host and webhook
// keys from domain to localDomain. Running it twice is a no-op: after the
// first pass the production domain no longer appears in the values.
func Rewrite(path, domain, localDomain string) (*Result, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	res := &Result{}
	for _, key := range []string{KeyHost, KeyWebhook, KeyWebhookAlt} {
		old, ok := values[key]
		if !ok {
			res.Skipped = append(res.Skipped, key)
			continue
		}

		updated := strings.ReplaceAll(old, domain, localDomain)
		if key != KeyHost {
			updated = strings.ReplaceAll(updated, "https://", "http://")
		}

		if updated == old {
			res.Skipped = append(res.Skipped, key)
			continue
		}

		values[key] = updated
		res.Changes = append(res.Changes, Change{Key: key, Old: old, New: updated})
	}

	if len(res.Changes) == 0 {
		logger.Info("Env file already points at local domain", "path", path)
		return res, nil
	}

	if err := godotenv.Write(values, path); err != nil {
		return nil, fmt.Errorf("failed to write env file %s: %w", path, err)
	}

	for _, ch := range res.Changes {
		logger.Info("Rewrote env value", "key", ch.Key, "new", ch.New)
	}
	for _, key := range res.Skipped {
		logger.Debug("Env key unchanged", "key", key)
	}
	return res, nil
}

package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productionEnv = `N8N_HOST=ai.refine.digital
N8N_PROTOCOL=https
WEBHOOK_URL=https://ai.refine.digital/
WEBHOOK_TUNNEL_URL=https://ai.refine.digital/
GENERIC_TIMEZONE=Europe/Helsinki
`

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRewrite_RepointsHostAndWebhooks(t *testing.T) {
	path := writeEnv(t, productionEnv)

	res, err := Rewrite(path, "ai.refine.digital", "local-ai.refine.digital")
	require.NoError(t, err)
	assert.Len(t, res.Changes, 3)

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "local-ai.refine.digital", values["N8N_HOST"])
	assert.Equal(t, "http://local-ai.refine.digital/", values["WEBHOOK_URL"])
	assert.Equal(t, "http://local-ai.refine.digital/", values["WEBHOOK_TUNNEL_URL"])

	// untouched keys survive
	assert.Equal(t, "Europe/Helsinki", values["GENERIC_TIMEZONE"])
}

func TestRewrite_IsIdempotent(t *testing.T) {
	path := writeEnv(t, productionEnv)

	_, err := Rewrite(path, "ai.refine.digital", "local-ai.refine.digital")
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := Rewrite(path, "ai.refine.digital", "local-ai.refine.digital")
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.ElementsMatch(t, []string{KeyHost, KeyWebhook, KeyWebhookAlt}, res.Skipped)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second pass must not touch the file")
}

func TestRewrite_ToleratesFormattingDrift(t *testing.T) {
	// quoted values and uneven spacing would defeat an exact-line match;
	// key-based rewriting handles them.
	path := writeEnv(t, `N8N_HOST="ai.refine.digital"
WEBHOOK_URL='https://ai.refine.digital/'
`)

	res, err := Rewrite(path, "ai.refine.digital", "local-ai.refine.digital")
	require.NoError(t, err)
	assert.Len(t, res.Changes, 2)

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "local-ai.refine.digital", values["N8N_HOST"])
	assert.Equal(t, "http://local-ai.refine.digital/", values["WEBHOOK_URL"])
}

func TestRewrite_ReportsMissingKeys(t *testing.T) {
	path := writeEnv(t, "N8N_HOST=ai.refine.digital\n")

	res, err := Rewrite(path, "ai.refine.digital", "local-ai.refine.digital")
	require.NoError(t, err)
	assert.Len(t, res.Changes, 1)
	assert.ElementsMatch(t, []string{KeyWebhook, KeyWebhookAlt}, res.Skipped)
}

func TestRewrite_MissingFileFails(t *testing.T) {
	_, err := Rewrite(filepath.Join(t.TempDir(), "absent.env"), "a.b", "local-a.b")
	assert.Error(t, err)
}

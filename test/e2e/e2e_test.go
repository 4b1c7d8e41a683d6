// Package e2e drives the whole CLI in process against mock control planes.
// Each test builds a config file, points its profiles at httptest servers,
// and asserts on exit codes and rendered output, exactly as a user at a
// terminal would see them.
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/commands"
)

// runCLI executes one invocation with buffered streams.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = commands.Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// writeConfig drops raw TOML into a temp config file. Commands pass it via
// --config-file, which also keeps ambient environment variables out of
// credential resolution.
func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

func cloudConfig(t *testing.T, name, url string) string {
	t.Helper()
	return writeConfig(t, fmt.Sprintf(`[profiles.%s]
deployment_type = "cloud"
api_key = "test-key"
api_secret = "test-secret"
api_url = %q
`, name, url))
}

func enterpriseConfig(t *testing.T, name, url string) string {
	t.Helper()
	return writeConfig(t, fmt.Sprintf(`[profiles.%s]
deployment_type = "enterprise"
url = %q
username = "admin@cluster.local"
password = "admin-password"
`, name, url))
}

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

func TestFilesKey(t *testing.T) {
	cmd := FilesKey()

	require.NotNil(t, cmd)
	assert.Equal(t, "files-key", cmd.Use)

	names := subcommandNames(cmd)
	for _, expected := range []string{"get", "set", "remove"} {
		assert.True(t, names[expected], "Expected subcommand %s not found", expected)
	}

	get := findCommand(t, cmd, "get")
	assert.NotNil(t, get.Flags().Lookup("show"))

	set := findCommand(t, cmd, "set")
	assert.NotNil(t, set.Flags().Lookup("store-keyring"))
}

func TestFilesKey_SetAndGet(t *testing.T) {
	cfg := emptyConfig(t)

	code, _, errOut := run(t, "--config-file", cfg, "files-key", "set", "abcd12347890")
	require.Equal(t, errdefs.ExitOK, code, "stderr: %s", errOut)

	code, out, _ := run(t, "--config-file", cfg, "files-key", "get")
	assert.Equal(t, errdefs.ExitOK, code)
	assert.Equal(t, "abcd****7890\n", out)

	code, out, _ = run(t, "--config-file", cfg, "files-key", "get", "--show")
	assert.Equal(t, errdefs.ExitOK, code)
	assert.Equal(t, "abcd12347890\n", out)
}

func TestFilesKey_GetMissing(t *testing.T) {
	code, _, errOut := run(t, "--config-file", emptyConfig(t), "files-key", "get")

	assert.Equal(t, errdefs.ExitConfig, code)
	assert.Contains(t, errOut, "files-key set")
}

func TestFilesKey_SetNeedsValue(t *testing.T) {
	code, _, _ := run(t, "--config-file", emptyConfig(t), "files-key", "set")
	assert.Equal(t, errdefs.ExitUsage, code)
}

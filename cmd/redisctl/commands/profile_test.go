package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

func TestProfile(t *testing.T) {
	cmd := Profile()

	require.NotNil(t, cmd)
	assert.Equal(t, "profile", cmd.Use)
	assert.Equal(t, "Manage connection profiles", cmd.Short)

	names := subcommandNames(cmd)
	for _, expected := range []string{"list", "path", "show", "set", "remove", "default", "validate"} {
		assert.True(t, names[expected], "Expected subcommand %s not found", expected)
	}
}

func TestProfile_SetFlags(t *testing.T) {
	set := findCommand(t, Profile(), "set")

	for _, flag := range []string{
		"deployment-type",
		"api-key",
		"api-secret",
		"api-url",
		"url",
		"username",
		"password",
		"insecure",
		"host",
		"port",
		"db",
		"tls",
		"files-api-key",
		"store-keyring",
		"interactive",
	} {
		assert.NotNil(t, set.Flags().Lookup(flag), "Expected flag %s", flag)
	}
}

func TestProfile_SetRequiresNameOrInteractive(t *testing.T) {
	code, _, errOut := run(t, "--config-file", emptyConfig(t), "profile", "set")

	assert.Equal(t, errdefs.ExitUsage, code)
	assert.Contains(t, errOut, "profile name is required unless --interactive")
}

func TestProfile_ListEmptyConfig(t *testing.T) {
	code, out, _ := run(t, "--config-file", emptyConfig(t), "-o", "json", "profile", "list")

	assert.Equal(t, errdefs.ExitOK, code)
	assert.Equal(t, "[]\n", out)
}

func TestProfile_SetAndShowRoundTrip(t *testing.T) {
	cfg := emptyConfig(t)

	code, _, errOut := run(t, "--config-file", cfg, "profile", "set", "prod",
		"--deployment-type", "cloud", "--api-key", "k1", "--api-secret", "s1")
	require.Equal(t, errdefs.ExitOK, code, "stderr: %s", errOut)
	assert.Contains(t, errOut, `Profile "prod" saved`)

	code, out, _ := run(t, "--config-file", cfg, "-o", "json", "profile", "show", "prod")
	assert.Equal(t, errdefs.ExitOK, code)
	assert.Contains(t, out, `"name": "prod"`)
	assert.Contains(t, out, `"api_key": "k1"`)
}

func TestProfile_ShowUnknown(t *testing.T) {
	code, _, errOut := run(t, "--config-file", emptyConfig(t), "profile", "show", "ghost")

	assert.Equal(t, errdefs.ExitConfig, code)
	assert.Contains(t, errOut, `"ghost"`)
}

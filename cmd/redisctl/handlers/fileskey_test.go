package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/config"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

func TestFilesKeyGetMasked(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	cfg.FilesAPIKey = "abcdef1234567890"
	app, out, _ := testApp(t, cfg)

	require.NoError(t, FilesKeyGet(app, false))
	assert.Equal(t, "abcd****7890\n", out.String())

	out.Reset()
	require.NoError(t, FilesKeyGet(app, true))
	assert.Equal(t, "abcdef1234567890\n", out.String())
}

func TestFilesKeyGetShortKeyFullyMasked(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	cfg.FilesAPIKey = "tiny"
	app, out, _ := testApp(t, cfg)

	require.NoError(t, FilesKeyGet(app, false))
	assert.Equal(t, "********\n", out.String())
}

func TestFilesKeyGetMissing(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	err := FilesKeyGet(app, false)
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
}

func TestFilesKeyGetProfileOverride(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]*config.Profile{
		"e1": enterpriseProfile("https://cluster:9443"),
	})
	cfg.FilesAPIKey = "global-key-000000"
	cfg.Profile("e1").FilesAPIKey = "profile-key-11111"
	app, out, _ := testApp(t, cfg)
	app.Globals.Profile = "e1"

	require.NoError(t, FilesKeyGet(app, true))
	assert.Equal(t, "profile-key-11111\n", out.String())
}

func TestFilesKeySetGlobalAndProfile(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]*config.Profile{
		"e1": enterpriseProfile("https://cluster:9443"),
	})
	app, _, errOut := testApp(t, cfg)

	require.NoError(t, FilesKeySet(app, "k-global", false))
	assert.Equal(t, "k-global", app.Config.FilesAPIKey)
	assert.Contains(t, errOut.String(), "global")

	app.Globals.Profile = "e1"
	require.NoError(t, FilesKeySet(app, "k-profile", false))
	assert.Equal(t, "k-profile", app.Config.Profile("e1").FilesAPIKey)

	loaded, err := config.Load(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, "k-global", loaded.FilesAPIKey)
	assert.Equal(t, "k-profile", loaded.Profile("e1").FilesAPIKey)
}

func TestFilesKeySetUnknownProfile(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	app.Globals.Profile = "ghost"
	err := FilesKeySet(app, "k", false)
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
}

func TestFilesKeySetKeyring(t *testing.T) {
	origStore := storeSecret
	defer func() { storeSecret = origStore }()
	var gotKey, gotValue string
	storeSecret = func(service, key, value string) (string, error) {
		gotKey, gotValue = key, value
		return "keyring:" + service + "/" + key, nil
	}

	app, _, _ := testApp(t, nil)
	require.NoError(t, FilesKeySet(app, "sekrit", true))
	assert.Equal(t, "global/files_api_key", gotKey)
	assert.Equal(t, "sekrit", gotValue)
	assert.Equal(t, "keyring:redisctl/global/files_api_key", app.Config.FilesAPIKey)
}

func TestFilesKeyRemove(t *testing.T) {
	origDelete := deleteSecret
	defer func() { deleteSecret = origDelete }()
	var deleted []string
	deleteSecret = func(service, key string) error {
		deleted = append(deleted, service+"/"+key)
		return nil
	}

	cfg := testConfig(t, nil)
	cfg.FilesAPIKey = "keyring:redisctl/global/files_api_key"
	app, _, _ := testApp(t, cfg)

	require.NoError(t, FilesKeyRemove(app))
	assert.Empty(t, app.Config.FilesAPIKey)
	assert.Equal(t, []string{"redisctl/global/files_api_key"}, deleted)

	err := FilesKeyRemove(app)
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
}

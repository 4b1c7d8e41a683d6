package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/config"
	"github.com/joshrotenberg/redisctl/internal/config/wizard"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/secret"
)

func TestProfileListEmpty(t *testing.T) {
	t.Parallel()

	app, out, _ := testApp(t, nil)
	require.NoError(t, ProfileList(app))
	assert.Equal(t, "[]\n", out.String())
}

func TestProfileListMarksDefault(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]*config.Profile{
		"a": cloudProfile("https://api.example.com"),
		"b": cloudProfile("https://api.example.com"),
	})
	require.NoError(t, cfg.SetDefault("b"))

	app, out, _ := testApp(t, cfg)
	require.NoError(t, ProfileList(app))
	assert.Contains(t, out.String(), `"name": "a"`)
	assert.Contains(t, out.String(), `"default": true`)
}

func TestProfilePath(t *testing.T) {
	t.Parallel()

	app, out, _ := testApp(t, nil)
	require.NoError(t, ProfilePath(app))
	assert.Equal(t, app.Config.Path()+"\n", out.String())
}

func TestProfileShowNotFound(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]*config.Profile{
		"prod": cloudProfile(""),
	})
	app, _, _ := testApp(t, cfg)

	err := ProfileShow(app, "staging")
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
	assert.Contains(t, err.Error(), "prod")
}

func TestProfileShowJSONShowsStoredValues(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]*config.Profile{
		"prod": cloudProfile("https://api.example.com"),
	})
	app, out, _ := testApp(t, cfg)

	require.NoError(t, ProfileShow(app, "prod"))
	assert.Contains(t, out.String(), `"api_secret": "test-secret"`)
}

func TestProfileSetCreatesAndMerges(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	app, _, errOut := testApp(t, cfg)

	err := ProfileSet(context.Background(), app, ProfileInput{
		Name:           "prod",
		DeploymentType: "cloud",
		APIKey:         "k1",
		APISecret:      "s1",
	})
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), `Profile "prod" saved`)

	// Updating one field keeps the rest.
	err = ProfileSet(context.Background(), app, ProfileInput{
		Name:   "prod",
		APIKey: "k2",
	})
	require.NoError(t, err)

	p := app.Config.Profile("prod")
	require.NotNil(t, p)
	assert.Equal(t, "k2", p.APIKey)
	assert.Equal(t, "s1", p.APISecret)
	assert.Equal(t, config.DeploymentCloud, p.DeploymentType)

	// The file round-trips.
	loaded, err := config.Load(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, "k2", loaded.Profile("prod").APIKey)
}

func TestProfileSetRejectsInvalid(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	err := ProfileSet(context.Background(), app, ProfileInput{
		Name:           "bad",
		DeploymentType: "cloud",
	})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
	assert.Nil(t, app.Config.Profile("bad"))
}

func TestProfileSetStoreKeyring(t *testing.T) {
	stored := map[string]string{}
	origStore := storeSecret
	defer func() { storeSecret = origStore }()
	storeSecret = func(service, key, value string) (string, error) {
		stored[service+"/"+key] = value
		return secret.KeyringRef(service, key), nil
	}

	app, _, _ := testApp(t, nil)
	err := ProfileSet(context.Background(), app, ProfileInput{
		Name:           "prod",
		DeploymentType: "cloud",
		APIKey:         "k1",
		APISecret:      "s1",
		StoreKeyring:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", stored["redisctl/prod/api_secret"])
	p := app.Config.Profile("prod")
	assert.Equal(t, "keyring:redisctl/prod/api_key", p.APIKey)
	assert.Equal(t, "keyring:redisctl/prod/api_secret", p.APISecret)
}

func TestProfileSetInteractive(t *testing.T) {
	origWizard := runProfileWizard
	defer func() { runProfileWizard = origWizard }()
	runProfileWizard = func(ctx context.Context, name string) (*wizard.Result, error) {
		return &wizard.Result{
			Name:           "wizarded",
			DeploymentType: "enterprise",
			URL:            "https://cluster:9443",
			Username:       "admin@cluster.local",
			Password:       "pw",
		}, nil
	}

	app, _, _ := testApp(t, nil)
	err := ProfileSet(context.Background(), app, ProfileInput{Interactive: true})
	require.NoError(t, err)

	p := app.Config.Profile("wizarded")
	require.NotNil(t, p)
	assert.Equal(t, config.DeploymentEnterprise, p.DeploymentType)
	assert.Equal(t, "https://cluster:9443", p.URL)
}

func TestProfileRemoveCleansKeyring(t *testing.T) {
	var deleted []string
	origDelete := deleteSecret
	defer func() { deleteSecret = origDelete }()
	deleteSecret = func(service, key string) error {
		deleted = append(deleted, service+"/"+key)
		return nil
	}

	cfg := testConfig(t, map[string]*config.Profile{
		"prod": {
			DeploymentType: config.DeploymentCloud,
			APIKey:         "keyring:redisctl/prod/api_key",
			APISecret:      "keyring:other-service/prod/api_secret",
		},
	})
	require.NoError(t, cfg.SetDefault("prod"))
	app, _, errOut := testApp(t, cfg)

	require.NoError(t, ProfileRemove(app, "prod"))
	assert.Nil(t, app.Config.Profile("prod"))
	assert.Empty(t, app.Config.DefaultCloud)
	// Only entries under our own keyring service are deleted.
	assert.Equal(t, []string{"redisctl/prod/api_key"}, deleted)
	assert.Contains(t, errOut.String(), "removed")
}

func TestProfileRemoveNotFound(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	err := ProfileRemove(app, "ghost")
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
}

func TestProfileDefault(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, map[string]*config.Profile{
		"a": cloudProfile(""),
		"b": cloudProfile(""),
	})
	app, _, _ := testApp(t, cfg)

	require.NoError(t, ProfileDefault(app, "b"))
	assert.Equal(t, "b", app.Config.DefaultCloud)

	loaded, err := config.Load(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.DefaultCloud)
}

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer bad.Close()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig(t, map[string]*config.Profile{
		"cloud-ok":  cloudProfile(good.URL),
		"cloud-bad": cloudProfile(bad.URL),
		"ent-ok":    enterpriseProfile(good.URL),
		"db-ok": {
			DeploymentType: config.DeploymentDatabase,
			Host:           mr.Host(),
			Port:           port,
		},
	})
	app, out, _ := testApp(t, cfg)

	err = ProfileValidate(context.Background(), app, "")
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitValidation, errdefs.ExitCode(err))
	assert.Contains(t, err.Error(), "1 of 4")
	assert.Contains(t, out.String(), `"status": "ok"`)
	assert.Contains(t, out.String(), `"status": "failed"`)
}

func TestProfileValidateSingle(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cluster", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer good.Close()

	cfg := testConfig(t, map[string]*config.Profile{
		"ent": enterpriseProfile(good.URL),
	})
	app, _, _ := testApp(t, cfg)

	require.NoError(t, ProfileValidate(context.Background(), app, "ent"))

	err := ProfileValidate(context.Background(), app, "ghost")
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitConfig, errdefs.ExitCode(err))
}

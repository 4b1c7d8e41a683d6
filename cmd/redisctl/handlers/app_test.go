package handlers

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joshrotenberg/redisctl/internal/config"
	"github.com/joshrotenberg/redisctl/internal/conn"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/output"
)

// testApp builds an App over cfg with buffered streams and JSON output, so
// assertions see machine-clean results.
func testApp(t *testing.T, cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.New(filepath.Join(t.TempDir(), "config.toml"))
	}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	app := &App{
		Config: cfg,
		Conn:   conn.NewManager(cfg, logr.Discard()),
		Log:    logr.Discard(),
		Out:    out,
		ErrOut: errOut,
		Clock:  clockwork.NewRealClock(),
		format: output.FormatJSON,
	}
	return app, out, errOut
}

func testConfig(t *testing.T, profiles map[string]*config.Profile) *config.Config {
	t.Helper()
	cfg := config.New(filepath.Join(t.TempDir(), "config.toml"))
	for name, p := range profiles {
		cfg.SetProfile(name, p)
	}
	return cfg
}

func TestNewAppRejectsBadFormat(t *testing.T) {
	t.Parallel()

	_, err := NewApp(Globals{Output: "xml"})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))
}

func TestNewAppDefaults(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Globals{
		ConfigFile: filepath.Join(t.TempDir(), "missing.toml"),
		Output:     "json",
	})
	require.NoError(t, err)
	require.NotNil(t, app.Config)
	require.NotNil(t, app.Conn)
	assert.Equal(t, output.FormatJSON, app.Printer().Format())
}

func TestProgressSuppressedForMachineOutput(t *testing.T) {
	t.Parallel()

	app, _, errOut := testApp(t, nil)
	assert.Nil(t, app.Progress())

	app.format = output.FormatTable
	// Table output goes to a buffer, so Auto would resolve to JSON; the
	// explicit table format keeps decoration on.
	assert.Equal(t, errOut, app.Progress())
}

func TestLogCommandFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	app, _, _ := testApp(t, nil)
	app.Log = zapr.NewLogger(zap.New(core))
	app.Globals.Profile = "prod"

	app.logCommand("cloud subscription create", "wait", true)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "cloud subscription create", fields["command"])
	assert.Equal(t, "prod", fields["profile"])
	assert.Equal(t, true, fields["wait"])
	_, hasData := fields["data"]
	assert.False(t, hasData)
}

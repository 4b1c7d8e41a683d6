package support

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// fakeBundleAPI serves canned debuginfo bytes and a nodes listing.
type fakeBundleAPI struct {
	mu    sync.Mutex
	data  []byte
	err   error
	nodes string
	paths []string
}

func (f *fakeBundleAPI) GetBytes(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return f.data, f.err
}

func (f *fakeBundleAPI) Get(_ context.Context, path string) (json.RawMessage, error) {
	if f.nodes == "" || path != "/v1/nodes" {
		panic("unexpected Get " + path)
	}
	return json.RawMessage(f.nodes), nil
}
func (f *fakeBundleAPI) Post(context.Context, string, any) (json.RawMessage, error) {
	panic("unexpected Post")
}
func (f *fakeBundleAPI) Put(context.Context, string, any) (json.RawMessage, error) {
	panic("unexpected Put")
}
func (f *fakeBundleAPI) Delete(context.Context, string) (json.RawMessage, error) {
	panic("unexpected Delete")
}

func TestScopeEndpoints(t *testing.T) {
	tests := []struct {
		scope Scope
		path  string
		slug  string
	}{
		{ClusterScope(), "/v1/cluster/debuginfo", "cluster"},
		{AllNodesScope(), "/v1/nodes/debuginfo", "all-nodes"},
		{NodeScope("3"), "/v1/nodes/3/debuginfo", "node-3"},
		{DatabaseScope("7"), "/v1/bdbs/7/debuginfo", "database-7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.path, tt.scope.Path())
		assert.Equal(t, tt.slug, tt.scope.String())
	}
}

func TestDefaultFilename(t *testing.T) {
	at := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "support-package-cluster-20260824T153000.tar.gz", DefaultFilename(ClusterScope(), at))
	assert.Equal(t, "support-package-node-3-20260824T153000.tar.gz", DefaultFilename(NodeScope("3"), at))
}

func TestDownloadWritesBundle(t *testing.T) {
	api := &fakeBundleAPI{data: []byte("bundle-bytes")}
	d := NewDownloader(api, logr.Discard())

	path := filepath.Join(t.TempDir(), "out.tar.gz")
	report, err := d.Download(context.Background(), ClusterScope(), Options{Path: path})
	require.NoError(t, err)

	assert.Equal(t, []string{"/v1/cluster/debuginfo"}, api.paths)
	assert.Equal(t, path, report.Path)
	assert.Equal(t, int64(len("bundle-bytes")), report.SizeBytes)
	assert.NotEmpty(t, report.Size)
	assert.False(t, report.Optimized)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("bundle-bytes"), written)
}

func TestDownloadDefaultFilename(t *testing.T) {
	t.Chdir(t.TempDir())

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC))
	api := &fakeBundleAPI{data: []byte("x")}
	d := NewDownloader(api, logr.Discard(), WithClock(clock))

	report, err := d.Download(context.Background(), DatabaseScope("7"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "support-package-database-7-20260824T090000.tar.gz", report.Path)

	_, err = os.Stat(report.Path)
	require.NoError(t, err)
}

func TestDownloadOverwriteNeedsConsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("precious"), 0o600))

	old := confirmOverwrite
	confirmOverwrite = func(string) (bool, error) { return false, nil }
	t.Cleanup(func() { confirmOverwrite = old })

	api := &fakeBundleAPI{data: []byte("new")}
	d := NewDownloader(api, logr.Discard())

	_, err := d.Download(context.Background(), ClusterScope(), Options{Path: path})
	require.Error(t, err)
	assert.True(t, errdefs.IsValidation(err))
	assert.Empty(t, api.paths, "nothing downloads when the user declines")

	kept, _ := os.ReadFile(path)
	assert.Equal(t, []byte("precious"), kept)

	// Consent or --force allows the overwrite.
	confirmOverwrite = func(string) (bool, error) { return true, nil }
	_, err = d.Download(context.Background(), ClusterScope(), Options{Path: path})
	require.NoError(t, err)

	_, err = d.Download(context.Background(), ClusterScope(), Options{Path: path, Force: true})
	require.NoError(t, err)

	got, _ := os.ReadFile(path)
	assert.Equal(t, []byte("new"), got)
}

func TestDownloadOptimizes(t *testing.T) {
	bundle := makeTarGz(t, []tarEntry{
		{name: "redis.log", content: logLines(500)},
		{name: "config.conf", content: []byte("save 900 1\n")},
	})
	api := &fakeBundleAPI{data: bundle}
	d := NewDownloader(api, logr.Discard())

	path := filepath.Join(t.TempDir(), "small.tar.gz")
	report, err := d.Download(context.Background(), NodeScope("1"), Options{
		Path:        path,
		Optimize:    true,
		MaxLogLines: 10,
	})
	require.NoError(t, err)
	assert.True(t, report.Optimized)
	assert.Positive(t, report.SavedBytes)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := readTarGz(t, written)
	lines := strings.Split(strings.TrimSuffix(string(entries["redis.log"]), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "=== truncated to last 10 of 500 lines ===", lines[0])
	assert.Equal(t, "line 500", lines[10])
}

func TestDownloadEachNode(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC))
	api := &fakeBundleAPI{data: []byte("node bundle"), nodes: `[{"uid":1},{"uid":2},{"uid":3}]`}
	d := NewDownloader(api, logr.Discard(), WithClock(clock))

	dir := t.TempDir()
	reports, err := d.DownloadEachNode(context.Background(), dir, Options{})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	for i, uid := range []string{"1", "2", "3"} {
		assert.Equal(t, filepath.Join(dir, "support-package-node-"+uid+"-20260824T090000.tar.gz"), reports[i].Path)
		_, err := os.Stat(reports[i].Path)
		require.NoError(t, err)
	}
	assert.ElementsMatch(t,
		[]string{"/v1/nodes/1/debuginfo", "/v1/nodes/2/debuginfo", "/v1/nodes/3/debuginfo"},
		api.paths)
}

func TestDownloadEachNodeEmptyCluster(t *testing.T) {
	api := &fakeBundleAPI{nodes: `[]`}
	d := NewDownloader(api, logr.Discard())

	_, err := d.DownloadEachNode(context.Background(), t.TempDir(), Options{})
	require.Error(t, err)
	assert.True(t, errdefs.IsValidation(err))
}

func TestDownloadSurfacesAPIFailure(t *testing.T) {
	api := &fakeBundleAPI{err: errdefs.API(503, "maintenance")}
	d := NewDownloader(api, logr.Discard())

	_, err := d.Download(context.Background(), ClusterScope(), Options{
		Path: filepath.Join(t.TempDir(), "never.tar.gz"),
	})
	require.Error(t, err)
	assert.True(t, errdefs.IsAPI(err))
}

func TestPreflightMissingParent(t *testing.T) {
	err := preflight(filepath.Join(t.TempDir(), "no-such-dir", "bundle.tar.gz"), true, nil)
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitError, errdefs.ExitCode(err))
}

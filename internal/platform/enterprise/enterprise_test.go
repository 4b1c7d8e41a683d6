package enterprise

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/retry"
)

func testPolicy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = 2
	p.InitialBackoff = time.Millisecond
	p.MaxBackoff = 5 * time.Millisecond
	p.Jitter = 0
	return p
}

func jsonResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func TestBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		jsonResponse(w, http.StatusOK, map[string]any{"name": "cluster.local"})
	}))
	defer ts.Close()

	c, err := New(Config{
		URL:      ts.URL,
		Username: "admin@cluster.local",
		Password: "secret",
		Policy:   testPolicy(),
	}, logr.Discard())
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/v1/cluster")
	require.NoError(t, err)
	assert.True(t, gotOK)
	assert.Equal(t, "admin@cluster.local", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestUnauthenticatedBootstrap(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/bootstrap/create_cluster", r.URL.Path)
		jsonResponse(w, http.StatusOK, map[string]any{"action_uid": "a-1"})
	}))
	defer ts.Close()

	// No username: the bootstrap flow runs before the cluster has accounts.
	c, err := New(Config{URL: ts.URL, Policy: testPolicy()}, logr.Discard())
	require.NoError(t, err)

	raw, err := c.Post(context.Background(), "/v1/bootstrap/create_cluster", map[string]any{
		"action": "create_cluster",
	})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Contains(t, string(raw), "a-1")
}

func TestInsecureTLS(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"name": "cluster.local"})
	}))
	defer ts.Close()

	t.Run("skip verify reaches self-signed cluster", func(t *testing.T) {
		c, err := New(Config{
			URL:      ts.URL,
			Username: "admin",
			Password: "pw",
			Insecure: true,
			Policy:   testPolicy(),
		}, logr.Discard())
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/v1/cluster")
		assert.NoError(t, err)
	})

	t.Run("verification on by default", func(t *testing.T) {
		c, err := New(Config{
			URL:      ts.URL,
			Username: "admin",
			Password: "pw",
			Policy:   testPolicy(),
		}, logr.Discard())
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/v1/cluster")
		require.Error(t, err)
		assert.True(t, errdefs.IsTransport(err))
	})
}

func TestAPIErrorPreservesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error_code":  "db_exists",
			"description": "database with that name already exists",
		})
	}))
	defer ts.Close()

	c, err := New(Config{URL: ts.URL, Username: "admin", Password: "pw", Policy: testPolicy()}, logr.Discard())
	require.NoError(t, err)

	_, err = c.Post(context.Background(), "/v1/bdbs", map[string]any{"name": "cache"})
	require.Error(t, err)

	apiErr, ok := errdefs.AsAPI(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "db_exists")
}

func TestGetBytes(t *testing.T) {
	// Gzip magic then arbitrary bytes; the client must not touch them.
	payload := []byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x09, 0x6e, 0x88}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/debuginfo/all", r.URL.Path)
		w.Header().Set("Content-Type", "application/x-gzip")
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	c, err := New(Config{URL: ts.URL, Username: "admin", Password: "pw", Policy: testPolicy()}, logr.Discard())
	require.NoError(t, err)

	got, err := c.GetBytes(context.Background(), "/v1/debuginfo/all")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPostMultipart(t *testing.T) {
	module := []byte("module-binary-payload")
	var gotField, gotFilename string
	var gotData []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/modules", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotFilename = headers[0].Filename
			f, err := headers[0].Open()
			require.NoError(t, err)
			gotData, err = io.ReadAll(f)
			require.NoError(t, err)
			_ = f.Close()
		}
		jsonResponse(w, http.StatusOK, map[string]any{"action_uid": "a1"})
	}))
	defer ts.Close()

	c, err := New(Config{URL: ts.URL, Username: "admin", Password: "pw", Policy: testPolicy()}, logr.Discard())
	require.NoError(t, err)

	raw, err := c.PostMultipart(context.Background(), "/v2/modules", "module", "redisbloom.zip", module)
	require.NoError(t, err)
	assert.Equal(t, "module", gotField)
	assert.Equal(t, "redisbloom.zip", gotFilename)
	assert.Equal(t, module, gotData)
	assert.Contains(t, string(raw), "a1")
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(Config{Username: "admin"}, logr.Discard())
	require.Error(t, err)
	assert.True(t, errdefs.IsCredential(err))
}

func TestFromEnv(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		t.Setenv(EnvURL, "")
		_, err := FromEnv(logr.Discard())
		require.Error(t, err)
		assert.True(t, errdefs.IsCredential(err))
	})

	t.Run("full env", func(t *testing.T) {
		t.Setenv(EnvURL, "https://cluster.example.test:9443")
		t.Setenv(EnvUser, "admin@example.test")
		t.Setenv(EnvPassword, "pw")
		t.Setenv(EnvInsecure, "true")
		c, err := FromEnv(logr.Discard())
		require.NoError(t, err)
		assert.Equal(t, "https://cluster.example.test:9443", c.BaseURL())
	})
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "true", want: true},
		{in: "TRUE", want: true},
		{in: "1", want: true},
		{in: " true ", want: true},
		{in: "false", want: false},
		{in: "0", want: false},
		{in: "", want: false},
		{in: "yes", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envBool(tt.in), "input %q", tt.in)
	}
}

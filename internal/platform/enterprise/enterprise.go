// Package enterprise implements the Redis Enterprise cluster REST API client:
// basic auth, optional TLS skip-verify for self-signed clusters, and binary
// download for support packages.
package enterprise

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/retry"
)

// Environment fallbacks, usable without any profile configured.
const (
	EnvURL      = "REDIS_ENTERPRISE_URL"
	EnvUser     = "REDIS_ENTERPRISE_USER"
	EnvPassword = "REDIS_ENTERPRISE_PASSWORD"
	EnvInsecure = "REDIS_ENTERPRISE_INSECURE"
)

// Config carries resolved credentials for one cluster. Username may be empty:
// bootstrap endpoints are callable before the cluster has any admin account,
// so auth is attached only when credentials exist.
type Config struct {
	URL      string
	Username string
	Password string
	Insecure bool
	Policy   retry.Policy
}

// Client talks to one Enterprise cluster API. Satisfies platform.RawAPI.
type Client struct {
	rest *platform.REST
}

var _ platform.RawAPI = (*Client)(nil)

// New builds a client from resolved credentials.
func New(cfg Config, log logr.Logger, opts ...platform.RESTOption) (*Client, error) {
	if cfg.URL == "" {
		return nil, errdefs.Credentialf("enterprise client requires a cluster url")
	}
	var restOpts []platform.RESTOption
	if cfg.Username != "" {
		restOpts = append(restOpts, platform.WithBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.Insecure {
		restOpts = append(restOpts, platform.WithInsecureTLS())
	}
	restOpts = append(restOpts, opts...)
	return &Client{rest: platform.NewREST("enterprise", cfg.URL, cfg.Policy, log, restOpts...)}, nil
}

// FromEnv builds a client purely from REDIS_ENTERPRISE_* environment
// variables, for running without a config file at all.
func FromEnv(log logr.Logger) (*Client, error) {
	url := os.Getenv(EnvURL)
	if url == "" {
		return nil, errdefs.Credentialf("%s must be set", EnvURL)
	}
	return New(Config{
		URL:      url,
		Username: os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
		Insecure: envBool(os.Getenv(EnvInsecure)),
		Policy:   retry.Default(),
	}, log)
}

func envBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// BaseURL returns the cluster API base this client targets.
func (c *Client) BaseURL() string { return c.rest.BaseURL() }

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.rest.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.rest.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.rest.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.rest.Do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	return c.rest.DoBytes(ctx, path)
}

// PostMultipart uploads one file as a multipart form part. The v2 module
// endpoint takes the binary this way rather than as a JSON body.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, data []byte) (json.RawMessage, error) {
	return c.rest.DoMultipart(ctx, path, field, filename, data)
}

// Package cloud implements the Redis Cloud REST API client. Authentication
// is two stable request headers; everything else is the shared executor.
package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-logr/logr"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/retry"
)

// DefaultBaseURL is the production Cloud API.
const DefaultBaseURL = "https://api.redislabs.com/v1"

// Environment fallbacks, usable without any profile configured.
const (
	EnvAPIKey    = "REDIS_CLOUD_API_KEY"
	EnvAPISecret = "REDIS_CLOUD_API_SECRET"
	EnvAPIURL    = "REDIS_CLOUD_API_URL"
)

// Auth header names are public contract; the Cloud API routes on them.
const (
	HeaderAPIKey    = "x-api-key"
	HeaderAPISecret = "x-api-secret-key"
)

// Config carries resolved (plaintext) credentials for one client. Resolution
// from references happens in the connection manager before construction.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Policy    retry.Policy
}

// Client talks to the Cloud API. Satisfies platform.RawAPI.
type Client struct {
	rest *platform.REST
}

var _ platform.RawAPI = (*Client)(nil)

// New builds a client from resolved credentials.
func New(cfg Config, log logr.Logger, opts ...platform.RESTOption) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errdefs.Credentialf("cloud client requires api_key and api_secret")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	opts = append([]platform.RESTOption{
		platform.WithHeader(HeaderAPIKey, cfg.APIKey),
		platform.WithHeader(HeaderAPISecret, cfg.APISecret),
	}, opts...)
	return &Client{rest: platform.NewREST("cloud", base, cfg.Policy, log, opts...)}, nil
}

// FromEnv builds a client purely from REDIS_CLOUD_* environment variables,
// for running without a config file at all.
func FromEnv(log logr.Logger) (*Client, error) {
	key := os.Getenv(EnvAPIKey)
	secret := os.Getenv(EnvAPISecret)
	if key == "" || secret == "" {
		return nil, errdefs.Credentialf("%s and %s must both be set", EnvAPIKey, EnvAPISecret)
	}
	return New(Config{
		APIKey:    key,
		APISecret: secret,
		BaseURL:   os.Getenv(EnvAPIURL),
		Policy:    retry.Default(),
	}, log)
}

// BaseURL returns the API base this client targets.
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

// Package conn is the connection manager: it turns a profile name (or the
// ambient environment) into a ready client for the requested platform. Every
// call builds a fresh client; nothing is cached between invocations.
package conn

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/joshrotenberg/redisctl/internal/config"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform/cloud"
	"github.com/joshrotenberg/redisctl/internal/platform/enterprise"
	"github.com/joshrotenberg/redisctl/internal/platform/redisdb"
	"github.com/joshrotenberg/redisctl/internal/retry"
	"github.com/joshrotenberg/redisctl/internal/secret"
)

// Injection points for tests.
var (
	stdinIsTTY = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	promptPassword = func(ctx context.Context, target string) (string, error) {
		var pw string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Password for %s", target)).
					EchoMode(huh.EchoModePassword).
					Value(&pw),
			),
		).RunWithContext(ctx)
		return pw, err
	}
)

// Manager resolves profiles and credentials into clients. It holds the config
// loaded at process start; credentials are resolved lazily per call and never
// retained.
type Manager struct {
	cfg *config.Config
	log logr.Logger
}

// NewManager builds a manager over the loaded config.
func NewManager(cfg *config.Config, log logr.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// Config exposes the underlying config (profile commands mutate it).
func (m *Manager) Config() *config.Config { return m.cfg }

// envFallback names the environment variable consulted when a profile field
// fails to resolve. Fallbacks are disabled entirely when the config file was
// pinned with --config-file, so test rigs and CI see only the file.
func (m *Manager) envFallback(name string) string {
	if m.cfg.ExplicitPath() {
		return ""
	}
	return name
}

func (m *Manager) envValue(name string) (string, bool) {
	if m.cfg.ExplicitPath() {
		return "", false
	}
	return os.LookupEnv(name)
}

// Cloud builds a Cloud API client for the named profile, or for the
// REDIS_CLOUD_* environment when no profile matches and none was requested.
func (m *Manager) Cloud(ctx context.Context, profileName string) (*cloud.Client, error) {
	name, p, err := m.cfg.ResolveCloudProfile(profileName)
	if err != nil {
		if c, ok := m.cloudFromEnv(profileName); ok {
			return c, nil
		}
		return nil, err
	}

	apiKey, err := secret.Resolve(p.APIKey, "cloud API key", m.envFallback(cloud.EnvAPIKey))
	if err != nil {
		return nil, err
	}
	apiSecret, err := secret.Resolve(p.APISecret, "cloud API secret", m.envFallback(cloud.EnvAPISecret))
	if err != nil {
		return nil, err
	}
	baseURL, err := secret.Resolve(p.APIURL, "cloud API url", m.envFallback(cloud.EnvAPIURL))
	if err != nil {
		return nil, err
	}

	m.log.V(1).Info("building cloud client", "profile", name)
	return cloud.New(cloud.Config{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
		Policy:    retry.FromConfig(p.Resilience),
	}, m.log)
}

func (m *Manager) cloudFromEnv(profileName string) (*cloud.Client, bool) {
	if profileName != "" || m.cfg.ExplicitPath() {
		return nil, false
	}
	c, err := cloud.FromEnv(m.log)
	if err != nil {
		return nil, false
	}
	m.log.V(1).Info("building cloud client from environment")
	return c, true
}

// Enterprise builds a cluster API client for the named profile, or for the
// REDIS_ENTERPRISE_* environment when no profile matches and none was
// requested. A profile without a stored password falls back to
// REDIS_ENTERPRISE_PASSWORD, then to an interactive prompt on a TTY.
func (m *Manager) Enterprise(ctx context.Context, profileName string) (*enterprise.Client, error) {
	name, p, err := m.cfg.ResolveEnterpriseProfile(profileName)
	if err != nil {
		if c, ok := m.enterpriseFromEnv(profileName); ok {
			return c, nil
		}
		return nil, err
	}

	url, username, err := m.enterpriseIdentity(p)
	if err != nil {
		return nil, err
	}
	password, err := m.enterprisePassword(ctx, name, p, url)
	if err != nil {
		return nil, err
	}

	m.log.V(1).Info("building enterprise client", "profile", name)
	return enterprise.New(enterprise.Config{
		URL:      url,
		Username: username,
		Password: password,
		Insecure: p.Insecure,
		Policy:   retry.FromConfig(p.Resilience),
	}, m.log)
}

// EnterpriseBootstrap builds an unauthenticated client for the named
// profile's cluster. Bootstrap endpoints run before any admin account exists,
// so no credentials are resolved and nothing is prompted.
func (m *Manager) EnterpriseBootstrap(ctx context.Context, profileName string) (*enterprise.Client, error) {
	name, p, err := m.cfg.ResolveEnterpriseProfile(profileName)
	if err != nil {
		if url, ok := m.envValue(enterprise.EnvURL); ok && profileName == "" && url != "" {
			return enterprise.New(enterprise.Config{URL: url, Policy: retry.Default()}, m.log)
		}
		return nil, err
	}
	url, err := secret.Resolve(p.URL, "enterprise url", m.envFallback(enterprise.EnvURL))
	if err != nil {
		return nil, err
	}
	m.log.V(1).Info("building unauthenticated enterprise client", "profile", name)
	return enterprise.New(enterprise.Config{
		URL:      url,
		Insecure: p.Insecure,
		Policy:   retry.FromConfig(p.Resilience),
	}, m.log)
}

// EnterpriseWithCredentials builds a cluster client for the named profile's
// URL with explicit credentials, bypassing the stored ones. The init-cluster
// workflow uses it to switch to the admin account it just created.
func (m *Manager) EnterpriseWithCredentials(ctx context.Context, profileName, username, password string) (*enterprise.Client, error) {
	name, p, err := m.cfg.ResolveEnterpriseProfile(profileName)
	if err != nil {
		if url, ok := m.envValue(enterprise.EnvURL); ok && profileName == "" && url != "" {
			return enterprise.New(enterprise.Config{
				URL:      url,
				Username: username,
				Password: password,
				Policy:   retry.Default(),
			}, m.log)
		}
		return nil, err
	}
	url, err := secret.Resolve(p.URL, "enterprise url", m.envFallback(enterprise.EnvURL))
	if err != nil {
		return nil, err
	}
	m.log.V(1).Info("building enterprise client with explicit credentials", "profile", name)
	return enterprise.New(enterprise.Config{
		URL:      url,
		Username: username,
		Password: password,
		Insecure: p.Insecure,
		Policy:   retry.FromConfig(p.Resilience),
	}, m.log)
}

func (m *Manager) enterpriseIdentity(p *config.Profile) (url, username string, err error) {
	url, err = secret.Resolve(p.URL, "enterprise url", m.envFallback(enterprise.EnvURL))
	if err != nil {
		return "", "", err
	}
	username, err = secret.Resolve(p.Username, "enterprise username", m.envFallback(enterprise.EnvUser))
	if err != nil {
		return "", "", err
	}
	return url, username, nil
}

func (m *Manager) enterprisePassword(ctx context.Context, name string, p *config.Profile, url string) (string, error) {
	if p.Password != "" {
		return secret.Resolve(p.Password, "enterprise password", m.envFallback(enterprise.EnvPassword))
	}
	if v, ok := m.envValue(enterprise.EnvPassword); ok {
		return v, nil
	}
	if stdinIsTTY() {
		pw, err := promptPassword(ctx, url)
		if err != nil {
			return "", errdefs.Credentialf("password prompt aborted: %v", err)
		}
		return pw, nil
	}
	return "", errdefs.Credentialf("profile %q has no password; set %s or store one with 'redisctl profile set %s --password …'",
		name, enterprise.EnvPassword, name)
}

func (m *Manager) enterpriseFromEnv(profileName string) (*enterprise.Client, bool) {
	if profileName != "" || m.cfg.ExplicitPath() {
		return nil, false
	}
	c, err := enterprise.FromEnv(m.log)
	if err != nil {
		return nil, false
	}
	m.log.V(1).Info("building enterprise client from environment")
	return c, true
}

// Database builds a direct data-plane client for the named database profile.
func (m *Manager) Database(ctx context.Context, profileName string) (*redisdb.Client, error) {
	name, p, err := m.cfg.ResolveDatabaseProfile(profileName)
	if err != nil {
		return nil, err
	}
	username, err := secret.Resolve(p.Username, "database username", "")
	if err != nil {
		return nil, err
	}
	password, err := secret.Resolve(p.Password, "database password", "")
	if err != nil {
		return nil, err
	}

	m.log.V(1).Info("building database client", "profile", name)
	return redisdb.New(redisdb.Config{
		Host:     p.Host,
		Port:     p.Port,
		Username: username,
		Password: password,
		TLS:      p.TLS,
		DB:       p.DB,
	}, m.log), nil
}

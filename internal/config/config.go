package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// DeploymentType discriminates the credential variant a profile carries.
type DeploymentType string

const (
	// DeploymentCloud targets the hosted Cloud REST API.
	DeploymentCloud DeploymentType = "cloud"
	// DeploymentEnterprise targets a self-hosted Enterprise cluster REST API.
	DeploymentEnterprise DeploymentType = "enterprise"
	// DeploymentDatabase targets a Redis data-plane instance directly.
	DeploymentDatabase DeploymentType = "database"
)

// DefaultCloudAPIURL is the production Cloud API base.
const DefaultCloudAPIURL = "https://api.redislabs.com/v1"

// Profile is one named connection definition. The deployment_type field tags
// which group of fields is meaningful; the rest stay zero and are omitted
// from the TOML encoding.
type Profile struct {
	DeploymentType DeploymentType `toml:"deployment_type"`

	// Cloud fields.
	APIKey    string `toml:"api_key,omitempty"`
	APISecret string `toml:"api_secret,omitempty"`
	APIURL    string `toml:"api_url,omitempty"`

	// Enterprise fields.
	URL      string `toml:"url,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	Insecure bool   `toml:"insecure,omitempty"`

	// Database fields (direct data-plane connections).
	Host string `toml:"host,omitempty"`
	Port int    `toml:"port,omitempty"`
	TLS  bool   `toml:"tls,omitempty"`
	DB   int    `toml:"db,omitempty"`

	// FilesAPIKey overrides the global support-package upload key.
	FilesAPIKey string `toml:"files_api_key,omitempty"`

	// Resilience overrides the default HTTP retry policy for this profile.
	Resilience *Resilience `toml:"resilience,omitempty"`
}

// Resilience is the per-profile override block for the HTTP retry policy.
// Durations are milliseconds to keep the TOML flat and obvious.
type Resilience struct {
	TimeoutMS        int     `toml:"timeout_ms,omitempty"`
	ConnectTimeoutMS int     `toml:"connect_timeout_ms,omitempty"`
	MaxAttempts      int     `toml:"max_attempts,omitempty"`
	InitialBackoffMS int     `toml:"initial_backoff_ms,omitempty"`
	MaxBackoffMS     int     `toml:"max_backoff_ms,omitempty"`
	Multiplier       float64 `toml:"multiplier,omitempty"`
	Jitter           float64 `toml:"jitter,omitempty"`
}

// Timeout returns the request timeout override, or zero when unset.
func (r *Resilience) Timeout() time.Duration {
	if r == nil {
		return 0
	}
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Config is the process-wide configuration record.
type Config struct {
	DefaultCloud      string              `toml:"default_cloud,omitempty"`
	DefaultEnterprise string              `toml:"default_enterprise,omitempty"`
	FilesAPIKey       string              `toml:"files_api_key,omitempty"`
	Profiles          map[string]*Profile `toml:"profiles,omitempty"`

	// path is where this config was loaded from and where Save writes.
	path string
	// explicitPath records that the user pinned the file via --config-file,
	// which disables credential fallback to environment variables.
	explicitPath bool
}

// New returns an empty config bound to the given path.
func New(path string) *Config {
	return &Config{Profiles: make(map[string]*Profile), path: path}
}

// Path returns the file this config is bound to.
func (c *Config) Path() string { return c.path }

// ExplicitPath reports whether the user selected the config file by flag.
func (c *Config) ExplicitPath() bool { return c.explicitPath }

// SetProfile inserts or replaces a profile.
func (c *Config) SetProfile(name string, p *Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}
	c.Profiles[name] = p
}

// Profile returns the named profile, or nil.
func (c *Config) Profile(name string) *Profile {
	return c.Profiles[name]
}

// RemoveProfile deletes a profile. If either default slot names it, the slot
// is cleared so the invariant "defaults point at existing profiles" holds in
// the same persistence step. Reports whether the profile existed.
func (c *Config) RemoveProfile(name string) bool {
	if _, ok := c.Profiles[name]; !ok {
		return false
	}
	delete(c.Profiles, name)
	if c.DefaultCloud == name {
		c.DefaultCloud = ""
	}
	if c.DefaultEnterprise == name {
		c.DefaultEnterprise = ""
	}
	return true
}

// SetDefault marks the named profile as that platform's default.
func (c *Config) SetDefault(name string) error {
	p := c.Profiles[name]
	if p == nil {
		return errdefs.Configf("unknown profile %q", name)
	}
	switch p.DeploymentType {
	case DeploymentCloud:
		c.DefaultCloud = name
	case DeploymentEnterprise:
		c.DefaultEnterprise = name
	default:
		return errdefs.Configf("profile %q is a %s profile; only cloud and enterprise profiles can be defaults", name, p.DeploymentType)
	}
	return nil
}

// ProfileNames returns all profile names in lexicographic order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// namesOf returns profiles of one deployment type, sorted.
func (c *Config) namesOf(dt DeploymentType) []string {
	var names []string
	for name, p := range c.Profiles {
		if p.DeploymentType == dt {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FilesKeyFor returns the support-package upload key for a profile,
// preferring the per-profile override over the global value.
func (c *Config) FilesKeyFor(profileName string) string {
	if p := c.Profiles[profileName]; p != nil && p.FilesAPIKey != "" {
		return p.FilesAPIKey
	}
	return c.FilesAPIKey
}

// Validate checks the structural invariants: default slots must name existing
// profiles of the matching platform, and each profile must carry the fields
// its deployment type requires.
func (c *Config) Validate() error {
	if err := c.validateDefault(c.DefaultCloud, DeploymentCloud, "default_cloud"); err != nil {
		return err
	}
	if err := c.validateDefault(c.DefaultEnterprise, DeploymentEnterprise, "default_enterprise"); err != nil {
		return err
	}
	for name, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return errdefs.ConfigWrap(err, "profile %q", name)
		}
	}
	return nil
}

func (c *Config) validateDefault(name string, dt DeploymentType, slot string) error {
	if name == "" {
		return nil
	}
	p := c.Profiles[name]
	if p == nil {
		return errdefs.Configf("%s names unknown profile %q", slot, name)
	}
	if p.DeploymentType != dt {
		return errdefs.Configf("%s names %q, which is a %s profile", slot, name, p.DeploymentType)
	}
	return nil
}

// Validate checks that the profile carries the fields its type requires.
// Credential references are not resolved here; that happens lazily at client
// construction.
func (p *Profile) Validate() error {
	switch p.DeploymentType {
	case DeploymentCloud:
		if p.APIKey == "" || p.APISecret == "" {
			return fmt.Errorf("cloud profiles require api_key and api_secret")
		}
	case DeploymentEnterprise:
		if p.URL == "" {
			return fmt.Errorf("enterprise profiles require url")
		}
		if p.Username == "" {
			return fmt.Errorf("enterprise profiles require username")
		}
	case DeploymentDatabase:
		if p.Host == "" {
			return fmt.Errorf("database profiles require host")
		}
	case "":
		return fmt.Errorf("deployment_type is required (cloud, enterprise, or database)")
	default:
		return fmt.Errorf("unknown deployment_type %q", p.DeploymentType)
	}
	return nil
}

// Describe returns a one-line human summary of the profile's target,
// suitable for listings. Secrets never appear here.
func (p *Profile) Describe() string {
	switch p.DeploymentType {
	case DeploymentCloud:
		url := p.APIURL
		if url == "" {
			url = DefaultCloudAPIURL
		}
		return url
	case DeploymentEnterprise:
		return p.URL
	case DeploymentDatabase:
		port := p.Port
		if port == 0 {
			port = 6379
		}
		return fmt.Sprintf("%s:%d", p.Host, port)
	default:
		return string(p.DeploymentType)
	}
}

// formatProfileList renders "name (type), name (type)" hints for errors.
func formatProfileList(c *Config, names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, c.Profiles[name].DeploymentType))
	}
	return strings.Join(parts, ", ")
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// envRefPattern matches ${VAR} and ${VAR:-default} anywhere in the raw file.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// DefaultPath returns the canonical config file location for this platform.
//
// Linux uses XDG. macOS prefers the Linux-style ~/.config/redisctl when that
// directory already exists (dotfile repos sync it across machines), otherwise
// the conventional Application Support bundle path. Windows uses %APPDATA%.
func DefaultPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errdefs.Configf("APPDATA is not set; cannot locate config directory")
		}
		return filepath.Join(appData, "redis", "redisctl", "config.toml"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errdefs.ConfigWrap(err, "cannot locate home directory")
		}
		linuxStyle := filepath.Join(home, ".config", "redisctl")
		if info, err := os.Stat(linuxStyle); err == nil && info.IsDir() {
			return filepath.Join(linuxStyle, "config.toml"), nil
		}
		return filepath.Join(home, "Library", "Application Support", "com.redis.redisctl", "config.toml"), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "redisctl", "config.toml"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errdefs.ConfigWrap(err, "cannot locate home directory")
		}
		return filepath.Join(home, ".config", "redisctl", "config.toml"), nil
	}
}

// Load reads the config at path, or the default location when path is empty.
// A missing file yields an empty config bound to the resolved path; only a
// present-but-unreadable or unparseable file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- path is the user's own config
	if err != nil {
		if os.IsNotExist(err) {
			cfg := New(path)
			cfg.explicitPath = explicit
			return cfg, nil
		}
		return nil, errdefs.ConfigWrap(err, "failed to read config %s", path)
	}

	cfg := New(path)
	cfg.explicitPath = explicit
	expanded := ExpandEnv(string(raw))
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, errdefs.ConfigWrap(err, "failed to parse config %s", path)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	return cfg, nil
}

// ExpandEnv substitutes ${VAR} and ${VAR:-default} references in the raw
// config text. A set variable wins; an unset variable with a default takes
// the default; an unset variable without one passes through verbatim, so a
// reference for an unrelated profile never breaks loading. Substitution is
// textual and happens before TOML parsing.
func ExpandEnv(raw string) string {
	return envRefPattern.ReplaceAllStringFunc(raw, func(ref string) string {
		m := envRefPattern.FindStringSubmatch(ref)
		name, hasDefault, def := m[1], m[2] != "", m[3]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		if hasDefault {
			return def
		}
		return ref
	})
}

// Save writes the config back to its path atomically: the TOML is staged to
// a temp file in the target directory and renamed into place, so a failure
// mid-write leaves the previous file intact. Parent directories are created
// as needed. The file is private; profiles may hold plaintext secrets.
func (c *Config) Save() error {
	if c.path == "" {
		return errdefs.Configf("config has no path to save to")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errdefs.ConfigWrap(err, "failed to create config directory")
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		return errdefs.ConfigWrap(err, "failed to encode config")
	}

	if err := renameio.WriteFile(c.path, buf.Bytes(), 0o600); err != nil {
		return errdefs.ConfigWrap(err, "failed to write config %s", c.path)
	}
	return nil
}

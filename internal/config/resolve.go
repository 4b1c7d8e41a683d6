package config

import (
	"os"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// EnvProfileOverride is consulted between the --profile flag and the
// per-platform default slot.
const EnvProfileOverride = "REDISCTL_PROFILE"

// ResolveCloudProfile selects the cloud profile for this invocation.
func (c *Config) ResolveCloudProfile(explicit string) (string, *Profile, error) {
	return c.resolveProfile(DeploymentCloud, explicit)
}

// ResolveEnterpriseProfile selects the enterprise profile for this invocation.
func (c *Config) ResolveEnterpriseProfile(explicit string) (string, *Profile, error) {
	return c.resolveProfile(DeploymentEnterprise, explicit)
}

// ResolveDatabaseProfile selects a database profile; database profiles have
// no default slot, so selection is explicit > REDISCTL_PROFILE > first
// lexicographic.
func (c *Config) ResolveDatabaseProfile(explicit string) (string, *Profile, error) {
	return c.resolveProfile(DeploymentDatabase, explicit)
}

// resolveProfile applies the selection order: explicit name, REDISCTL_PROFILE,
// the platform default slot, then the first profile of the platform in
// lexicographic order. When no profile of the platform exists the error names
// profiles of the other platforms so the user sees what is configured.
func (c *Config) resolveProfile(dt DeploymentType, explicit string) (string, *Profile, error) {
	if explicit != "" {
		p := c.Profiles[explicit]
		if p == nil {
			return "", nil, errdefs.Configf("unknown profile %q (run 'redisctl profile list')", explicit)
		}
		if p.DeploymentType != dt {
			return "", nil, errdefs.Configf("profile %q is a %s profile, not %s", explicit, p.DeploymentType, dt)
		}
		return explicit, p, nil
	}

	// REDISCTL_PROFILE overrides default selection. A name that does not
	// exist at all is an error (typo protection); a profile of another
	// platform is skipped so one override does not break cross-platform
	// commands in the same shell.
	if env := os.Getenv(EnvProfileOverride); env != "" {
		p := c.Profiles[env]
		if p == nil {
			return "", nil, errdefs.Configf("%s names unknown profile %q", EnvProfileOverride, env)
		}
		if p.DeploymentType == dt {
			return env, p, nil
		}
	}

	if def := c.defaultFor(dt); def != "" {
		if p := c.Profiles[def]; p != nil && p.DeploymentType == dt {
			return def, p, nil
		}
	}

	if names := c.namesOf(dt); len(names) > 0 {
		return names[0], c.Profiles[names[0]], nil
	}

	if others := c.ProfileNames(); len(others) > 0 {
		return "", nil, errdefs.Configf(
			"no %s profile configured; available profiles: %s. Run 'redisctl profile set <name> --type %s' to create one",
			dt, formatProfileList(c, others), dt)
	}
	return "", nil, errdefs.Configf("no profiles configured; run 'redisctl profile set' to create one")
}

func (c *Config) defaultFor(dt DeploymentType) string {
	switch dt {
	case DeploymentCloud:
		return c.DefaultCloud
	case DeploymentEnterprise:
		return c.DefaultEnterprise
	default:
		return ""
	}
}

// Package wizard is the interactive profile builder behind
// `profile set --interactive`: a short sequence of forms that collects the
// deployment type and the credential fields that type needs.
package wizard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/joshrotenberg/redisctl/internal/config"
)

// Result holds the answers from the profile wizard. Numeric fields stay as
// strings until Profile() so the form can validate them in place.
type Result struct {
	Name           string
	DeploymentType string

	// Cloud
	APIKey    string
	APISecret string
	APIURL    string

	// Enterprise
	URL      string
	Username string
	Password string
	Insecure bool

	// Database
	Host string
	Port string
	DB   string
	TLS  bool

	// StoreKeyring asks for secrets to land in the OS keyring instead of
	// the config file.
	StoreKeyring bool
}

// Run walks the user through one profile definition. A non-empty name skips
// the name question. The context cancels the forms on Ctrl-C.
func Run(ctx context.Context, name string) (*Result, error) {
	result := &Result{
		Name:           name,
		DeploymentType: string(config.DeploymentCloud),
		APIURL:         config.DefaultCloudAPIURL,
		Port:           "6379",
		DB:             "0",
	}

	if err := runIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("profile identity: %w", err)
	}

	switch config.DeploymentType(result.DeploymentType) {
	case config.DeploymentCloud:
		if err := runCloudGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("cloud credentials: %w", err)
		}
	case config.DeploymentEnterprise:
		if err := runEnterpriseGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("enterprise credentials: %w", err)
		}
	case config.DeploymentDatabase:
		if err := runDatabaseGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("database connection: %w", err)
		}
	}

	if err := runStorageGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("secret storage: %w", err)
	}
	return result, nil
}

// Profile converts the collected answers into a config profile.
func (r *Result) Profile() (*config.Profile, error) {
	p := &config.Profile{DeploymentType: config.DeploymentType(r.DeploymentType)}

	switch p.DeploymentType {
	case config.DeploymentCloud:
		p.APIKey = r.APIKey
		p.APISecret = r.APISecret
		if r.APIURL != config.DefaultCloudAPIURL {
			p.APIURL = r.APIURL
		}
	case config.DeploymentEnterprise:
		p.URL = r.URL
		p.Username = r.Username
		p.Password = r.Password
		p.Insecure = r.Insecure
	case config.DeploymentDatabase:
		p.Host = r.Host
		p.TLS = r.TLS
		port, err := strconv.Atoi(r.Port)
		if err != nil {
			return nil, fmt.Errorf("port %q is not a number", r.Port)
		}
		p.Port = port
		if r.DB != "" {
			db, err := strconv.Atoi(r.DB)
			if err != nil {
				return nil, fmt.Errorf("db %q is not a number", r.DB)
			}
			p.DB = db
		}
	default:
		return nil, fmt.Errorf("unknown deployment type %q", r.DeploymentType)
	}
	return p, nil
}

// HasSecrets reports whether the result carries any value worth moving to
// the keyring.
func (r *Result) HasSecrets() bool {
	return r.APISecret != "" || r.APIKey != "" || r.Password != ""
}

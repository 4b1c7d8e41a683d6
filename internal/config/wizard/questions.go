package wizard

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/joshrotenberg/redisctl/internal/config"
)

// profileNameRegex keeps names usable as TOML keys and CLI arguments.
var profileNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// DeploymentTypeOptions is the select list for the profile kind.
var DeploymentTypeOptions = []huh.Option[string]{
	huh.NewOption("Cloud (hosted REST API)", string(config.DeploymentCloud)),
	huh.NewOption("Enterprise (self-hosted cluster)", string(config.DeploymentEnterprise)),
	huh.NewOption("Database (direct data plane)", string(config.DeploymentDatabase)),
}

// runIdentityGroup asks for the profile name (unless preset) and kind.
func runIdentityGroup(ctx context.Context, result *Result) error {
	fields := []huh.Field{}
	if result.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Profile Name").
			Description("How this connection shows up in `profile list`").
			Placeholder("prod").
			Value(&result.Name).
			Validate(ValidateProfileName))
	}
	fields = append(fields, huh.NewSelect[string]().
		Title("Deployment Type").
		Description("Which Redis control or data plane this profile targets").
		Options(DeploymentTypeOptions...).
		Value(&result.DeploymentType))

	return huh.NewForm(
		huh.NewGroup(fields...).Title("Profile"),
	).RunWithContext(ctx)
}

func runCloudGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				Description("Account key from the Cloud console (API access page)").
				Value(&result.APIKey).
				Validate(required("API key")),
			huh.NewInput().
				Title("API Secret").
				EchoMode(huh.EchoModePassword).
				Value(&result.APISecret).
				Validate(required("API secret")),
			huh.NewInput().
				Title("API URL").
				Description("Leave the default unless you target a staging API").
				Value(&result.APIURL).
				Validate(ValidateURL),
		).Title("Cloud Credentials"),
	).RunWithContext(ctx)
}

func runEnterpriseGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster URL").
				Placeholder("https://cluster.example.com:9443").
				Value(&result.URL).
				Validate(ValidateURL),
			huh.NewInput().
				Title("Username").
				Placeholder("admin@cluster.local").
				Value(&result.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				Description("Leave empty to be prompted per invocation").
				EchoMode(huh.EchoModePassword).
				Value(&result.Password),
			huh.NewConfirm().
				Title("Skip TLS certificate verification?").
				Description("Needed for clusters running on self-signed certificates").
				Value(&result.Insecure),
		).Title("Enterprise Cluster"),
	).RunWithContext(ctx)
}

func runDatabaseGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host").
				Placeholder("redis.example.com").
				Value(&result.Host).
				Validate(required("host")),
			huh.NewInput().
				Title("Port").
				Value(&result.Port).
				Validate(ValidatePort),
			huh.NewInput().
				Title("Username (optional)").
				Value(&result.Username),
			huh.NewInput().
				Title("Password (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&result.Password),
			huh.NewInput().
				Title("Database Number").
				Value(&result.DB).
				Validate(ValidateOptionalInt),
			huh.NewConfirm().
				Title("Connect over TLS?").
				Value(&result.TLS),
		).Title("Database Connection"),
	).RunWithContext(ctx)
}

func runStorageGroup(ctx context.Context, result *Result) error {
	if !result.HasSecrets() {
		return nil
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Store secrets in the OS keyring?").
				Description("The config file then holds keyring: references instead of plaintext").
				Value(&result.StoreKeyring),
		).Title("Secret Storage"),
	).RunWithContext(ctx)
}

// ValidateProfileName rejects names that would not survive as TOML keys.
func ValidateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	if !profileNameRegex.MatchString(name) {
		return fmt.Errorf("use letters, digits, dot, dash, or underscore")
	}
	return nil
}

// ValidateURL requires an absolute http(s) URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL needs a host")
	}
	return nil
}

// ValidatePort requires a TCP port number.
func ValidatePort(raw string) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// ValidateOptionalInt allows empty or a non-negative integer.
func ValidateOptionalInt(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

// required builds a non-empty validator with a field-specific message.
func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/config"
	"github.com/joshrotenberg/redisctl/internal/config/wizard"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/secret"
)

// Seams for tests: the wizard drives a terminal, the keyring talks to the OS
// secret service.
var (
	runProfileWizard = wizard.Run
	storeSecret      = secret.Store
	deleteSecret     = secret.Delete
)

// ProfileInput carries the `profile set` flag values. Cleared flags stay
// zero; the *Set booleans record which boolean flags were given so an
// existing profile's values survive partial updates.
type ProfileInput struct {
	Name           string
	DeploymentType string

	APIKey    string
	APISecret string
	APIURL    string

	URL      string
	Username string
	Password string
	Insecure bool
	// InsecureSet records whether --insecure was given explicitly.
	InsecureSet bool

	Host string
	Port int
	DB   int
	TLS  bool
	// TLSSet records whether --tls was given explicitly.
	TLSSet bool

	FilesAPIKey string

	StoreKeyring bool
	Interactive  bool
}

type profileRow struct {
	Name    string `json:"name"`
	Type    string `json:"deployment_type"`
	Default bool   `json:"default"`
	Details string `json:"details"`
}

type profileView struct {
	Name           string `json:"name"`
	DeploymentType string `json:"deployment_type"`
	APIKey         string `json:"api_key,omitempty"`
	APISecret      string `json:"api_secret,omitempty"`
	APIURL         string `json:"api_url,omitempty"`
	URL            string `json:"url,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Insecure       bool   `json:"insecure,omitempty"`
	Host           string `json:"host,omitempty"`
	Port           int    `json:"port,omitempty"`
	TLS            bool   `json:"tls,omitempty"`
	DB             int    `json:"db,omitempty"`
	FilesAPIKey    string `json:"files_api_key,omitempty"`
}

// ProfileList renders every configured profile with its default marker.
// Table output masks credential fields.
func ProfileList(app *App) error {
	app.logCommand("profile list")
	rows := []profileRow{}
	for _, name := range app.Config.ProfileNames() {
		p := app.Config.Profile(name)
		rows = append(rows, profileRow{
			Name:    name,
			Type:    string(p.DeploymentType),
			Default: name == app.Config.DefaultCloud || name == app.Config.DefaultEnterprise,
			Details: p.Describe(),
		})
	}
	if len(rows) == 0 && app.Progress() != nil {
		fmt.Fprintln(app.ErrOut, "No profiles configured. Create one with 'redisctl profile set <name>'.")
	}
	return app.Printer().PrintRedacted(rows)
}

// ProfilePath prints the config file location as a plain line.
func ProfilePath(app *App) error {
	app.logCommand("profile path")
	_, err := fmt.Fprintln(app.Out, app.Config.Path())
	return err
}

// ProfileShow renders one profile in full. Table output masks credential
// fields; JSON and YAML show stored values.
func ProfileShow(app *App, name string) error {
	app.logCommand("profile show", "name", name)
	p := app.Config.Profile(name)
	if p == nil {
		return profileNotFound(app.Config, name)
	}
	return app.Printer().PrintRedacted(profileView{
		Name:           name,
		DeploymentType: string(p.DeploymentType),
		APIKey:         p.APIKey,
		APISecret:      p.APISecret,
		APIURL:         p.APIURL,
		URL:            p.URL,
		Username:       p.Username,
		Password:       p.Password,
		Insecure:       p.Insecure,
		Host:           p.Host,
		Port:           p.Port,
		TLS:            p.TLS,
		DB:             p.DB,
		FilesAPIKey:    p.FilesAPIKey,
	})
}

// ProfileSet creates or updates a profile from flags, or interactively via
// the wizard. With --store-keyring, secrets land in the OS keyring and the
// config file keeps keyring: references.
func ProfileSet(ctx context.Context, app *App, in ProfileInput) error {
	app.logCommand("profile set", "name", in.Name, "interactive", in.Interactive, "store_keyring", in.StoreKeyring)

	name := in.Name
	var p *config.Profile
	if in.Interactive {
		res, err := runProfileWizard(ctx, name)
		if err != nil {
			return fmt.Errorf("profile wizard: %w", err)
		}
		name = res.Name
		p, err = res.Profile()
		if err != nil {
			return errdefs.Validationf("%s", err)
		}
		in.StoreKeyring = in.StoreKeyring || res.StoreKeyring
	} else {
		p = mergeProfile(app.Config.Profile(name), in)
	}

	if err := p.Validate(); err != nil {
		return errdefs.ConfigWrap(err, "invalid profile %q", name)
	}
	if in.StoreKeyring {
		if err := moveSecretsToKeyring(name, p); err != nil {
			return err
		}
	}

	app.Config.SetProfile(name, p)
	if err := app.Config.Save(); err != nil {
		return err
	}
	fmt.Fprintf(app.ErrOut, "Profile %q saved to %s\n", name, app.Config.Path())
	return nil
}

// mergeProfile overlays flag values on the existing profile, so updating one
// field does not wipe the rest.
func mergeProfile(existing *config.Profile, in ProfileInput) *config.Profile {
	p := &config.Profile{}
	if existing != nil {
		clone := *existing
		p = &clone
	}
	if in.DeploymentType != "" {
		p.DeploymentType = config.DeploymentType(in.DeploymentType)
	}
	if in.APIKey != "" {
		p.APIKey = in.APIKey
	}
	if in.APISecret != "" {
		p.APISecret = in.APISecret
	}
	if in.APIURL != "" {
		p.APIURL = in.APIURL
	}
	if in.URL != "" {
		p.URL = in.URL
	}
	if in.Username != "" {
		p.Username = in.Username
	}
	if in.Password != "" {
		p.Password = in.Password
	}
	if in.InsecureSet {
		p.Insecure = in.Insecure
	}
	if in.Host != "" {
		p.Host = in.Host
	}
	if in.Port != 0 {
		p.Port = in.Port
	}
	if in.DB != 0 {
		p.DB = in.DB
	}
	if in.TLSSet {
		p.TLS = in.TLS
	}
	if in.FilesAPIKey != "" {
		p.FilesAPIKey = in.FilesAPIKey
	}
	return p
}

// moveSecretsToKeyring stores each plaintext secret under the profile's
// keyring entries and replaces the profile fields with references. Values
// that already are references stay untouched.
func moveSecretsToKeyring(name string, p *config.Profile) error {
	fields := []struct {
		value *string
		key   string
	}{
		{&p.APIKey, "api_key"},
		{&p.APISecret, "api_secret"},
		{&p.Password, "password"},
		{&p.FilesAPIKey, "files_api_key"},
	}
	for _, f := range fields {
		if *f.value == "" || secret.IsRef(*f.value) {
			continue
		}
		ref, err := storeSecret(secret.KeyringService, name+"/"+f.key, *f.value)
		if err != nil {
			return err
		}
		*f.value = ref
	}
	return nil
}

// ProfileRemove deletes a profile, its keyring entries, and any default slot
// naming it.
func ProfileRemove(app *App, name string) error {
	app.logCommand("profile remove", "name", name)
	p := app.Config.Profile(name)
	if p == nil {
		return profileNotFound(app.Config, name)
	}
	for _, value := range []string{p.APIKey, p.APISecret, p.Password, p.FilesAPIKey} {
		service, key, ok := secret.ParseKeyringRef(value)
		if !ok || service != secret.KeyringService {
			continue
		}
		// Best effort: a missing entry must not block profile removal.
		_ = deleteSecret(service, key)
	}
	app.Config.RemoveProfile(name)
	if err := app.Config.Save(); err != nil {
		return err
	}
	fmt.Fprintf(app.ErrOut, "Profile %q removed\n", name)
	return nil
}

// ProfileDefault marks a profile as the default for its deployment type.
func ProfileDefault(app *App, name string) error {
	app.logCommand("profile default", "name", name)
	if err := app.Config.SetDefault(name); err != nil {
		return err
	}
	if err := app.Config.Save(); err != nil {
		return err
	}
	fmt.Fprintf(app.ErrOut, "Default profile set to %q\n", name)
	return nil
}

type validateRow struct {
	Profile string `json:"profile"`
	Type    string `json:"deployment_type"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// ProfileValidate checks each profile's credentials against its live
// endpoint: an account read for cloud, a cluster read for enterprise, and a
// PING for database profiles. With a name, only that profile is checked.
func ProfileValidate(ctx context.Context, app *App, name string) error {
	app.logCommand("profile validate", "name", name)
	names := app.Config.ProfileNames()
	if name != "" {
		if app.Config.Profile(name) == nil {
			return profileNotFound(app.Config, name)
		}
		names = []string{name}
	}
	if len(names) == 0 {
		return errdefs.Configf("no profiles configured; run 'redisctl profile set <name>' first")
	}

	rows := make([]validateRow, 0, len(names))
	failures := 0
	for _, n := range names {
		p := app.Config.Profile(n)
		row := validateRow{Profile: n, Type: string(p.DeploymentType), Status: "ok"}
		if err := checkProfile(ctx, app, n, p); err != nil {
			row.Status = "failed"
			row.Detail = err.Error()
			failures++
		}
		rows = append(rows, row)
	}
	if err := app.Printer().Print(rows); err != nil {
		return err
	}
	if failures > 0 {
		return errdefs.Validationf("%d of %d profile(s) failed validation", failures, len(names))
	}
	return nil
}

func checkProfile(ctx context.Context, app *App, name string, p *config.Profile) error {
	switch p.DeploymentType {
	case config.DeploymentCloud:
		client, err := app.Conn.Cloud(ctx, name)
		if err != nil {
			return err
		}
		_, err = client.Get(ctx, "/")
		return err
	case config.DeploymentEnterprise:
		client, err := app.Conn.Enterprise(ctx, name)
		if err != nil {
			return err
		}
		_, err = client.Get(ctx, "/v1/cluster")
		return err
	case config.DeploymentDatabase:
		db, err := app.Conn.Database(ctx, name)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = db.Ping(ctx)
		return err
	default:
		return fmt.Errorf("unknown deployment_type %q", p.DeploymentType)
	}
}

func profileNotFound(cfg *config.Config, name string) error {
	names := cfg.ProfileNames()
	if len(names) == 0 {
		return errdefs.Configf("profile %q not found; no profiles configured", name)
	}
	return errdefs.Configf("profile %q not found (have: %s)", name, strings.Join(names, ", "))
}

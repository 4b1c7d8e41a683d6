package handlers

import (
	"fmt"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/secret"
	"github.com/joshrotenberg/redisctl/internal/support"
)

// FilesKeyGet prints the support-upload key in effect for the current
// profile selection. The key is masked unless show is set.
func FilesKeyGet(app *App, show bool) error {
	app.logCommand("files-key get", "show", show)
	profile := app.Globals.Profile
	ref := app.Config.FilesKeyFor(profile)
	if ref == "" {
		return support.MissingKeyError(profile)
	}
	key, err := secret.Resolve(ref, "files.com API key", "")
	if err != nil {
		return err
	}
	if !show {
		key = maskKey(key)
	}
	_, err = fmt.Fprintln(app.Out, key)
	return err
}

// maskKey hides the middle of a key, keeping enough of the ends to tell
// keys apart.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", 8)
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// FilesKeySet stores the support-upload key, globally or on the selected
// profile when --profile is set. With --store-keyring the key goes to the
// OS keyring and the config keeps a reference.
func FilesKeySet(app *App, value string, storeKeyring bool) error {
	profile := app.Globals.Profile
	app.logCommand("files-key set", "profile", profile, "store_keyring", storeKeyring)
	if value == "" {
		return errdefs.Usage(fmt.Errorf("a key value is required"))
	}

	target := "global"
	if profile != "" {
		target = profile
	}
	if storeKeyring && !secret.IsRef(value) {
		ref, err := storeSecret(secret.KeyringService, target+"/files_api_key", value)
		if err != nil {
			return err
		}
		value = ref
	}

	if profile == "" {
		app.Config.FilesAPIKey = value
	} else {
		p := app.Config.Profile(profile)
		if p == nil {
			return profileNotFound(app.Config, profile)
		}
		p.FilesAPIKey = value
		app.Config.SetProfile(profile, p)
	}
	if err := app.Config.Save(); err != nil {
		return err
	}
	fmt.Fprintf(app.ErrOut, "Files.com API key set (%s)\n", target)
	return nil
}

// FilesKeyRemove clears the support-upload key, globally or on the selected
// profile, deleting any keyring entry it referenced.
func FilesKeyRemove(app *App) error {
	profile := app.Globals.Profile
	app.logCommand("files-key remove", "profile", profile)

	var ref string
	if profile == "" {
		ref = app.Config.FilesAPIKey
		app.Config.FilesAPIKey = ""
	} else {
		p := app.Config.Profile(profile)
		if p == nil {
			return profileNotFound(app.Config, profile)
		}
		ref = p.FilesAPIKey
		p.FilesAPIKey = ""
		app.Config.SetProfile(profile, p)
	}
	if ref == "" {
		return errdefs.Configf("no files.com API key configured")
	}
	if service, key, ok := secret.ParseKeyringRef(ref); ok && service == secret.KeyringService {
		_ = deleteSecret(service, key)
	}
	if err := app.Config.Save(); err != nil {
		return err
	}
	fmt.Fprintln(app.ErrOut, "Files.com API key removed")
	return nil
}

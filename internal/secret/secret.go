// Package secret resolves credential references to plaintext values.
//
// A reference is one of:
//
//	keyring:SERVICE/KEY     looked up in the OS secret store
//	${VAR} / ${VAR:-def}    looked up in the environment
//	anything else           returned literally
//
// Resolution is read-only and happens once per invocation, at client
// construction time. Failures name the field being resolved so the user knows
// which credential is broken.
package secret

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which profile secrets are stored
// when the user opts in via --store-keyring.
const KeyringService = "redisctl"

const keyringPrefix = "keyring:"

// envRefPattern matches ${VAR} and ${VAR:-default}. The default may be empty.
var envRefPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(:-(.*))?\}$`)

// Injection points for tests; the real bindings hit the OS.
var (
	lookupEnv     = os.LookupEnv
	keyringGet    = keyring.Get
	keyringSet    = keyring.Set
	keyringDelete = keyring.Delete
)

// Resolve materializes a credential reference. field names the credential in
// error messages ("API secret", "enterprise password"). fallbackEnv, when
// non-empty, names an environment variable consulted before giving up.
func Resolve(ref, field, fallbackEnv string) (string, error) {
	if strings.HasPrefix(ref, keyringPrefix) {
		return resolveKeyring(ref, field, fallbackEnv)
	}
	if m := envRefPattern.FindStringSubmatch(ref); m != nil {
		return resolveEnv(ref, m, field, fallbackEnv)
	}
	return ref, nil
}

func resolveKeyring(ref, field, fallbackEnv string) (string, error) {
	service, key, ok := ParseKeyringRef(ref)
	if !ok {
		return "", errdefs.Credentialf("failed to resolve %s: malformed keyring reference %q (want keyring:SERVICE/KEY)", field, ref)
	}
	value, err := keyringGet(service, key)
	if err == nil {
		return value, nil
	}
	if fallbackEnv != "" {
		if v, set := lookupEnv(fallbackEnv); set {
			return v, nil
		}
	}
	return "", errdefs.Credentialf("failed to resolve %s: unresolved keyring reference %q: %v", field, ref, err)
}

func resolveEnv(ref string, m []string, field, fallbackEnv string) (string, error) {
	name, hasDefault, def := m[1], m[2] != "", m[3]
	if v, set := lookupEnv(name); set {
		return v, nil
	}
	if hasDefault {
		return def, nil
	}
	if fallbackEnv != "" {
		if v, set := lookupEnv(fallbackEnv); set {
			return v, nil
		}
	}
	return "", errdefs.Credentialf("failed to resolve %s: environment variable %s is not set (reference %q)", field, name, ref)
}

// ParseKeyringRef splits a keyring:SERVICE/KEY reference.
func ParseKeyringRef(ref string) (service, key string, ok bool) {
	rest := strings.TrimPrefix(ref, keyringPrefix)
	service, key, found := strings.Cut(rest, "/")
	if !found || service == "" || key == "" {
		return "", "", false
	}
	return service, key, true
}

// KeyringRef builds the reference string for a stored secret.
func KeyringRef(service, key string) string {
	return fmt.Sprintf("%s%s/%s", keyringPrefix, service, key)
}

// Store writes a secret into the OS keyring and returns the reference that
// resolves back to it.
func Store(service, key, value string) (string, error) {
	if err := keyringSet(service, key, value); err != nil {
		return "", errdefs.Credentialf("keyring backend unavailable: %v", err)
	}
	return KeyringRef(service, key), nil
}

// Delete removes a stored secret. A missing entry is not an error; profile
// removal must stay idempotent.
func Delete(service, key string) error {
	err := keyringDelete(service, key)
	if err != nil && err != keyring.ErrNotFound {
		return errdefs.Credentialf("failed to delete keyring entry %s/%s: %v", service, key, err)
	}
	return nil
}

// IsRef reports whether the value is a reference rather than a literal.
// Used by the output pipeline to decide what a profile listing may show.
func IsRef(value string) bool {
	return strings.HasPrefix(value, keyringPrefix) || envRefPattern.MatchString(value)
}

// Package secrets resolves sensitive settings such as a remote DevTools
// address that may carry an access token.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Source describes where a secret may come from. File wins over Env, and Env
// wins over Value.
type Source struct {
	Name  string
	Value string
	// Env names an environment variable holding the secret.
	Env string
	// File points to a file holding the secret. A leading ~ is expanded.
	File string
}

// Load returns the trimmed secret or an error naming the first configured
// source that produced nothing usable.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return "", fmt.Errorf("expanding %s file %q: %w", name, file, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, path, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, path)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.Env != "" {
			return "", fmt.Errorf("%s is not configured (set %s)", name, src.Env)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}
	return secret, nil
}

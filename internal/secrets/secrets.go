// Package secrets resolves provider credentials: OS keychain first,
// environment variable fallback so containerized deployments work
// without a keyring daemon.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "coogi"
)

// Provider credential accounts and their env fallbacks.
var envFallback = map[string]string{
	"rapidapi":  "RAPIDAPI_KEY",
	"hunter":    "HUNTER_API_KEY",
	"clearout":  "CLEAROUT_API_KEY",
	"instantly": "INSTANTLY_API_KEY",
	"smartlead": "SMARTLEAD_API_KEY",
	"imap":      "IMAP_PASSWORD",
}

// Accounts lists the credential names this engine knows about.
func Accounts() []string {
	out := make([]string, 0, len(envFallback))
	for name := range envFallback {
		out = append(out, name)
	}
	return out
}

// Get resolves one credential. Empty string with nil error never
// happens: a missing credential is an error.
func Get(account string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", errors.New("credential account name is empty")
	}

	// 1) Keyring first (recommended)
	if v, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}

	// 2) Environment fallback
	if env, ok := envFallback[account]; ok {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	return "", errors.New("credential " + account + " not found (set it in keychain or via env)")
}

// GetOptional is Get without the error: providers that run keyless in
// degraded mode use this and skip themselves when empty.
func GetOptional(account string) string {
	v, err := Get(account)
	if err != nil {
		return ""
	}
	return v
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("credential account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("credential value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("credential account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// Known reports whether an account name is one this engine manages.
func Known(account string) bool {
	_, ok := envFallback[account]
	return ok
}

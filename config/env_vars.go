package config

import (
	"os"
	"strings"
)

const (
	EnvConfigPath   = "ZPASYNC_CONFIG"
	EnvClientID     = "ZPA_CLIENT_ID"
	EnvClientSecret = "ZPA_CLIENT_SECRET"
	EnvCustomerID   = "ZPA_CUSTOMER_ID"
	EnvBaseURL      = "ZPA_BASE_URL"
	EnvTokenURL     = "ZPA_TOKEN_URL"

	EnvCredentialsPassphrase = "ZPASYNC_CREDENTIALS_PASSPHRASE"
)

// LookupFunc matches os.LookupEnv and lets tests supply their own environment.
type LookupFunc func(string) (string, bool)

func applyEnvOverrides(cfg *Config, lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	overrideString(lookup, EnvClientID, &cfg.API.Auth.ClientID)
	if overrideString(lookup, EnvClientSecret, &cfg.API.Auth.ClientSecret) {
		cfg.API.Auth.ClientSecretRef = ""
	}
	overrideString(lookup, EnvCustomerID, &cfg.API.CustomerID)
	overrideString(lookup, EnvBaseURL, &cfg.API.BaseURL)
	overrideString(lookup, EnvTokenURL, &cfg.API.Auth.TokenURL)

	// The passphrase variable only unlocks a store declared in the file and
	// replaces any other key material.
	if cfg.Credentials != nil {
		var passphrase string
		overrideString(lookup, EnvCredentialsPassphrase, &passphrase)
		if passphrase != "" {
			cfg.Credentials.Passphrase = passphrase
			cfg.Credentials.PassphraseFile = ""
			cfg.Credentials.Key = ""
			cfg.Credentials.KeyFile = ""
		}
	}
}

// overrideString reports whether a non-empty variable replaced target.
func overrideString(lookup LookupFunc, key string, target *string) bool {
	value, ok := lookup(key)
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	*target = trimmed
	return true
}

package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/crmarques/zpasync/faults"
)

// Validate checks a defaulted config. Errors are ValidationError faults
// whose fields name the offending key.
func Validate(cfg Config) error {
	if err := validateURL("api.base-url", cfg.API.BaseURL, true); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.API.CustomerID) == "" {
		return keyError("api.customer-id", "is required (or set %s)", EnvCustomerID)
	}
	if err := validateAuth(cfg.API.Auth, cfg.Credentials != nil); err != nil {
		return err
	}
	if err := ValidateCredentialStore(cfg.Credentials); err != nil {
		return err
	}
	if cfg.API.Timeout < 0 {
		return keyError("api.timeout", "must not be negative")
	}
	if limit := cfg.API.RateLimit; limit != nil {
		if limit.RequestsPerSecond <= 0 {
			return keyError("api.rate-limit.requests-per-second", "must be greater than zero")
		}
		if limit.Burst < 1 {
			return keyError("api.rate-limit.burst", "must be at least 1")
		}
	}
	if tls := cfg.API.TLS; tls != nil {
		if (strings.TrimSpace(tls.ClientCertFile) == "") != (strings.TrimSpace(tls.ClientKeyFile) == "") {
			return keyError("api.tls", "requires both client-cert-file and client-key-file")
		}
	}
	if err := validateListFilters(cfg.API.ListFilters); err != nil {
		return err
	}

	if cfg.Reconcile.Parallelism < 1 {
		return keyError("reconcile.parallelism", "must be at least 1")
	}

	if err := validateURL("telemetry.pushgateway-url", cfg.Telemetry.PushgatewayURL, false); err != nil {
		return err
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return keyError("log.format", "must be one of console, json")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return keyError("log.level", "must be one of debug, info, warn, error")
	}
	return nil
}

func validateAuth(auth Auth, hasStore bool) error {
	if err := validateURL("api.auth.token-url", auth.TokenURL, true); err != nil {
		return err
	}
	if strings.TrimSpace(auth.ClientID) == "" {
		return keyError("api.auth.client-id", "is required (or set %s)", EnvClientID)
	}

	inline := strings.TrimSpace(auth.ClientSecret) != ""
	ref := strings.TrimSpace(auth.ClientSecretRef) != ""
	switch {
	case inline && ref:
		return keyError("api.auth.client-secret-ref", "cannot be combined with client-secret")
	case ref && !hasStore:
		return keyError("api.auth.client-secret-ref", "requires a credentials store")
	case !inline && !ref:
		return keyError("api.auth.client-secret", "is required (or set %s or client-secret-ref)", EnvClientSecret)
	}
	return nil
}

// ValidateCredentialStore checks the credentials block; nil is valid.
func ValidateCredentialStore(store *CredentialStore) error {
	if store == nil {
		return nil
	}
	if strings.TrimSpace(store.Path) == "" {
		return keyError("credentials.path", "is required")
	}

	material := 0
	for _, value := range []string{store.Key, store.KeyFile, store.Passphrase, store.PassphraseFile} {
		if strings.TrimSpace(value) != "" {
			material++
		}
	}
	if material != 1 {
		return keyError("credentials", "must define exactly one of key, key-file, passphrase, passphrase-file (or set %s)", EnvCredentialsPassphrase)
	}

	if kdf := store.KDF; kdf != nil && (kdf.Time < 0 || kdf.Memory < 0 || kdf.Threads < 0) {
		return keyError("credentials.kdf", "values must not be negative")
	}
	return nil
}

func validateListFilters(filters map[string]string) error {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := "api.list-filters." + key
		if strings.TrimSpace(key) == "" {
			return keyError("api.list-filters", "kind name must not be empty")
		}
		if _, err := gojq.Parse(filters[key]); err != nil {
			return faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%s is not a valid jq expression", field), err).
				WithFields(field)
		}
	}
	return nil
}

func validateURL(key string, value string, required bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return keyError(key, "is required")
		}
		return nil
	}

	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return keyError(key, "must be an absolute http(s) URL")
	}
	return nil
}

func keyError(key string, format string, args ...any) error {
	message := key + " " + fmt.Sprintf(format, args...)
	return faults.NewTypedError(faults.ValidationError, message, nil).WithFields(key)
}

package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/crmarques/zpasync/config"
	"github.com/crmarques/zpasync/faults"
	secretfile "github.com/crmarques/zpasync/internal/providers/secrets/file"
)

// OpenCredentialStore opens the configured credential store. Only the
// credentials block has to be valid, so a store can be filled before the
// API settings exist.
func OpenCredentialStore(opts BootstrapConfig) (CredentialStore, error) {
	cfg, err := config.Read(config.LoadOptions{Path: opts.ConfigPath, Lookup: opts.Lookup})
	if err != nil {
		return nil, err
	}
	if cfg.Credentials == nil {
		return nil, faults.NewTypedError(faults.ValidationError, "credentials store is not configured", nil).WithFields("credentials")
	}
	return secretfile.NewStore(*cfg.Credentials)
}

// resolveClientSecret replaces a client-secret-ref with the stored value.
func resolveClientSecret(ctx context.Context, cfg *config.Config) error {
	ref := strings.TrimSpace(cfg.API.Auth.ClientSecretRef)
	if ref == "" {
		return nil
	}

	store, err := secretfile.NewStore(*cfg.Credentials)
	if err != nil {
		return err
	}
	value, err := store.Get(ctx, ref)
	if err != nil {
		category, ok := faults.CategoryOf(err)
		if !ok {
			category = faults.InternalError
		}
		return faults.NewTypedError(
			category,
			fmt.Sprintf("failed to resolve api.auth.client-secret-ref %q", ref),
			err,
		).WithFields("api.auth.client-secret-ref")
	}
	cfg.API.Auth.ClientSecret = value
	return nil
}

package common

import (
	"context"

	"github.com/crmarques/zpasync/core"
)

// SessionFactory builds the reconcile session for one invocation.
type SessionFactory func(ctx context.Context, opts core.BootstrapConfig) (*core.Session, error)

// CredentialsFactory opens the local credential store.
type CredentialsFactory func(opts core.BootstrapConfig) (core.CredentialStore, error)

type CommandDependencies struct {
	NewSession      SessionFactory
	OpenCredentials CredentialsFactory
	Version         string
}

func RequireSessionFactory(deps CommandDependencies) (SessionFactory, error) {
	if deps.NewSession == nil {
		return nil, ValidationError("session factory is not configured", nil)
	}
	return deps.NewSession, nil
}

// OpenSession builds a session from the global flags.
func OpenSession(ctx context.Context, deps CommandDependencies, flags *GlobalFlags, dryRun bool, logWriter LogWriter) (*core.Session, error) {
	factory, err := RequireSessionFactory(deps)
	if err != nil {
		return nil, err
	}

	verbosity := 0
	if flags != nil && flags.Debug {
		verbosity = 2
	}
	opts := core.BootstrapConfig{
		DryRun:    dryRun,
		Verbosity: verbosity,
		LogWriter: logWriter,
		Version:   deps.Version,
	}
	if flags != nil {
		opts.ConfigPath = flags.Config
		opts.LogFormat = flags.LogFormat
	}
	return factory(ctx, opts)
}

// OpenCredentials opens the credential store named by the global flags.
func OpenCredentials(deps CommandDependencies, flags *GlobalFlags) (core.CredentialStore, error) {
	if deps.OpenCredentials == nil {
		return nil, ValidationError("credential store factory is not configured", nil)
	}

	opts := core.BootstrapConfig{Version: deps.Version}
	if flags != nil {
		opts.ConfigPath = flags.Config
	}
	return deps.OpenCredentials(opts)
}

package core

import (
	"context"
	"io"

	"github.com/go-logr/logr"

	"github.com/crmarques/zpasync/config"
	"github.com/crmarques/zpasync/internal/telemetry"
	"github.com/crmarques/zpasync/kinds"
	"github.com/crmarques/zpasync/metrics"
)

// BootstrapConfig carries the command-line view of one invocation.
type BootstrapConfig struct {
	ConfigPath string
	Lookup     config.LookupFunc
	DryRun     bool
	// Verbosity raises log verbosity above the configured level.
	Verbosity int
	LogFormat string
	LogWriter io.Writer
	Version   string
}

// Session is everything one invocation needs to reconcile documents.
type Session struct {
	Config   config.Config
	Registry *kinds.Registry
	Logger   logr.Logger
	RunID    string
	DryRun   bool

	recorder *metrics.Recorder
	tracing  *telemetry.Provider
	syncLog  func()
}

// CredentialStore holds named secrets such as the one behind
// api.auth.client-secret-ref.
type CredentialStore interface {
	Put(ctx context.Context, name string, value string) error
	Get(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
}

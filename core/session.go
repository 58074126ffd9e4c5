package core

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/crmarques/zpasync/config"
	"github.com/crmarques/zpasync/debugctx"
	"github.com/crmarques/zpasync/internal/logging"
	httpserver "github.com/crmarques/zpasync/internal/providers/server/http"
	"github.com/crmarques/zpasync/internal/telemetry"
	"github.com/crmarques/zpasync/kinds"
	"github.com/crmarques/zpasync/metrics"
	"github.com/crmarques/zpasync/reconciler"
)

const metricsJob = "zpasync"

// NewSession loads configuration and wires logging, tracing, metrics, the
// ZPA gateway and the kind registry.
func NewSession(ctx context.Context, opts BootstrapConfig) (*Session, error) {
	cfg, err := config.Load(config.LoadOptions{Path: opts.ConfigPath, Lookup: opts.Lookup})
	if err != nil {
		return nil, err
	}
	if err := resolveClientSecret(ctx, &cfg); err != nil {
		return nil, err
	}

	format := cfg.Log.Format
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}
	logger, syncLog, err := logging.New(logging.Options{
		Format:    format,
		Level:     cfg.Log.Level,
		Verbosity: opts.Verbosity,
		Writer:    opts.LogWriter,
	})
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger = logger.WithValues("run_id", runID)

	tracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.Telemetry.OTLPEndpoint,
		Version:  opts.Version,
		RunID:    runID,
	})
	if err != nil {
		syncLog()
		return nil, err
	}

	gateway, err := httpserver.NewGateway(cfg.API)
	if err != nil {
		syncLog()
		_ = tracing.Shutdown(ctx)
		return nil, err
	}

	dryRun := opts.DryRun || cfg.Reconcile.DryRun
	recorder := metrics.NewRecorder()
	registry := NewRegistry(gateway,
		reconciler.WithDryRun(dryRun),
		reconciler.WithLogger(logger),
		reconciler.WithRecorder(recorder),
	)

	return &Session{
		Config:   cfg,
		Registry: registry,
		Logger:   logger,
		RunID:    runID,
		DryRun:   dryRun,
		recorder: recorder,
		tracing:  tracing,
		syncLog:  syncLog,
	}, nil
}

// NewRegistry registers every supported kind against gateway.
func NewRegistry(gateway *httpserver.Gateway, opts ...reconciler.Option) *kinds.Registry {
	registry := kinds.NewRegistry()

	kinds.Register(registry, kinds.ApplicationServerAdapter(),
		httpserver.NewSearchableCollection[kinds.ApplicationServer](gateway, string(kinds.KindApplicationServer), "server"),
		opts...)
	kinds.Register(registry, kinds.ServiceEdgeGroupAdapter(),
		httpserver.NewSearchableCollection[kinds.ServiceEdgeGroup](gateway, string(kinds.KindServiceEdgeGroup), "serviceEdgeGroup"),
		opts...)
	kinds.Register(registry, kinds.TimeoutPolicyRuleAdapter(),
		httpserver.NewPolicyRuleCollection[kinds.TimeoutPolicyRule](gateway, string(kinds.KindTimeoutPolicyRule), "TIMEOUT_POLICY"),
		opts...)
	kinds.Register(registry, kinds.PRAApprovalAdapter(),
		httpserver.NewCollection[kinds.PRAApproval](gateway, string(kinds.KindPRAApproval), "approval"),
		opts...)
	kinds.Register(registry, kinds.ConnectorScheduleAdapter(gateway.CustomerID()),
		httpserver.NewSingleton[kinds.ConnectorSchedule](gateway, string(kinds.KindConnectorSchedule), "assistantSchedule"),
		opts...)
	kinds.Register(registry, kinds.PRACredentialAdapter(),
		httpserver.NewSearchableCollection[kinds.PRACredential](gateway, string(kinds.KindPRACredential), "credential"),
		opts...)

	return registry
}

// Context attaches the session logger and run id to ctx.
func (s *Session) Context(ctx context.Context) context.Context {
	ctx = debugctx.WithLogger(ctx, s.Logger)
	return httpserver.WithRequestID(ctx, s.RunID)
}

// Close pushes metrics when a Pushgateway is configured, flushes traces and
// syncs the logger. Every step runs; failures are joined.
func (s *Session) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs []error
	if url := s.Config.Telemetry.PushgatewayURL; url != "" {
		if err := s.recorder.Push(ctx, url, metricsJob, s.RunID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.syncLog != nil {
		s.syncLog()
	}
	return errors.Join(errs...)
}

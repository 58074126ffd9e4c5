package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/resource"
)

const tracerName = "github.com/crmarques/zpasync/reconciler"

type options struct {
	dryRun   bool
	logger   *logr.Logger
	recorder Recorder
	tracer   trace.Tracer
}

type Option func(*options)

// WithDryRun decides and reports the action without calling any mutating
// client method.
func WithDryRun(enabled bool) Option {
	return func(o *options) {
		o.dryRun = enabled
	}
}

// WithLogger overrides the logger taken from the reconcile context.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

var _ Reconciler[struct{}] = (*DefaultReconciler[struct{}])(nil)

// DefaultReconciler drives one resource instance to its desired state per
// Reconcile call. It holds no per-call state and is safe for concurrent use
// across distinct instances.
type DefaultReconciler[T any] struct {
	adapter  Adapter[T]
	client   Client[T]
	resolver *Resolver[T]
	opts     options
}

func New[T any](adapter Adapter[T], client Client[T], opts ...Option) *DefaultReconciler[T] {
	resolved := options{
		recorder: noopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}

	instrumented := instrument(string(adapter.Kind()), client, resolved.recorder)
	return &DefaultReconciler[T]{
		adapter:  adapter,
		client:   instrumented,
		resolver: NewResolver(adapter, instrumented),
		opts:     resolved,
	}
}

func (r *DefaultReconciler[T]) Kind() resource.Kind {
	return r.adapter.Kind()
}

func (r *DefaultReconciler[T]) Reconcile(ctx context.Context, spec resource.Spec[T]) (resource.Outcome[T], error) {
	kind := string(r.adapter.Kind())
	started := time.Now()

	ctx, span := r.opts.tracer.Start(ctx, "reconcile "+kind, trace.WithAttributes(
		attribute.String("zpasync.kind", kind),
		attribute.String("zpasync.presence", string(spec.Presence)),
		attribute.Bool("zpasync.dry_run", r.opts.dryRun),
	))
	defer span.End()

	logger := r.logger(ctx).WithValues("kind", kind)
	if spec.ID != "" {
		logger = logger.WithValues("id", spec.ID)
	}

	run := &reconcileRun[T]{
		reconciler: r,
		spec:       spec,
		logger:     logger,
		state:      StateResolving,
	}
	outcome, err := run.execute(ctx)

	result := ResultSuccess
	if err != nil {
		result = ResultError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(
		attribute.String("zpasync.action", string(outcome.Action)),
		attribute.Bool("zpasync.changed", outcome.Changed),
	)
	r.opts.recorder.ObserveReconcile(kind, outcome.Action, result, time.Since(started))
	return outcome, err
}

func (r *DefaultReconciler[T]) logger(ctx context.Context) logr.Logger {
	if r.opts.logger != nil {
		return *r.opts.logger
	}
	return logr.FromContextOrDiscard(ctx)
}

type reconcileRun[T any] struct {
	reconciler *DefaultReconciler[T]
	spec       resource.Spec[T]
	logger     logr.Logger

	state     State
	current   *T
	canonical struct{ current, desired *resource.Canonical }
	diff      []resource.DiffEntry
	outcome   resource.Outcome[T]
	err       error
}

func (run *reconcileRun[T]) execute(ctx context.Context) (resource.Outcome[T], error) {
	adapter := run.reconciler.adapter

	if err := run.validate(); err != nil {
		run.fail(err)
	}

	for !run.state.Terminal() {
		if err := ctx.Err(); err != nil {
			run.fail(faults.NewTypedError(faults.TransportError, "reconcile cancelled", err).WithOperation("reconcile " + string(adapter.Kind())))
			break
		}

		previous := run.state
		switch run.state {
		case StateResolving:
			run.resolve(ctx)
		case StateNormalizing:
			run.normalize()
		case StateDiffing:
			run.computeDiff()
		case StateCreating:
			run.create(ctx)
		case StateUpdating:
			run.update(ctx)
		case StateDeleting:
			run.delete(ctx)
		case StateNoOp:
			run.noop()
		default:
			run.fail(faults.NewTypedError(faults.InternalError, fmt.Sprintf("unexpected state %s", run.state), nil))
		}
		run.logger.V(2).Info("state transition", "from", previous.String(), "to", run.state.String())
	}

	if run.state == StateFailed {
		return run.outcome, run.err
	}
	return run.outcome, nil
}

func (run *reconcileRun[T]) validate() error {
	adapter := run.reconciler.adapter
	operation := "validate " + string(adapter.Kind())

	err := adapter.Validate(run.spec)
	if err == nil {
		return nil
	}

	var typedErr *faults.TypedError
	if errors.As(err, &typedErr) && typedErr.Category == faults.ValidationError {
		if typedErr.Operation == "" {
			return typedErr.WithOperation(operation)
		}
		return typedErr
	}
	return faults.NewTypedError(faults.ValidationError, "invalid desired state", err).WithOperation(operation)
}

func (run *reconcileRun[T]) fail(err error) {
	run.err = err
	run.state = StateFailed
}

func (run *reconcileRun[T]) resolve(ctx context.Context) {
	current, err := run.reconciler.resolver.Resolve(ctx, run.spec)
	if err != nil {
		run.fail(err)
		return
	}
	run.current = current

	present := run.spec.Presence != resource.PresenceAbsent
	switch {
	case present && current == nil:
		if gate, ok := run.reconciler.adapter.(CreateGate[T]); ok && !gate.ShouldCreate(run.spec.Desired) {
			run.logger.Info("resource not found and creation not requested")
			run.state = StateNoOp
			return
		}
		run.state = StateCreating
	case present:
		run.state = StateNormalizing
	case current == nil:
		run.state = StateNoOp
	default:
		run.state = StateDeleting
	}
}

func (run *reconcileRun[T]) normalize() {
	adapter := run.reconciler.adapter
	run.canonical.desired = adapter.Normalize(run.spec.Desired)
	run.canonical.current = adapter.Normalize(*run.current)
	run.state = StateDiffing
}

func (run *reconcileRun[T]) computeDiff() {
	run.diff = resource.Diff(run.canonical.current, run.canonical.desired, run.reconciler.adapter.Excluded()...)
	for _, entry := range run.diff {
		run.logger.Info("difference detected", "field", entry.Field, "current", entry.Current, "desired", entry.Desired)
	}
	if len(run.diff) == 0 {
		run.state = StateNoOp
		return
	}
	run.state = StateUpdating
}

func (run *reconcileRun[T]) noop() {
	run.outcome = resource.Outcome[T]{
		Changed: false,
		Action:  resource.ActionNoOp,
		Data:    run.current,
		Diff:    run.diff,
	}
	run.state = StateDone
}

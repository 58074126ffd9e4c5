package reconciler

import (
	"context"
	"time"

	"github.com/crmarques/zpasync/resource"
)

// Client is the remote resource API for one kind. Get reports a missing
// resource with a faults.NotFoundError. Delete returns the HTTP status code.
type Client[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id string, payload T) (T, error)
	Delete(ctx context.Context, id string) (int, error)
}

// Searcher is implemented by clients that can filter server-side by natural key.
type Searcher[T any] interface {
	Search(ctx context.Context, key string) ([]T, error)
}

// Adapter carries everything kind-specific the engine needs.
type Adapter[T any] interface {
	Kind() resource.Kind
	// Fields lists the comparable fields in declared order.
	Fields() []string
	ID(value T) string
	// NaturalKey returns the lookup key of value and whether it has one.
	NaturalKey(value T) (string, bool)
	Matches(desired T, candidate T) bool
	Validate(spec resource.Spec[T]) error
	Normalize(value T) *resource.Canonical
	// Excluded lists fields that are sent but never compared.
	Excluded() []string
	Merge(current T, desired T) T
	CreatePayload(desired T) T
	UpdatePayload(merged T) T
}

// CreateGate lets a kind decline creation of a missing resource.
type CreateGate[T any] interface {
	ShouldCreate(desired T) bool
}

type Reconciler[T any] interface {
	Reconcile(ctx context.Context, spec resource.Spec[T]) (resource.Outcome[T], error)
	Lookup(ctx context.Context, id string, name string) ([]T, error)
}

// Recorder receives reconcile and remote call observations.
type Recorder interface {
	ObserveReconcile(kind string, action resource.Action, result string, duration time.Duration)
	ObserveRemoteCall(kind string, operation string, result string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveReconcile(string, resource.Action, string, time.Duration) {}

func (noopRecorder) ObserveRemoteCall(string, string, string) {}

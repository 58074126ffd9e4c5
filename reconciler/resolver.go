package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/resource"
)

// Resolver locates the remote counterpart of a desired spec. It never mutates.
type Resolver[T any] struct {
	adapter  Adapter[T]
	client   Client[T]
	searcher Searcher[T]
}

// NewResolver uses server-side search when client implements Searcher.
func NewResolver[T any](adapter Adapter[T], client Client[T]) *Resolver[T] {
	searcher, _ := client.(Searcher[T])
	return &Resolver[T]{adapter: adapter, client: client, searcher: searcher}
}

// Resolve returns the remote resource, or nil when it does not exist.
// An explicit id wins over the natural key; list lookups return the first
// exact match in listing order.
func (r *Resolver[T]) Resolve(ctx context.Context, spec resource.Spec[T]) (*T, error) {
	kind := r.adapter.Kind()

	if id := strings.TrimSpace(spec.ID); id != "" {
		item, err := r.client.Get(ctx, id)
		if err != nil {
			if faults.IsCategory(err, faults.NotFoundError) {
				return nil, nil
			}
			return nil, resolutionError(kind, fmt.Sprintf("failed to get %s %q", kind, id), err)
		}
		return &item, nil
	}

	key, hasKey := r.adapter.NaturalKey(spec.Desired)
	if !hasKey {
		return nil, nil
	}

	if r.searcher != nil && key != "" {
		items, err := r.searcher.Search(ctx, key)
		if err != nil {
			return nil, resolutionError(kind, fmt.Sprintf("failed to search %s %q", kind, key), err)
		}
		if found := r.firstMatch(spec.Desired, items); found != nil {
			return found, nil
		}
	}

	items, err := r.client.List(ctx)
	if err != nil {
		return nil, resolutionError(kind, fmt.Sprintf("failed to list %s", kind), err)
	}
	return r.firstMatch(spec.Desired, items), nil
}

func (r *Resolver[T]) firstMatch(desired T, items []T) *T {
	for idx := range items {
		if r.adapter.Matches(desired, items[idx]) {
			found := items[idx]
			return &found
		}
	}
	return nil
}

func resolutionError(kind resource.Kind, message string, cause error) error {
	return faults.NewTypedError(faults.ResolutionError, message, cause).WithOperation("resolve " + string(kind))
}

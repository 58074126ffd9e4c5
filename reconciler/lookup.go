package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/crmarques/zpasync/faults"
)

// Lookup reads resources without reconciling them. An id returns that single
// resource, a name returns the first resource whose natural key equals it,
// and neither returns the full listing. A missing id or name is a NotFound
// error.
func (r *DefaultReconciler[T]) Lookup(ctx context.Context, id string, name string) ([]T, error) {
	kind := r.adapter.Kind()
	operation := "lookup " + string(kind)

	if id = strings.TrimSpace(id); id != "" {
		item, err := r.client.Get(ctx, id)
		if err != nil {
			if faults.IsCategory(err, faults.NotFoundError) {
				return nil, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("failed to retrieve %s id %q", kind, id), err).WithOperation(operation)
			}
			return nil, faults.NewTypedError(faults.ResolutionError, fmt.Sprintf("failed to get %s %q", kind, id), err).WithOperation(operation)
		}
		return []T{item}, nil
	}

	items, err := r.client.List(ctx)
	if err != nil {
		return nil, faults.NewTypedError(faults.ResolutionError, fmt.Sprintf("failed to list %s", kind), err).WithOperation(operation)
	}
	if items == nil {
		items = []T{}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return items, nil
	}
	for _, item := range items {
		if key, ok := r.adapter.NaturalKey(item); ok && key == name {
			return []T{item}, nil
		}
	}
	return nil, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("failed to retrieve %s name %q", kind, name), nil).WithOperation(operation)
}

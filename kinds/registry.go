package kinds

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

// Report is the kind-independent view of one reconcile outcome.
type Report struct {
	Kind    resource.Kind        `json:"kind" yaml:"kind"`
	Key     string               `json:"key,omitempty" yaml:"key,omitempty"`
	Action  resource.Action      `json:"action" yaml:"action"`
	Changed bool                 `json:"changed" yaml:"changed"`
	Applied bool                 `json:"applied" yaml:"applied"`
	Diff    []resource.DiffEntry `json:"diff,omitempty" yaml:"diff,omitempty"`
	Data    any                  `json:"data" yaml:"data"`
	Error   string               `json:"error,omitempty" yaml:"error,omitempty"`
}

type defaulter[T any] interface {
	ApplyDefaults(value T) T
}

type entry struct {
	kind      resource.Kind
	fields    []string
	reconcile func(ctx context.Context, document Document) (Report, error)
	lookup    func(ctx context.Context, id string, name string) ([]any, error)
}

// Registry dispatches kind-tagged documents to the typed reconciler of their
// kind.
type Registry struct {
	entries map[resource.Kind]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[resource.Kind]entry{}}
}

// Register binds adapter and client under the adapter's kind, replacing any
// earlier registration.
func Register[T any](registry *Registry, adapter reconciler.Adapter[T], client reconciler.Client[T], opts ...reconciler.Option) {
	engine := reconciler.New(adapter, client, opts...)
	kind := adapter.Kind()

	registry.entries[kind] = entry{
		kind:   kind,
		fields: slices.Clone(adapter.Fields()),
		reconcile: func(ctx context.Context, document Document) (Report, error) {
			report := Report{Kind: kind}

			presence, err := resource.ParsePresence(document.State)
			if err != nil {
				return report, err
			}
			desired, err := decodeSpec[T](kind, document.Spec)
			if err != nil {
				return report, err
			}
			if withDefaults, ok := adapter.(defaulter[T]); ok && presence == resource.PresencePresent {
				desired = withDefaults.ApplyDefaults(desired)
			}

			report.Key = strings.TrimSpace(document.ID)
			if report.Key == "" {
				report.Key, _ = adapter.NaturalKey(desired)
			}

			outcome, err := engine.Reconcile(ctx, resource.Spec[T]{
				ID:       strings.TrimSpace(document.ID),
				Presence: presence,
				Desired:  desired,
			})
			report.Action = outcome.Action
			report.Changed = outcome.Changed
			report.Applied = outcome.Applied
			report.Diff = outcome.Diff
			if outcome.Data != nil {
				report.Data = outcome.Data
			}
			return report, err
		},
		lookup: func(ctx context.Context, id string, name string) ([]any, error) {
			items, err := engine.Lookup(ctx, id, name)
			if err != nil {
				return nil, err
			}
			values := make([]any, len(items))
			for idx := range items {
				values[idx] = items[idx]
			}
			return values, nil
		},
	}
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []resource.Kind {
	kinds := make([]resource.Kind, 0, len(r.entries))
	for kind := range r.entries {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Resolve matches value case-insensitively against the registered kinds.
func (r *Registry) Resolve(value string) (resource.Kind, error) {
	trimmed := strings.TrimSpace(value)
	for kind := range r.entries {
		if strings.EqualFold(string(kind), trimmed) {
			return kind, nil
		}
	}

	names := make([]string, 0, len(r.entries))
	for _, kind := range r.Kinds() {
		names = append(names, string(kind))
	}
	return "", faults.NewTypedError(
		faults.ValidationError,
		fmt.Sprintf("unsupported kind %q: use one of %s", value, strings.Join(names, ", ")),
		nil,
	).WithFields("kind")
}

func (r *Registry) Fields(kind resource.Kind) ([]string, error) {
	found, err := r.entry(string(kind))
	if err != nil {
		return nil, err
	}
	return slices.Clone(found.fields), nil
}

func (r *Registry) Reconcile(ctx context.Context, document Document) (Report, error) {
	found, err := r.entry(document.Kind)
	if err != nil {
		return Report{Kind: resource.Kind(document.Kind)}, err
	}
	return found.reconcile(ctx, document)
}

func (r *Registry) Lookup(ctx context.Context, kind string, id string, name string) ([]any, error) {
	found, err := r.entry(kind)
	if err != nil {
		return nil, err
	}
	return found.lookup(ctx, id, name)
}

func (r *Registry) entry(value string) (entry, error) {
	kind, err := r.Resolve(value)
	if err != nil {
		return entry{}, err
	}
	return r.entries[kind], nil
}

package kinds

import (
	"slices"

	"github.com/crmarques/zpasync/resource"
)

// pick returns desired when it is set, current otherwise.
func pick[V any](current *V, desired *V) *V {
	if desired != nil {
		return desired
	}
	return current
}

func pickSlice[S ~[]E, E any](current S, desired S) S {
	if desired != nil {
		return slices.Clone(desired)
	}
	return slices.Clone(current)
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func upperEnum(value *string) *string {
	if value == nil {
		return nil
	}
	canonical := resource.CanonicalEnum(*value)
	return &canonical
}

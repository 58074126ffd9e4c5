package kinds

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/resource"
)

// fieldErrors accumulates validation failures so one error names every
// offending field.
type fieldErrors struct {
	fields   []string
	messages []string
}

func (v *fieldErrors) add(field string, message string) {
	v.fields = append(v.fields, field)
	v.messages = append(v.messages, message)
}

func (v *fieldErrors) addErr(field string, err error) {
	if err == nil {
		return
	}
	var typedErr *faults.TypedError
	if errors.As(err, &typedErr) {
		v.add(field, typedErr.Message)
		return
	}
	v.add(field, err.Error())
}

func (v *fieldErrors) required(field string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		v.add(field, field+" is required")
	}
}

func (v *fieldErrors) oneOf(field string, value *string, allowed ...string) {
	if value == nil {
		return
	}
	if !slices.Contains(allowed, resource.CanonicalEnum(*value)) {
		v.add(field, fmt.Sprintf("invalid %s %q: use one of %s", field, *value, strings.Join(allowed, ", ")))
	}
}

func (v *fieldErrors) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return faults.NewTypedError(faults.ValidationError, strings.Join(v.messages, "; "), nil).WithFields(v.fields...)
}

func validatePresence[T any](spec resource.Spec[T]) error {
	_, err := resource.ParsePresence(string(spec.Presence))
	return err
}

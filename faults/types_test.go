package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := NewTypedError(ValidationError, "invalid input", nil)
	if !IsCategory(err, ValidationError) {
		t.Fatalf("expected validation category match")
	}
	if IsCategory(err, NotFoundError) {
		t.Fatalf("expected not-found category mismatch")
	}

	wrapped := errors.New("wrap: " + err.Error())
	if IsCategory(wrapped, ValidationError) {
		t.Fatalf("plain wrapped string error must not match typed category")
	}

	joined := errors.Join(err, errors.New("other"))
	if !IsCategory(joined, ValidationError) {
		t.Fatalf("expected category match through errors.Join")
	}
}

func TestIsCategoryMatchesNestedCause(t *testing.T) {
	t.Parallel()

	transport := NewTypedError(TransportError, "connection refused", nil)
	resolution := NewTypedError(ResolutionError, "get failed", transport)
	wrapped := fmt.Errorf("reconcile: %w", resolution)

	if !IsCategory(wrapped, ResolutionError) {
		t.Fatalf("expected resolution category match")
	}
	if !IsCategory(wrapped, TransportError) {
		t.Fatalf("expected nested transport category match")
	}

	category, ok := CategoryOf(wrapped)
	if !ok || category != ResolutionError {
		t.Fatalf("expected outermost category %q, got %q (ok=%t)", ResolutionError, category, ok)
	}
}

func TestTypedErrorMessageIncludesOperationAndFields(t *testing.T) {
	t.Parallel()

	err := NewTypedError(ValidationError, "value out of range", nil).
		WithOperation("validate ServiceEdgeGroup").
		WithFields("latitude")

	expected := "validate ServiceEdgeGroup: value out of range (fields: latitude)"
	if err.Error() != expected {
		t.Fatalf("expected %q, got %q", expected, err.Error())
	}
}

func TestWithFieldsDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	base := NewTypedError(ValidationError, "bad", nil)
	_ = base.WithFields("name")
	if len(base.Fields) != 0 {
		t.Fatalf("expected original fields untouched, got %v", base.Fields)
	}
}

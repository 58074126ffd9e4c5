package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/crmarques/zpasync/faults"
)

// CoordinatePrecision is the number of fractional digits two coordinates
// must agree on to be considered equal.
const CoordinatePrecision = 6

var coordinateContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

var (
	latitudeBound  = apd.New(90, 0)
	longitudeBound = apd.New(180, 0)
)

func parseCoordinate(value string) (*apd.Decimal, error) {
	decimal, _, err := apd.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q is not a decimal number", value), err)
	}
	if decimal.Form != apd.Finite {
		return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q is not a finite number", value), nil)
	}
	return decimal, nil
}

// CanonicalCoordinate rounds value half-up to CoordinatePrecision digits and
// returns its plain decimal text.
func CanonicalCoordinate(value string) (string, error) {
	decimal, err := parseCoordinate(value)
	if err != nil {
		return "", err
	}

	var quantized apd.Decimal
	if _, err := coordinateContext.Quantize(&quantized, decimal, -CoordinatePrecision); err != nil {
		return "", faults.NewTypedError(faults.ValidationError, fmt.Sprintf("cannot round coordinate %q", value), err)
	}
	if quantized.IsZero() {
		quantized.Negative = false
	}
	return quantized.Text('f'), nil
}

// CoordinatesEquivalent reports whether two coordinate strings round to the
// same canonical value.
func CoordinatesEquivalent(left string, right string) bool {
	canonicalLeft, err := CanonicalCoordinate(left)
	if err != nil {
		return false
	}
	canonicalRight, err := CanonicalCoordinate(right)
	if err != nil {
		return false
	}
	return canonicalLeft == canonicalRight
}

func ValidateLatitude(value string) error {
	return validateCoordinateRange("latitude", value, latitudeBound)
}

func ValidateLongitude(value string) error {
	return validateCoordinateRange("longitude", value, longitudeBound)
}

func validateCoordinateRange(field string, value string, bound *apd.Decimal) error {
	decimal, err := parseCoordinate(value)
	if err != nil {
		var typedErr *faults.TypedError
		if errors.As(err, &typedErr) {
			return typedErr.WithFields(field)
		}
		return err
	}

	var magnitude apd.Decimal
	magnitude.Abs(decimal)
	if magnitude.Cmp(bound) > 0 {
		return faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("invalid %s %q: must be between -%s and %s", field, value, bound.Text('f'), bound.Text('f')),
			nil,
		).WithFields(field)
	}
	return nil
}

// CanonicalEnum upper-cases enum-like text.
func CanonicalEnum(value string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(value))
}

// CanonicalIDSet returns the sorted, de-duplicated identifiers. The result is
// never nil so an unset list compares equal to an empty one.
func CanonicalIDSet(values []string) []string {
	set := sets.New[string]()
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		set.Insert(trimmed)
	}
	if set.Len() == 0 {
		return []string{}
	}
	return sets.List(set)
}

func CanonicalEnumSet(values []string) []string {
	upper := make([]string, 0, len(values))
	for _, value := range values {
		upper = append(upper, CanonicalEnum(value))
	}
	return CanonicalIDSet(upper)
}

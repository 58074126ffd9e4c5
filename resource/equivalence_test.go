package resource

import (
	"reflect"
	"testing"

	"github.com/crmarques/zpasync/faults"
)

func TestCanonicalCoordinate(t *testing.T) {
	t.Parallel()

	t.Run("rounds_half_up_to_six_digits", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"37.3382082":   "37.338208",
			"37.33820821":  "37.338208",
			"-121.8863286": "-121.886329",
			"10.0000005":   "10.000001",
			"-10.0000005":  "-10.000001",
			"0":            "0.000000",
			"-0.0000001":   "0.000000",
			" 45.5 ":       "45.500000",
		}
		for input, expected := range cases {
			got, err := CanonicalCoordinate(input)
			if err != nil {
				t.Fatalf("CanonicalCoordinate(%q) returned error: %v", input, err)
			}
			if got != expected {
				t.Fatalf("CanonicalCoordinate(%q): expected %q, got %q", input, expected, got)
			}
		}
	})

	t.Run("rejects_non_numeric_values", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"north", "", "NaN", "Infinity"} {
			if _, err := CanonicalCoordinate(input); !faults.IsCategory(err, faults.ValidationError) {
				t.Fatalf("CanonicalCoordinate(%q): expected validation error, got %v", input, err)
			}
		}
	})
}

func TestCoordinatesEquivalent(t *testing.T) {
	t.Parallel()

	if !CoordinatesEquivalent("37.3382082", "37.33820821") {
		t.Fatal("expected coordinates within tolerance to be equivalent")
	}
	if CoordinatesEquivalent("37.3382082", "38.0000000") {
		t.Fatal("expected distant coordinates to differ")
	}
	if CoordinatesEquivalent("37.3382082", "not-a-number") {
		t.Fatal("expected invalid coordinate to never be equivalent")
	}
}

func TestValidateCoordinates(t *testing.T) {
	t.Parallel()

	t.Run("accepts_bounds", func(t *testing.T) {
		t.Parallel()

		for _, value := range []string{"90", "-90", "0", "37.3382082"} {
			if err := ValidateLatitude(value); err != nil {
				t.Fatalf("ValidateLatitude(%q) returned error: %v", value, err)
			}
		}
		for _, value := range []string{"180", "-180.0", "-121.8863286"} {
			if err := ValidateLongitude(value); err != nil {
				t.Fatalf("ValidateLongitude(%q) returned error: %v", value, err)
			}
		}
	})

	t.Run("rejects_out_of_range_with_field", func(t *testing.T) {
		t.Parallel()

		err := ValidateLatitude("90.0000001")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
		category, ok := faults.CategoryOf(err)
		if !ok || category != faults.ValidationError {
			t.Fatalf("expected validation category, got %q", category)
		}

		err = ValidateLongitude("-181")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("names_field_for_unparseable_value", func(t *testing.T) {
		t.Parallel()

		err := ValidateLongitude("east")
		typedErr, ok := err.(*faults.TypedError)
		if !ok {
			t.Fatalf("expected *faults.TypedError, got %T", err)
		}
		if !reflect.DeepEqual(typedErr.Fields, []string{"longitude"}) {
			t.Fatalf("expected longitude field, got %#v", typedErr.Fields)
		}
	})
}

func TestCanonicalSets(t *testing.T) {
	t.Parallel()

	t.Run("id_set_ignores_order_and_duplicates", func(t *testing.T) {
		t.Parallel()

		got := CanonicalIDSet([]string{"72058", "1", " 72058", ""})
		if !reflect.DeepEqual(got, []string{"1", "72058"}) {
			t.Fatalf("unexpected set %#v", got)
		}
	})

	t.Run("nil_and_empty_are_equal", func(t *testing.T) {
		t.Parallel()

		if !reflect.DeepEqual(CanonicalIDSet(nil), CanonicalIDSet([]string{})) {
			t.Fatal("expected nil and empty sets to be equal")
		}
	})

	t.Run("enum_set_folds_case", func(t *testing.T) {
		t.Parallel()

		got := CanonicalEnumSet([]string{"mon", "TUE", "Mon"})
		if !reflect.DeepEqual(got, []string{"MON", "TUE"}) {
			t.Fatalf("unexpected set %#v", got)
		}
	})
}

func TestCanonicalEnum(t *testing.T) {
	t.Parallel()

	if got := CanonicalEnum(" re_auth "); got != "RE_AUTH" {
		t.Fatalf("expected RE_AUTH, got %q", got)
	}
}

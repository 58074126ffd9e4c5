package resource

import (
	"reflect"
	"testing"

	"k8s.io/utils/ptr"
)

func TestDiff(t *testing.T) {
	t.Parallel()

	t.Run("ignores_unset_desired_fields", func(t *testing.T) {
		t.Parallel()

		current := NewCanonical().
			String("name", ptr.To("A")).
			String("description", ptr.To("kept")).
			Bool("enabled", ptr.To(true))
		desired := NewCanonical().
			String("name", ptr.To("A")).
			String("description", nil).
			Bool("enabled", ptr.To(true))

		if entries := Diff(current, desired); len(entries) != 0 {
			t.Fatalf("expected no entries, got %#v", entries)
		}
	})

	t.Run("reports_entries_in_declared_order", func(t *testing.T) {
		t.Parallel()

		current := NewCanonical().
			Bool("enabled", ptr.To(true)).
			String("name", ptr.To("A")).
			String("address", ptr.To("10.0.0.1"))
		desired := NewCanonical().
			String("name", ptr.To("B")).
			String("address", ptr.To("10.0.0.2")).
			Bool("enabled", ptr.To(false))

		entries := Diff(current, desired)
		if got := DiffFields(entries); !reflect.DeepEqual(got, []string{"name", "address", "enabled"}) {
			t.Fatalf("unexpected field order %#v", got)
		}
		if entries[2].Current != true || entries[2].Desired != false {
			t.Fatalf("unexpected enabled entry %#v", entries[2])
		}
	})

	t.Run("never_compares_id_or_excluded_fields", func(t *testing.T) {
		t.Parallel()

		current := NewCanonical().
			String("id", ptr.To("1")).
			String("start_time", ptr.To("Mon, 01 Jan 2024 00:00:00 UTC"))
		desired := NewCanonical().
			String("id", ptr.To("2")).
			String("start_time", ptr.To("2024-01-01T00:00:00Z"))

		if entries := Diff(current, desired, "start_time"); len(entries) != 0 {
			t.Fatalf("expected no entries, got %#v", entries)
		}
	})

	t.Run("treats_missing_current_set_as_empty", func(t *testing.T) {
		t.Parallel()

		current := NewCanonical().IDSet("app_server_group_ids", nil)
		desired := NewCanonical().IDSet("app_server_group_ids", []string{})
		if entries := Diff(current, desired); len(entries) != 0 {
			t.Fatalf("expected no entries, got %#v", entries)
		}

		desired = NewCanonical().IDSet("app_server_group_ids", []string{"2", "1"})
		entries := Diff(current, desired)
		if len(entries) != 1 || !reflect.DeepEqual(entries[0].Desired, []string{"1", "2"}) {
			t.Fatalf("unexpected entries %#v", entries)
		}
	})

	t.Run("uses_coordinate_tolerance", func(t *testing.T) {
		t.Parallel()

		current := NewCanonical().Coordinate("latitude", ptr.To("37.3382082"))
		desired := NewCanonical().Coordinate("latitude", ptr.To("37.33820821"))
		if entries := Diff(current, desired); len(entries) != 0 {
			t.Fatalf("expected no entries, got %#v", entries)
		}

		desired = NewCanonical().Coordinate("latitude", ptr.To("38.0000000"))
		if entries := Diff(current, desired); len(entries) != 1 {
			t.Fatalf("expected one entry, got %#v", entries)
		}
	})

	t.Run("compares_bool_strings_as_booleans", func(t *testing.T) {
		t.Parallel()

		parsed, err := ParseBoolString("true")
		if err != nil {
			t.Fatalf("ParseBoolString returned error: %v", err)
		}
		current := NewCanonical().BoolString("is_public", NewBoolString(true))
		desired := NewCanonical().BoolString("is_public", &parsed)
		if entries := Diff(current, desired); len(entries) != 0 {
			t.Fatalf("expected no entries, got %#v", entries)
		}
	})
}

package resource

import (
	"reflect"
	"slices"
)

// IDField is never compared.
const IDField = "id"

// Diff returns one entry per desired field whose canonical value differs from
// the current one. Unset desired fields never produce entries. Entries follow
// the desired side's field order.
func Diff(current *Canonical, desired *Canonical, excluded ...string) []DiffEntry {
	entries := make([]DiffEntry, 0)
	for _, field := range desired.Fields() {
		if !field.Set || field.Name == IDField || slices.Contains(excluded, field.Name) {
			continue
		}

		var currentValue any
		if existing, found := current.Lookup(field.Name); found {
			currentValue = existing.Value
		}
		if reflect.DeepEqual(currentValue, field.Value) {
			continue
		}

		entries = append(entries, DiffEntry{
			Field:   field.Name,
			Current: currentValue,
			Desired: field.Value,
		})
	}
	return entries
}

// DiffFields lists the field names of entries.
func DiffFields(entries []DiffEntry) []string {
	names := make([]string, len(entries))
	for idx, entry := range entries {
		names[idx] = entry.Field
	}
	return names
}

package http

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// pagedList is one decoded list page. totalPages is zero when the response
// carried no paging envelope.
type pagedList struct {
	items      []any
	totalPages int
}

func extractListItems(payload any) (pagedList, error) {
	switch typed := payload.(type) {
	case nil:
		return pagedList{}, nil
	case []any:
		return pagedList{items: typed}, nil
	case map[string]any:
		totalPages, err := parseTotalPages(typed["totalPages"])
		if err != nil {
			return pagedList{}, err
		}

		for _, key := range []string{"list", "items"} {
			items, ok := typed[key]
			if !ok {
				continue
			}
			values, valuesOK := items.([]any)
			if !valuesOK {
				return pagedList{}, validationError(fmt.Sprintf("list response %q must be an array", key), nil)
			}
			return pagedList{items: values, totalPages: totalPages}, nil
		}

		arrayFieldKeys := make([]string, 0, len(typed))
		for key, field := range typed {
			if _, fieldIsArray := field.([]any); fieldIsArray {
				arrayFieldKeys = append(arrayFieldKeys, key)
			}
		}
		sort.Strings(arrayFieldKeys)

		switch len(arrayFieldKeys) {
		case 0:
			// An empty page omits the list field entirely.
			return pagedList{totalPages: totalPages}, nil
		case 1:
			values, _ := typed[arrayFieldKeys[0]].([]any)
			return pagedList{items: values, totalPages: totalPages}, nil
		default:
			return pagedList{}, validationError(
				fmt.Sprintf(
					"list response object is ambiguous: expected a \"list\" array or a single array field, found array fields [%s]",
					strings.Join(arrayFieldKeys, ", "),
				),
				nil,
			)
		}
	default:
		return pagedList{}, validationError("list response must be an array or an object with a \"list\" array", nil)
	}
}

func parseTotalPages(value any) (int, error) {
	var raw string
	switch typed := value.(type) {
	case nil:
		return 0, nil
	case string:
		raw = typed
	case json.Number:
		raw = typed.String()
	default:
		return 0, validationError(fmt.Sprintf("list response totalPages has unexpected type %T", value), nil)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	pages, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validationError(fmt.Sprintf("list response totalPages %q is not an integer", raw), err)
	}
	return pages, nil
}

// normalizeNumbers rewrites json.Number leaves into int or float64 so jq
// expressions see plain numbers.
func normalizeNumbers(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return int(integer)
		}
		if float, err := typed.Float64(); err == nil {
			return float
		}
		return typed.String()
	case []any:
		for idx := range typed {
			typed[idx] = normalizeNumbers(typed[idx])
		}
		return typed
	case map[string]any:
		for key := range typed {
			typed[key] = normalizeNumbers(typed[key])
		}
		return typed
	default:
		return value
	}
}

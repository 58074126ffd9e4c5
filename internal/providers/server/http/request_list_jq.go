package http

import (
	"context"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
)

var listJQCodeCache sync.Map

// applyListJQ narrows list items with the kind's configured filter. The
// expression receives the full item array; every emitted value becomes an
// item, and a single emitted array replaces the list.
func (g *Gateway) applyListJQ(ctx context.Context, kind string, items []any) ([]any, error) {
	expression := strings.TrimSpace(g.listFilters[kind])
	if expression == "" {
		return items, nil
	}

	code, err := cachedListJQCode(expression)
	if err != nil {
		return nil, validationError("invalid list jq expression for "+kind, err)
	}

	iterator := code.RunWithContext(ctx, items)
	results := make([]any, 0, len(items))
	for {
		value, ok := iterator.Next()
		if !ok {
			break
		}
		if valueErr, isErr := value.(error); isErr {
			return nil, validationError("failed to evaluate list jq expression for "+kind, valueErr)
		}
		results = append(results, value)
	}

	if len(results) == 1 {
		if array, isArray := results[0].([]any); isArray {
			return array, nil
		}
	}
	return results, nil
}

func cachedListJQCode(expression string) (*gojq.Code, error) {
	if cached, ok := listJQCodeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	actual, _ := listJQCodeCache.LoadOrStore(expression, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}

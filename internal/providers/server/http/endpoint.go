package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/crmarques/zpasync/debugctx"
	"github.com/crmarques/zpasync/reconciler"
)

// PathFunc yields an endpoint's collection path relative to the tenant root.
type PathFunc func(ctx context.Context) (string, error)

func StaticPath(relative string) PathFunc {
	return func(context.Context) (string, error) {
		return relative, nil
	}
}

var (
	_ reconciler.Client[struct{}]   = (*Collection[struct{}])(nil)
	_ reconciler.Searcher[struct{}] = (*SearchableCollection[struct{}])(nil)
	_ reconciler.Client[struct{}]   = (*Singleton[struct{}])(nil)
)

// Collection is a CRUD endpoint of one kind: list and create on the
// collection path, get/update/delete on path/{id}.
type Collection[T any] struct {
	gateway  *Gateway
	kind     string
	path     PathFunc
	listPath PathFunc
}

func NewCollection[T any](gateway *Gateway, kind string, relative string) *Collection[T] {
	return &Collection[T]{
		gateway:  gateway,
		kind:     kind,
		path:     StaticPath(relative),
		listPath: StaticPath(relative),
	}
}

// NewPolicyRuleCollection targets the rules of the tenant's policy set of
// policyType. The set id is resolved on first use and cached on the gateway.
func NewPolicyRuleCollection[T any](gateway *Gateway, kind string, policyType string) *Collection[T] {
	return &Collection[T]{
		gateway: gateway,
		kind:    kind,
		path: func(ctx context.Context) (string, error) {
			setID, err := gateway.policySetID(ctx, policyType)
			if err != nil {
				return "", err
			}
			return path.Join("policySet", setID, "rule"), nil
		},
		listPath: StaticPath(path.Join("policySet/rules/policyType", policyType)),
	}
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	itemPath, err := c.itemPath(ctx, id)
	if err != nil {
		return zero, err
	}

	result, err := c.gateway.execute(ctx, request{method: http.MethodGet, path: itemPath})
	if err != nil {
		return zero, err
	}
	if len(bytes.TrimSpace(result.body)) == 0 {
		return zero, notFoundError(fmt.Sprintf("%s %q returned an empty body", c.kind, id), nil)
	}
	return decodeTyped[T](result.body)
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return c.list(ctx, nil)
}

func (c *Collection[T]) Create(ctx context.Context, payload T) (T, error) {
	collectionPath, err := c.path(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.write(ctx, http.MethodPost, collectionPath, payload)
}

// Update returns payload when the remote answers without a body.
func (c *Collection[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	itemPath, err := c.itemPath(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.write(ctx, http.MethodPut, itemPath, payload)
}

// Delete reports a delete the remote answered with an error status through
// the status alone. Only failures without a complete response are errors.
func (c *Collection[T]) Delete(ctx context.Context, id string) (int, error) {
	itemPath, err := c.itemPath(ctx, id)
	if err != nil {
		return 0, err
	}

	result, err := c.gateway.execute(ctx, request{method: http.MethodDelete, path: itemPath})
	if err != nil && result.rejected {
		debugctx.Printf(ctx, "delete rejected kind=%q id=%q status=%d error=%v", c.kind, id, result.status, err)
		return result.status, nil
	}
	return result.status, err
}

func (c *Collection[T]) itemPath(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", validationError(c.kind+" id is required", nil)
	}
	collectionPath, err := c.path(ctx)
	if err != nil {
		return "", err
	}
	return path.Join(collectionPath, id), nil
}

func (c *Collection[T]) write(ctx context.Context, method string, target string, payload T) (T, error) {
	result, err := c.gateway.execute(ctx, request{method: method, path: target, body: payload})
	if err != nil {
		var zero T
		return zero, err
	}
	if len(bytes.TrimSpace(result.body)) == 0 {
		return payload, nil
	}
	return decodeTyped[T](result.body)
}

// list walks every page, then applies the kind's list filter to the
// collected items.
func (c *Collection[T]) list(ctx context.Context, extra url.Values) ([]T, error) {
	listPath, err := c.listPath(ctx)
	if err != nil {
		return nil, err
	}

	collected := make([]any, 0)
	for page := 1; ; page++ {
		query := url.Values{}
		for key, values := range extra {
			query[key] = append([]string(nil), values...)
		}
		query.Set("page", strconv.Itoa(page))
		query.Set("pagesize", strconv.Itoa(c.gateway.pageSize))

		result, err := c.gateway.execute(ctx, request{method: http.MethodGet, path: listPath, query: query})
		if err != nil {
			return nil, err
		}
		payload, err := decodeJSONResponse(result.body)
		if err != nil {
			return nil, err
		}
		decoded, err := extractListItems(payload)
		if err != nil {
			return nil, err
		}
		collected = append(collected, decoded.items...)

		if decoded.totalPages <= page || len(decoded.items) == 0 {
			break
		}
	}

	filtered, err := c.gateway.applyListJQ(ctx, c.kind, normalizeNumbers(collected).([]any))
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(filtered))
	for _, entry := range filtered {
		if _, ok := entry.(map[string]any); !ok {
			return nil, validationError(fmt.Sprintf("%s list entries must be JSON objects", c.kind), nil)
		}
		item, err := convert[T](entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SearchableCollection adds the API's server-side ?search= filter. Results
// may still contain partial matches; callers compare keys exactly.
type SearchableCollection[T any] struct {
	*Collection[T]
}

func NewSearchableCollection[T any](gateway *Gateway, kind string, relative string) *SearchableCollection[T] {
	return &SearchableCollection[T]{Collection: NewCollection[T](gateway, kind, relative)}
}

func (c *SearchableCollection[T]) Search(ctx context.Context, key string) ([]T, error) {
	return c.list(ctx, url.Values{"search": []string{key}})
}

// Singleton is a per-tenant object read from its collection path. An object
// without an id means the tenant has none yet.
type Singleton[T any] struct {
	gateway *Gateway
	kind    string
	path    string
}

func NewSingleton[T any](gateway *Gateway, kind string, relative string) *Singleton[T] {
	return &Singleton[T]{gateway: gateway, kind: kind, path: relative}
}

func (s *Singleton[T]) Get(ctx context.Context, _ string) (T, error) {
	var zero T
	value, found, err := s.fetch(ctx)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, notFoundError(s.kind+" is not configured", nil)
	}
	return value, nil
}

func (s *Singleton[T]) List(ctx context.Context) ([]T, error) {
	value, found, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []T{}, nil
	}
	return []T{value}, nil
}

func (s *Singleton[T]) Create(ctx context.Context, payload T) (T, error) {
	return s.write(ctx, http.MethodPost, s.path, payload)
}

func (s *Singleton[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	if strings.TrimSpace(id) == "" {
		var zero T
		return zero, validationError(s.kind+" id is required", nil)
	}
	return s.write(ctx, http.MethodPut, path.Join(s.path, id), payload)
}

func (s *Singleton[T]) Delete(context.Context, string) (int, error) {
	return 0, validationError(s.kind+" cannot be deleted", nil)
}

func (s *Singleton[T]) fetch(ctx context.Context) (T, bool, error) {
	var zero T
	result, err := s.gateway.execute(ctx, request{method: http.MethodGet, path: s.path})
	if err != nil {
		return zero, false, err
	}

	payload, err := decodeJSONResponse(result.body)
	if err != nil {
		return zero, false, err
	}
	object, ok := payload.(map[string]any)
	if !ok || idString(object["id"]) == "" {
		return zero, false, nil
	}

	value, err := decodeTyped[T](result.body)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

func (s *Singleton[T]) write(ctx context.Context, method string, target string, payload T) (T, error) {
	result, err := s.gateway.execute(ctx, request{method: method, path: target, body: payload})
	if err != nil {
		var zero T
		return zero, err
	}
	if len(bytes.TrimSpace(result.body)) == 0 {
		return payload, nil
	}
	return decodeTyped[T](result.body)
}

func (g *Gateway) policySetID(ctx context.Context, policyType string) (string, error) {
	g.policySetMu.Lock()
	defer g.policySetMu.Unlock()

	if id, ok := g.policySetIDs[policyType]; ok {
		return id, nil
	}

	result, err := g.execute(ctx, request{
		method: http.MethodGet,
		path:   path.Join("policySet/policyType", policyType),
	})
	if err != nil {
		return "", err
	}
	payload, err := decodeJSONResponse(result.body)
	if err != nil {
		return "", err
	}
	object, _ := payload.(map[string]any)
	id := idString(object["id"])
	if id == "" {
		return "", notFoundError(fmt.Sprintf("policy set %s has no id", policyType), nil)
	}

	g.policySetIDs[policyType] = id
	return id, nil
}

func idString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

package reconciler

import (
	"context"

	"github.com/crmarques/zpasync/faults"
)

const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
)

type instrumentedClient[T any] struct {
	kind     string
	inner    Client[T]
	recorder Recorder
}

type instrumentedSearcher[T any] struct {
	*instrumentedClient[T]
	searcher Searcher[T]
}

// instrument wraps client so every remote call is counted. Search support is
// preserved when client has it.
func instrument[T any](kind string, client Client[T], recorder Recorder) Client[T] {
	wrapped := &instrumentedClient[T]{kind: kind, inner: client, recorder: recorder}
	if searcher, ok := client.(Searcher[T]); ok {
		return &instrumentedSearcher[T]{instrumentedClient: wrapped, searcher: searcher}
	}
	return wrapped
}

func (c *instrumentedClient[T]) observe(operation string, err error) {
	c.recorder.ObserveRemoteCall(c.kind, operation, callResult(err))
}

func (c *instrumentedClient[T]) Get(ctx context.Context, id string) (T, error) {
	item, err := c.inner.Get(ctx, id)
	c.observe("get", err)
	return item, err
}

func (c *instrumentedClient[T]) List(ctx context.Context) ([]T, error) {
	items, err := c.inner.List(ctx)
	c.observe("list", err)
	return items, err
}

func (c *instrumentedClient[T]) Create(ctx context.Context, payload T) (T, error) {
	item, err := c.inner.Create(ctx, payload)
	c.observe("create", err)
	return item, err
}

func (c *instrumentedClient[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	item, err := c.inner.Update(ctx, id, payload)
	c.observe("update", err)
	return item, err
}

func (c *instrumentedClient[T]) Delete(ctx context.Context, id string) (int, error) {
	status, err := c.inner.Delete(ctx, id)
	if err == nil && !successStatus(status) {
		c.recorder.ObserveRemoteCall(c.kind, "delete", ResultRejected)
		return status, nil
	}
	c.observe("delete", err)
	return status, err
}

func (s *instrumentedSearcher[T]) Search(ctx context.Context, key string) ([]T, error) {
	items, err := s.searcher.Search(ctx, key)
	s.observe("search", err)
	return items, err
}

func callResult(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case faults.IsCategory(err, faults.NotFoundError):
		return ResultNotFound
	default:
		return ResultError
	}
}

func successStatus(status int) bool {
	return status >= 200 && status <= 299
}

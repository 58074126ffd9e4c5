package testkit

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/crmarques/zpasync/faults"
)

// Call is one recorded client invocation.
type Call struct {
	Operation string
	ID        string
	Key       string
	Payload   any
}

// FakeClient is an in-memory remote for one kind. Items are kept in insertion
// order so list lookups are deterministic.
type FakeClient[T any] struct {
	mu     sync.Mutex
	items  []T
	idOf   func(T) string
	withID func(T, string) T
	nextID int
	calls  []Call

	// Error hooks, checked before the in-memory behavior.
	GetErr     error
	ListErr    error
	CreateErr  error
	UpdateErr  error
	DeleteErr  error
	SearchErr  error
	DeleteCode int
}

func NewFakeClient[T any](idOf func(T) string, withID func(T, string) T, items ...T) *FakeClient[T] {
	return &FakeClient[T]{
		items:  append([]T(nil), items...),
		idOf:   idOf,
		withID: withID,
		nextID: 1000,
	}
}

func (c *FakeClient[T]) record(call Call) {
	c.calls = append(c.calls, call)
}

func (c *FakeClient[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Operation: "get", ID: id})

	var zero T
	if c.GetErr != nil {
		return zero, c.GetErr
	}
	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, nil
		}
	}
	return zero, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("resource %q not found", id), nil)
}

func (c *FakeClient[T]) List(context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Operation: "list"})

	if c.ListErr != nil {
		return nil, c.ListErr
	}
	return append([]T(nil), c.items...), nil
}

func (c *FakeClient[T]) Create(_ context.Context, payload T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Operation: "create", Payload: payload})

	if c.CreateErr != nil {
		var zero T
		return zero, c.CreateErr
	}
	c.nextID++
	created := c.withID(payload, fmt.Sprintf("%d", c.nextID))
	c.items = append(c.items, created)
	return created, nil
}

func (c *FakeClient[T]) Update(_ context.Context, id string, payload T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Operation: "update", ID: id, Payload: payload})

	var zero T
	if c.UpdateErr != nil {
		return zero, c.UpdateErr
	}
	for idx, item := range c.items {
		if c.idOf(item) == id {
			c.items[idx] = c.withID(payload, id)
			return c.items[idx], nil
		}
	}
	return zero, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("resource %q not found", id), nil)
}

func (c *FakeClient[T]) Delete(_ context.Context, id string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Operation: "delete", ID: id})

	if c.DeleteErr != nil {
		return 0, c.DeleteErr
	}
	if c.DeleteCode != 0 {
		return c.DeleteCode, nil
	}
	for idx, item := range c.items {
		if c.idOf(item) == id {
			c.items = append(c.items[:idx], c.items[idx+1:]...)
			return http.StatusNoContent, nil
		}
	}
	return 0, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("resource %q not found", id), nil)
}

// Calls returns a copy of the recorded invocations.
func (c *FakeClient[T]) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Operations returns the recorded operation names in call order.
func (c *FakeClient[T]) Operations() []string {
	calls := c.Calls()
	operations := make([]string, len(calls))
	for idx, call := range calls {
		operations[idx] = call.Operation
	}
	return operations
}

// Mutations counts create, update and delete calls.
func (c *FakeClient[T]) Mutations() int {
	count := 0
	for _, operation := range c.Operations() {
		switch operation {
		case "create", "update", "delete":
			count++
		}
	}
	return count
}

// Put stores item directly, bypassing call recording.
func (c *FakeClient[T]) Put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

func (c *FakeClient[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// SearchingClient adds server-side search by key to a FakeClient.
type SearchingClient[T any] struct {
	*FakeClient[T]
	keyOf func(T) string
}

func NewSearchingClient[T any](client *FakeClient[T], keyOf func(T) string) *SearchingClient[T] {
	return &SearchingClient[T]{FakeClient: client, keyOf: keyOf}
}

func (c *SearchingClient[T]) Search(_ context.Context, key string) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Operation: "search", Key: key})

	if c.SearchErr != nil {
		return nil, c.SearchErr
	}
	matches := make([]T, 0)
	for _, item := range c.items {
		if c.keyOf(item) == key {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

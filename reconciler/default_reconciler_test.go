package reconciler

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/ptr"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/internal/testkit"
	"github.com/crmarques/zpasync/resource"
)

type widget struct {
	ID          string
	Name        *string
	Description *string
	Enabled     *bool
	Tags        []string
	Modified    *string
}

type widgetAdapter struct {
	createOnlyEnabled bool
	rejectName        string
}

func (widgetAdapter) Kind() resource.Kind { return "Widget" }

func (widgetAdapter) Fields() []string { return []string{"name", "description", "enabled", "tags"} }

func (widgetAdapter) ID(value widget) string { return value.ID }

func (widgetAdapter) NaturalKey(value widget) (string, bool) {
	if value.Name == nil {
		return "", false
	}
	return *value.Name, true
}

func (widgetAdapter) Matches(desired widget, candidate widget) bool {
	return desired.Name != nil && candidate.Name != nil && *desired.Name == *candidate.Name
}

func (a widgetAdapter) Validate(spec resource.Spec[widget]) error {
	if a.rejectName != "" && ptr.Deref(spec.Desired.Name, "") == a.rejectName {
		return faults.NewTypedError(faults.ValidationError, "name is reserved", nil).WithFields("name")
	}
	return nil
}

func (widgetAdapter) Normalize(value widget) *resource.Canonical {
	return resource.NewCanonical().
		String("name", value.Name).
		String("description", value.Description).
		Bool("enabled", value.Enabled).
		IDSet("tags", value.Tags)
}

func (widgetAdapter) Excluded() []string { return nil }

func (widgetAdapter) Merge(current widget, desired widget) widget {
	merged := current
	if desired.Name != nil {
		merged.Name = desired.Name
	}
	if desired.Description != nil {
		merged.Description = desired.Description
	}
	if desired.Enabled != nil {
		merged.Enabled = desired.Enabled
	}
	if desired.Tags != nil {
		merged.Tags = desired.Tags
	}
	return merged
}

func (widgetAdapter) CreatePayload(desired widget) widget {
	return widget{Name: desired.Name, Description: desired.Description, Enabled: desired.Enabled, Tags: desired.Tags}
}

func (a widgetAdapter) UpdatePayload(merged widget) widget {
	payload := a.CreatePayload(merged)
	payload.ID = merged.ID
	return payload
}

type gatedWidgetAdapter struct {
	widgetAdapter
}

func (gatedWidgetAdapter) ShouldCreate(desired widget) bool {
	return ptr.Deref(desired.Enabled, false)
}

func newWidgetClient(items ...widget) *testkit.FakeClient[widget] {
	return testkit.NewFakeClient(
		func(value widget) string { return value.ID },
		func(value widget, id string) widget {
			value.ID = id
			return value
		},
		items...,
	)
}

func present(desired widget) resource.Spec[widget] {
	return resource.Spec[widget]{Presence: resource.PresencePresent, Desired: desired}
}

func absent(desired widget) resource.Spec[widget] {
	return resource.Spec[widget]{Presence: resource.PresenceAbsent, Desired: desired}
}

func TestReconcileCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates_missing_resource_without_id", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A"), Enabled: ptr.To(true)}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if !outcome.Changed || !outcome.Applied || outcome.Action != resource.ActionCreate {
			t.Fatalf("unexpected outcome %#v", outcome)
		}
		if outcome.Data == nil || outcome.Data.ID == "" {
			t.Fatalf("expected created resource with id, got %#v", outcome.Data)
		}

		calls := client.Calls()
		if got := client.Operations(); !reflect.DeepEqual(got, []string{"list", "create"}) {
			t.Fatalf("unexpected operations %#v", got)
		}
		payload := calls[1].Payload.(widget)
		if payload.ID != "" {
			t.Fatalf("expected create payload without id, got %q", payload.ID)
		}
		if payload.Description != nil {
			t.Fatalf("expected unset description to stay unset, got %q", *payload.Description)
		}
	})

	t.Run("is_idempotent", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](widgetAdapter{}, client)
		spec := present(widget{Name: ptr.To("A"), Enabled: ptr.To(true), Tags: []string{"b", "a"}})

		if _, err := engine.Reconcile(context.Background(), spec); err != nil {
			t.Fatalf("first Reconcile returned error: %v", err)
		}
		mutations := client.Mutations()

		outcome, err := engine.Reconcile(context.Background(), spec)
		if err != nil {
			t.Fatalf("second Reconcile returned error: %v", err)
		}
		if outcome.Changed || outcome.Action != resource.ActionNoOp {
			t.Fatalf("expected no-op on second run, got %#v", outcome)
		}
		if client.Mutations() != mutations {
			t.Fatalf("expected no further mutations, got %d", client.Mutations()-mutations)
		}
	})

	t.Run("treats_missing_id_as_absent", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](widgetAdapter{}, client)
		spec := present(widget{Name: ptr.To("A")})
		spec.ID = "404"

		outcome, err := engine.Reconcile(context.Background(), spec)
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if outcome.Action != resource.ActionCreate {
			t.Fatalf("expected create, got %q", outcome.Action)
		}
		if got := client.Operations(); !reflect.DeepEqual(got, []string{"get", "create"}) {
			t.Fatalf("unexpected operations %#v", got)
		}
	})

	t.Run("create_gate_declines", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](gatedWidgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A"), Enabled: ptr.To(false)}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if outcome.Changed || outcome.Action != resource.ActionNoOp || outcome.Data != nil {
			t.Fatalf("unexpected outcome %#v", outcome)
		}
		if client.Mutations() != 0 {
			t.Fatalf("expected no mutations, got %d", client.Mutations())
		}
	})

	t.Run("create_failure_is_mutation_error", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		client.CreateErr = faults.NewTypedError(faults.TransportError, "connection reset", nil)
		engine := New[widget](widgetAdapter{}, client)

		_, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A")}))
		if category, _ := faults.CategoryOf(err); category != faults.MutationError {
			t.Fatalf("expected mutation error, got %v", err)
		}
		if !faults.IsCategory(err, faults.TransportError) {
			t.Fatalf("expected transport cause to stay reachable, got %v", err)
		}
	})
}

type conflictingClient struct {
	*testkit.FakeClient[widget]
	existing *widget
}

func (c *conflictingClient) Create(ctx context.Context, payload widget) (widget, error) {
	_, _ = c.FakeClient.Create(ctx, payload)
	if c.existing != nil {
		c.FakeClient.Put(*c.existing)
	}
	return widget{}, faults.NewTypedError(faults.ConflictError, "resource.already.exist", nil)
}

func TestReconcileConflict(t *testing.T) {
	t.Parallel()

	t.Run("re_resolves_and_updates", func(t *testing.T) {
		t.Parallel()

		fake := newWidgetClient()
		fake.CreateErr = faults.NewTypedError(faults.ConflictError, "exists", nil)
		client := &conflictingClient{
			FakeClient: fake,
			existing:   &widget{ID: "7", Name: ptr.To("A"), Enabled: ptr.To(true)},
		}
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A"), Enabled: ptr.To(false)}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if outcome.Action != resource.ActionUpdate || !outcome.Changed {
			t.Fatalf("expected update after conflict, got %#v", outcome)
		}
		if got := fake.Operations(); !reflect.DeepEqual(got, []string{"list", "create", "list", "update"}) {
			t.Fatalf("unexpected operations %#v", got)
		}
		if calls := fake.Calls(); calls[3].ID != "7" {
			t.Fatalf("expected update of resolved id 7, got %q", calls[3].ID)
		}
	})

	t.Run("fails_when_conflict_cannot_be_resolved", func(t *testing.T) {
		t.Parallel()

		fake := newWidgetClient()
		fake.CreateErr = faults.NewTypedError(faults.ConflictError, "exists", nil)
		engine := New[widget](widgetAdapter{}, &conflictingClient{FakeClient: fake})

		_, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A")}))
		if category, _ := faults.CategoryOf(err); category != faults.ConflictError {
			t.Fatalf("expected conflict error, got %v", err)
		}
	})
}

func TestReconcileUpdate(t *testing.T) {
	t.Parallel()

	t.Run("sends_merged_payload", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A"), Description: ptr.To("kept"), Enabled: ptr.To(true)})
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A"), Enabled: ptr.To(false)}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if outcome.Action != resource.ActionUpdate || !outcome.Changed {
			t.Fatalf("unexpected outcome %#v", outcome)
		}
		if got := resource.DiffFields(outcome.Diff); !reflect.DeepEqual(got, []string{"enabled"}) {
			t.Fatalf("unexpected diff fields %#v", got)
		}

		calls := client.Calls()
		update := calls[len(calls)-1]
		payload := update.Payload.(widget)
		if update.ID != "1" {
			t.Fatalf("expected update of id 1, got %q", update.ID)
		}
		if payload.Enabled == nil || *payload.Enabled {
			t.Fatalf("expected enabled=false in payload, got %#v", payload.Enabled)
		}
		if ptr.Deref(payload.Name, "") != "A" || ptr.Deref(payload.Description, "") != "kept" {
			t.Fatalf("expected current values to be kept, got %#v", payload)
		}
	})

	t.Run("unset_fields_are_neutral", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A"), Description: ptr.To("remote"), Tags: nil})
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A"), Tags: []string{}}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if outcome.Changed || outcome.Action != resource.ActionNoOp {
			t.Fatalf("expected no-op, got %#v", outcome)
		}
		if outcome.Data == nil || outcome.Data.ID != "1" {
			t.Fatalf("expected resolved resource in outcome, got %#v", outcome.Data)
		}
	})

	t.Run("update_failure_names_fields", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A"), Enabled: ptr.To(true)})
		client.UpdateErr = faults.NewTypedError(faults.ValidationError, "bad request", nil)
		engine := New[widget](widgetAdapter{}, client)

		_, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("A"), Enabled: ptr.To(false)}))
		typedErr, ok := err.(*faults.TypedError)
		if !ok || typedErr.Category != faults.MutationError {
			t.Fatalf("expected mutation error, got %v", err)
		}
		if !reflect.DeepEqual(typedErr.Fields, []string{"enabled"}) {
			t.Fatalf("expected enabled field, got %#v", typedErr.Fields)
		}
	})
}

func TestReconcileDelete(t *testing.T) {
	t.Parallel()

	t.Run("absent_and_missing_is_noop", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), absent(widget{Name: ptr.To("A")}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if outcome.Changed || outcome.Action != resource.ActionNoOp || outcome.Data != nil {
			t.Fatalf("unexpected outcome %#v", outcome)
		}
		if client.Mutations() != 0 {
			t.Fatalf("expected zero mutations, got %d", client.Mutations())
		}
	})

	t.Run("deletes_existing_resource", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), absent(widget{Name: ptr.To("A")}))
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if !outcome.Changed || !outcome.Applied || outcome.Action != resource.ActionDelete {
			t.Fatalf("unexpected outcome %#v", outcome)
		}
		if len(client.Items()) != 0 {
			t.Fatalf("expected resource to be removed, got %#v", client.Items())
		}
	})

	t.Run("rejected_delete_is_soft", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
		client.DeleteCode = http.StatusBadRequest
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), absent(widget{Name: ptr.To("A")}))
		if err != nil {
			t.Fatalf("expected soft failure, got error %v", err)
		}
		if outcome.Changed || outcome.Applied || outcome.Data != nil || outcome.Action != resource.ActionDelete {
			t.Fatalf("unexpected outcome %#v", outcome)
		}
	})

	t.Run("vanished_resource_is_soft", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
		client.DeleteErr = faults.NewTypedError(faults.NotFoundError, "gone", nil)
		engine := New[widget](widgetAdapter{}, client)

		outcome, err := engine.Reconcile(context.Background(), absent(widget{Name: ptr.To("A")}))
		if err != nil || outcome.Changed {
			t.Fatalf("expected soft failure, got %#v, %v", outcome, err)
		}
	})

	t.Run("transport_failure_is_mutation_error", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
		client.DeleteErr = faults.NewTypedError(faults.TransportError, "timeout", nil)
		engine := New[widget](widgetAdapter{}, client)

		_, err := engine.Reconcile(context.Background(), absent(widget{Name: ptr.To("A")}))
		if category, _ := faults.CategoryOf(err); category != faults.MutationError {
			t.Fatalf("expected mutation error, got %v", err)
		}
	})
}

func TestReconcileFailures(t *testing.T) {
	t.Parallel()

	t.Run("validation_runs_before_any_remote_call", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](widgetAdapter{rejectName: "reserved"}, client)

		_, err := engine.Reconcile(context.Background(), present(widget{Name: ptr.To("reserved")}))
		typedErr, ok := err.(*faults.TypedError)
		if !ok || typedErr.Category != faults.ValidationError {
			t.Fatalf("expected validation error, got %v", err)
		}
		if typedErr.Operation != "validate Widget" {
			t.Fatalf("expected operation to be named, got %q", typedErr.Operation)
		}
		if len(client.Calls()) != 0 {
			t.Fatalf("expected no remote calls, got %#v", client.Operations())
		}
	})

	t.Run("get_failure_is_resolution_error", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		client.GetErr = faults.NewTypedError(faults.AuthError, "unauthorized", nil)
		engine := New[widget](widgetAdapter{}, client)
		spec := present(widget{Name: ptr.To("A")})
		spec.ID = "1"

		_, err := engine.Reconcile(context.Background(), spec)
		if category, _ := faults.CategoryOf(err); category != faults.ResolutionError {
			t.Fatalf("expected resolution error, got %v", err)
		}
		if !faults.IsCategory(err, faults.AuthError) {
			t.Fatalf("expected auth cause, got %v", err)
		}
		if client.Mutations() != 0 {
			t.Fatalf("expected no mutations, got %d", client.Mutations())
		}
	})

	t.Run("cancelled_context_stops_before_remote_calls", func(t *testing.T) {
		t.Parallel()

		client := newWidgetClient()
		engine := New[widget](widgetAdapter{}, client)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := engine.Reconcile(ctx, present(widget{Name: ptr.To("A")})); err == nil {
			t.Fatal("expected error for cancelled context")
		}
		if len(client.Calls()) != 0 {
			t.Fatalf("expected no remote calls, got %#v", client.Operations())
		}
	})
}

func TestReconcileDryRun(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		items  []widget
		spec   resource.Spec[widget]
		action resource.Action
	}{
		{name: "create", spec: present(widget{Name: ptr.To("A")}), action: resource.ActionCreate},
		{name: "update", items: []widget{{ID: "1", Name: ptr.To("A"), Enabled: ptr.To(true)}}, spec: present(widget{Name: ptr.To("A"), Enabled: ptr.To(false)}), action: resource.ActionUpdate},
		{name: "delete", items: []widget{{ID: "1", Name: ptr.To("A")}}, spec: absent(widget{Name: ptr.To("A")}), action: resource.ActionDelete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newWidgetClient(tc.items...)
			engine := New[widget](widgetAdapter{}, client, WithDryRun(true), WithLogger(logr.Discard()))

			outcome, err := engine.Reconcile(context.Background(), tc.spec)
			if err != nil {
				t.Fatalf("Reconcile returned error: %v", err)
			}
			if outcome.Action != tc.action || !outcome.Changed || outcome.Applied {
				t.Fatalf("unexpected outcome %#v", outcome)
			}
			if client.Mutations() != 0 {
				t.Fatalf("expected no mutations in dry-run, got %d", client.Mutations())
			}
		})
	}
}

func TestResolverPrefersSearch(t *testing.T) {
	t.Parallel()

	t.Run("uses_search_match", func(t *testing.T) {
		t.Parallel()

		fake := newWidgetClient(widget{ID: "1", Name: ptr.To("A")}, widget{ID: "2", Name: ptr.To("B")})
		client := testkit.NewSearchingClient(fake, func(value widget) string { return ptr.Deref(value.Name, "") })
		resolver := NewResolver[widget](widgetAdapter{}, client)

		found, err := resolver.Resolve(context.Background(), present(widget{Name: ptr.To("B")}))
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if found == nil || found.ID != "2" {
			t.Fatalf("expected id 2, got %#v", found)
		}
		if got := fake.Operations(); !reflect.DeepEqual(got, []string{"search"}) {
			t.Fatalf("unexpected operations %#v", got)
		}
	})

	t.Run("falls_back_to_list", func(t *testing.T) {
		t.Parallel()

		fake := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
		client := testkit.NewSearchingClient(fake, func(widget) string { return "" })
		resolver := NewResolver[widget](widgetAdapter{}, client)

		found, err := resolver.Resolve(context.Background(), present(widget{Name: ptr.To("A")}))
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if found == nil || found.ID != "1" {
			t.Fatalf("expected id 1, got %#v", found)
		}
		if got := fake.Operations(); !reflect.DeepEqual(got, []string{"search", "list"}) {
			t.Fatalf("unexpected operations %#v", got)
		}
	})

	t.Run("first_match_wins", func(t *testing.T) {
		t.Parallel()

		fake := newWidgetClient(widget{ID: "1", Name: ptr.To("A")}, widget{ID: "2", Name: ptr.To("A")})
		resolver := NewResolver[widget](widgetAdapter{}, fake)

		found, err := resolver.Resolve(context.Background(), present(widget{Name: ptr.To("A")}))
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if found == nil || found.ID != "1" {
			t.Fatalf("expected first match, got %#v", found)
		}
	})

	t.Run("no_key_is_absent", func(t *testing.T) {
		t.Parallel()

		fake := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
		resolver := NewResolver[widget](widgetAdapter{}, fake)

		found, err := resolver.Resolve(context.Background(), present(widget{}))
		if err != nil || found != nil {
			t.Fatalf("expected absent, got %#v, %v", found, err)
		}
		if len(fake.Calls()) != 0 {
			t.Fatalf("expected no calls, got %#v", fake.Operations())
		}
	})
}

func TestLookup(t *testing.T) {
	t.Parallel()

	client := newWidgetClient(widget{ID: "1", Name: ptr.To("A")}, widget{ID: "2", Name: ptr.To("B")})
	engine := New[widget](widgetAdapter{}, client)

	all, err := engine.Lookup(context.Background(), "", "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected full listing, got %#v, %v", all, err)
	}

	byName, err := engine.Lookup(context.Background(), "", "B")
	if err != nil || len(byName) != 1 || byName[0].ID != "2" {
		t.Fatalf("expected lookup by name, got %#v, %v", byName, err)
	}

	if _, err := engine.Lookup(context.Background(), "", "C"); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not found for missing name, got %v", err)
	}
	if _, err := engine.Lookup(context.Background(), "9", ""); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not found for missing id, got %v", err)
	}
}

type recordingRecorder struct {
	mu         sync.Mutex
	reconciles []string
	calls      []string
}

func (r *recordingRecorder) ObserveReconcile(kind string, action resource.Action, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconciles = append(r.reconciles, kind+"/"+string(action)+"/"+result)
}

func (r *recordingRecorder) ObserveRemoteCall(kind string, operation string, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, kind+"/"+operation+"/"+result)
}

func TestReconcileRecordsObservations(t *testing.T) {
	t.Parallel()

	recorder := &recordingRecorder{}
	client := newWidgetClient(widget{ID: "1", Name: ptr.To("A")})
	client.DeleteCode = http.StatusConflict
	engine := New[widget](widgetAdapter{}, client, WithRecorder(recorder))

	if _, err := engine.Reconcile(context.Background(), absent(widget{Name: ptr.To("A")})); err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !reflect.DeepEqual(recorder.calls, []string{"Widget/list/success", "Widget/delete/rejected"}) {
		t.Fatalf("unexpected remote calls %#v", recorder.calls)
	}
	if !reflect.DeepEqual(recorder.reconciles, []string{"Widget/delete/success"}) {
		t.Fatalf("unexpected reconciles %#v", recorder.reconciles)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if StateDiffing.String() != "Diffing" || State(99).String() != "Unknown" {
		t.Fatal("unexpected state names")
	}
	if !StateDone.Terminal() || !StateFailed.Terminal() || StateNoOp.Terminal() {
		t.Fatal("unexpected terminal states")
	}
}

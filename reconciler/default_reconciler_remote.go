package reconciler

import (
	"context"
	"fmt"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/resource"
)

func (run *reconcileRun[T]) create(ctx context.Context) {
	adapter := run.reconciler.adapter
	kind := adapter.Kind()
	payload := adapter.CreatePayload(run.spec.Desired)

	if run.reconciler.opts.dryRun {
		run.logger.Info("would create resource")
		run.outcome = resource.Outcome[T]{Changed: true, Action: resource.ActionCreate, Data: &payload}
		run.state = StateDone
		return
	}

	run.logger.Info("creating resource")
	created, err := run.reconciler.client.Create(ctx, payload)
	if err == nil {
		run.outcome = resource.Outcome[T]{Changed: true, Action: resource.ActionCreate, Applied: true, Data: &created}
		run.state = StateDone
		return
	}

	if !faults.IsCategory(err, faults.ConflictError) {
		run.fail(mutationError(kind, "create", fmt.Sprintf("failed to create %s", kind), err))
		return
	}
	run.recoverConflict(ctx, err)
}

// recoverConflict handles a create rejected because the resource already
// exists: it re-resolves by natural key and continues with the update path.
func (run *reconcileRun[T]) recoverConflict(ctx context.Context, conflict error) {
	adapter := run.reconciler.adapter
	kind := adapter.Kind()
	operation := "create " + string(kind)

	run.logger.Info("create conflicted, resolving existing resource")

	retry := run.spec
	retry.ID = ""
	current, err := run.reconciler.resolver.Resolve(ctx, retry)
	if err != nil {
		run.fail(err)
		return
	}
	if current == nil {
		run.fail(faults.NewTypedError(
			faults.ConflictError,
			"resource already exists but could not be resolved by its natural key",
			conflict,
		).WithOperation(operation))
		return
	}

	run.current = current
	run.state = StateNormalizing
}

func (run *reconcileRun[T]) update(ctx context.Context) {
	adapter := run.reconciler.adapter
	kind := adapter.Kind()
	id := adapter.ID(*run.current)
	merged := adapter.Merge(*run.current, run.spec.Desired)
	payload := adapter.UpdatePayload(merged)

	logger := run.logger.WithValues("id", id, "fields", resource.DiffFields(run.diff))
	if run.reconciler.opts.dryRun {
		logger.Info("would update resource")
		run.outcome = resource.Outcome[T]{Changed: true, Action: resource.ActionUpdate, Data: &merged, Diff: run.diff}
		run.state = StateDone
		return
	}

	logger.Info("updating resource")
	updated, err := run.reconciler.client.Update(ctx, id, payload)
	if err != nil {
		run.fail(mutationError(kind, "update", fmt.Sprintf("failed to update %s %q", kind, id), err).WithFields(resource.DiffFields(run.diff)...))
		return
	}

	run.outcome = resource.Outcome[T]{Changed: true, Action: resource.ActionUpdate, Applied: true, Data: &updated, Diff: run.diff}
	run.state = StateDone
}

func (run *reconcileRun[T]) delete(ctx context.Context) {
	adapter := run.reconciler.adapter
	kind := adapter.Kind()
	id := adapter.ID(*run.current)
	logger := run.logger.WithValues("id", id)

	if run.reconciler.opts.dryRun {
		logger.Info("would delete resource")
		run.outcome = resource.Outcome[T]{Changed: true, Action: resource.ActionDelete, Data: run.current}
		run.state = StateDone
		return
	}

	logger.Info("deleting resource")
	status, err := run.reconciler.client.Delete(ctx, id)
	switch {
	case err != nil && faults.IsCategory(err, faults.NotFoundError):
		logger.Info("resource vanished before delete")
		run.softDelete()
	case err != nil:
		run.fail(mutationError(kind, "delete", fmt.Sprintf("failed to delete %s %q", kind, id), err))
	case !successStatus(status):
		logger.Info("delete rejected by remote", "status", status)
		run.softDelete()
	default:
		run.outcome = resource.Outcome[T]{Changed: true, Action: resource.ActionDelete, Applied: true, Data: run.current}
		run.state = StateDone
	}
}

func (run *reconcileRun[T]) softDelete() {
	run.outcome = resource.Outcome[T]{Changed: false, Action: resource.ActionDelete}
	run.state = StateDone
}

func mutationError(kind resource.Kind, verb string, message string, cause error) *faults.TypedError {
	return faults.NewTypedError(faults.MutationError, message, cause).WithOperation(verb + " " + string(kind))
}

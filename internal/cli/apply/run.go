package apply

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crmarques/zpasync/debugctx"
	"github.com/crmarques/zpasync/internal/cli/common"
	"github.com/crmarques/zpasync/kinds"
	"github.com/crmarques/zpasync/resource"
)

type runOptions struct {
	dryRun   bool
	parallel int
	yes      bool
	showDiff bool
}

type documentReconciler interface {
	Reconcile(ctx context.Context, document kinds.Document) (kinds.Report, error)
}

func run(command *cobra.Command, deps common.CommandDependencies, globalFlags *common.GlobalFlags, input common.InputFlags, opts runOptions) (err error) {
	if opts.parallel < 0 {
		return common.ValidationError("flag --parallel must not be negative", nil)
	}

	documents, err := common.ReadDocuments(command, input)
	if err != nil {
		return err
	}
	if !opts.dryRun {
		if err := confirmDeletes(command, documents, opts.yes); err != nil {
			return err
		}
	}

	session, err := common.OpenSession(command.Context(), deps, globalFlags, opts.dryRun, command.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, session.Close(command.Context()))
	}()

	limit := opts.parallel
	if limit == 0 {
		limit = session.Config.Reconcile.Parallelism
	}
	ctx := session.Context(command.Context())
	debugctx.Printf(ctx, "apply documents=%d parallel=%d dry_run=%t", len(documents), limit, session.DryRun)

	reports, reconcileErr := reconcileAll(ctx, session.Registry, documents, limit)
	if writeErr := common.WriteOutput(command, globalFlags.Output, reports, func(w io.Writer, items []kinds.Report) error {
		return renderReports(w, items, opts.showDiff)
	}); writeErr != nil {
		return errors.Join(reconcileErr, writeErr)
	}
	return reconcileErr
}

// reconcileAll runs every document with at most limit in flight. A failing
// document does not stop the others; its error is recorded on its report.
func reconcileAll(ctx context.Context, registry documentReconciler, documents []kinds.Document, limit int) ([]kinds.Report, error) {
	reports := make([]kinds.Report, len(documents))
	errs := make([]error, len(documents))

	var group errgroup.Group
	group.SetLimit(max(limit, 1))
	for idx, document := range documents {
		group.Go(func() error {
			report, err := registry.Reconcile(ctx, document)
			if err != nil {
				report.Error = err.Error()
				errs[idx] = fmt.Errorf("document %d (%s): %w", idx+1, document.Kind, err)
			}
			reports[idx] = report
			return nil
		})
	}
	_ = group.Wait()

	return reports, errors.Join(errs...)
}

func confirmDeletes(command *cobra.Command, documents []kinds.Document, yes bool) error {
	deletes := 0
	for _, document := range documents {
		if presence, err := resource.ParsePresence(document.State); err == nil && presence == resource.PresenceAbsent {
			deletes++
		}
	}
	if deletes == 0 || yes {
		return nil
	}

	if !common.IsInteractiveTerminal(command) {
		return common.ValidationError(
			fmt.Sprintf("%d document(s) request deletion: pass --yes to confirm in non-interactive mode", deletes),
			nil,
		)
	}

	confirmed, err := common.PromptConfirm(command, fmt.Sprintf("Delete up to %d resource(s)?", deletes), false)
	if err != nil {
		return err
	}
	if !confirmed {
		return common.ValidationError("delete not confirmed", nil)
	}
	return nil
}

func renderReports(w io.Writer, reports []kinds.Report, showDiff bool) error {
	for _, report := range reports {
		label := string(report.Kind)
		if report.Key != "" {
			label += " " + report.Key
		}

		var line string
		switch {
		case report.Error != "":
			line = fmt.Sprintf("%s: error: %s", label, report.Error)
		case report.Action == "":
			line = fmt.Sprintf("%s: none", label)
		default:
			line = fmt.Sprintf("%s: %s%s", label, report.Action, actionSuffix(report))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		if !showDiff {
			continue
		}
		for _, entry := range report.Diff {
			if _, err := fmt.Fprintf(w, "  ~ %s: %v -> %v\n", entry.Field, renderValue(entry.Current), renderValue(entry.Desired)); err != nil {
				return err
			}
		}
	}
	return nil
}

func actionSuffix(report kinds.Report) string {
	switch {
	case report.Changed && !report.Applied:
		return " (dry-run)"
	case report.Changed:
		return " (changed)"
	case report.Action == resource.ActionDelete:
		return " (not deleted)"
	default:
		return ""
	}
}

func renderValue(value any) string {
	if value == nil {
		return "<unset>"
	}
	return fmt.Sprintf("%v", value)
}

package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crmarques/zpasync/resource"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("counts_reconciles_and_calls", func(t *testing.T) {
		t.Parallel()

		recorder := NewRecorder()
		recorder.ObserveReconcile("ApplicationServer", resource.ActionCreate, "success", 20*time.Millisecond)
		recorder.ObserveReconcile("ApplicationServer", resource.ActionCreate, "success", 30*time.Millisecond)
		recorder.ObserveReconcile("ServiceEdgeGroup", "", "error", time.Millisecond)
		recorder.ObserveRemoteCall("ApplicationServer", "list", "success")

		if got := testutil.ToFloat64(recorder.reconcileTotal.WithLabelValues("ApplicationServer", "create", "success")); got != 2 {
			t.Fatalf("expected 2 create reconciles, got %v", got)
		}
		if got := testutil.ToFloat64(recorder.reconcileTotal.WithLabelValues("ServiceEdgeGroup", "none", "error")); got != 1 {
			t.Fatalf("expected failed reconcile under action none, got %v", got)
		}
		if got := testutil.ToFloat64(recorder.remoteCalls.WithLabelValues("ApplicationServer", "list", "success")); got != 1 {
			t.Fatalf("expected one list call, got %v", got)
		}
		if count := testutil.CollectAndCount(recorder.reconcileTiming); count != 2 {
			t.Fatalf("expected two duration series, got %d", count)
		}
	})

	t.Run("pushes_to_gateway", func(t *testing.T) {
		t.Parallel()

		var (
			mu   sync.Mutex
			path string
			body string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			mu.Lock()
			path = r.URL.Path
			body = string(data)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		recorder := NewRecorder()
		recorder.ObserveRemoteCall("ConnectorSchedule", "get", "success")
		if err := recorder.Push(context.Background(), server.URL, "zpasync", "run-1"); err != nil {
			t.Fatalf("Push returned error: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if path != "/metrics/job/zpasync/run_id/run-1" {
			t.Fatalf("unexpected push path %q", path)
		}
		if !strings.Contains(body, "zpasync_remote_calls_total") {
			t.Fatalf("expected remote call metric in push body")
		}
	})
}

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/reconciler"
	"github.com/crmarques/zpasync/resource"
)

const namespace = "zpasync"

var _ reconciler.Recorder = (*Recorder)(nil)

// Recorder exposes reconcile and remote call observations as Prometheus
// metrics on its own registry.
type Recorder struct {
	registry        *prometheus.Registry
	reconcileTotal  *prometheus.CounterVec
	reconcileTiming *prometheus.HistogramVec
	remoteCalls     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations by kind, decided action and result",
		}, []string{"kind", "action", "result"}),
		reconcileTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of one reconciliation including remote calls",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}, []string{"kind"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Total number of remote API calls by kind, operation and result",
		}, []string{"kind", "operation", "result"}),
	}
	recorder.registry.MustRegister(recorder.reconcileTotal, recorder.reconcileTiming, recorder.remoteCalls)
	return recorder
}

func (r *Recorder) ObserveReconcile(kind string, action resource.Action, result string, duration time.Duration) {
	if action == "" {
		action = "none"
	}
	r.reconcileTotal.WithLabelValues(kind, string(action), result).Inc()
	r.reconcileTiming.WithLabelValues(kind).Observe(duration.Seconds())
}

func (r *Recorder) ObserveRemoteCall(kind string, operation string, result string) {
	r.remoteCalls.WithLabelValues(kind, operation, result).Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Push sends the collected metrics to a Prometheus Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, gatewayURL string, job string, runID string) error {
	pusher := push.New(gatewayURL, job).Gatherer(r.registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return faults.NewTypedError(faults.TransportError, "failed to push metrics", err)
	}
	return nil
}

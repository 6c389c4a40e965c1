package metrics

import (
	"strings"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	actions          *prom.CounterVec
	persistOps       *prom.CounterVec
	debounceFired    *prom.CounterVec
	debounceCanceled *prom.CounterVec
	itemCount        prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.actions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskflow",
			Name:      "actions_total",
			Help:      "Actions dispatched through the reducer, by action name",
		}, []string{"action"})
		pr.persistOps = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskflow",
			Name:      "persist_ops_total",
			Help:      "Persistence gateway operations by op and result",
		}, []string{"op", "result"})
		pr.debounceFired = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskflow",
			Name:      "debounce_fired_total",
			Help:      "Debounced effects whose delay elapsed, by key class",
		}, []string{"key"})
		pr.debounceCanceled = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskflow",
			Name:      "debounce_canceled_total",
			Help:      "Debounced effects canceled by a newer schedule, by key class",
		}, []string{"key"})
		pr.itemCount = prom.NewGauge(prom.GaugeOpts{
			Namespace: "taskflow",
			Name:      "items",
			Help:      "Current number of items in the in-memory list",
		})
		reg.MustRegister(pr.actions, pr.persistOps, pr.debounceFired, pr.debounceCanceled, pr.itemCount)
	})
	return pr
}

func (p *PrometheusRecorder) IncAction(action string) {
	if p == nil || p.actions == nil {
		return
	}
	p.actions.WithLabelValues(action).Inc()
}

func (p *PrometheusRecorder) IncPersistOp(op string, result ResultLabel) {
	if p == nil || p.persistOps == nil {
		return
	}
	p.persistOps.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) IncDebounceFired(key string) {
	if p == nil || p.debounceFired == nil {
		return
	}
	p.debounceFired.WithLabelValues(keyClass(key)).Inc()
}

func (p *PrometheusRecorder) IncDebounceCanceled(key string) {
	if p == nil || p.debounceCanceled == nil {
		return
	}
	p.debounceCanceled.WithLabelValues(keyClass(key)).Inc()
}

func (p *PrometheusRecorder) SetItemCount(n int) {
	if p == nil || p.itemCount == nil {
		return
	}
	p.itemCount.Set(float64(n))
}

// keyClass collapses per-item debounce keys ("edit:<id>") to their prefix so
// label cardinality stays bounded.
func keyClass(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

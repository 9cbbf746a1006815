// Package metrics exposes Prometheus counters for the load/save cycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "charsync"

// Collector groups the load/save metrics. A nil *Collector is valid and
// records nothing, so components never check whether metrics are enabled.
type Collector struct {
	statements *prometheus.CounterVec
	commits    *prometheus.CounterVec
	commitTime *prometheus.HistogramVec
	repairs    *prometheus.CounterVec
	loads      *prometheus.CounterVec
	deferred   prometheus.Counter
	online     prometheus.Gauge
}

// New registers the collector's metrics on reg. A nil reg returns nil.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &Collector{
		statements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_statements_total",
			Help:      "Statements emitted by the flusher, by store, table and operation",
		}, []string{"store", "table", "op"}),
		commits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_batches_total",
			Help:      "Flush batches by store and result",
		}, []string{"store", "result"}),
		commitTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_commit_seconds",
			Help:      "Time spent committing one store batch",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"store"}),
		repairs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repairs_total",
			Help:      "Records repaired during hydration, by kind",
		}, []string{"kind"}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Character loads by outcome",
		}, []string{"outcome"}),
		deferred: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_deferred_total",
			Help:      "Flushes postponed because the character was mid-transfer",
		}),
		online: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online",
			Help:      "Characters currently held in memory",
		}),
	}
}

func (c *Collector) Statement(store, table, op string) {
	if c == nil {
		return
	}
	c.statements.WithLabelValues(store, table, op).Inc()
}

func (c *Collector) Commit(store string, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.commits.WithLabelValues(store, result).Inc()
	c.commitTime.WithLabelValues(store).Observe(d.Seconds())
}

func (c *Collector) Repair(kind string) {
	if c == nil {
		return
	}
	c.repairs.WithLabelValues(kind).Inc()
}

func (c *Collector) Load(outcome string) {
	if c == nil {
		return
	}
	c.loads.WithLabelValues(outcome).Inc()
}

func (c *Collector) Deferred() {
	if c == nil {
		return
	}
	c.deferred.Inc()
}

func (c *Collector) SetOnline(n int) {
	if c == nil {
		return
	}
	c.online.Set(float64(n))
}

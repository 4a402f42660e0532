// Package prometheus exports engine metrics through prometheus/client_golang.
//
//	reg := prometheus.NewRegistry()
//	collector, _ := songprom.NewCollector(reg)
//	eng, _ := songsight.New(store, songsight.WithMetricsCollector(collector))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/songsight"
)

// Compile-time check to ensure Collector satisfies the engine contract.
var _ songsight.MetricsCollector = (*Collector)(nil)

// Collector implements songsight.MetricsCollector.
type Collector struct {
	opLatency     *prometheus.HistogramVec
	ops           *prometheus.CounterVec
	indexedTracks prometheus.Gauge
	results       *prometheus.HistogramVec
}

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "songsight".
	Namespace string

	// Buckets are the latency histogram buckets in seconds.
	Buckets []float64
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer, optFns ...func(o *Options)) (*Collector, error) {
	opts := Options{
		Namespace: "songsight",
		Buckets:   prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of engine operations.",
			Buckets:   opts.Buckets,
		}, []string{"op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "operations_total",
			Help:      "Number of engine operations.",
		}, []string{"op", "status"}),
		indexedTracks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Name:      "indexed_tracks",
			Help:      "Number of tracks in the published index.",
		}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "results",
			Help:      "Number of identifiers returned per query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		}, []string{"op"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.ops, c.indexedTracks, c.results} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.ops.WithLabelValues(op, s).Inc()
}

// RecordRebuild implements songsight.MetricsCollector.
func (c *Collector) RecordRebuild(count int, d time.Duration, err error) {
	c.observe("rebuild", d, err)
	if err == nil {
		c.indexedTracks.Set(float64(count))
	}
}

// RecordSimilar implements songsight.MetricsCollector.
func (c *Collector) RecordSimilar(results int, d time.Duration, err error) {
	c.observe("similar", d, err)
	if err == nil {
		c.results.WithLabelValues("similar").Observe(float64(results))
	}
}

// RecordRange implements songsight.MetricsCollector.
func (c *Collector) RecordRange(results int, d time.Duration, err error) {
	c.observe("range", d, err)
	if err == nil {
		c.results.WithLabelValues("range").Observe(float64(results))
	}
}

// RecordSample implements songsight.MetricsCollector.
func (c *Collector) RecordSample(results int, d time.Duration, err error) {
	c.observe("sample", d, err)
	if err == nil {
		c.results.WithLabelValues("sample").Observe(float64(results))
	}
}

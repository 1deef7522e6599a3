package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process's Prometheus registry and the discovery
// metrics. A nil *Collector is valid and records nothing, so metrics stay
// optional for the one-shot CLI.
type Collector struct {
	registry *prometheus.Registry

	probesTotal   *prometheus.CounterVec
	probeDuration prometheus.Histogram
	queueDepth    prometheus.Gauge
	batchesTotal  prometheus.Counter
	cacheEntries  prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.probesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_probes_total",
		Help: "Discovery runs by final status.",
	}, []string{"status"})

	c.probeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "scout_probe_duration_seconds",
		Help: "Wall-clock duration of one camera's discovery run.",
		// Runs are dominated by network timeouts; exhausted candidate
		// spaces can take tens of seconds.
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
	})

	c.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_queue_depth",
		Help: "Cameras waiting in the current batch.",
	})

	c.batchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scout_batches_total",
		Help: "Completed probe batches.",
	})

	c.cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_cache_entries",
		Help: "IPs with a cached working configuration.",
	})

	c.registry.MustRegister(c.probesTotal, c.probeDuration, c.queueDepth, c.batchesTotal, c.cacheEntries)
	return c
}

func (c *Collector) ObserveProbe(status string, seconds float64) {
	if c == nil {
		return
	}
	c.probesTotal.WithLabelValues(status).Inc()
	c.probeDuration.Observe(seconds)
}

func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(n))
}

func (c *Collector) BatchDone(cacheLen int) {
	if c == nil {
		return
	}
	c.batchesTotal.Inc()
	c.cacheEntries.Set(float64(cacheLen))
}

// Handler serves the registry for /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

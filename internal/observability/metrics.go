package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry.
// All methods are safe on a nil receiver so callers can run with metrics off.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec

	probes           *prometheus.CounterVec
	probeLatency     prometheus.Histogram
	verificationRate prometheus.Histogram

	maps            *prometheus.CounterVec
	dedupeRemoved   prometheus.Counter
	resourcesKept   prometheus.Histogram
	generationTries prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "learnmap"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_inflight_requests", Help: "In-flight HTTP requests.",
		}),
		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "provider_attempts_total", Help: "Provider candidate attempts by outcome.",
		}, []string{"endpoint", "model", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "provider_attempt_duration_seconds", Help: "Provider attempt latency.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"endpoint", "model"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "provider_breaker_state", Help: "Circuit breaker state per endpoint (0 closed, 1 half-open, 2 open).",
		}, []string{"endpoint"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "link_probes_total", Help: "Link probes by final method and result.",
		}, []string{"method", "result"}),
		probeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "link_probe_duration_seconds", Help: "Per-URL probe latency including fallback.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		verificationRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "verification_rate_percent", Help: "Share of probed URLs found reachable per map.",
			Buckets: []float64{10, 25, 50, 70, 80, 90, 95, 100},
		}),
		maps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "maps_total", Help: "Map generation requests by result.",
		}, []string{"result"}),
		dedupeRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dedupe_removed_total", Help: "Resources removed as cross-node duplicates.",
		}),
		resourcesKept: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "map_resources", Help: "Resources per delivered map.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		generationTries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "generation_attempts", Help: "Generation attempts per delivered map.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
	}
	m.registry.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.providerAttempts, m.providerLatency, m.breakerState,
		m.probes, m.probeLatency, m.verificationRate,
		m.maps, m.dedupeRemoved, m.resourcesKept, m.generationTries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveProviderAttempt(endpoint, model, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(endpoint, model, outcome).Inc()
	if dur > 0 {
		m.providerLatency.WithLabelValues(endpoint, model).Observe(dur.Seconds())
	}
}

func (m *Metrics) SetBreakerState(endpoint string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(endpoint).Set(float64(state))
}

func (m *Metrics) ObserveProbe(method string, reachable bool, dur time.Duration) {
	if m == nil {
		return
	}
	result := "unreachable"
	if reachable {
		result = "reachable"
	}
	if method == "" {
		method = "none"
	}
	m.probes.WithLabelValues(method, result).Inc()
	m.probeLatency.Observe(dur.Seconds())
}

// ObserveVerification records a map's verification rate; maps with no probes
// are skipped.
func (m *Metrics) ObserveVerification(probed, reachable int) {
	if m == nil || probed <= 0 {
		return
	}
	m.verificationRate.Observe(float64(reachable) / float64(probed) * 100)
}

func (m *Metrics) IncMap(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "ok"
	}
	m.maps.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveMapDelivered(resources, attempts, dedupeRemoved int) {
	if m == nil {
		return
	}
	m.resourcesKept.Observe(float64(resources))
	m.generationTries.Observe(float64(attempts))
	if dedupeRemoved > 0 {
		m.dedupeRemoved.Add(float64(dedupeRemoved))
	}
}

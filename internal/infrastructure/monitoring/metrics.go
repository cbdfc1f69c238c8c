package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Execution bridge metrics
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	PoolAvailable     prometheus.Gauge

	// Content metrics
	Topics            prometheus.Gauge
	SectionsParsed    *prometheus.GaugeVec
	DroppedParagraphs *prometheus.GaugeVec
	ViewsMounted      prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	latency *Window

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot holds running totals for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64 `json:"total_requests"`
	TotalErrors   int64 `json:"total_errors"`
	Executions    int64 `json:"executions"`
	Timeouts      int64 `json:"timeouts"`
}

// NewMetrics creates a collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		Registry:  reg,
		startTime: time.Now(),
		latency:   NewWindow(DefaultWindowSize),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pylearn_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pylearn_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pylearn_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		ExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pylearn_executions_total",
				Help: "Code executions by language and outcome",
			},
			[]string{"language", "outcome"},
		),
		ExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pylearn_execution_duration_seconds",
				Help:    "Interpreter wall-clock time per execution",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"language"},
		),
		PoolAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pylearn_execution_pool_available",
				Help: "Idle interpreter workers",
			},
		),

		Topics: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pylearn_topics",
				Help: "Topics in the content registry",
			},
		),
		SectionsParsed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pylearn_topic_sections",
				Help: "Sections parsed from each topic intro",
			},
			[]string{"topic"},
		),
		DroppedParagraphs: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pylearn_topic_dropped_paragraphs",
				Help: "Paragraphs of each topic intro that did not parse as a section",
			},
			[]string{"topic"},
		),
		ViewsMounted: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pylearn_views_mounted",
				Help: "Mounted disclosure views",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pylearn_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pylearn_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pylearn_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordExecution records one finished execution
func (m *Metrics) RecordExecution(language, outcome string, elapsed time.Duration) {
	m.ExecutionsTotal.WithLabelValues(language, outcome).Inc()
	m.ExecutionDuration.WithLabelValues(language).Observe(elapsed.Seconds())
	m.latency.Add(float64(elapsed.Microseconds()) / 1000)

	m.mu.Lock()
	m.snapshot.Executions++
	if outcome == "timeout" {
		m.snapshot.Timeouts++
	}
	m.mu.Unlock()
}

// RecordTopic records parse results for a topic
func (m *Metrics) RecordTopic(key string, sections, dropped int) {
	m.SectionsParsed.WithLabelValues(key).Set(float64(sections))
	m.DroppedParagraphs.WithLabelValues(key).Set(float64(dropped))
}

// SetTopics sets the registry size
func (m *Metrics) SetTopics(count int) {
	m.Topics.Set(float64(count))
}

// SetViewsMounted sets the number of mounted views
func (m *Metrics) SetViewsMounted(count int64) {
	m.ViewsMounted.Set(float64(count))
}

// SetPoolAvailable sets the idle worker count
func (m *Metrics) SetPoolAvailable(count int) {
	m.PoolAvailable.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// ExecutionLatency summarizes recent execution times in milliseconds
func (m *Metrics) ExecutionLatency() Summary {
	return m.latency.Summary()
}

// UptimeDuration returns time since the collector was created
func (m *Metrics) UptimeDuration() time.Duration {
	return time.Since(m.startTime)
}

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ChatReplies       *prometheus.CounterVec
	ChatFaults        *prometheus.CounterVec
	MemoryWrites      prometheus.Counter
	MemoryEvictions   prometheus.Counter
	GenerationLatency prometheus.Histogram
	ProviderErrors    *prometheus.CounterVec
	WSMessages        *prometheus.CounterVec

	stages *chatStageWindow
}

// NewMetrics registers instruments on the default registerer.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChatReplies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Chat replies by handling route.",
		}, []string{"route"}),
		ChatFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_faults_total",
			Help:      "Chat turns masked with the apology reply, by fault kind.",
		}, []string{"kind"}),
		MemoryWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_writes_total",
			Help:      "Conversation turns written to the buffer.",
		}),
		MemoryEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_evictions_total",
			Help:      "Conversation turns evicted past the window capacity.",
		}),
		GenerationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Language model call latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		ProviderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Language model provider errors by provider and code.",
		}, []string{"provider", "code"}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		stages: newChatStageWindow(256),
	}
}

func (m *Metrics) ObserveReply(route string) {
	if m == nil {
		return
	}
	m.ChatReplies.WithLabelValues(route).Inc()
}

func (m *Metrics) ObserveFault(kind string) {
	if m == nil {
		return
	}
	m.ChatFaults.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveMemoryWrite(evicted int) {
	if m == nil {
		return
	}
	m.MemoryWrites.Inc()
	if evicted > 0 {
		m.MemoryEvictions.Add(float64(evicted))
	}
}

func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveProviderError(provider, code string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(provider, code).Inc()
}

func (m *Metrics) ObserveWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// ObserveStage records one chat stage latency into the rolling window.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.Observe(stage, d)
}

func (m *Metrics) ObserveIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.ObserveIndicator(name)
}

func (m *Metrics) SnapshotChatStages() ChatStageSnapshot {
	if m == nil {
		return ChatStageSnapshot{}
	}
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the conversation flow.
type AssistantMetrics struct {
	messagesTotal *prometheus.CounterVec
	modeSwitches  *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	failures      *prometheus.CounterVec
	demoProfiles  prometheus.Counter
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosales",
			Subsystem: "assistant",
			Name:      "messages_total",
			Help:      "Inbound messages by handling mode and locale",
		}, []string{"mode", "locale"}),
		modeSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosales",
			Subsystem: "assistant",
			Name:      "mode_switches_total",
			Help:      "Mode changes triggered by control keywords",
		}, []string{"mode"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "autosales",
			Subsystem: "llm",
			Name:      "completion_latency_seconds",
			Help:      "Latency of LLM completion calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 90},
		}, []string{"purpose", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosales",
			Subsystem: "assistant",
			Name:      "failures_total",
			Help:      "Requests answered with a localized failure message",
		}, []string{"mode", "kind"}),
		demoProfiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autosales",
			Subsystem: "catalog",
			Name:      "demo_profiles_total",
			Help:      "Demonstration client profiles registered",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.modeSwitches, m.llmLatency, m.failures, m.demoProfiles)
	return m
}

func (m *AssistantMetrics) ObserveMessage(mode, locale string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(mode, locale).Inc()
}

func (m *AssistantMetrics) ObserveModeSwitch(mode string) {
	if m == nil {
		return
	}
	m.modeSwitches.WithLabelValues(mode).Inc()
}

func (m *AssistantMetrics) ObserveCompletion(purpose string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.llmLatency.WithLabelValues(purpose, status).Observe(seconds)
}

func (m *AssistantMetrics) ObserveFailure(mode, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(mode, kind).Inc()
}

func (m *AssistantMetrics) ObserveDemoProfile() {
	if m == nil {
		return
	}
	m.demoProfiles.Inc()
}

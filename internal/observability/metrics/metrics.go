package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for processed call events.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// CallMetrics exposes counters/histograms for the call-event pipeline.
type CallMetrics struct {
	processedTotal  *prometheus.CounterVec
	processLatency  *prometheus.HistogramVec
	leadsCreated    prometheus.Counter
	pollRecords     prometheus.Counter
	outboundActions *prometheus.CounterVec
}

func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		processedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartflow",
			Subsystem: "calls",
			Name:      "events_total",
			Help:      "Total call events routed through the upsert pipeline",
		}, []string{"source", "outcome"}),
		processLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartflow",
			Subsystem: "calls",
			Name:      "process_latency_seconds",
			Help:      "Latency of call-event processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		leadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartflow",
			Subsystem: "calls",
			Name:      "leads_created_total",
			Help:      "Leads auto-created from inbound calls",
		}),
		pollRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartflow",
			Subsystem: "poll",
			Name:      "records_total",
			Help:      "Call records pulled by the scheduled fetcher",
		}),
		outboundActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartflow",
			Subsystem: "api",
			Name:      "outbound_actions_total",
			Help:      "Outbound provider API actions",
		}, []string{"action", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.processedTotal, m.processLatency, m.leadsCreated, m.pollRecords, m.outboundActions)
	return m
}

func (m *CallMetrics) ObserveEvent(source, outcome string) {
	if m == nil {
		return
	}
	m.processedTotal.WithLabelValues(source, outcome).Inc()
}

func (m *CallMetrics) ObserveLatency(source string, seconds float64) {
	if m == nil {
		return
	}
	m.processLatency.WithLabelValues(source).Observe(seconds)
}

func (m *CallMetrics) ObserveLeadCreated() {
	if m == nil {
		return
	}
	m.leadsCreated.Inc()
}

func (m *CallMetrics) ObservePolledRecords(n int) {
	if m == nil {
		return
	}
	m.pollRecords.Add(float64(n))
}

func (m *CallMetrics) ObserveOutboundAction(action string, ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.outboundActions.WithLabelValues(action, status).Inc()
}

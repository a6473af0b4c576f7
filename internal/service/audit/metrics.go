package audit

import "github.com/prometheus/client_golang/prometheus"

// Capture sources used as metric labels.
const (
	sourceHTTP    = "http"
	sourceCommand = "command"
	sourceAction  = "action"
)

// Metrics holds the audit pipeline counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	captured *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewMetrics creates the audit counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		captured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recordkeeper",
			Subsystem: "audit",
			Name:      "entries_written_total",
			Help:      "Audit entries appended to the entry store, by source.",
		}, []string{"source"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recordkeeper",
			Subsystem: "audit",
			Name:      "captures_dropped_total",
			Help:      "Captures discarded before reaching the entry store, by reason.",
		}, []string{"reason"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recordkeeper",
			Subsystem: "audit",
			Name:      "write_failures_total",
			Help:      "Failed entry store appends, by source.",
		}, []string{"source"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recordkeeper",
			Subsystem: "audit",
			Name:      "commands_skipped_total",
			Help:      "Storage commands not captured, by guard.",
		}, []string{"guard"}),
	}

	if reg != nil {
		reg.MustRegister(m.captured, m.dropped, m.failed, m.skipped)
	}
	return m
}

func (m *Metrics) incCaptured(source string) {
	if m != nil {
		m.captured.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) incDropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) incFailed(source string) {
	if m != nil {
		m.failed.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) incSkipped(guard string) {
	if m != nil {
		m.skipped.WithLabelValues(guard).Inc()
	}
}

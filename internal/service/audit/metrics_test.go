package audit

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue returns the value of the counter name whose single label
// equals label, or 0 when it was never incremented.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.incCaptured(sourceHTTP)
	m.incDropped("queue_full")
	m.incFailed(sourceCommand)
	m.incSkipped(guardText)
}

func TestNewMetrics_Registers(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.incDropped("queue_full")
	m.incDropped("queue_full")

	if got := counterValue(t, reg, "recordkeeper_audit_captures_dropped_total", "queue_full"); got != 2 {
		t.Errorf("dropped = %v, want 2", got)
	}
}

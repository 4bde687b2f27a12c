package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCallMetrics(reg)

	m.ObserveEvent("webhook", OutcomeProcessed)
	m.ObserveEvent("webhook", OutcomeDuplicate)
	m.ObserveEvent("poll", OutcomeProcessed)

	if got := testutil.ToFloat64(m.processedTotal.WithLabelValues("webhook", OutcomeProcessed)); got != 1 {
		t.Errorf("processed = %v", got)
	}
	if got := testutil.ToFloat64(m.processedTotal.WithLabelValues("webhook", OutcomeDuplicate)); got != 1 {
		t.Errorf("duplicate = %v", got)
	}
}

func TestNilReceiverSafe(t *testing.T) {
	var m *CallMetrics
	m.ObserveEvent("webhook", OutcomeError)
	m.ObserveLatency("webhook", 0.1)
	m.ObserveLeadCreated()
	m.ObservePolledRecords(3)
	m.ObserveOutboundAction("click_to_call", true)
}

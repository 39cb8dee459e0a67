package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecords(t *testing.T) {
	p := NewPrometheus("payments")
	reg := prometheus.NewRegistry()
	if err := p.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	p.RecordProcessorCall("create_transfer", OutcomeOK, 20*time.Millisecond)
	p.RecordProcessorCall("create_transfer", OutcomeOK, 30*time.Millisecond)
	p.RecordProcessorCall("create_transfer", OutcomeError, 10*time.Millisecond)
	p.RecordWebhook("payment_intent.succeeded", "handled")
	p.RecordCircuitState("stripe", CircuitOpen)

	if got := testutil.ToFloat64(p.processorCalls.WithLabelValues("create_transfer", OutcomeOK)); got != 2 {
		t.Errorf("expected 2 ok calls, got %v", got)
	}
	if got := testutil.ToFloat64(p.processorCalls.WithLabelValues("create_transfer", OutcomeError)); got != 1 {
		t.Errorf("expected 1 failed call, got %v", got)
	}
	if got := testutil.ToFloat64(p.webhooks.WithLabelValues("payment_intent.succeeded", "handled")); got != 1 {
		t.Errorf("expected 1 webhook, got %v", got)
	}
	if got := testutil.ToFloat64(p.circuitState.WithLabelValues("stripe")); got != float64(CircuitOpen) {
		t.Errorf("expected open state, got %v", got)
	}
	if got := testutil.ToFloat64(p.circuitOpens.WithLabelValues("stripe")); got != 1 {
		t.Errorf("expected 1 open, got %v", got)
	}
}

func TestPrometheusDoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := NewPrometheus("payments").Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := NewPrometheus("payments").Register(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Collector with client_golang vectors.
type Prometheus struct {
	processorCalls   *prometheus.CounterVec
	processorLatency *prometheus.HistogramVec
	circuitState     *prometheus.GaugeVec
	circuitOpens     *prometheus.CounterVec
	webhooks         *prometheus.CounterVec
}

func NewPrometheus(namespace string) *Prometheus {
	return &Prometheus{
		processorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "processor_calls_total",
				Help:      "Total number of payment processor calls per operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		processorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processor_call_duration_seconds",
				Help:      "Payment processor call latency",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"operation"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "processor_circuit_state",
				Help:      "Processor circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "processor_circuit_opens_total",
				Help:      "Total number of processor circuit breaker opens",
			},
			[]string{"name"},
		),
		webhooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Total number of webhook deliveries per event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
	}
}

// Register registers all vectors with registry.
func (p *Prometheus) Register(registry prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		p.processorCalls,
		p.processorLatency,
		p.circuitState,
		p.circuitOpens,
		p.webhooks,
	} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prometheus) RecordProcessorCall(operation, outcome string, duration time.Duration) {
	p.processorCalls.WithLabelValues(operation, outcome).Inc()
	p.processorLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *Prometheus) RecordCircuitState(name string, state CircuitState) {
	p.circuitState.WithLabelValues(name).Set(float64(state))
	if state == CircuitOpen {
		p.circuitOpens.WithLabelValues(name).Inc()
	}
}

func (p *Prometheus) RecordWebhook(eventType, outcome string) {
	p.webhooks.WithLabelValues(eventType, outcome).Inc()
}

var _ Collector = (*Prometheus)(nil)

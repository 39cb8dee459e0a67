// Package metrics records processor and webhook activity.
package metrics

import "time"

// Collector receives measurements from the processor gateway and the webhook
// dispatcher. Implementations must be safe for concurrent use.
type Collector interface {
	// RecordProcessorCall records one processor operation and its outcome
	// (ok, error, circuit_open).
	RecordProcessorCall(operation, outcome string, duration time.Duration)

	// RecordCircuitState records a breaker state transition.
	RecordCircuitState(name string, state CircuitState)

	// RecordWebhook records a webhook delivery by event type and outcome.
	RecordWebhook(eventType, outcome string)
}

// CircuitState mirrors the breaker states.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
)

// NoOp discards everything.
type NoOp struct{}

func (NoOp) RecordProcessorCall(string, string, time.Duration) {}
func (NoOp) RecordCircuitState(string, CircuitState)           {}
func (NoOp) RecordWebhook(string, string)                      {}

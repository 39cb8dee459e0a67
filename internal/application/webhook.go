package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
)

// EventHandler reacts to one verified event. Deliveries repeat, so handlers
// must tolerate seeing the same event id more than once.
type EventHandler func(ctx context.Context, ev *entity.WebhookEvent) error

// WebhookRecorder counts webhook outcomes by event type.
type WebhookRecorder interface {
	RecordWebhook(eventType, outcome string)
}

const (
	OutcomeHandled  = "handled"
	OutcomeIgnored  = "ignored"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// WebhookDispatcher verifies deliveries and fans them out to handlers by type.
// It keeps no per-event state and does not deduplicate.
type WebhookDispatcher struct {
	Verifier gateway.SignatureVerifier
	Secret   string
	Metrics  WebhookRecorder
	Logger   *logrus.Logger

	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewWebhookDispatcher(verifier gateway.SignatureVerifier, secret string, metrics WebhookRecorder, logger *logrus.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		Verifier: verifier,
		Secret:   secret,
		Metrics:  metrics,
		Logger:   logger,
		handlers: make(map[string][]EventHandler),
	}
}

// Handle registers h for eventType. Several handlers run in registration order.
func (d *WebhookDispatcher) Handle(eventType string, h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// Dispatch verifies payload against header before looking at the event type.
// Unknown types are acknowledged. A handler error is returned so the processor
// redelivers.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, payload []byte, header string) (*entity.WebhookEvent, error) {
	if d.Secret == "" {
		d.record("unknown", OutcomeRejected)
		d.log().Error("webhook secret not configured")
		return nil, errs.ErrWebhookSecretMissing
	}
	if len(payload) == 0 {
		d.record("unknown", OutcomeRejected)
		return nil, errs.ErrMissingRawBody
	}

	ev, err := d.Verifier.Verify(payload, header, d.Secret)
	if err != nil {
		d.record("unknown", OutcomeRejected)
		d.log().WithError(err).Warn("webhook signature rejected")
		return nil, errs.Signature(err)
	}

	entry := d.log().WithFields(logrus.Fields{"event_id": ev.ID, "event_type": ev.Type})

	d.mu.RLock()
	hs := d.handlers[ev.Type]
	d.mu.RUnlock()

	if len(hs) == 0 {
		entry.Info("unhandled webhook event acknowledged")
		d.record(ev.Type, OutcomeIgnored)
		return ev, nil
	}

	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			entry.WithError(err).Error("webhook handler failed")
			d.record(ev.Type, OutcomeFailed)
			return ev, fmt.Errorf("handle %s: %w", ev.Type, err)
		}
	}
	d.record(ev.Type, OutcomeHandled)
	return ev, nil
}

func (d *WebhookDispatcher) record(eventType, outcome string) {
	if d.Metrics != nil {
		d.Metrics.RecordWebhook(eventType, outcome)
	}
}

func (d *WebhookDispatcher) log() *logrus.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.StandardLogger()
}

// ConfirmationEvents are forwarded to the settlement worker.
var ConfirmationEvents = []string{
	entity.EventPaymentSucceeded,
	entity.EventPaymentFailed,
	entity.EventBalanceAvailable,
	entity.EventTransferCreated,
	entity.EventTransferReversed,
	entity.EventPayoutPaid,
	entity.EventPayoutFailed,
	entity.EventAccountUpdated,
}

// LogEvent logs the event and nothing else.
func LogEvent(logger *logrus.Logger, msg string) EventHandler {
	return func(ctx context.Context, ev *entity.WebhookEvent) error {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"event_id":  ev.ID,
				"object_id": ev.Object.ID,
				"amount":    ev.Object.Amount,
				"currency":  ev.Object.Currency,
			}).Info(msg)
		}
		return nil
	}
}

// ForwardEvent publishes the verified event for the settlement worker.
func ForwardEvent(pub gateway.EventPublisher) EventHandler {
	return func(ctx context.Context, ev *entity.WebhookEvent) error {
		return pub.PublishJSON(ctx, ev)
	}
}

// RegisterConfirmationHandlers wires the default handlers: every confirmation
// event is logged, and forwarded when pub is non-nil.
func RegisterConfirmationHandlers(d *WebhookDispatcher, pub gateway.EventPublisher, logger *logrus.Logger) {
	d.Handle(entity.EventPaymentSucceeded, LogEvent(logger, "payment succeeded"))
	d.Handle(entity.EventBalanceAvailable, LogEvent(logger, "funds available for transactions"))
	if pub == nil {
		return
	}
	for _, t := range ConfirmationEvents {
		d.Handle(t, ForwardEvent(pub))
	}
}

package entity

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventBalanceAvailable = "balance.available"
	EventTransferCreated  = "transfer.created"
	EventTransferReversed = "transfer.reversed"
	EventPayoutPaid       = "payout.paid"
	EventPayoutFailed     = "payout.failed"
	EventAccountUpdated   = "account.updated"
)

// WebhookEvent is a verified processor notification. Delivery is at-least-once,
// so the same ID may be seen more than once.
type WebhookEvent struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Account  string          `json:"account,omitempty"`
	Livemode bool            `json:"livemode"`
	Created  time.Time       `json:"created"`
	Object   EventObject     `json:"object"`
	Payload  json.RawMessage `json:"payload"`
}

// EventObject summarises the object carried by an event. Fields that the object
// does not carry are left zero.
type EventObject struct {
	ID           string `json:"id,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Amount       int64  `json:"amount,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Customer     string `json:"customer,omitempty"`
	ReceiptEmail string `json:"receipt_email,omitempty"`
	Status       string `json:"status,omitempty"`
}

// MessageID lets publishers use the event id as the broker message id.
func (e *WebhookEvent) MessageID() string { return e.ID }

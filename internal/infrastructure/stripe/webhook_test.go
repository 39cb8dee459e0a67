package stripe

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
)

const testSecret = "whsec_test_secret"

func signedHeader(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

var paymentSucceeded = []byte(`{
  "id": "evt_1",
  "object": "event",
  "type": "payment_intent.succeeded",
  "created": 1740830400,
  "livemode": false,
  "data": {
    "object": {
      "id": "pi_1",
      "object": "payment_intent",
      "amount": 5000,
      "currency": "usd",
      "customer": "cus_1",
      "receipt_email": "payer@example.com",
      "status": "succeeded"
    }
  }
}`)

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v := NewWebhookVerifier(5 * time.Minute)

	ev, err := v.Verify(paymentSucceeded, signedHeader(paymentSucceeded, testSecret, time.Now()), testSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ev.ID != "evt_1" || ev.Type != "payment_intent.succeeded" {
		t.Fatalf("unexpected event %+v", ev)
	}
	o := ev.Object
	if o.ID != "pi_1" || o.Amount != 5000 || o.Currency != "usd" || o.Customer != "cus_1" || o.ReceiptEmail != "payer@example.com" {
		t.Fatalf("unexpected object %+v", o)
	}
	if string(ev.Payload) != string(paymentSucceeded) {
		t.Fatal("payload must be kept byte for byte")
	}
}

func TestVerifyRejectsMutatedPayload(t *testing.T) {
	v := NewWebhookVerifier(5 * time.Minute)
	header := signedHeader(paymentSucceeded, testSecret, time.Now())

	mutated := make([]byte, len(paymentSucceeded))
	copy(mutated, paymentSucceeded)
	for i, b := range mutated {
		if b == '5' {
			mutated[i] = '6'
			break
		}
	}

	_, err := v.Verify(mutated, header, testSecret)
	if !errors.Is(err, errs.ErrSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestVerifyRejectsWrongSecretAndStaleTimestamp(t *testing.T) {
	v := NewWebhookVerifier(5 * time.Minute)

	if _, err := v.Verify(paymentSucceeded, signedHeader(paymentSucceeded, "whsec_other", time.Now()), testSecret); !errors.Is(err, errs.ErrSignature) {
		t.Errorf("wrong secret: expected signature error, got %v", err)
	}
	stale := time.Now().Add(-time.Hour)
	if _, err := v.Verify(paymentSucceeded, signedHeader(paymentSucceeded, testSecret, stale), testSecret); !errors.Is(err, errs.ErrSignature) {
		t.Errorf("stale: expected signature error, got %v", err)
	}
	if _, err := v.Verify(paymentSucceeded, "", testSecret); !errors.Is(err, errs.ErrSignature) {
		t.Errorf("missing header: expected signature error, got %v", err)
	}
}

func TestVerifyUnknownTypeDecodes(t *testing.T) {
	payload := []byte(`{"id":"evt_9","object":"event","type":"foo.bar","created":1740830400,"data":{"object":{"id":"x_1","object":"thing"}}}`)
	v := NewWebhookVerifier(0)

	ev, err := v.Verify(payload, signedHeader(payload, testSecret, time.Now()), testSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ev.Type != "foo.bar" || ev.Object.Kind != "thing" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestSummarizeBalanceAndExpandedCustomer(t *testing.T) {
	bal := summarize([]byte(`{"object":"balance","available":[{"amount":1200,"currency":"usd"}]}`))
	if bal.Amount != 1200 || bal.Currency != "usd" {
		t.Errorf("unexpected balance summary %+v", bal)
	}
	pi := summarize([]byte(`{"id":"pi_2","customer":{"id":"cus_9","object":"customer"}}`))
	if pi.Customer != "cus_9" {
		t.Errorf("expected expanded customer id, got %+v", pi)
	}
	if got := summarize([]byte(`not json`)); got.ID != "" {
		t.Errorf("expected empty summary, got %+v", got)
	}
}

package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

type memLedger struct {
	mu   sync.Mutex
	seen map[string]entity.LedgerEntry
	Err  error
}

func (m *memLedger) Record(ctx context.Context, e *entity.LedgerEntry) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]entity.LedgerEntry{}
	}
	if _, ok := m.seen[e.EventID]; ok {
		return false, nil
	}
	m.seen[e.EventID] = *e
	return true, nil
}

type sideEffects struct {
	archived, indexed, notified int
	ArchiveErr                  error
}

func (s *sideEffects) Archive(ctx context.Context, ev *entity.WebhookEvent) (string, error) {
	s.archived++
	return "gs://bucket/events/" + ev.ID + ".json", s.ArchiveErr
}

func (s *sideEffects) Index(ctx context.Context, ev *entity.WebhookEvent) error {
	s.indexed++
	return nil
}

func (s *sideEffects) PaymentReceived(ctx context.Context, ev *entity.WebhookEvent) error {
	s.notified++
	return nil
}

func paymentEvent(id string) *entity.WebhookEvent {
	return &entity.WebhookEvent{
		ID:   id,
		Type: entity.EventPaymentSucceeded,
		Object: entity.EventObject{
			ID: "pi_1", Kind: "payment_intent", Amount: 5000, Currency: "usd",
			Customer: "cus_1", ReceiptEmail: "payer@example.com",
		},
	}
}

func TestSettlementDuplicateSkipsSideEffects(t *testing.T) {
	ledger := &memLedger{}
	fx := &sideEffects{}
	s := NewSettlementProcessor(ledger, fx, fx, fx, quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := s.Process(context.Background(), paymentEvent("evt_dup")); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if fx.archived != 1 || fx.indexed != 1 || fx.notified != 1 {
		t.Fatalf("side effects must run once, got %+v", fx)
	}
	if got := ledger.seen["evt_dup"]; got.Amount != 5000 || got.Customer != "cus_1" {
		t.Fatalf("unexpected ledger entry %+v", got)
	}
}

func TestSettlementLedgerFailureIsReturned(t *testing.T) {
	fx := &sideEffects{}
	s := NewSettlementProcessor(&memLedger{Err: errors.New("pool closed")}, fx, fx, fx, quietLogger())

	if _, err := s.Process(context.Background(), paymentEvent("evt_1")); err == nil {
		t.Fatal("expected ledger error")
	}
	if fx.archived+fx.indexed+fx.notified != 0 {
		t.Fatal("no side effect may run before the ledger write")
	}
}

func TestSettlementSideEffectErrorsAreSwallowed(t *testing.T) {
	fx := &sideEffects{ArchiveErr: errors.New("bucket missing")}
	s := NewSettlementProcessor(&memLedger{}, fx, fx, fx, quietLogger())

	inserted, err := s.Process(context.Background(), paymentEvent("evt_2"))
	if err != nil || !inserted {
		t.Fatalf("expected inserted without error, got %v %v", inserted, err)
	}
	if fx.indexed != 1 {
		t.Fatal("indexing should still run after an archive failure")
	}
}

func TestSettlementNotifiesOnlyPayments(t *testing.T) {
	fx := &sideEffects{}
	s := NewSettlementProcessor(&memLedger{}, nil, nil, fx, quietLogger())

	ev := &entity.WebhookEvent{ID: "evt_3", Type: entity.EventPayoutPaid, Object: entity.EventObject{ReceiptEmail: "x@example.com"}}
	if _, err := s.Process(context.Background(), ev); err != nil {
		t.Fatalf("process: %v", err)
	}
	if fx.notified != 0 {
		t.Fatal("payouts must not send a payment receipt")
	}
}

func TestHandleMessage(t *testing.T) {
	ledger := &memLedger{}
	fx := &sideEffects{}
	s := NewSettlementProcessor(ledger, fx, fx, fx, nil)

	body, err := json.Marshal(paymentEvent("evt_msg"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, ok := ledger.seen["evt_msg"]; !ok || fx.notified != 1 {
		t.Fatalf("expected event recorded and notified, notified=%d", fx.notified)
	}

	for _, bad := range []string{`not json`, `{"type":"payout.paid"}`, `{"id":"evt_x"}`} {
		if err := s.HandleMessage(context.Background(), []byte(bad)); !errors.Is(err, helpers.ErrPoison) {
			t.Errorf("%s: expected poison, got %v", bad, err)
		}
	}

	ledger.Err = errors.New("db down")
	if err := s.HandleMessage(context.Background(), body); err == nil || errors.Is(err, helpers.ErrPoison) {
		t.Fatalf("ledger failure must be retryable, got %v", err)
	}
}

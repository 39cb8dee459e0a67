package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-payments/internal/domain/repository"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

// Archiver stores the raw event payload and returns its location.
type Archiver interface {
	Archive(ctx context.Context, ev *entity.WebhookEvent) (string, error)
}

// Indexer makes events searchable.
type Indexer interface {
	Index(ctx context.Context, ev *entity.WebhookEvent) error
}

// Notifier tells the payer a payment went through.
type Notifier interface {
	PaymentReceived(ctx context.Context, ev *entity.WebhookEvent) error
}

// SettlementProcessor persists forwarded webhook events. The ledger insert is
// keyed by event id and runs first; a redelivered event stops there, so the
// side effects after it run at most once per event.
type SettlementProcessor struct {
	Ledger   repo.LedgerRepository
	Archiver Archiver
	Indexer  Indexer
	Notifier Notifier
	Logger   *logrus.Logger
}

func NewSettlementProcessor(ledger repo.LedgerRepository, archiver Archiver, indexer Indexer, notifier Notifier, logger *logrus.Logger) *SettlementProcessor {
	return &SettlementProcessor{Ledger: ledger, Archiver: archiver, Indexer: indexer, Notifier: notifier, Logger: logger}
}

// Process returns an error only when the ledger write fails; the caller should
// then redeliver.
func (s *SettlementProcessor) Process(ctx context.Context, ev *entity.WebhookEvent) (bool, error) {
	entry := s.log().WithFields(logrus.Fields{"event_id": ev.ID, "event_type": ev.Type})

	inserted, err := s.Ledger.Record(ctx, &entity.LedgerEntry{
		EventID:    ev.ID,
		Type:       ev.Type,
		ObjectID:   ev.Object.ID,
		Amount:     ev.Object.Amount,
		Currency:   ev.Object.Currency,
		Customer:   ev.Object.Customer,
		Account:    ev.Account,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		entry.WithError(err).Error("ledger write failed")
		return false, err
	}
	if !inserted {
		entry.Info("duplicate delivery skipped")
		return false, nil
	}

	if s.Archiver != nil {
		if loc, err := s.Archiver.Archive(ctx, ev); err != nil {
			entry.WithError(err).Warn("archive event failed")
		} else {
			entry.WithField("location", loc).Debug("event archived")
		}
	}
	if s.Indexer != nil {
		if err := s.Indexer.Index(ctx, ev); err != nil {
			entry.WithError(err).Warn("index event failed")
		}
	}
	if s.Notifier != nil && ev.Type == entity.EventPaymentSucceeded && ev.Object.ReceiptEmail != "" {
		if err := s.Notifier.PaymentReceived(ctx, ev); err != nil {
			entry.WithError(err).Warn("payment receipt not sent")
		}
	}

	entry.Info("event settled")
	return true, nil
}

// HandleMessage decodes one forwarded event from the queue and processes it.
// Undecodable messages are marked helpers.ErrPoison so they are not requeued.
func (s *SettlementProcessor) HandleMessage(ctx context.Context, body []byte) error {
	var ev entity.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: decode event: %v", helpers.ErrPoison, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return fmt.Errorf("%w: event without id or type", helpers.ErrPoison)
	}
	_, err := s.Process(ctx, &ev)
	return err
}

func (s *SettlementProcessor) log() *logrus.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}

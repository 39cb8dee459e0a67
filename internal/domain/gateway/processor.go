package gateway

import (
	"context"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
)

// Processor is the narrow capability surface of the external payment processor.
// Implementations are shared process-wide and must be safe for concurrent use.
// Failures are returned wrapped in errs.ErrGateway.
type Processor interface {
	CreateExpressAccount(ctx context.Context, spec entity.AccountSpec) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	ListCustomerInstruments(ctx context.Context, customerID string) (entity.Instruments, error)
	ListAccountInstruments(ctx context.Context, accountID string) (entity.Instruments, error)
	AttachInstrument(ctx context.Context, customerID, instrumentID string) error
	SetDefaultInstrument(ctx context.Context, customerID, instrumentID string) error
	CreateOffSessionCharge(ctx context.Context, req entity.ChargeRequest) (string, error)
	CreateTransfer(ctx context.Context, req entity.TransferRequest) (string, error)
	CreatePayout(ctx context.Context, req entity.PayoutRequest) (string, error)
}

// SignatureVerifier authenticates a webhook delivery from its exact wire bytes.
// Failures wrap errs.ErrSignature.
type SignatureVerifier interface {
	Verify(payload []byte, header, secret string) (*entity.WebhookEvent, error)
}

// EventPublisher forwards verified events to the settlement pipeline.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

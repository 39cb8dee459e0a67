package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
	"github.com/oksasatya/go-ddd-payments/pkg/validation"
)

// FundingCoordinator charges payers and moves funds to payees.
// Nothing here is retried; a caller that retries owns its idempotency.
type FundingCoordinator struct {
	Processor   gateway.Processor
	Instruments *InstrumentResolver
	Logger      *logrus.Logger
}

func NewFundingCoordinator(p gateway.Processor, instruments *InstrumentResolver, logger *logrus.Logger) *FundingCoordinator {
	return &FundingCoordinator{Processor: p, Instruments: instruments, Logger: logger}
}

// validateMoney checks amount and currency and returns the lower-cased currency.
func validateMoney(amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", errs.Validation("amount", "must be greater than 0")
	}
	if !validation.IsCurrency(currency) {
		return "", errs.Validation("currency", "must be an ISO 4217 currency code")
	}
	return strings.ToLower(currency), nil
}

// FundWallet charges one of the customer's saved cards off-session and returns
// the processor's confirmation token. Steps run in order and stop at the first
// failure: validate, resolve instruments, check ownership, set default, charge.
func (f *FundingCoordinator) FundWallet(ctx context.Context, req entity.FundingRequest) (string, error) {
	currency, err := validateMoney(req.Amount, req.Currency)
	if err != nil {
		return "", err
	}
	if err := validation.Var(req.CustomerID, "required,stripe_cus"); err != nil {
		return "", errs.Validation("customer_id", "must be a customer id (cus_...)")
	}
	if req.InstrumentID != "" {
		if err := validation.Var(req.InstrumentID, "stripe_pm"); err != nil {
			return "", errs.Validation("payment_method_id", "must be a payment method id (pm_...)")
		}
	}

	list, err := f.Instruments.ListForCustomer(ctx, req.CustomerID)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errs.ErrNoInstrument
	}

	instrumentID := req.InstrumentID
	if instrumentID == "" {
		preferred, _ := SelectPreferred(list)
		instrumentID = preferred.ID
	} else if !list.Contains(instrumentID) {
		f.log().WithFields(logrus.Fields{
			"customer_id":       req.CustomerID,
			"payment_method_id": instrumentID,
		}).Warn("payment method not owned by customer")
		return "", errs.ErrInvalidInstrument
	}

	if err := f.Processor.SetDefaultInstrument(ctx, req.CustomerID, instrumentID); err != nil {
		return "", err
	}

	token, err := f.Processor.CreateOffSessionCharge(ctx, entity.ChargeRequest{
		Amount:       req.Amount,
		Currency:     currency,
		CustomerID:   req.CustomerID,
		InstrumentID: instrumentID,
	})
	if err != nil {
		f.log().WithError(err).WithFields(logrus.Fields{
			"customer_id": req.CustomerID,
			"amount":      req.Amount,
			"currency":    currency,
		}).Error("fund wallet charge failed")
		return "", err
	}

	f.log().WithFields(logrus.Fields{
		"customer_id":       req.CustomerID,
		"payment_method_id": instrumentID,
		"amount":            req.Amount,
		"currency":          currency,
	}).Info("wallet funded")
	return token, nil
}

// Transfer moves platform balance to a connected account. Balance sufficiency
// is left to the processor.
func (f *FundingCoordinator) Transfer(ctx context.Context, req entity.TransferRequest) (string, error) {
	currency, err := validateMoney(req.Amount, req.Currency)
	if err != nil {
		return "", err
	}
	if !validation.IsAccountID(req.Destination) {
		return "", errs.Validation("destination", "must be a connected account id (acct_...)")
	}
	req.Currency = currency

	id, err := f.Processor.CreateTransfer(ctx, req)
	if err != nil {
		f.log().WithError(err).WithField("destination", req.Destination).Error("transfer failed")
		return "", err
	}
	f.log().WithFields(logrus.Fields{
		"transfer_id": id,
		"destination": req.Destination,
		"amount":      req.Amount,
		"currency":    currency,
	}).Info("transfer created")
	return id, nil
}

// Payout sends a balance to an external bank destination.
func (f *FundingCoordinator) Payout(ctx context.Context, req entity.PayoutRequest) (string, error) {
	currency, err := validateMoney(req.Amount, req.Currency)
	if err != nil {
		return "", err
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" || strings.ContainsAny(req.Destination, " \t\n") {
		return "", errs.Validation("destination", "is required")
	}
	req.Currency = currency

	id, err := f.Processor.CreatePayout(ctx, req)
	if err != nil {
		f.log().WithError(err).WithField("destination", req.Destination).Error("payout failed")
		return "", err
	}
	f.log().WithFields(logrus.Fields{
		"payout_id":   id,
		"destination": req.Destination,
		"amount":      req.Amount,
		"currency":    currency,
	}).Info("payout created")
	return id, nil
}

func (f *FundingCoordinator) log() *logrus.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return logrus.StandardLogger()
}

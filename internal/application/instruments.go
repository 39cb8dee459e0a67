package application

import (
	"context"
	"sort"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
	"github.com/oksasatya/go-ddd-payments/pkg/validation"
)

// InstrumentResolver lists card instruments straight from the processor. No caching.
type InstrumentResolver struct {
	Processor gateway.Processor
}

func NewInstrumentResolver(p gateway.Processor) *InstrumentResolver {
	return &InstrumentResolver{Processor: p}
}

func (r *InstrumentResolver) ListForCustomer(ctx context.Context, customerID string) (entity.Instruments, error) {
	if err := validation.Var(customerID, "required,stripe_cus"); err != nil {
		return nil, errs.Validation("customer_id", "must be a customer id (cus_...)")
	}
	return r.Processor.ListCustomerInstruments(ctx, customerID)
}

func (r *InstrumentResolver) ListForConnectedAccount(ctx context.Context, accountID string) (entity.Instruments, error) {
	if !validation.IsAccountID(accountID) {
		return nil, errs.Validation("account_id", "must be a connected account id (acct_...)")
	}
	return r.Processor.ListAccountInstruments(ctx, accountID)
}

// SelectPreferred picks the most recently created instrument, ties broken by
// the lower id, so the choice does not depend on the processor's list order.
func SelectPreferred(list entity.Instruments) (entity.Instrument, bool) {
	if len(list) == 0 {
		return entity.Instrument{}, false
	}
	sorted := make(entity.Instruments, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0], true
}

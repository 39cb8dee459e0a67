package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
)

// LedgerRepository records processed webhook events keyed by event id.
// Record returns false when the event was already recorded.
type LedgerRepository interface {
	Record(ctx context.Context, e *entity.LedgerEntry) (bool, error)
}

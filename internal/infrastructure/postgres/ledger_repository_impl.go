package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/repository"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Record inserts e keyed by event id. It reports false when the event was
// already recorded.
func (r *LedgerRepository) Record(ctx context.Context, e *entity.LedgerEntry) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO settlement_ledger
			(event_id, event_type, object_id, amount, currency, customer_id, account_id, received_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.Type, e.ObjectID, e.Amount, e.Currency, e.Customer, e.Account, e.ReceivedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var _ repository.LedgerRepository = (*LedgerRepository)(nil)

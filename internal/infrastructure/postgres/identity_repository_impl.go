package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/repository"
)

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Create inserts the identity, or rebinds the account when the email already exists.
func (r *IdentityRepository) Create(ctx context.Context, i *entity.Identity) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (email, account_id)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (email) DO UPDATE
		SET account_id = EXCLUDED.account_id, updated_at = now()
		RETURNING id, created_at, updated_at
	`, i.Email, i.AccountID)

	return row.Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	i := &entity.Identity{}
	var accountID *string

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, account_id, created_at, updated_at
		FROM identities
		WHERE email = $1
	`, email)

	if err := row.Scan(&i.ID, &i.Email, &accountID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if accountID != nil {
		i.AccountID = *accountID
	}

	return i, nil
}

func (r *IdentityRepository) UpdateAccountID(ctx context.Context, email, accountID string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET account_id = NULLIF($1, ''), updated_at = $2
		WHERE email = $3
	`, accountID, time.Now(), email)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	return nil
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)

package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
)

// IdentityRepository stores the email -> connected account mapping.
// GetByEmail returns errs.ErrNotFound when no identity exists.
type IdentityRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
	Create(ctx context.Context, i *entity.Identity) error
	UpdateAccountID(ctx context.Context, email, accountID string) error
}

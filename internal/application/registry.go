package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	repo "github.com/oksasatya/go-ddd-payments/internal/domain/repository"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
	"github.com/oksasatya/go-ddd-payments/pkg/validation"
)

// Locker serializes work per key. Implementations: helpers.KeyedMutex (in-process)
// and helpers.RedisLocker (cross-process).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// AccountRegistry maps a payee email to its connected account id.
type AccountRegistry struct {
	Repo   repo.IdentityRepository
	Locks  Locker
	Logger *logrus.Logger
}

func NewAccountRegistry(repo repo.IdentityRepository, locks Locker, logger *logrus.Logger) *AccountRegistry {
	if locks == nil {
		locks = helpers.NewKeyedMutex()
	}
	return &AccountRegistry{Repo: repo, Locks: locks, Logger: logger}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Var(email, "required,email"); err != nil {
		return "", errs.Validation("email", "must be a valid email")
	}
	return email, nil
}

// Resolve returns the bound account id. An unknown email and an identity without an
// account both yield errs.ErrAccountNotBound; store failures yield errs.ErrStorage.
func (r *AccountRegistry) Resolve(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	i, err := r.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.ErrAccountNotBound
		}
		return "", errs.Storage("get identity", err)
	}
	if !i.HasAccount() {
		return "", errs.ErrAccountNotBound
	}
	return i.AccountID, nil
}

// Bind upserts the email -> account mapping. Calls for the same email are
// serialized, so the last bind to acquire the lock wins. Rebinding the same
// account is a no-op.
func (r *AccountRegistry) Bind(ctx context.Context, email, accountID string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if !validation.IsAccountID(accountID) {
		return errs.Validation("account_id", "must be a connected account id (acct_...)")
	}

	unlock, err := r.Locks.Lock(ctx, "identity:"+email)
	if err != nil {
		return errs.Storage("lock identity", err)
	}
	defer unlock()

	current, err := r.Repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		if err := r.Repo.Create(ctx, &entity.Identity{Email: email, AccountID: accountID}); err != nil {
			return errs.Storage("create identity", err)
		}
		r.log().WithFields(logrus.Fields{"email": email, "account_id": accountID}).Info("identity bound")
		return nil
	case err != nil:
		return errs.Storage("get identity", err)
	}

	if current.AccountID == accountID {
		return nil
	}
	if err := r.Repo.UpdateAccountID(ctx, email, accountID); err != nil {
		return errs.Storage("update identity", err)
	}
	entry := r.log().WithFields(logrus.Fields{"email": email, "account_id": accountID})
	if current.AccountID != "" {
		entry.WithField("previous_account_id", current.AccountID).Warn("identity rebound to a different account")
	} else {
		entry.Info("identity bound")
	}
	return nil
}

func (r *AccountRegistry) log() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}

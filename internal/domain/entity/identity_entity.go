package entity

import (
	"time"
)

// Identity maps a local payee (by email) to the processor's connected account.
// AccountID is empty until an external account has been bound.
type Identity struct {
	ID        string
	Email     string
	AccountID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAccount reports whether an external account is bound to the identity.
func (i *Identity) HasAccount() bool {
	return i != nil && i.AccountID != ""
}

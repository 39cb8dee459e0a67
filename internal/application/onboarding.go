package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
	"github.com/oksasatya/go-ddd-payments/pkg/validation"
)

// OnboardingConfig carries the fixed values used when onboarding payees.
type OnboardingConfig struct {
	Country    string
	RefreshURL string
	ReturnURL  string
}

// OnboardingCoordinator drives account creation, hosted onboarding and
// instrument attachment for payees.
type OnboardingCoordinator struct {
	Processor   gateway.Processor
	Registry    *AccountRegistry
	Instruments *InstrumentResolver
	Locks       Locker
	Cfg         OnboardingConfig
	Logger      *logrus.Logger
}

func NewOnboardingCoordinator(p gateway.Processor, registry *AccountRegistry, instruments *InstrumentResolver, locks Locker, cfg OnboardingConfig, logger *logrus.Logger) *OnboardingCoordinator {
	if locks == nil {
		locks = helpers.NewKeyedMutex()
	}
	if cfg.Country == "" {
		cfg.Country = "US"
	}
	return &OnboardingCoordinator{
		Processor:   p,
		Registry:    registry,
		Instruments: instruments,
		Locks:       locks,
		Cfg:         cfg,
		Logger:      logger,
	}
}

// AccountResult reports the account bound to an email and whether this call created it.
type AccountResult struct {
	AccountID string `json:"account_id"`
	Created   bool   `json:"created"`
}

// CreateAccount returns the email's existing account, or creates an express
// account and binds it. An existing binding is never replaced here; use
// AccountRegistry.Bind to rebind explicitly.
//
// Creation and binding are not atomic. If the bind fails, the new account is
// left orphaned: it is logged and the storage error is returned.
func (o *OnboardingCoordinator) CreateAccount(ctx context.Context, email string) (AccountResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return AccountResult{}, err
	}

	unlock, err := o.Locks.Lock(ctx, "onboard:"+email)
	if err != nil {
		return AccountResult{}, errs.Storage("lock onboarding", err)
	}
	defer unlock()

	existing, err := o.Registry.Resolve(ctx, email)
	switch {
	case err == nil:
		o.log().WithFields(logrus.Fields{"email": email, "account_id": existing}).Debug("connected account already bound")
		return AccountResult{AccountID: existing}, nil
	case !errors.Is(err, errs.ErrNotFound):
		return AccountResult{}, err
	}

	accountID, err := o.Processor.CreateExpressAccount(ctx, entity.AccountSpec{Email: email, Country: o.Cfg.Country})
	if err != nil {
		o.log().WithError(err).WithField("email", email).Error("create connected account failed")
		return AccountResult{}, err
	}

	if err := o.Registry.Bind(ctx, email, accountID); err != nil {
		o.log().WithError(err).WithFields(logrus.Fields{
			"email":      email,
			"account_id": accountID,
		}).Error("connected account created but not bound; account is orphaned")
		return AccountResult{}, err
	}

	o.log().WithFields(logrus.Fields{"email": email, "account_id": accountID}).Info("connected account created")
	return AccountResult{AccountID: accountID, Created: true}, nil
}

// GenerateOnboardingLink returns a single-use hosted onboarding URL.
func (o *OnboardingCoordinator) GenerateOnboardingLink(ctx context.Context, accountID string) (entity.OnboardingLink, error) {
	if !validation.IsAccountID(accountID) {
		return entity.OnboardingLink{}, errs.Validation("account_id", "must be a connected account id (acct_...)")
	}
	url, err := o.Processor.CreateOnboardingLink(ctx, accountID, o.Cfg.RefreshURL, o.Cfg.ReturnURL)
	if err != nil {
		o.log().WithError(err).WithField("account_id", accountID).Warn("create onboarding link failed")
		return entity.OnboardingLink{}, err
	}
	return entity.OnboardingLink{URL: url, RefreshURL: o.Cfg.RefreshURL, ReturnURL: o.Cfg.ReturnURL}, nil
}

// CompleteOnboarding attaches the connected account's preferred card to the
// payer's customer record and makes it the customer's default.
func (o *OnboardingCoordinator) CompleteOnboarding(ctx context.Context, customerID, accountID string) (entity.Instrument, error) {
	if err := validation.Var(customerID, "required,stripe_cus"); err != nil {
		return entity.Instrument{}, errs.Validation("customer_id", "must be a customer id (cus_...)")
	}

	list, err := o.Instruments.ListForConnectedAccount(ctx, accountID)
	if err != nil {
		return entity.Instrument{}, err
	}
	chosen, ok := SelectPreferred(list)
	if !ok {
		return entity.Instrument{}, errs.ErrNoInstrument
	}

	if err := o.Processor.AttachInstrument(ctx, customerID, chosen.ID); err != nil {
		return entity.Instrument{}, err
	}
	if err := o.Processor.SetDefaultInstrument(ctx, customerID, chosen.ID); err != nil {
		return entity.Instrument{}, err
	}

	o.log().WithFields(logrus.Fields{
		"customer_id":       customerID,
		"account_id":        accountID,
		"payment_method_id": chosen.ID,
	}).Info("onboarding completed")
	return chosen, nil
}

// CompleteOnboardingForEmail resolves the payee's account by email first.
func (o *OnboardingCoordinator) CompleteOnboardingForEmail(ctx context.Context, customerID, email string) (entity.Instrument, error) {
	accountID, err := o.Registry.Resolve(ctx, email)
	if err != nil {
		return entity.Instrument{}, err
	}
	return o.CompleteOnboarding(ctx, customerID, accountID)
}

func (o *OnboardingCoordinator) log() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

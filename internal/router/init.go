package router

import (
	"github.com/oksasatya/go-ddd-payments/internal/application"
	"github.com/oksasatya/go-ddd-payments/internal/container"
	pginfra "github.com/oksasatya/go-ddd-payments/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-ddd-payments/internal/interface/http"
	"github.com/oksasatya/go-ddd-payments/internal/router/modules"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

type PaymentsModuleDeps struct {
	Registry    *application.AccountRegistry
	Instruments *application.InstrumentResolver
	Onboarding  *application.OnboardingCoordinator
	Funding     *application.FundingCoordinator
	Dispatcher  *application.WebhookDispatcher

	StripeHandler  *handlers.StripeHandler
	WebhookHandler *handlers.WebhookHandler
}

func buildPaymentsDeps() PaymentsModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	processor := container.GetProcessor()

	// In-process lock for rebinds; the store upsert covers other replicas.
	registry := application.NewAccountRegistry(pginfra.NewIdentityRepository(container.GetPGPool()), helpers.NewKeyedMutex(), logger)
	instruments := application.NewInstrumentResolver(processor)

	var onboardLocks application.Locker
	if rdb := container.GetRedis(); rdb != nil {
		onboardLocks = helpers.NewFallbackLocker(helpers.NewRedisLocker(rdb, cfg.OnboardingLockTTL), nil, logger)
	}
	onboarding := application.NewOnboardingCoordinator(processor, registry, instruments, onboardLocks, application.OnboardingConfig{
		Country:    cfg.StripeAccountCountry,
		RefreshURL: cfg.OnboardingRefreshURL,
		ReturnURL:  cfg.OnboardingReturnURL,
	}, logger)
	funding := application.NewFundingCoordinator(processor, instruments, logger)

	dispatcher := application.NewWebhookDispatcher(container.GetVerifier(), cfg.StripeWebhookSecret, container.GetMetrics(), logger)
	application.RegisterConfirmationHandlers(dispatcher, container.GetPublisher(), logger)

	return PaymentsModuleDeps{
		Registry:       registry,
		Instruments:    instruments,
		Onboarding:     onboarding,
		Funding:        funding,
		Dispatcher:     dispatcher,
		StripeHandler:  handlers.NewStripeHandler(onboarding, registry, instruments, funding, logger),
		WebhookHandler: handlers.NewWebhookHandler(dispatcher, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	deps := buildPaymentsDeps()

	r.Add(modules.NewPaymentsModule(deps.StripeHandler, container.GetJWT(), container.GetRedis()))
	r.Add(modules.NewWebhookModule(deps.WebhookHandler, webhookBodyLimit))
	if cfg.DebugMetricsEnabled || cfg.MetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis(), cfg.DebugMetricsEnabled, container.GetMetricsGatherer()))
	}
}

// Processor webhook payloads stay well under this.
const webhookBodyLimit = 1 << 20

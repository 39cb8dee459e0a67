// Package stripe adapts the processor SDK to the gateway interfaces.
package stripe

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
	"github.com/oksasatya/go-ddd-payments/pkg/metrics"
)

// BreakerConfig tunes the circuit breaker in front of the processor.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts reset. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Gateway implements gateway.Processor on the processor SDK. Every call goes
// through one circuit breaker and is never retried.
type Gateway struct {
	api     *client.API
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics metrics.Collector
	logger  *logrus.Logger
}

// NewAPI builds an SDK client. An empty baseURL uses the processor's default
// endpoint; SDK-level network retries are disabled.
func NewAPI(secretKey, baseURL string) *client.API {
	cfg := &stripego.BackendConfig{
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelNull},
	}
	if baseURL != "" {
		cfg.URL = stripego.String(baseURL)
	}
	backends := &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, cfg),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, cfg),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, cfg),
	}
	return client.New(secretKey, backends)
}

func NewGateway(api *client.API, bc BreakerConfig, timeout time.Duration, collector metrics.Collector, logger *logrus.Logger) *Gateway {
	if collector == nil {
		collector = metrics.NoOp{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if bc.ConsecutiveFailures == 0 {
		bc.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	g := &Gateway{api: api, timeout: timeout, metrics: collector, logger: logger}

	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
		// Declines and bad requests say nothing about processor health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *stripego.Error
			return errors.As(err, &se) && se.HTTPStatusCode > 0 && se.HTTPStatusCode < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("processor circuit breaker state changed")

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			g.metrics.RecordCircuitState(name, state)
		},
	})
	return g
}

// do runs fn through the breaker with the call timeout applied, records the
// outcome and wraps any failure as a gateway error for op.
func (g *Gateway) do(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	start := time.Now()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.metrics.RecordProcessorCall(op, metrics.OutcomeCircuitOpen, duration)
			g.logger.WithField("operation", op).Warn("circuit breaker open - processor call rejected")
			return nil, errs.Gateway(op, err)
		}
		g.metrics.RecordProcessorCall(op, metrics.OutcomeError, duration)
		perr := fromSDK(err)
		g.logger.WithError(perr).WithFields(logrus.Fields{
			"operation": op,
			"duration":  duration,
		}).Warn("processor call failed")
		return nil, errs.Gateway(op, perr)
	}

	g.metrics.RecordProcessorCall(op, metrics.OutcomeOK, duration)
	return res, nil
}

// ProcessorError carries the processor's own message. The SDK error renders
// as JSON, so this keeps the human-readable part for callers.
type ProcessorError struct {
	Code       string
	Type       string
	StatusCode int
	Msg        string
	err        error
}

func (e *ProcessorError) Error() string { return e.Msg }
func (e *ProcessorError) Unwrap() error { return e.err }

func fromSDK(err error) error {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Msg
	if msg == "" {
		msg = string(se.Type)
	}
	return &ProcessorError{
		Code:       string(se.Code),
		Type:       string(se.Type),
		StatusCode: se.HTTPStatusCode,
		Msg:        msg,
		err:        err,
	}
}

func (g *Gateway) CreateExpressAccount(ctx context.Context, spec entity.AccountSpec) (string, error) {
	res, err := g.do(ctx, "create_account", func(ctx context.Context) (any, error) {
		params := &stripego.AccountParams{
			Type:    stripego.String(string(stripego.AccountTypeExpress)),
			Country: stripego.String(spec.Country),
			Email:   stripego.String(spec.Email),
			Capabilities: &stripego.AccountCapabilitiesParams{
				Transfers: &stripego.AccountCapabilitiesTransfersParams{Requested: stripego.Bool(true)},
			},
		}
		params.Context = ctx
		return g.api.Accounts.New(params)
	})
	if err != nil {
		return "", err
	}
	return res.(*stripego.Account).ID, nil
}

func (g *Gateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	res, err := g.do(ctx, "create_account_link", func(ctx context.Context) (any, error) {
		params := &stripego.AccountLinkParams{
			Account:    stripego.String(accountID),
			RefreshURL: stripego.String(refreshURL),
			ReturnURL:  stripego.String(returnURL),
			Type:       stripego.String("account_onboarding"),
		}
		params.Context = ctx
		return g.api.AccountLinks.New(params)
	})
	if err != nil {
		return "", err
	}
	return res.(*stripego.AccountLink).URL, nil
}

func (g *Gateway) ListCustomerInstruments(ctx context.Context, customerID string) (entity.Instruments, error) {
	return g.listCards(ctx, "list_customer_payment_methods", func(p *stripego.PaymentMethodListParams) {
		p.Customer = stripego.String(customerID)
	})
}

// ListAccountInstruments lists cards held on the connected account itself.
func (g *Gateway) ListAccountInstruments(ctx context.Context, accountID string) (entity.Instruments, error) {
	return g.listCards(ctx, "list_account_payment_methods", func(p *stripego.PaymentMethodListParams) {
		p.SetStripeAccount(accountID)
	})
}

func (g *Gateway) listCards(ctx context.Context, op string, scope func(p *stripego.PaymentMethodListParams)) (entity.Instruments, error) {
	res, err := g.do(ctx, op, func(ctx context.Context) (any, error) {
		params := &stripego.PaymentMethodListParams{Type: stripego.String(string(stripego.PaymentMethodTypeCard))}
		params.Context = ctx
		scope(params)

		var out entity.Instruments
		it := g.api.PaymentMethods.List(params)
		for it.Next() {
			out = append(out, toInstrument(it.PaymentMethod()))
		}
		return out, it.Err()
	})
	if err != nil {
		return nil, err
	}
	list, _ := res.(entity.Instruments)
	return list, nil
}

func toInstrument(pm *stripego.PaymentMethod) entity.Instrument {
	in := entity.Instrument{
		ID:        pm.ID,
		Kind:      string(pm.Type),
		CreatedAt: time.Unix(pm.Created, 0).UTC(),
	}
	if pm.Card != nil {
		in.Brand = string(pm.Card.Brand)
		in.Last4 = pm.Card.Last4
	}
	if pm.Customer != nil {
		in.Customer = pm.Customer.ID
	}
	return in
}

func (g *Gateway) AttachInstrument(ctx context.Context, customerID, instrumentID string) error {
	_, err := g.do(ctx, "attach_payment_method", func(ctx context.Context) (any, error) {
		params := &stripego.PaymentMethodAttachParams{Customer: stripego.String(customerID)}
		params.Context = ctx
		return g.api.PaymentMethods.Attach(instrumentID, params)
	})
	return err
}

func (g *Gateway) SetDefaultInstrument(ctx context.Context, customerID, instrumentID string) error {
	_, err := g.do(ctx, "set_default_payment_method", func(ctx context.Context) (any, error) {
		params := &stripego.CustomerParams{
			InvoiceSettings: &stripego.CustomerInvoiceSettingsParams{
				DefaultPaymentMethod: stripego.String(instrumentID),
			},
		}
		params.Context = ctx
		return g.api.Customers.Update(customerID, params)
	})
	return err
}

// CreateOffSessionCharge confirms a payment intent immediately and returns its
// client secret.
func (g *Gateway) CreateOffSessionCharge(ctx context.Context, req entity.ChargeRequest) (string, error) {
	res, err := g.do(ctx, "create_payment_intent", func(ctx context.Context) (any, error) {
		params := &stripego.PaymentIntentParams{
			Amount:        stripego.Int64(req.Amount),
			Currency:      stripego.String(req.Currency),
			Customer:      stripego.String(req.CustomerID),
			PaymentMethod: stripego.String(req.InstrumentID),
			Confirm:       stripego.Bool(true),
			OffSession:    stripego.Bool(true),
		}
		params.Context = ctx
		return g.api.PaymentIntents.New(params)
	})
	if err != nil {
		return "", err
	}
	return res.(*stripego.PaymentIntent).ClientSecret, nil
}

func (g *Gateway) CreateTransfer(ctx context.Context, req entity.TransferRequest) (string, error) {
	res, err := g.do(ctx, "create_transfer", func(ctx context.Context) (any, error) {
		params := &stripego.TransferParams{
			Amount:      stripego.Int64(req.Amount),
			Currency:    stripego.String(req.Currency),
			Destination: stripego.String(req.Destination),
		}
		params.Context = ctx
		return g.api.Transfers.New(params)
	})
	if err != nil {
		return "", err
	}
	return res.(*stripego.Transfer).ID, nil
}

// CreatePayout pays out a connected account's own balance when the destination
// is an account id; otherwise the destination is a bank or card on the platform.
func (g *Gateway) CreatePayout(ctx context.Context, req entity.PayoutRequest) (string, error) {
	res, err := g.do(ctx, "create_payout", func(ctx context.Context) (any, error) {
		params := &stripego.PayoutParams{
			Amount:   stripego.Int64(req.Amount),
			Currency: stripego.String(req.Currency),
		}
		if strings.HasPrefix(req.Destination, "acct_") {
			params.SetStripeAccount(req.Destination)
		} else {
			params.Destination = stripego.String(req.Destination)
		}
		params.Context = ctx
		return g.api.Payouts.New(params)
	})
	if err != nil {
		return "", err
	}
	return res.(*stripego.Payout).ID, nil
}

var _ gateway.Processor = (*Gateway)(nil)

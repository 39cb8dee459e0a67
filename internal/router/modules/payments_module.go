package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-payments/internal/interface/http"
	"github.com/oksasatya/go-ddd-payments/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

// PaymentsModule wires the orchestration handlers under /api/stripe.
// Every route requires a bearer token when a JWT manager is configured.
type PaymentsModule struct {
	Handler *handlers.StripeHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewPaymentsModule(h *handlers.StripeHandler, jwt *helpers.JWTManager, rdb *redis.Client) *PaymentsModule {
	return &PaymentsModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *PaymentsModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/stripe")
	g.Use(
		middleware.BearerAuth(m.JWT),
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByClient(), nil),
	)

	// Money movement gets a tighter per-path budget.
	money := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	g.POST("/accounts", m.Handler.CreateAccount)
	g.PUT("/accounts/bind", m.Handler.BindAccount)
	g.POST("/accounts/link", m.Handler.CreateAccountLink)
	g.GET("/accounts/:email", m.Handler.GetAccount)
	g.GET("/accounts/:email/instruments", m.Handler.ListAccountInstruments)
	g.POST("/onboarding/complete", m.Handler.CompleteOnboarding)
	g.GET("/customers/:customer_id/instruments", m.Handler.ListCustomerInstruments)

	g.POST("/fund", money, m.Handler.FundWallet)
	g.POST("/create-payment-intent", money, m.Handler.FundWallet)
	g.POST("/transfers", money, m.Handler.Transfer)
	g.POST("/payouts", money, m.Handler.Payout)
}

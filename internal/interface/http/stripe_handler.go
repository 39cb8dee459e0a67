package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/application"
	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/pkg/response"
	"github.com/oksasatya/go-ddd-payments/pkg/validation"
)

type Onboarding interface {
	CreateAccount(ctx context.Context, email string) (application.AccountResult, error)
	GenerateOnboardingLink(ctx context.Context, accountID string) (entity.OnboardingLink, error)
	CompleteOnboarding(ctx context.Context, customerID, accountID string) (entity.Instrument, error)
	CompleteOnboardingForEmail(ctx context.Context, customerID, email string) (entity.Instrument, error)
}

type Registry interface {
	Resolve(ctx context.Context, email string) (string, error)
	Bind(ctx context.Context, email, accountID string) error
}

type Instruments interface {
	ListForCustomer(ctx context.Context, customerID string) (entity.Instruments, error)
	ListForConnectedAccount(ctx context.Context, accountID string) (entity.Instruments, error)
}

type Funding interface {
	FundWallet(ctx context.Context, req entity.FundingRequest) (string, error)
	Transfer(ctx context.Context, req entity.TransferRequest) (string, error)
	Payout(ctx context.Context, req entity.PayoutRequest) (string, error)
}

type StripeHandler struct {
	Onboarding  Onboarding
	Registry    Registry
	Instruments Instruments
	Funding     Funding
	Logger      *logrus.Logger
}

func NewStripeHandler(onboarding Onboarding, registry Registry, instruments Instruments, funding Funding, logger *logrus.Logger) *StripeHandler {
	return &StripeHandler{Onboarding: onboarding, Registry: registry, Instruments: instruments, Funding: funding, Logger: logger}
}

type createAccountRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type bindAccountRequest struct {
	Email     string `json:"email" binding:"required,email"`
	AccountID string `json:"account_id" binding:"required,stripe_acct"`
}

type accountLinkRequest struct {
	AccountID string `json:"account_id" binding:"required,stripe_acct"`
}

type completeOnboardingRequest struct {
	CustomerID string `json:"customer_id" binding:"required,stripe_cus"`
	AccountID  string `json:"account_id" binding:"omitempty,stripe_acct"`
	Email      string `json:"email" binding:"required_without=AccountID,omitempty,email"`
}

type fundRequest struct {
	Amount          int64  `json:"amount" binding:"minor_amount"`
	Currency        string `json:"currency" binding:"required,currency"`
	CustomerID      string `json:"customer_id" binding:"required,stripe_cus"`
	PaymentMethodID string `json:"payment_method_id" binding:"omitempty,stripe_pm"`
}

type transferRequest struct {
	Amount      int64  `json:"amount" binding:"minor_amount"`
	Currency    string `json:"currency" binding:"required,currency"`
	Destination string `json:"destination" binding:"required,stripe_acct"`
}

type payoutRequest struct {
	Amount      int64  `json:"amount" binding:"minor_amount"`
	Currency    string `json:"currency" binding:"required,currency"`
	Destination string `json:"destination" binding:"required"`
}

type instrumentResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Brand     string    `json:"brand,omitempty"`
	Last4     string    `json:"last4,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toInstrumentResponses(list entity.Instruments) []instrumentResponse {
	out := make([]instrumentResponse, 0, len(list))
	for _, in := range list {
		out = append(out, instrumentResponse{ID: in.ID, Type: in.Kind, Brand: in.Brand, Last4: in.Last4, CreatedAt: in.CreatedAt})
	}
	return out
}

// bind decodes the JSON body into req, writing a 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

func (h *StripeHandler) fail(c *gin.Context, op string, err error) {
	resp := response.FromError(c, err)
	entry := h.Logger.WithError(err).WithFields(logrus.Fields{
		"operation":  op,
		"request_id": c.GetString("request_id"),
		"status":     resp.Status,
	})
	if resp.Status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
}

// CreateAccount returns 201 when a new connected account was created and 200
// when the email was already bound.
func (h *StripeHandler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Onboarding.CreateAccount(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, "create_account", err)
		return
	}
	status, msg := http.StatusOK, "connected account already exists"
	if res.Created {
		status, msg = http.StatusCreated, "connected account created"
	}
	response.Success(c, status, res, msg, nil)
}

func (h *StripeHandler) GetAccount(c *gin.Context) {
	email := c.Param("email")
	accountID, err := h.Registry.Resolve(c.Request.Context(), email)
	if err != nil {
		h.fail(c, "get_account", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"email": email, "account_id": accountID}, "connected account found", nil)
}

func (h *StripeHandler) BindAccount(c *gin.Context) {
	var req bindAccountRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Registry.Bind(c.Request.Context(), req.Email, req.AccountID); err != nil {
		h.fail(c, "bind_account", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"email": req.Email, "account_id": req.AccountID}, "connected account bound", nil)
}

func (h *StripeHandler) CreateAccountLink(c *gin.Context) {
	var req accountLinkRequest
	if !bind(c, &req) {
		return
	}
	link, err := h.Onboarding.GenerateOnboardingLink(c.Request.Context(), req.AccountID)
	if err != nil {
		h.fail(c, "create_account_link", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": link.URL}, "onboarding link created", nil)
}

// CompleteOnboarding accepts either the connected account id or the payee's
// email; the account id wins when both are given.
func (h *StripeHandler) CompleteOnboarding(c *gin.Context) {
	var req completeOnboardingRequest
	if !bind(c, &req) {
		return
	}
	var (
		in  entity.Instrument
		err error
	)
	if req.AccountID != "" {
		in, err = h.Onboarding.CompleteOnboarding(c.Request.Context(), req.CustomerID, req.AccountID)
	} else {
		in, err = h.Onboarding.CompleteOnboardingForEmail(c.Request.Context(), req.CustomerID, req.Email)
	}
	if err != nil {
		h.fail(c, "complete_onboarding", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true, "payment_method_id": in.ID}, "onboarding completed", nil)
}

func (h *StripeHandler) ListCustomerInstruments(c *gin.Context) {
	list, err := h.Instruments.ListForCustomer(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		h.fail(c, "list_customer_instruments", err)
		return
	}
	response.Success(c, http.StatusOK, toInstrumentResponses(list), "payment methods", gin.H{"count": len(list)})
}

// ListAccountInstruments resolves the payee's connected account by email first.
func (h *StripeHandler) ListAccountInstruments(c *gin.Context) {
	ctx := c.Request.Context()
	accountID, err := h.Registry.Resolve(ctx, c.Param("email"))
	if err != nil {
		h.fail(c, "list_account_instruments", err)
		return
	}
	list, err := h.Instruments.ListForConnectedAccount(ctx, accountID)
	if err != nil {
		h.fail(c, "list_account_instruments", err)
		return
	}
	response.Success(c, http.StatusOK, toInstrumentResponses(list), "payment methods", gin.H{"count": len(list), "account_id": accountID})
}

func (h *StripeHandler) FundWallet(c *gin.Context) {
	var req fundRequest
	if !bind(c, &req) {
		return
	}
	secret, err := h.Funding.FundWallet(c.Request.Context(), entity.FundingRequest{
		Amount:       req.Amount,
		Currency:     req.Currency,
		CustomerID:   req.CustomerID,
		InstrumentID: req.PaymentMethodID,
	})
	if err != nil {
		h.fail(c, "fund_wallet", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"client_secret": secret}, "wallet funded", nil)
}

func (h *StripeHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Funding.Transfer(c.Request.Context(), entity.TransferRequest{
		Amount: req.Amount, Currency: req.Currency, Destination: req.Destination,
	})
	if err != nil {
		h.fail(c, "transfer", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transfer_id": id}, "transfer created", nil)
}

func (h *StripeHandler) Payout(c *gin.Context) {
	var req payoutRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Funding.Payout(c.Request.Context(), entity.PayoutRequest{
		Amount: req.Amount, Currency: req.Currency, Destination: req.Destination,
	})
	if err != nil {
		h.fail(c, "payout", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payout_id": id}, "payout created", nil)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-payments/pkg/response"
)

const signatureHeader = "Stripe-Signature"

type Dispatcher interface {
	Dispatch(ctx context.Context, payload []byte, header string) (*entity.WebhookEvent, error)
}

type WebhookHandler struct {
	Dispatcher Dispatcher
	Logger     *logrus.Logger
}

func NewWebhookHandler(d Dispatcher, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{Dispatcher: d, Logger: logger}
}

// Receive must run behind middleware.RawBody so the signature is checked
// against the exact bytes received. Verification failures answer 400, a
// missing secret 500; once verified, a handler failure answers 500 so the
// processor redelivers.
func (h *WebhookHandler) Receive(c *gin.Context) {
	payload := middleware.RawBodyFrom(c)
	ev, err := h.Dispatcher.Dispatch(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		if ev != nil || !errors.Is(err, errs.ErrSignature) {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("webhook processing failed")
			response.Error[any](c, http.StatusInternalServerError, "webhook processing failed", nil)
			return
		}
		status := errs.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			response.Error[any](c, status, "webhook not configured", nil)
			return
		}
		response.Error[any](c, status, "webhook error: "+err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true, "id": ev.ID, "type": ev.Type}, "event received", nil)
}

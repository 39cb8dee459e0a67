package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-payments/internal/interface/http"
	"github.com/oksasatya/go-ddd-payments/internal/interface/middleware"
)

// WebhookModule exposes POST /api/stripe/webhook. It is authenticated by the
// processor signature only, so it sits outside the bearer-auth group.
type WebhookModule struct {
	Handler   *handlers.WebhookHandler
	BodyLimit int64
}

func NewWebhookModule(h *handlers.WebhookHandler, bodyLimit int64) *WebhookModule {
	return &WebhookModule{Handler: h, BodyLimit: bodyLimit}
}

func (m *WebhookModule) Register(rg *gin.RouterGroup) {
	rg.POST("/stripe/webhook", middleware.RawBody(m.BodyLimit), m.Handler.Receive)
}

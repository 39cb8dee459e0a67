package modules

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	handlers "github.com/oksasatya/go-ddd-payments/internal/interface/http"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
	"github.com/oksasatya/go-ddd-payments/pkg/metrics"
	"github.com/oksasatya/go-ddd-payments/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type registryStub struct{}

func (registryStub) Resolve(ctx context.Context, email string) (string, error) {
	return "acct_1", nil
}
func (registryStub) Bind(ctx context.Context, email, accountID string) error { return nil }

type dispatcherStub struct{}

func (dispatcherStub) Dispatch(ctx context.Context, payload []byte, header string) (*entity.WebhookEvent, error) {
	if header == "" {
		return nil, errs.Signature(errors.New("missing header"))
	}
	return &entity.WebhookEvent{ID: "evt_1", Type: "foo.bar"}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(jwt *helpers.JWTManager, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	stripeH := handlers.NewStripeHandler(nil, registryStub{}, nil, nil, quietLogger())
	NewPaymentsModule(stripeH, jwt, nil).Register(api)
	NewWebhookModule(handlers.NewWebhookHandler(dispatcherStub{}, quietLogger()), 1<<10).Register(api)
	NewDebugModule(nil, true, gatherer).Register(api)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentsRoutesRequireBearerToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", "payments", time.Minute)
	r := newEngine(jwt, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stripe/accounts/p@example.com", nil)
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	token, _, err := jwt.GenerateToken("checkout")
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/stripe/accounts/p@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWebhookBypassesAuth(t *testing.T) {
	r := newEngine(helpers.NewJWTManager("secret", "payments", time.Minute), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=x")
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewBufferString(`{}`))
	if w := serve(r, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without signature, got %d", w.Code)
	}

	big := bytes.Repeat([]byte("a"), 2<<10)
	req = httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(big))
	req.Header.Set("Stripe-Signature", "t=1,v1=x")
	if w := serve(r, req); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized body, got %d", w.Code)
	}
}

func TestDebugModuleServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := metrics.NewPrometheus("payments")
	if err := prom.Register(reg); err != nil {
		t.Fatal(err)
	}
	prom.RecordWebhook("payment_intent.succeeded", "handled")

	r := newEngine(nil, reg)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "payments_webhook_events_total") {
		t.Fatalf("expected metrics output, got %d", w.Code)
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected expvar 200, got %d", w.Code)
	}
}

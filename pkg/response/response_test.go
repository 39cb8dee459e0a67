package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
)

func init() { gin.SetMode(gin.TestMode) }

func TestFromError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{errs.Validation("amount", "must be greater than 0"), http.StatusBadRequest, "validation failed: amount must be greater than 0"},
		{errs.ErrNoInstrument, http.StatusNotFound, "not found: no payment methods found"},
		{errs.ErrInvalidInstrument, http.StatusUnprocessableEntity, "payment method does not belong to customer"},
		{errs.Gateway("create transfer", errors.New("Insufficient funds")), http.StatusBadGateway, "payment processor error: create transfer: Insufficient funds"},
		{errs.Storage("get identity", errors.New("dial tcp 10.0.0.3:5432: refused")), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("request_id", "req-1")

		FromError(c, tc.err)

		if w.Code != tc.status {
			t.Errorf("%v: expected %d got %d", tc.err, tc.status, w.Code)
		}
		var body APIResponse[any]
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Success || body.Message != tc.message || body.RequestID != "req-1" {
			t.Errorf("%v: unexpected body %+v", tc.err, body)
		}
	}
}

func TestSuccessWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, map[string]string{"account_id": "acct_1"}, "created", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if !body.Success || body.Data["account_id"] != "acct_1" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func TestBearerAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", "payments", time.Hour)
	token, _, err := jwt.GenerateToken("frontend")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	r := gin.New()
	r.GET("/p", BearerAuth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxClientKey))
	})

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer not-a-jwt", http.StatusUnauthorized},
		{"Bearer " + token, http.StatusOK},
		{"bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Errorf("%q: expected %d got %d", tc.header, tc.status, w.Code)
		}
		if tc.status == http.StatusOK && w.Body.String() != "frontend" {
			t.Errorf("expected client in context, got %q", w.Body.String())
		}
	}
}

func TestBearerAuthDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/p", BearerAuth(nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}

func TestRawBodyKeepsExactBytes(t *testing.T) {
	payload := "{\"id\": \"evt_1\",\n  \"type\":\"x\"}  "
	r := gin.New()
	r.POST("/hook", RawBody(1024), func(c *gin.Context) {
		again, _ := io.ReadAll(c.Request.Body)
		if string(again) != payload {
			t.Errorf("body not restored: %q", again)
		}
		c.String(http.StatusOK, string(RawBodyFrom(c)))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(payload)))
	if w.Body.String() != payload {
		t.Fatalf("expected exact bytes, got %q", w.Body.String())
	}
}

func TestRawBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/hook", RawBody(4), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("12345")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get(HeaderRequestID) != "abc-123" {
		t.Fatalf("expected incoming id reused, got %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "bad id\nwith newline")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Body.String(); got == "" || strings.Contains(got, " ") {
		t.Fatalf("expected a minted id, got %q", got)
	}
}

func TestRealIPPrefersForwardedHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "203.0.113.7" {
		t.Fatalf("expected left-most forwarded ip, got %q", w.Body.String())
	}
}

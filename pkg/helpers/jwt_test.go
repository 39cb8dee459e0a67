package helpers

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("s3cret", "payments", time.Hour)
	tok, exp, err := m.GenerateToken("investor-frontend")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry must be in the future")
	}
	claims, err := m.ParseToken(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Client != "investor-frontend" {
		t.Fatalf("unexpected client %q", claims.Client)
	}
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("s3cret", "payments", time.Hour)
	tok, _, _ := m.GenerateToken("svc")

	if _, err := NewJWTManager("other", "payments", time.Hour).ParseToken(tok); err == nil {
		t.Error("expected wrong secret to fail")
	}
	if _, err := NewJWTManager("s3cret", "someone-else", time.Hour).ParseToken(tok); err == nil {
		t.Error("expected wrong issuer to fail")
	}
	expired, _, _ := NewJWTManager("s3cret", "payments", -time.Minute).GenerateToken("svc")
	if _, err := m.ParseToken(expired); err == nil {
		t.Error("expected expired token to fail")
	}
}

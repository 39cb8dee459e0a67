package templates

import (
	"strings"
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount int64
		code   string
		want   string
	}{
		{5000, "usd", "USD 50.00"},
		{5, "USD", "USD 0.05"},
		{0, "eur", "EUR 0.00"},
		{5000, "jpy", "JPY 5000"},
		{-150, "usd", "USD -1.50"},
		{12, "zzz", "12 ZZZ"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.amount, tc.code); got != tc.want {
			t.Errorf("FormatAmount(%d, %q) = %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}
}

func TestRenderReceipt(t *testing.T) {
	data := ReceiptData{
		Email:      "payer@example.com",
		PaymentID:  "pi_123",
		Amount:     2599,
		Currency:   "usd",
		PaidAt:     time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		SupportURL: "https://example.com/help?a=1&b=2",
	}
	subject, text, html, err := Render(PaymentReceipt, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Payments: payment of USD 25.99 received" {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(text, "pi_123") || !strings.Contains(text, "01 May 2024 10:30 UTC") {
		t.Errorf("text missing payment details:\n%s", text)
	}
	if !strings.Contains(html, "a=1&amp;b=2") {
		t.Errorf("html must escape the support url:\n%s", html)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("nope", ReceiptData{}); err == nil {
		t.Fatal("expected error for missing template")
	}
}

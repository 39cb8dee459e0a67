package stripe

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
)

// WebhookVerifier checks the signature header over the exact payload bytes and
// decodes the event. The processor's API version is not enforced.
type WebhookVerifier struct {
	Tolerance time.Duration
}

func NewWebhookVerifier(tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &WebhookVerifier{Tolerance: tolerance}
}

func (v *WebhookVerifier) Verify(payload []byte, header, secret string) (*entity.WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                v.Tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errs.Signature(err)
	}

	out := &entity.WebhookEvent{
		ID:       ev.ID,
		Type:     string(ev.Type),
		Account:  ev.Account,
		Livemode: ev.Livemode,
		Created:  time.Unix(ev.Created, 0).UTC(),
		Payload:  json.RawMessage(payload),
	}
	if ev.Data != nil {
		out.Object = summarize(ev.Data.Raw)
	}
	return out, nil
}

// eventObject covers the fields shared by payment intents, transfers, payouts,
// balances and accounts. customer may arrive as an id or an expanded object.
type eventObject struct {
	ID           string          `json:"id"`
	Object       string          `json:"object"`
	Amount       int64           `json:"amount"`
	Currency     string          `json:"currency"`
	Customer     json.RawMessage `json:"customer"`
	ReceiptEmail string          `json:"receipt_email"`
	Status       string          `json:"status"`
	Available    []struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"available"`
}

func summarize(raw json.RawMessage) entity.EventObject {
	var o eventObject
	if len(raw) == 0 || json.Unmarshal(raw, &o) != nil {
		return entity.EventObject{}
	}
	out := entity.EventObject{
		ID:           o.ID,
		Kind:         o.Object,
		Amount:       o.Amount,
		Currency:     o.Currency,
		ReceiptEmail: o.ReceiptEmail,
		Status:       o.Status,
	}
	if out.Amount == 0 && len(o.Available) > 0 {
		out.Amount = o.Available[0].Amount
		out.Currency = o.Available[0].Currency
	}
	if len(o.Customer) > 0 {
		var id string
		if json.Unmarshal(o.Customer, &id) == nil {
			out.Customer = id
		} else {
			var expanded struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(o.Customer, &expanded) == nil {
				out.Customer = expanded.ID
			}
		}
	}
	return out
}

var _ gateway.SignatureVerifier = (*WebhookVerifier)(nil)

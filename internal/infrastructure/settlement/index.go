package settlement

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

// EventDocument is the searchable shape of a settled event.
type EventDocument struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Account   string    `json:"account,omitempty"`
	Livemode  bool      `json:"livemode"`
	ObjectID  string    `json:"object_id,omitempty"`
	Kind      string    `json:"object_kind,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Customer  string    `json:"customer,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	IndexedAt time.Time `json:"indexed_at"`
}

// ESIndexer writes one document per event, keyed by event id, so a reindex
// overwrites rather than duplicates.
type ESIndexer struct {
	Client    *elasticsearch.Client
	IndexName string
}

func NewESIndexer(client *elasticsearch.Client, index string) *ESIndexer {
	return &ESIndexer{Client: client, IndexName: index}
}

func NewEventDocument(ev *entity.WebhookEvent) EventDocument {
	return EventDocument{
		EventID:   ev.ID,
		Type:      ev.Type,
		Account:   ev.Account,
		Livemode:  ev.Livemode,
		ObjectID:  ev.Object.ID,
		Kind:      ev.Object.Kind,
		Amount:    ev.Object.Amount,
		Currency:  ev.Object.Currency,
		Customer:  ev.Object.Customer,
		Status:    ev.Object.Status,
		CreatedAt: ev.Created,
		IndexedAt: time.Now().UTC(),
	}
}

func (i *ESIndexer) Index(ctx context.Context, ev *entity.WebhookEvent) error {
	return helpers.IndexDocument(ctx, i.Client, i.IndexName, ev.ID, NewEventDocument(ev))
}

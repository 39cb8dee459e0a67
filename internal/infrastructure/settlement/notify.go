package settlement

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/pkg/mailer"
	"github.com/oksasatya/go-ddd-payments/pkg/mailer/templates"
)

// MailNotifier emails the payer a receipt for a succeeded payment.
type MailNotifier struct {
	Sender     mailer.Sender
	AppName    string
	SupportURL string
}

func NewMailNotifier(sender mailer.Sender, appName, supportURL string) *MailNotifier {
	return &MailNotifier{Sender: sender, AppName: appName, SupportURL: supportURL}
}

func (n *MailNotifier) PaymentReceived(ctx context.Context, ev *entity.WebhookEvent) error {
	paidAt := ev.Created
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	return mailer.SendJob(ctx, n.Sender, mailer.EmailJob{
		To:       ev.Object.ReceiptEmail,
		Template: templates.PaymentReceipt,
		Data: &templates.ReceiptData{
			AppName:    n.AppName,
			Email:      ev.Object.ReceiptEmail,
			PaymentID:  ev.Object.ID,
			Amount:     ev.Object.Amount,
			Currency:   ev.Object.Currency,
			PaidAt:     paidAt,
			SupportURL: n.SupportURL,
		},
	})
}

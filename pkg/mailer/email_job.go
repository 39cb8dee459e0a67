package mailer

import "github.com/oksasatya/go-ddd-payments/pkg/mailer/templates"

// EmailJob is one message to send. Either Subject/Text/HTML are set directly,
// or Template names an embedded template rendered with Data.
type EmailJob struct {
	To       string                 `json:"to"`
	Subject  string                 `json:"subject,omitempty"`
	Text     string                 `json:"text,omitempty"`
	HTML     string                 `json:"html,omitempty"`
	Template string                 `json:"template,omitempty"` // e.g. "payment_receipt"
	Data     *templates.ReceiptData `json:"data,omitempty"`
}

// resolve fills Subject/Text/HTML from the template when one is named.
func (j EmailJob) resolve() (EmailJob, error) {
	if j.Template == "" {
		return j, nil
	}
	var data templates.ReceiptData
	if j.Data != nil {
		data = *j.Data
	}
	subject, text, html, err := templates.Render(j.Template, data)
	if err != nil {
		return j, err
	}
	if j.Subject == "" {
		j.Subject = subject
	}
	j.Text, j.HTML = text, html
	return j, nil
}

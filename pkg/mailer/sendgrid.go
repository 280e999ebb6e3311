package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends messages through the SendGrid v3 mail API.
type SendGridMailer struct {
	client *sendgrid.Client
}

// NewSendGridMailer creates a SendGridMailer for the given API key.
func NewSendGridMailer(apiKey string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, errors.New("SendGrid API key must be provided")
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey)}, nil
}

// Send dispatches msg as one API call with one personalization per recipient.
func (m *SendGridMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	resp, err := m.client.SendWithContext(ctx, buildSendGridMessage(msg))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &SendError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}

func buildSendGridMessage(msg *Message) *mail.SGMailV3 {
	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail("", msg.From))
	v3.Subject = msg.Subject

	for _, to := range msg.To {
		p := mail.NewPersonalization()
		p.AddTos(mail.NewEmail("", to))
		v3.AddPersonalizations(p)
	}

	// SendGrid requires text/plain ahead of text/html.
	if msg.Text != "" {
		v3.AddContent(mail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		v3.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	for _, a := range msg.Attachments {
		att := mail.NewAttachment()
		att.SetContent(a.Content)
		att.SetFilename(a.Filename)
		if a.Type != "" {
			att.SetType(a.Type)
		}
		att.SetDisposition("attachment")
		v3.AddAttachment(att)
	}
	return v3
}

// Package mailer sends transactional email.
//
// Two transports are provided: SendGrid (production) and plain SMTP, which is handy
// against Mailtrap (smtp.mailtrap.io:2525) during development. Both send a single
// message addressed to every recipient without disclosing the list to the others.
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Attachment is a file attached to a message. Content is base64 encoded.
type Attachment struct {
	Content  string
	Filename string
	Type     string
}

// Message is one email addressed to one or more recipients.
type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer dispatches messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SendError is returned when the mail service answers with a non-success status.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail service responded with status %d: %s", e.StatusCode, e.Body)
}

// Validate checks the fields every transport relies on.
func (m *Message) Validate() error {
	if m.From == "" {
		return errors.New("sender email address cannot be empty")
	}
	if len(m.To) == 0 {
		return errors.New("at least one recipient is required")
	}
	if m.Subject == "" {
		return errors.New("email subject cannot be empty")
	}
	if m.HTML == "" && m.Text == "" {
		return errors.New("email needs an html or text body")
	}
	for _, a := range m.Attachments {
		if a.Filename == "" {
			return errors.New("attachment filename cannot be empty")
		}
		if _, err := base64.StdEncoding.DecodeString(a.Content); err != nil {
			return fmt.Errorf("attachment %q is not valid base64: %w", a.Filename, err)
		}
	}
	return nil
}

package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
)

// SMTPMailer sends messages over SMTP with PLAIN authentication.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

// NewSMTPMailer creates an SMTPMailer. Host, username and password are required.
func NewSMTPMailer(host, port, username, password string) (*SMTPMailer, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP host must be provided")
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if port == "" {
		port = "587"
	}
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password}, nil
}

// Send delivers msg to every recipient in a single SMTP transaction.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body, err := buildMIME(msg)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(net.JoinHostPort(m.Host, m.Port), auth, msg.From, msg.To, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMIME renders msg as multipart/mixed: one multipart/alternative body part followed
// by the attachments. Recipients are not listed in the headers.
func buildMIME(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: undisclosed-recipients:;\r\n")
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixed.Boundary())

	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)
	for _, part := range []struct{ ctype, content string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	} {
		if part.content == "" {
			continue
		}
		w, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type": {part.ctype + "; charset=UTF-8"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	w, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + altWriter.Boundary()},
	})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(alt.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ctype := a.Type
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		w, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ctype},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(wrapBase64(a.Content))); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapBase64 breaks encoded content into 76 character lines as RFC 2045 requires.
func wrapBase64(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}

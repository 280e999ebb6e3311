package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessage() *Message {
	return &Message{
		From:    "team@luminher.app",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Your week",
		HTML:    "<p>Great job</p>",
		Text:    "Great job",
		Attachments: []Attachment{
			{Content: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("plan ", 40))), Filename: "plan.txt", Type: "text/plain"},
		},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sampleMessage().Validate())

	tests := map[string]func(m *Message){
		"no sender":      func(m *Message) { m.From = "" },
		"no recipients":  func(m *Message) { m.To = nil },
		"no subject":     func(m *Message) { m.Subject = "" },
		"no body":        func(m *Message) { m.HTML, m.Text = "", "" },
		"bad attachment": func(m *Message) { m.Attachments[0].Content = "%%%" },
		"no filename":    func(m *Message) { m.Attachments[0].Filename = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			m := sampleMessage()
			mutate(m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestBuildSendGridMessage(t *testing.T) {
	v3 := buildSendGridMessage(sampleMessage())

	assert.Equal(t, "team@luminher.app", v3.From.Address)
	assert.Equal(t, "Your week", v3.Subject)
	require.Len(t, v3.Personalizations, 2, "one personalization per recipient keeps the list private")
	assert.Equal(t, "a@example.com", v3.Personalizations[0].To[0].Address)
	assert.Equal(t, "b@example.com", v3.Personalizations[1].To[0].Address)

	require.Len(t, v3.Content, 2)
	assert.Equal(t, "text/plain", v3.Content[0].Type)
	assert.Equal(t, "text/html", v3.Content[1].Type)

	require.Len(t, v3.Attachments, 1)
	assert.Equal(t, "plan.txt", v3.Attachments[0].Filename)
	assert.Equal(t, "attachment", v3.Attachments[0].Disposition)
}

func TestBuildMIME(t *testing.T) {
	msg := sampleMessage()
	raw, err := buildMIME(msg)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "team@luminher.app", parsed.Header.Get("From"))
	assert.Equal(t, "Your week", parsed.Header.Get("Subject"))
	assert.NotContains(t, string(raw), "a@example.com", "recipients stay off the headers")

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	body, err := mr.NextPart()
	require.NoError(t, err)
	altType, altParams, err := mime.ParseMediaType(body.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", altType)

	ar := multipart.NewReader(body, altParams["boundary"])
	var types, contents []string
	for {
		p, err := ar.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		types = append(types, p.Header.Get("Content-Type"))
		contents = append(contents, string(b))
	}
	assert.Equal(t, []string{"text/plain; charset=UTF-8", "text/html; charset=UTF-8"}, types)
	assert.Equal(t, []string{msg.Text, msg.HTML}, contents)

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "plan.txt", att.FileName())
	encoded, err := io.ReadAll(att)
	require.NoError(t, err)
	for _, line := range strings.Split(string(encoded), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("plan ", 40), string(decoded))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Send(context.Background(), sampleMessage()))
	assert.Len(t, r.Messages(), 1)

	r.Err = errors.New("down")
	assert.Error(t, r.Send(context.Background(), sampleMessage()))
	assert.Len(t, r.Messages(), 1)
}

func TestNewMailers(t *testing.T) {
	_, err := NewSendGridMailer("")
	assert.Error(t, err)

	_, err = NewSMTPMailer("", "", "u", "p")
	assert.Error(t, err)

	m, err := NewSMTPMailer("smtp.mailtrap.io", "", "u", "p")
	require.NoError(t, err)
	assert.Equal(t, "587", m.Port)
}

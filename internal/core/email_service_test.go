package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/identity"
	"github.com/luminher/luminher-api/internal/models"
	"github.com/luminher/luminher-api/pkg/mailer"
)

func newEmailFixture() (*identity.MemoryProvider, *mailer.Recorder, core.EmailService) {
	idp := seeded()
	idp.Add(models.UserRecord{UID: "bob", Email: "bob@example.com"}, nil)
	idp.Add(models.UserRecord{UID: "bob-dup", Email: "BOB@example.com"}, nil)
	idp.Add(models.UserRecord{UID: "phone-only"}, nil)
	rec := mailer.NewRecorder()
	return idp, rec, core.NewEmailService(idp, rec, "noreply@luminher.app", zap.NewNop())
}

func TestSendEmail(t *testing.T) {
	_, rec, svc := newEmailFixture()

	sent, err := svc.Send(context.Background(), models.SendEmailRequest{
		UIDs:    []string{"alice", "ghost", "bob", "bob-dup", "phone-only"},
		Subject: "Weekly plan",
		HTML:    "<p>Hi</p>",
		Attachments: []models.Attachment{
			{Content: "aGVsbG8=", Filename: "plan.txt", Type: "text/plain"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, msgs[0].To)
	assert.Equal(t, "noreply@luminher.app", msgs[0].From)
	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, "plan.txt", msgs[0].Attachments[0].Filename)
}

func TestSendEmail_NoRecipients(t *testing.T) {
	_, rec, svc := newEmailFixture()

	_, err := svc.Send(context.Background(), models.SendEmailRequest{
		UIDs:    []string{"ghost", "phone-only"},
		Subject: "Hello",
		Text:    "hi",
	})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Empty(t, rec.Messages(), "nothing may be sent")
}

func TestSendEmail_Validation(t *testing.T) {
	_, rec, svc := newEmailFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SendEmailRequest
		msg  string
	}{
		{"no uids", models.SendEmailRequest{Subject: "s", Text: "t"}, "uids is required"},
		{"no subject", models.SendEmailRequest{UIDs: []string{"alice"}, Text: "t"}, "subject is required"},
		{"no body", models.SendEmailRequest{UIDs: []string{"alice"}, Subject: "s"}, "html or text is required"},
		{"bad sender", models.SendEmailRequest{UIDs: []string{"alice"}, Subject: "s", Text: "t", From: "nope"}, "from must be a valid email address"},
		{"bad attachment", models.SendEmailRequest{
			UIDs: []string{"alice"}, Subject: "s", Text: "t",
			Attachments: []models.Attachment{{Content: "not base64!", Filename: "a.txt"}},
		}, "content must be base64 encoded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.req)
			require.ErrorIs(t, err, core.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.Empty(t, rec.Messages())
}

func TestSendEmail_MailerFailure(t *testing.T) {
	_, rec, svc := newEmailFixture()
	rec.Err = &mailer.SendError{StatusCode: 429, Body: "rate limited"}

	_, err := svc.Send(context.Background(), models.SendEmailRequest{
		UIDs: []string{"alice"}, Subject: "s", Text: "t", From: "team@luminher.app",
	})
	var up *core.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, 429, up.Status)
	assert.Equal(t, "mail", up.Service)
}

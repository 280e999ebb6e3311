package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/models"
	"github.com/luminher/luminher-api/pkg/mailer"
)

// emailService implements the EmailService interface.
type emailService struct {
	identity    IdentityProvider
	mailer      mailer.Mailer
	defaultFrom string
	logger      *zap.Logger
}

// NewEmailService creates a new EmailService. defaultFrom is used when a request does not
// override the sender.
func NewEmailService(identity IdentityProvider, m mailer.Mailer, defaultFrom string, logger *zap.Logger) EmailService {
	return &emailService{identity: identity, mailer: m, defaultFrom: defaultFrom, logger: logger}
}

// Send resolves every UID to an address, silently dropping the ones that cannot be
// resolved, and sends one message to the rest. It returns the number of recipients.
func (s *emailService) Send(ctx context.Context, req models.SendEmailRequest) (int, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}

	recipients := s.resolveRecipients(ctx, req.UIDs)
	if len(recipients) == 0 {
		return 0, invalidArgument("no valid recipient emails")
	}

	from := req.From
	if from == "" {
		from = s.defaultFrom
	}
	msg := &mailer.Message{
		From:    from,
		To:      recipients,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
	}
	for _, a := range req.Attachments {
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Content:  a.Content,
			Filename: a.Filename,
			Type:     a.Type,
		})
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		status := 0
		var sendErr *mailer.SendError
		if errors.As(err, &sendErr) {
			status = sendErr.StatusCode
		}
		return 0, Upstream("mail", status, err)
	}
	s.logger.Info("Email dispatched", zap.Int("recipients", len(recipients)), zap.Int("requested", len(req.UIDs)))
	return len(recipients), nil
}

func (s *emailService) resolveRecipients(ctx context.Context, uids []string) []string {
	seen := make(map[string]struct{}, len(uids))
	recipients := make([]string, 0, len(uids))
	for _, uid := range uids {
		record, err := s.identity.GetUser(ctx, uid)
		if err != nil {
			s.logger.Debug("Dropping unresolvable recipient", zap.String("uid", uid), zap.Error(err))
			continue
		}
		email := strings.TrimSpace(record.Email)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		recipients = append(recipients, email)
	}
	return recipients
}

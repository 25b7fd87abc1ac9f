package smtp

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

type SMTPService struct {
	cfg       *config.MailboxConfig
	log       logger.Logger
	events    interfaces.EventPublisher
	newSender SenderFactory
	now       func() time.Time
}

type Option func(*SMTPService)

func WithSenderFactory(factory SenderFactory) Option {
	return func(s *SMTPService) {
		s.newSender = factory
	}
}

func NewSMTPService(cfg *config.MailboxConfig, log logger.Logger, events interfaces.EventPublisher, opts ...Option) *SMTPService {
	s := &SMTPService{
		cfg:       cfg,
		log:       log,
		events:    events,
		newSender: NewServerSender,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendEmail delivers a single plain-text message from the configured account.
func (s *SMTPService) SendEmail(ctx context.Context, request dto.SendEmailRequest) (*dto.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.SendEmail")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("to", request.To)
	span.LogKV("subject", request.Subject)

	to, err := s.validate(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	fromName, fromAddress := s.fromAddress()
	if fromAddress == "" {
		err = mailerrors.Validation("smtp.send", "sender address is not configured")
		tracing.TraceErr(span, err)
		return nil, err
	}
	messageID := utils.GenerateMessageID(utils.ExtractDomainFromEmail(fromAddress))
	sentAt := s.now()

	builder := enmime.Builder().
		From(fromName, fromAddress).
		To("", to).
		Subject(request.Subject).
		Date(sentAt).
		Header("Message-Id", messageID).
		Text([]byte(request.EmailBody))

	if err = builder.Send(s.newSender(ctx, s.cfg)); err != nil {
		if mailerrors.KindOf(err) == nil {
			err = mailerrors.Transport("smtp.send", errors.Wrap(err, "failed to send email"))
		}
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("Email %s sent to %s", messageID, to)
	s.publishEmailSent(ctx, dto.EmailSent{
		To:        to,
		Subject:   request.Subject,
		MessageID: messageID,
		SentAt:    sentAt.UTC(),
	})

	return &dto.SendResult{
		Success: true,
		Message: fmt.Sprintf("Email sent to %s with subject %q", request.To, request.Subject),
	}, nil
}

// validate checks the request and returns the cleaned recipient address
func (s *SMTPService) validate(request dto.SendEmailRequest) (string, error) {
	if strings.TrimSpace(request.To) == "" {
		return "", mailerrors.Validation("smtp.send", "recipient is required")
	}

	validation := mailvalidate.ValidateEmailSyntax(strings.TrimSpace(request.To))
	if !validation.IsValid {
		return "", mailerrors.Validation("smtp.send", "recipient %q is not a valid email address", request.To)
	}

	if strings.TrimSpace(request.Subject) == "" {
		return "", mailerrors.Validation("smtp.send", "subject is required")
	}

	if strings.TrimSpace(request.EmailBody) == "" {
		return "", mailerrors.Validation("smtp.send", "email body is required")
	}

	return validation.CleanEmail, nil
}

func (s *SMTPService) fromAddress() (string, string) {
	from := s.cfg.FromAddress()
	if parsed, err := mail.ParseAddress(from); err == nil {
		return parsed.Name, parsed.Address
	}
	return "", from
}

func (s *SMTPService) publishEmailSent(ctx context.Context, event dto.EmailSent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEmailSent(ctx, event); err != nil {
		s.log.Warnf("Failed to publish EmailSent event for %s: %v", event.MessageID, err)
	}
}

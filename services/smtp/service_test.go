package smtp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
)

type capturingSender struct {
	reversePath string
	recipients  []string
	msg         []byte
	err         error
}

func (c *capturingSender) Send(reversePath string, recipients []string, msg []byte) error {
	c.reversePath = reversePath
	c.recipients = recipients
	c.msg = msg
	return c.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []dto.EmailSent
	err  error
}

func (r *recordingPublisher) PublishEmailSent(_ context.Context, event dto.EmailSent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, event)
	return r.err
}

func (r *recordingPublisher) PublishCommandCompleted(context.Context, dto.CommandCompleted) error {
	return nil
}

func (r *recordingPublisher) Close() error {
	return nil
}

func newTestService(sender *capturingSender, publisher *recordingPublisher) *SMTPService {
	cfg := &config.MailboxConfig{
		Username: "me@example.com",
		SmtpHost: "smtp.example.com",
		SmtpPort: 465,
		SmtpTLS:  true,
	}
	return NewSMTPService(cfg, logger.NewTestLogger(), publisher,
		WithSenderFactory(func(context.Context, *config.MailboxConfig) enmime.Sender {
			return sender
		}),
	)
}

func TestSendEmail_Success(t *testing.T) {
	sender := &capturingSender{}
	publisher := &recordingPublisher{}
	svc := newTestService(sender, publisher)

	result, err := svc.SendEmail(context.Background(), dto.SendEmailRequest{To: "a@b.com", Subject: "S", EmailBody: "B"})
	require.NoError(t, err)
	assert.Equal(t, &dto.SendResult{Success: true, Message: `Email sent to a@b.com with subject "S"`}, result)

	assert.Equal(t, "me@example.com", sender.reversePath)
	assert.Equal(t, []string{"a@b.com"}, sender.recipients)

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(sender.msg))
	require.NoError(t, err)
	assert.Equal(t, "S", envelope.GetHeader("Subject"))
	assert.Contains(t, envelope.GetHeader("From"), "me@example.com")
	assert.Contains(t, envelope.GetHeader("To"), "a@b.com")
	assert.NotEmpty(t, envelope.GetHeader("Date"))
	messageID := envelope.GetHeader("Message-Id")
	assert.Contains(t, messageID, "@example.com>")
	assert.Equal(t, "B", strings.TrimSpace(envelope.Text))

	require.Len(t, publisher.sent, 1)
	assert.Equal(t, "a@b.com", publisher.sent[0].To)
	assert.Equal(t, "S", publisher.sent[0].Subject)
	assert.Equal(t, messageID, publisher.sent[0].MessageID)
}

func TestSendEmail_UsesConfiguredFrom(t *testing.T) {
	sender := &capturingSender{}
	svc := newTestService(sender, &recordingPublisher{})
	svc.cfg.SmtpFrom = "Mail Agent <agent@example.org>"

	_, err := svc.SendEmail(context.Background(), dto.SendEmailRequest{To: "a@b.com", Subject: "S", EmailBody: "B"})
	require.NoError(t, err)
	assert.Equal(t, "agent@example.org", sender.reversePath)
}

func TestSendEmail_ValidationErrors(t *testing.T) {
	cases := map[string]dto.SendEmailRequest{
		"missing recipient": {Subject: "S", EmailBody: "B"},
		"invalid recipient": {To: "not-an-address", Subject: "S", EmailBody: "B"},
		"missing subject":   {To: "a@b.com", EmailBody: "B"},
		"missing body":      {To: "a@b.com", Subject: "S", EmailBody: "  "},
	}

	for name, request := range cases {
		t.Run(name, func(t *testing.T) {
			sender := &capturingSender{}
			svc := newTestService(sender, &recordingPublisher{})

			result, err := svc.SendEmail(context.Background(), request)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, mailerrors.ErrValidation)
			assert.Nil(t, sender.msg)
		})
	}
}

func TestSendEmail_TransportErrorIsReturned(t *testing.T) {
	sender := &capturingSender{err: mailerrors.Transport("smtp.rcpt", errors.New("550 mailbox unavailable"))}
	publisher := &recordingPublisher{}
	svc := newTestService(sender, publisher)

	result, err := svc.SendEmail(context.Background(), dto.SendEmailRequest{To: "a@b.com", Subject: "S", EmailBody: "B"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, mailerrors.ErrTransport)
	assert.Empty(t, publisher.sent)
}

func TestSendEmail_ConnectionErrorIsReturned(t *testing.T) {
	sender := &capturingSender{err: mailerrors.Connection("smtp.auth", errors.New("535 bad credentials"))}
	svc := newTestService(sender, &recordingPublisher{})

	_, err := svc.SendEmail(context.Background(), dto.SendEmailRequest{To: "a@b.com", Subject: "S", EmailBody: "B"})
	assert.ErrorIs(t, err, mailerrors.ErrConnection)
}

func TestSendEmail_PublishFailureIsIgnored(t *testing.T) {
	svc := newTestService(&capturingSender{}, &recordingPublisher{err: errors.New("broker down")})

	result, err := svc.SendEmail(context.Background(), dto.SendEmailRequest{To: "a@b.com", Subject: "S", EmailBody: "B"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestServerSender_RequiresHost(t *testing.T) {
	sender := NewServerSender(context.Background(), &config.MailboxConfig{})
	err := sender.Send("me@example.com", []string{"a@b.com"}, []byte("x"))
	assert.ErrorIs(t, err, mailerrors.ErrConnection)
}

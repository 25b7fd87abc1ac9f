package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailagent/config"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/tracing"
)

// SenderFactory returns the enmime.Sender that delivers one message.
type SenderFactory func(ctx context.Context, cfg *config.MailboxConfig) enmime.Sender

// serverSender delivers over implicit TLS, or plain SMTP upgraded with STARTTLS
// when the server offers it.
type serverSender struct {
	ctx context.Context
	cfg *config.MailboxConfig
}

func NewServerSender(ctx context.Context, cfg *config.MailboxConfig) enmime.Sender {
	return &serverSender{ctx: ctx, cfg: cfg}
}

func (s *serverSender) Send(reversePath string, recipients []string, msg []byte) error {
	span, _ := opentracing.StartSpanFromContext(s.ctx, "SMTPService.sendToServer")
	defer span.Finish()
	span.LogKV("smtp_server", s.cfg.SmtpHost)
	span.LogKV("smtp_port", s.cfg.SmtpPort)
	span.LogKV("smtp_tls", s.cfg.SmtpTLS)
	span.LogKV("from_address", reversePath)

	err := s.deliver(reversePath, recipients, msg)
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (s *serverSender) deliver(reversePath string, recipients []string, msg []byte) error {
	if s.cfg.SmtpHost == "" {
		return mailerrors.Connection("smtp.dial", fmt.Errorf("SMTP host is not configured"))
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SmtpHost, s.cfg.SmtpPort)
	deadline := time.Now().Add(s.cfg.SmtpTimeout)
	if ctxDeadline, ok := s.ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	dialer := &net.Dialer{Deadline: deadline}
	tlsConfig := &tls.Config{ServerName: s.cfg.SmtpHost}

	var conn net.Conn
	var err error
	if s.cfg.SmtpTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.DialContext(s.ctx, "tcp", addr)
	}
	if err != nil {
		return mailerrors.Connection("smtp.dial", fmt.Errorf("failed to connect to SMTP server: %w", err))
	}
	defer conn.Close()

	if err = conn.SetDeadline(deadline); err != nil {
		return mailerrors.Connection("smtp.dial", fmt.Errorf("failed to set deadline: %w", err))
	}

	client, err := smtp.NewClient(conn, s.cfg.SmtpHost)
	if err != nil {
		return mailerrors.Connection("smtp.hello", fmt.Errorf("failed to create SMTP client: %w", err))
	}
	defer client.Close()

	if !s.cfg.SmtpTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(tlsConfig); err != nil {
				return mailerrors.Connection("smtp.starttls", fmt.Errorf("failed to start TLS: %w", err))
			}
		}
	}

	if ok, _ := client.Extension("AUTH"); ok && s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SmtpHost)
		if err = client.Auth(auth); err != nil {
			return mailerrors.Connection("smtp.auth", fmt.Errorf("SMTP authentication failed: %w", err))
		}
	}

	if err = client.Mail(reversePath); err != nil {
		return mailerrors.Transport("smtp.mail", fmt.Errorf("SMTP MAIL command failed: %w", err))
	}

	for _, recipient := range recipients {
		if err = client.Rcpt(recipient); err != nil {
			return mailerrors.Transport("smtp.rcpt", fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err))
		}
	}

	dataWriter, err := client.Data()
	if err != nil {
		return mailerrors.Transport("smtp.data", fmt.Errorf("SMTP DATA command failed: %w", err))
	}

	if _, err = dataWriter.Write(msg); err != nil {
		return mailerrors.Transport("smtp.data", fmt.Errorf("failed to write email data: %w", err))
	}

	if err = dataWriter.Close(); err != nil {
		return mailerrors.Transport("smtp.data", fmt.Errorf("failed to close data writer: %w", err))
	}

	// The message is accepted once DATA closes; a failed QUIT does not change that
	_ = client.Quit()
	return nil
}

package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailagent/config"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/tracing"
)

const logoutTimeout = 5 * time.Second

// MailboxClient is the subset of *client.Client used to read today's mail.
type MailboxClient interface {
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// Dialer opens an authenticated mailbox session.
type Dialer func(ctx context.Context, cfg *config.MailboxConfig) (MailboxClient, error)

// DialMailbox connects and logs in to the configured IMAP server
func DialMailbox(ctx context.Context, cfg *config.MailboxConfig) (MailboxClient, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.DialMailbox")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", cfg.ImapHost)
	span.SetTag("port", cfg.ImapPort)
	span.SetTag("tls", cfg.ImapTLS)

	if cfg.ImapHost == "" {
		err := mailerrors.Connection("imap.dial", fmt.Errorf("IMAP host is not configured"))
		tracing.TraceErr(span, err)
		return nil, err
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.ImapHost, cfg.ImapPort)

	dialer := &net.Dialer{
		Timeout:   cfg.ImapTimeout,
		KeepAlive: 30 * time.Second,
	}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	var c *client.Client
	var err error

	if cfg.ImapTLS {
		tlsConfig := &tls.Config{
			ServerName:         cfg.ImapHost,
			InsecureSkipVerify: cfg.ImapInsecureSkipVerify,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		err = mailerrors.Connection("imap.dial", fmt.Errorf("failed to connect to %s: %w", serverAddr, err))
		tracing.TraceErr(span, err)
		return nil, err
	}

	// Applies to every command on this session, login included
	c.Timeout = cfg.ImapTimeout

	loginSpan := opentracing.StartSpan(
		"IMAPService.login",
		opentracing.ChildOf(span.Context()),
	)
	loginSpan.SetTag("username", cfg.Username)

	if err = c.Login(cfg.Username, cfg.Password); err != nil {
		c.Logout()

		tracing.TraceErr(loginSpan, err)
		loginSpan.Finish()

		err = mailerrors.Connection("imap.login", fmt.Errorf("failed to login as %s: %w", cfg.Username, err))
		tracing.TraceErr(span, err)
		return nil, err
	}

	loginSpan.SetTag("success", true)
	loginSpan.Finish()

	return c, nil
}

// disconnect logs out, giving up after logoutTimeout
func (s *IMAPService) disconnect(c MailboxClient) {
	if c == nil {
		return
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Warnf("IMAP logout failed: %v", err)
		}
	case <-time.After(logoutTimeout):
		s.log.Warnf("IMAP logout timed out after %v", logoutTimeout)
	}
}

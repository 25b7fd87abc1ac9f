package imap

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailagent/config"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
)

// startMemoryServer serves the go-imap in-memory backend on a loopback port.
// The backend ships user "username" / "password" with one old INBOX message.
func startMemoryServer(t *testing.T) (*memory.Backend, *config.MailboxConfig) {
	t.Helper()

	be := memory.New()
	srv := server.New(be)
	srv.AllowInsecureAuth = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(listener)
	t.Cleanup(func() { srv.Close() })

	cfg := &config.MailboxConfig{
		Username:    "username",
		Password:    "password",
		ImapHost:    "127.0.0.1",
		ImapPort:    listener.Addr().(*net.TCPAddr).Port,
		ImapTLS:     false,
		ImapTimeout: 5 * time.Second,
		ImapFolder:  "INBOX",
	}
	return be, cfg
}

func inbox(t *testing.T, be *memory.Backend) *memory.Mailbox {
	t.Helper()

	user, err := be.Login(nil, "username", "password")
	require.NoError(t, err)
	mbox, err := user.GetMailbox("INBOX")
	require.NoError(t, err)
	return mbox.(*memory.Mailbox)
}

func TestDialMailbox_LoginFailureIsConnectionError(t *testing.T) {
	_, cfg := startMemoryServer(t)
	cfg.Password = "wrong"

	_, err := DialMailbox(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, mailerrors.ErrConnection)
	assert.Contains(t, err.Error(), "imap.login")
}

func TestDialMailbox_UnreachableServerIsConnectionError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	_, err = DialMailbox(context.Background(), &config.MailboxConfig{
		ImapHost:    "127.0.0.1",
		ImapPort:    port,
		ImapTimeout: time.Second,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailerrors.ErrConnection)
	assert.Contains(t, err.Error(), "imap.dial")
}

func TestFetchTodayEmails_AgainstIMAPServer(t *testing.T) {
	be, cfg := startMemoryServer(t)
	mbox := inbox(t, be)

	now := time.Now()
	raw := "From: Sam <sam@example.com>\r\n" +
		"To: username@example.com\r\n" +
		"Subject: Meeting today\r\n" +
		"Date: " + now.Format(time.RFC1123Z) + "\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"See you at ten.\r\n"
	require.NoError(t, mbox.CreateMessage(nil, now, bytes.NewBufferString(raw)))

	// The in-memory backend treats SINCE as strictly after the given day,
	// so the clock sits two days back to keep today's message in range.
	svc := NewIMAPService(cfg, logger.NewTestLogger(),
		WithClock(func() time.Time { return now.Add(-48 * time.Hour) }),
	)

	records, err := svc.FetchTodayEmails(context.Background())
	require.NoError(t, err)

	// the backend's seeded 2016 message is dropped by its Date header
	require.Len(t, records, 1)
	assert.Equal(t, "Sam <sam@example.com>", records[0].From)
	assert.Equal(t, "Meeting today", records[0].Subject)
	assert.Contains(t, records[0].Body, "See you at ten.")
	assert.NotEmpty(t, records[0].Date)

	created := mbox.Messages[len(mbox.Messages)-1]
	assert.NotContains(t, created.Flags, imap.SeenFlag)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig()
	require.NoError(t, err)

	assert.Equal(t, "12222", cfg.AppConfig.APIPort)
	assert.Equal(t, 993, cfg.MailboxConfig.ImapPort)
	assert.Equal(t, 465, cfg.MailboxConfig.SmtpPort)
	assert.Equal(t, "INBOX", cfg.MailboxConfig.ImapFolder)
	assert.Equal(t, 10*time.Second, cfg.MailboxConfig.ImapTimeout)
	assert.Equal(t, 30*time.Second, cfg.MailboxConfig.SmtpTimeout)
	assert.Equal(t, 60*time.Second, cfg.InferenceConfig.Timeout)
	assert.Equal(t, "qwen2.5:1.5b", cfg.InferenceConfig.Model)
	assert.Equal(t, 0, cfg.SearchConfig.SummaryMaxLength)
	assert.Equal(t, 5, cfg.AgentConfig.MaxToolIterations)
	assert.False(t, cfg.MailagentDatabaseConfig.Enabled())
	assert.Equal(t, "what's on my email today?", cfg.CronConfig.CronDailyDigestQuery)
}

func TestParseConfig_FromEnvironment(t *testing.T) {
	t.Setenv("EMAIL_USER", "me@example.com")
	t.Setenv("IMAP_HOST", "imap.example.com")
	t.Setenv("IMAP_TIMEOUT", "3s")
	t.Setenv("SMTP_TIMEOUT", "4s")
	t.Setenv("INFERENCE_TIMEOUT", "5s")
	t.Setenv("SEARCH_SUMMARY_MAX_LENGTH", "100")
	t.Setenv("MAILAGENT_POSTGRES_HOST", "db")

	cfg, err := ParseConfig()
	require.NoError(t, err)

	assert.Equal(t, "imap.example.com", cfg.MailboxConfig.ImapHost)
	assert.Equal(t, "me@example.com", cfg.MailboxConfig.FromAddress())
	assert.Equal(t, 3*time.Second, cfg.MailboxConfig.ImapTimeout)
	assert.Equal(t, 4*time.Second, cfg.MailboxConfig.SmtpTimeout)
	assert.Equal(t, 5*time.Second, cfg.InferenceConfig.Timeout)
	assert.Equal(t, 100, cfg.SearchConfig.SummaryMaxLength)
	assert.True(t, cfg.MailagentDatabaseConfig.Enabled())
}

func TestMailboxConfig_FromAddressPrefersSmtpFrom(t *testing.T) {
	cfg := &MailboxConfig{Username: "login@example.com", SmtpFrom: "Me <me@example.com>"}
	assert.Equal(t, "Me <me@example.com>", cfg.FromAddress())
}

package config

import (
	"time"
)

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"12222"`
	APIKey      string `env:"API_KEY"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

// MailboxConfig holds the single account's credentials and both mail endpoints.
type MailboxConfig struct {
	Username string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`

	ImapHost               string        `env:"IMAP_HOST"`
	ImapPort               int           `env:"IMAP_PORT" envDefault:"993"`
	ImapTLS                bool          `env:"IMAP_TLS" envDefault:"true"`
	ImapInsecureSkipVerify bool          `env:"IMAP_INSECURE_SKIP_VERIFY" envDefault:"false"`
	ImapTimeout            time.Duration `env:"IMAP_TIMEOUT" envDefault:"10s"`
	ImapFolder             string        `env:"IMAP_FOLDER" envDefault:"INBOX"`

	SmtpHost    string        `env:"SMTP_HOST"`
	SmtpPort    int           `env:"SMTP_PORT" envDefault:"465"`
	SmtpTLS     bool          `env:"SMTP_TLS" envDefault:"true"`
	SmtpTimeout time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	SmtpFrom    string        `env:"SMTP_FROM"`
}

func (c *MailboxConfig) FromAddress() string {
	if c.SmtpFrom != "" {
		return c.SmtpFrom
	}
	return c.Username
}

type InferenceConfig struct {
	Model       string        `env:"MODEL_NAME_AT_ENDPOINT" envDefault:"qwen2.5:1.5b"`
	BaseURL     string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:11434/v1"`
	ApiKey      string        `env:"INFERENCE_API_KEY" envDefault:"ollama"`
	Timeout     time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"60s"`
	Temperature float64       `env:"INFERENCE_TEMPERATURE" envDefault:"0.2"`
}

type SearchConfig struct {
	// 0 keeps the whole body as the summary
	SummaryMaxLength int `env:"SEARCH_SUMMARY_MAX_LENGTH" envDefault:"0"`
}

type AgentConfig struct {
	Instructions      string `env:"AGENT_INSTRUCTIONS"`
	MaxToolIterations int    `env:"AGENT_MAX_TOOL_ITERATIONS" envDefault:"5"`
	HistoryLimit      int    `env:"AGENT_HISTORY_LIMIT" envDefault:"20"`
}

type MailagentDatabaseConfig struct {
	Host            string `env:"MAILAGENT_POSTGRES_HOST"`
	Port            string `env:"MAILAGENT_POSTGRES_PORT" envDefault:"5432"`
	User            string `env:"MAILAGENT_POSTGRES_USER"`
	DBName          string `env:"MAILAGENT_POSTGRES_DB_NAME"`
	Password        string `env:"MAILAGENT_POSTGRES_PASSWORD"`
	MaxConn         int    `env:"MAILAGENT_POSTGRES_DB_MAX_CONN" envDefault:"25"`
	MaxIdleConn     int    `env:"MAILAGENT_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"MAILAGENT_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"MAILAGENT_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILAGENT_POSTGRES_SSL_MODE" envDefault:"require"`
}

// Enabled reports whether conversation memory should be kept in postgres.
func (c *MailagentDatabaseConfig) Enabled() bool {
	return c != nil && c.Host != ""
}

package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	cron_config "github.com/customeros/mailagent/internal/cron/config"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
)

type Config struct {
	AppConfig               *AppConfig
	Logger                  *logger.Config
	Tracing                 *tracing.JaegerConfig
	MailboxConfig           *MailboxConfig
	InferenceConfig         *InferenceConfig
	SearchConfig            *SearchConfig
	AgentConfig             *AgentConfig
	MailagentDatabaseConfig *MailagentDatabaseConfig
	CronConfig              *cron_config.Config
}

func newConfig() *Config {
	return &Config{
		AppConfig:               &AppConfig{},
		Logger:                  &logger.Config{},
		Tracing:                 &tracing.JaegerConfig{},
		MailboxConfig:           &MailboxConfig{},
		InferenceConfig:         &InferenceConfig{},
		SearchConfig:            &SearchConfig{},
		AgentConfig:             &AgentConfig{},
		MailagentDatabaseConfig: &MailagentDatabaseConfig{},
		CronConfig:              &cron_config.Config{},
	}
}

// InitConfig reads the process environment once, after loading an optional .env file.
func InitConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	return ParseConfig()
}

func ParseConfig() (*Config, error) {
	config := newConfig()
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	return config, nil
}

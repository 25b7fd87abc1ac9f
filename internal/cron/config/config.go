package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Daily digest, disabled unless a schedule is given (e.g. "0 0 8 * * *")
	CronScheduleDailyDigest string `env:"CRON_SCHEDULE_DAILY_DIGEST"`
	CronDailyDigestQuery    string `env:"CRON_DAILY_DIGEST_QUERY" envDefault:"what's on my email today?"`
}

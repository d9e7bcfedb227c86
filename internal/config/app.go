package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig is everything beyond the database: the lock backend, the
// notification broker and the scheduler cadence. All keys are read
// from the environment with the RANDEVU_ prefix.
type AppConfig struct {
	TimeZone string `envconfig:"TIMEZONE" default:"Europe/Istanbul"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AMQPURL      string `envconfig:"AMQP_URL" default:""`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"randevu.notifications"`

	ReminderCron string `envconfig:"REMINDER_CRON" default:"0 * * * *"`
	SummaryCron  string `envconfig:"SUMMARY_CRON" default:"0 7 * * *"`
	NoShowCron   string `envconfig:"NOSHOW_CRON" default:"0 20 * * *"`
	PurgeCron    string `envconfig:"PURGE_CRON" default:"0 2 * * 0"`

	NoShowGraceHours  int `envconfig:"NOSHOW_GRACE_HOURS" default:"1"`
	RetainTerminalDay int `envconfig:"RETAIN_TERMINAL_DAYS" default:"365"`
}

func LoadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("RANDEVU", &cfg); err != nil {
		return nil, fmt.Errorf("process app config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured time zone.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

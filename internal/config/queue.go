package config

import (
	"errors"
	"fmt"
	"time"
)

type QueueConfig struct {
	QueueUser           string        `mapstructure:"queue_user"`
	QueuePassword       string        `mapstructure:"queue_password"`
	Url                 string        `mapstructure:"url"`
	Exchange            string        `mapstructure:"exchange"`
	PublishTimeout      time.Duration `mapstructure:"publish_timeout"`
	MsgMaxRetryAttempts uint          `mapstructure:"msg_max_retry_attempts"`
	RetryInterval       time.Duration `mapstructure:"retry_interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.QueueUser == "" {
		return errors.New("missing queue user")
	}
	if cfg.QueuePassword == "" {
		return errors.New("missing queue password")
	}
	if cfg.Url == "" {
		return errors.New("missing queue url")
	}
	if cfg.Exchange == "" {
		return errors.New("missing queue exchange")
	}
	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("publish_timeout must be positive, got %s", cfg.PublishTimeout)
	}
	if cfg.MsgMaxRetryAttempts == 0 {
		return errors.New("msg_max_retry_attempts must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("retry_interval must be positive")
	}
	return nil
}

// AmqpURL builds the broker URL with credentials.
func (cfg *QueueConfig) AmqpURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)
}

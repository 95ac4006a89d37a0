package config

import (
	"fmt"
)

type QueueConfig struct {
	Url            string `mapstructure:"url"`
	QueueUser      string `mapstructure:"queue-user"`
	QueuePassword  string `mapstructure:"queue-password"`
	EventQueueName string `mapstructure:"event-queue-name"`
	// PublishTimeout bounds a single publish attempt, in seconds.
	PublishTimeout int `mapstructure:"publish-timeout"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Url == "" {
		return fmt.Errorf("missing queue url")
	}

	if cfg.QueueUser == "" {
		return fmt.Errorf("missing queue user")
	}

	if cfg.QueuePassword == "" {
		return fmt.Errorf("missing queue password")
	}

	if cfg.EventQueueName == "" {
		return fmt.Errorf("missing event queue name")
	}

	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("publish timeout must be a positive integer")
	}

	return nil
}

package notificationrelay

import (
	"fmt"
	"time"

	"chat-intake/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	AdminPhone   string
	PollTimeout  time.Duration
	// RetryDelay is the pause after the queue itself errors.
	RetryDelay time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		EmailEnabled: true,
		PollTimeout:  5 * time.Second,
		RetryDelay:   2 * time.Second,
	}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.EmailEnabled = cfg.Notifications.Email.Enabled
	c.SMSEnabled = cfg.Notifications.SMS.Enabled
	c.AdminPhone = cfg.Notifications.AdminPhone
	if cfg.Notifications.PollTimeout > 0 {
		c.PollTimeout = config.GetDuration(cfg.Notifications.PollTimeout)
	}
	return c
}

func (c *Config) Validate() error {
	if c.PollTimeout < time.Second {
		return fmt.Errorf("poll timeout must be at least one second")
	}
	if c.SMSEnabled && c.AdminPhone == "" {
		return fmt.Errorf("admin_phone is required when sms is enabled")
	}
	if !c.EmailEnabled && !c.SMSEnabled {
		return fmt.Errorf("no delivery channel enabled")
	}
	return nil
}

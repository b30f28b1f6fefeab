package dispatchrecords

import "chat-intake/internal/common/config"

type Config struct {
	LeadSource string
	AdminEmail string
	AdminName  string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		LeadSource: cfg.Chat.LeadSource,
		AdminEmail: cfg.Notifications.AdminEmail,
		AdminName:  cfg.Notifications.AdminName,
	}
}

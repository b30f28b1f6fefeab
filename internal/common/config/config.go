// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	GenAI         GenAIConfig        `mapstructure:"genai"`
	Chat          ChatConfig         `mapstructure:"chat"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig drives the chat HTTP endpoint.
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// GenAIConfig points at an OpenAI compatible chat completions endpoint.
type GenAIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// ChatConfig holds the per turn limits and the fixed record tags.
type ChatConfig struct {
	MaxHistory   int    `mapstructure:"max_history"`
	LeadSource   string `mapstructure:"lead_source"`
	FallbackDays int    `mapstructure:"fallback_days"`
	// PersonaFile replaces the built in assistant persona when set.
	PersonaFile string `mapstructure:"persona_file"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig is optional. An empty Address disables the notification queue.
type RedisConfig struct {
	Address           string `mapstructure:"address"`
	Password          string `mapstructure:"password"`
	DB                int    `mapstructure:"db"`
	NotificationQueue string `mapstructure:"notification_queue"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// NotificationConfig covers the admin recipient written into email_queue and
// the delivery settings used by the relay.
type NotificationConfig struct {
	AdminEmail string `mapstructure:"admin_email"`
	AdminName  string `mapstructure:"admin_name"`
	AdminPhone string `mapstructure:"admin_phone"`
	Email      struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	PollTimeout int `mapstructure:"poll_timeout"` // milliseconds
	// RelayAddress serves health and metrics for the relay process.
	RelayAddress string `mapstructure:"relay_address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

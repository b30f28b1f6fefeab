// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultMaxTokens = 500
	DefaultHistory   = 20
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	candidates := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills secrets and deployment specific values from the
// conventional environment variable names when the yaml left them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.GenAI.APIKey, "ANTHROPIC_API_KEY", "GENAI_API_KEY")
	setIfEmpty(&cfg.GenAI.BaseURL, "GENAI_BASE_URL")
	setIfEmpty(&cfg.Notifications.AdminEmail, "ADMIN_EMAIL")
	setIfEmpty(&cfg.Notifications.AdminPhone, "ADMIN_PHONE")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
}

func setIfEmpty(target *string, envNames ...string) {
	if *target != "" {
		return
	}
	for _, name := range envNames {
		if val := os.Getenv(name); val != "" {
			*target = val
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "chat-intake"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}

	if cfg.GenAI.BaseURL == "" {
		cfg.GenAI.BaseURL = DefaultBaseURL
	}
	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = DefaultModel
	}
	if cfg.GenAI.MaxTokens == 0 {
		cfg.GenAI.MaxTokens = DefaultMaxTokens
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 60000
	}

	if cfg.Chat.MaxHistory == 0 {
		cfg.Chat.MaxHistory = DefaultHistory
	}
	if cfg.Chat.LeadSource == "" {
		cfg.Chat.LeadSource = "website_chatbot"
	}
	if cfg.Chat.FallbackDays == 0 {
		cfg.Chat.FallbackDays = 7
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.NotificationQueue == "" {
		cfg.Database.Redis.NotificationQueue = "notifications:pending"
	}

	if cfg.Notifications.AdminName == "" {
		cfg.Notifications.AdminName = "Admin"
	}
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}
	if cfg.Notifications.PollTimeout == 0 {
		cfg.Notifications.PollTimeout = 5000
	}
	if cfg.Notifications.RelayAddress == "" {
		cfg.Notifications.RelayAddress = ":9091"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Notifications.AdminEmail == "" {
		return fmt.Errorf("notifications.admin_email is required")
	}
	if cfg.Chat.MaxHistory < 1 {
		return fmt.Errorf("chat.max_history must be positive")
	}
	if cfg.GenAI.MaxTokens < 1 {
		return fmt.Errorf("genai.max_tokens must be positive")
	}
	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required when email delivery is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const storeYAML = `
database:
  postgres:
    host: localhost
    database: site
    user: site_app
`

const minimalYAML = storeYAML + `
notifications:
  admin_email: owner@example.com
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, DefaultModel, cfg.GenAI.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.GenAI.MaxTokens)
	assert.Equal(t, DefaultHistory, cfg.Chat.MaxHistory)
	assert.Equal(t, "website_chatbot", cfg.Chat.LeadSource)
	assert.Equal(t, 7, cfg.Chat.FallbackDays)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "notifications:pending", cfg.Database.Redis.NotificationQueue)
	assert.False(t, cfg.Database.Redis.Enabled())
	assert.Equal(t, "Admin", cfg.Notifications.AdminName)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ADMIN_EMAIL", "owner@example.com")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := LoadFromFile(writeConfig(t, storeYAML))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.GenAI.APIKey)
	assert.Equal(t, "owner@example.com", cfg.Notifications.AdminEmail)
	assert.True(t, cfg.Database.Redis.Enabled())
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("CHAT_TEST_DB_HOST", "db.internal")

	cfg, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: ${CHAT_TEST_DB_HOST}
    database: site
    user: site_app
notifications:
  admin_email: owner@example.com
genai:
  model: custom-model
  max_tokens: 256
`))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "custom-model", cfg.GenAI.Model)
	assert.Equal(t, 256, cfg.GenAI.MaxTokens)
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			yaml:    "database:\n  postgres:\n    database: site\n    user: u\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "missing admin email",
			yaml:    storeYAML,
			wantErr: "notifications.admin_email is required",
		},
		{
			name: "email delivery without sender",
			yaml: storeYAML + `
notifications:
  admin_email: owner@example.com
  email:
    enabled: true
`,
			wantErr: "notifications.email.from_email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

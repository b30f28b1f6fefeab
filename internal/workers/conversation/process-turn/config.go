package processturn

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"chat-intake/internal/common/config"
)

//go:embed persona.txt
var defaultPersona string

type Config struct {
	// MaxHistory is the number of most recent forwardable turns sent to the model.
	MaxHistory int
	Persona    string
}

// LoadConfig reads the chat section. A configured persona file replaces the
// built in persona.
func LoadConfig(cfg *config.Config) (*Config, error) {
	c := &Config{
		MaxHistory: cfg.Chat.MaxHistory,
		Persona:    strings.TrimSpace(defaultPersona),
	}
	if c.MaxHistory < 1 {
		c.MaxHistory = config.DefaultHistory
	}

	if cfg.Chat.PersonaFile != "" {
		data, err := os.ReadFile(cfg.Chat.PersonaFile)
		if err != nil {
			return nil, fmt.Errorf("read persona file: %w", err)
		}
		c.Persona = strings.TrimSpace(string(data))
	}
	return c, nil
}

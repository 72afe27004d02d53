package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pauljones0/listing-watch-bot/internal/models"
	"github.com/pauljones0/listing-watch-bot/internal/storage"
	"github.com/pauljones0/listing-watch-bot/internal/validator"
)

type Telegram struct {
	APIToken string `yaml:"api_token" validate:"required"`
	ChatID   string `yaml:"chat_id" validate:"required"`
}

type Config struct {
	Telegram Telegram       `yaml:"telegram"`
	Topics   []models.Topic `yaml:"topics" validate:"min=1,unique=Name,dive"`
}

// Load reads the YAML run configuration at path, applies the
// TELEGRAM_API_TOKEN and TELEGRAM_CHAT_ID overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if v := os.Getenv("TELEGRAM_API_TOKEN"); v != "" {
		cfg.Telegram.APIToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}

	if err := validator.New().ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	keys := make(map[string]string, len(cfg.Topics))
	for _, t := range cfg.Topics {
		key := storage.Key(t.Name)
		if other, ok := keys[key]; ok {
			return nil, fmt.Errorf("invalid config %s: topics %q and %q map to the same state key %q", path, other, t.Name, key)
		}
		keys[key] = t.Name
	}

	enabled := 0
	for _, t := range cfg.Topics {
		if !t.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		slog.Warn("All topics are disabled", "path", path)
	}
	return &cfg, nil
}

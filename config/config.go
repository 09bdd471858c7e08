// Package config loads the process configuration: identity and channel
// settings from the environment (.env), per-guild moderation settings from
// data/servers.json, and antispam rule thresholds from data/antispam.yaml.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"moderation-bot/model"
)

// Load loads the configuration from environment variables and config files.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, mod-log posting will be disabled")
	}

	watchChannelID := os.Getenv("WATCH_CHANNEL_ID")
	if watchChannelID == "" {
		log.Println("Warning: WATCH_CHANNEL_ID not set, the watch relay will be disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/moderation.db"
	}

	cfg := &model.Config{
		BotToken:         token,
		LogChannelID:     logChannelID,
		WatchChannelID:   watchChannelID,
		ArchiveURL:       os.Getenv("ARCHIVE_URL"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		DBPath:           dbPath,
		DeveloperUserIDs: splitEnvList(os.Getenv("DEVELOPER_USER_IDS")),
		ServerConfigs:    make(map[string]model.ServerConfig),
	}

	if err := loadServers(cfg); err != nil {
		return nil, err
	}

	antispam, err := loadAntiSpam()
	if err != nil {
		return nil, err
	}
	cfg.AntiSpam = antispam

	return cfg, nil
}

func loadServers(cfg *model.Config) error {
	data, err := os.ReadFile("data/servers.json")
	if err != nil {
		if os.IsNotExist(err) {
			log.Println("Warning: data/servers.json not found, no guilds are enabled")
			return nil
		}
		return fmt.Errorf("failed to read servers.json: %w", err)
	}

	var servers []model.ServerConfig
	if err := json.Unmarshal(data, &servers); err != nil {
		return fmt.Errorf("failed to parse servers.json: %w", err)
	}
	for _, sc := range servers {
		cfg.ServerConfigs[sc.GuildID] = sc
	}
	return nil
}

// loadAntiSpam reads data/antispam.yaml over the built-in defaults. A missing
// file means the defaults run as-is; a malformed file is an error.
func loadAntiSpam() (model.AntiSpamConfig, error) {
	v := viper.New()
	v.SetConfigName("antispam")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")

	for key, value := range antispamDefaults() {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return model.AntiSpamConfig{}, fmt.Errorf("failed to read antispam.yaml: %w", err)
		}
		log.Println("Info: data/antispam.yaml not found, using default thresholds")
	}

	var cfg model.AntiSpamConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return model.AntiSpamConfig{}, fmt.Errorf("failed to unmarshal antispam config: %w", err)
	}
	return cfg, nil
}

func antispamDefaults() map[string]any {
	return map[string]any{
		"enabled":             true,
		"cache_channels":      256,
		"cache_messages":      1000,
		"flush_delay_seconds": 10,

		"punishment.type":             model.InfractionMute,
		"punishment.duration_seconds": 600,

		"rules.attachments.interval": 10,
		"rules.attachments.max":      9,

		"rules.burst.interval": 10,
		"rules.burst.max":      7,

		"rules.burst_shared.interval": 10,
		"rules.burst_shared.max":      20,

		"rules.chars.interval": 5,
		"rules.chars.max":      3000,

		"rules.discord_emojis.interval": 10,
		"rules.discord_emojis.max":      20,

		"rules.duplicates.interval": 10,
		"rules.duplicates.max":      3,

		"rules.links.interval": 10,
		"rules.links.max":      10,

		"rules.mentions.interval": 10,
		"rules.mentions.max":      5,

		"rules.newlines.interval":        10,
		"rules.newlines.max":             100,
		"rules.newlines.max_consecutive": 10,

		"rules.role_mentions.interval": 10,
		"rules.role_mentions.max":      3,
	}
}

func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

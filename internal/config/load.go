package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Bot        BotConfig        `json:"bot" yaml:"bot"`
	Guild      GuildConfig      `json:"guild" yaml:"guild"`
	Moderation ModerationConfig `json:"moderation" yaml:"moderation"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Network    NetworkConfig    `json:"network" yaml:"network"`
	Database   DatabaseConfig   `json:"database" yaml:"database"`
}

type BotConfig struct {
	Token    string `json:"token" yaml:"token" env:"DISCORD_TOKEN"`
	ClientID string `json:"client_id" yaml:"client_id" env:"CLIENT_ID"`
}

// Category is a selectable destination for /channel create.
type Category struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

type GuildConfig struct {
	ID              string `json:"id" yaml:"id" env:"GUILD_ID"`
	LogChannelID    string `json:"log_channel_id" yaml:"log_channel_id" env:"LOG_CHANNEL_ID"`
	ModeratorRoleID string `json:"moderator_role_id" yaml:"moderator_role_id" env:"MODERATOR_ROLE_ID"`

	CreateCategories []Category `json:"create_categories" yaml:"create_categories"`
	// ArchiveCategories are tried in order.
	ArchiveCategories []string `json:"archive_categories" yaml:"archive_categories"`
}

type ModerationConfig struct {
	ArchiveCapacity       int `json:"archive_capacity" yaml:"archive_capacity"`
	ConfirmTimeoutSeconds int `json:"confirm_timeout_seconds" yaml:"confirm_timeout_seconds"`
}

type LoggingConfig struct {
	Level       string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Path        string `json:"path" yaml:"path"`
	Console     bool   `json:"console" yaml:"console"`
	MaxSizeMB   int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeHours int    `json:"max_age_hours" yaml:"max_age_hours"`
}

type NetworkConfig struct {
	APIBaseURL        string  `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeoutMs  int     `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
	HTTPPoolSize      int     `json:"http_pool_size" yaml:"http_pool_size"`
}

type DatabaseConfig struct {
	Path string `json:"path" yaml:"path" env:"DATABASE_PATH"`
}

var GlobalConfig *Config

// Load reads a JSON or YAML file, chosen by extension, on top of the
// defaults and then applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	GlobalConfig = cfg
	return cfg, nil
}

// ApplyEnv overrides cfg with any of the supported environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = DefaultConfig()
		_ = ApplyEnv(cfg)
		GlobalConfig = cfg
	}
	return cfg
}

// DefaultConfig matches the reference deployment.
func DefaultConfig() *Config {
	return &Config{
		Guild: GuildConfig{
			ID:              "907657508292792342",
			LogChannelID:    "1171567720345649202",
			ModeratorRoleID: "1020235190632714262",
			CreateCategories: []Category{
				{Name: "Party", ID: "907664456232890428"},
				{Name: "Non-Profit Organisation", ID: "907662122706686005"},
				{Name: "Business", ID: "1073650939367538688"},
			},
			ArchiveCategories: []string{
				"922102306755969034",
				"1078220892473147394",
				"1171564611615596585",
			},
		},
		Moderation: ModerationConfig{
			ArchiveCapacity:       50,
			ConfirmTimeoutSeconds: 180,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Path:        "logs/warden.log",
			Console:     true,
			MaxSizeMB:   64,
			MaxAgeHours: 24 * 7,
		},
		Network: NetworkConfig{
			APIBaseURL:        "https://discord.com/api/v10",
			RequestTimeoutMs:  5000,
			RequestsPerSecond: 40,
			Burst:             10,
			HTTPPoolSize:      4,
		},
		Database: DatabaseConfig{
			Path: "warden.db",
		},
	}
}

func (c *Config) Validate() error {
	var problems []string

	if c.Bot.Token == "" {
		problems = append(problems, "bot token is empty (set DISCORD_TOKEN)")
	}
	if c.Guild.ID == "" {
		problems = append(problems, "guild id is empty")
	}
	if len(c.Guild.ArchiveCategories) == 0 {
		problems = append(problems, "no archive categories")
	}
	for i, cat := range c.Guild.CreateCategories {
		if cat.ID == "" || cat.Name == "" {
			problems = append(problems, fmt.Sprintf("create category %d needs a name and id", i))
		}
	}
	if c.Moderation.ArchiveCapacity <= 0 {
		problems = append(problems, "archive capacity must be positive")
	}
	if c.Moderation.ConfirmTimeoutSeconds <= 0 {
		problems = append(problems, "confirm timeout must be positive")
	}
	if c.Network.RequestsPerSecond <= 0 {
		problems = append(problems, "requests per second must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.Moderation.ConfirmTimeoutSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	if c.Network.RequestTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Network.RequestTimeoutMs) * time.Millisecond
}

func Get() *Config {
	if GlobalConfig == nil {
		return DefaultConfig()
	}
	return GlobalConfig
}

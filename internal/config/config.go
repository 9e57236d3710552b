package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/garyjia/faction-bank/pkg/utils"
)

// Config holds all application configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Tickets  TicketsConfig  `mapstructure:"tickets"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// DiscordConfig holds bot credentials
type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	GuildID string `mapstructure:"guild_id"` // commands register here instantly; empty means global
}

// TicketsConfig holds the bank ticket workflow settings
type TicketsConfig struct {
	CategoryID          string        `mapstructure:"category_id"`
	CategoryName        string        `mapstructure:"category_name"`
	ApproverRoleIDs     []string      `mapstructure:"-"`
	ApproverUserIDs     []string      `mapstructure:"-"`
	LogChannelID        string        `mapstructure:"log_channel_id"`
	ChannelPrefix       string        `mapstructure:"channel_prefix"`
	PromptTimeout       time.Duration `mapstructure:"prompt_timeout"`
	MaxPendingPrompts   int           `mapstructure:"max_pending_prompts"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	NotifyRatePerSecond float64       `mapstructure:"notify_rate_per_second"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LarkConfig holds the optional Lark mirror settings
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads the optional YAML file at configPath, then the environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Discord.GuildID = utils.NormalizeID(cfg.Discord.GuildID)
	cfg.Tickets.CategoryID = utils.NormalizeID(cfg.Tickets.CategoryID)
	cfg.Tickets.LogChannelID = utils.NormalizeID(cfg.Tickets.LogChannelID)
	cfg.Tickets.ApproverRoleIDs = idList(v, "tickets.approver_role_ids")
	cfg.Tickets.ApproverUserIDs = idList(v, "tickets.approver_user_ids")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Tickets defaults
	v.SetDefault("tickets.category_name", "📥 bank-tickets")
	v.SetDefault("tickets.channel_prefix", "bank")
	v.SetDefault("tickets.prompt_timeout", 5*time.Minute)
	v.SetDefault("tickets.max_pending_prompts", 1000)
	v.SetDefault("tickets.sweep_interval", time.Minute)
	v.SetDefault("tickets.notify_rate_per_second", 5.0)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 10000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/faction-bank.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars keeps the variable names existing deployments already set
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("discord.token", "DISCORD_TOKEN")
	_ = v.BindEnv("discord.guild_id", "GUILD_ID")
	_ = v.BindEnv("tickets.category_id", "TICKETS_CATEGORY_ID")
	_ = v.BindEnv("tickets.category_name", "TICKETS_CATEGORY_NAME")
	_ = v.BindEnv("tickets.approver_role_ids", "APPROVER_ROLE_IDS")
	_ = v.BindEnv("tickets.approver_user_ids", "APPROVER_USER_IDS")
	_ = v.BindEnv("tickets.log_channel_id", "LOG_CHANNEL_ID")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("lark.chat_id", "LARK_CHAT_ID")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
}

// idList accepts either a comma-separated string or a YAML list
func idList(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		return utils.ParseIDList(raw)
	case []string:
		return utils.ParseIDList(strings.Join(raw, ","))
	case []interface{}:
		parts := make([]string, 0, len(raw))
		for _, item := range raw {
			parts = append(parts, fmt.Sprint(item))
		}
		return utils.ParseIDList(strings.Join(parts, ","))
	default:
		return utils.ParseIDList(fmt.Sprint(raw))
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required (set DISCORD_TOKEN)")
	}

	ids := map[string]string{
		"discord.guild_id":       c.Discord.GuildID,
		"tickets.category_id":    c.Tickets.CategoryID,
		"tickets.log_channel_id": c.Tickets.LogChannelID,
	}
	for key, id := range ids {
		if id == "" {
			continue
		}
		if err := utils.ValidateSnowflake(id); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	for _, id := range c.Tickets.ApproverRoleIDs {
		if err := utils.ValidateSnowflake(id); err != nil {
			return fmt.Errorf("tickets.approver_role_ids: %w", err)
		}
	}
	for _, id := range c.Tickets.ApproverUserIDs {
		if err := utils.ValidateSnowflake(id); err != nil {
			return fmt.Errorf("tickets.approver_user_ids: %w", err)
		}
	}

	if strings.TrimSpace(c.Tickets.CategoryName) == "" {
		return fmt.Errorf("tickets.category_name cannot be empty")
	}
	if c.Tickets.PromptTimeout <= 0 {
		return fmt.Errorf("tickets.prompt_timeout must be positive")
	}
	if c.Tickets.NotifyRatePerSecond <= 0 {
		return fmt.Errorf("tickets.notify_rate_per_second must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}

// MirrorEnabled reports whether Lark mirroring is fully configured
func (c *Config) MirrorEnabled() bool {
	return c.Lark.AppID != "" && c.Lark.AppSecret != "" && c.Lark.ChatID != ""
}

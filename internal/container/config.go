// Package container wires the bank bot's components and owns their lifecycle.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Discord  DiscordConfig
	Tickets  TicketsConfig
	Events   EventsConfig
	Database DatabaseConfig
	Lark     LarkConfig
	Server   ServerConfig
}

// DiscordConfig holds bot credentials.
type DiscordConfig struct {
	Token string

	// GuildID is where commands register instantly; empty registers them
	// globally. Tickets open in whichever guild the request came from.
	GuildID string
}

// TicketsConfig holds the ticket workflow settings.
type TicketsConfig struct {
	CategoryID      string
	CategoryName    string
	ApproverRoleIDs []string
	ApproverUserIDs []string
	LogChannelID    string
	ChannelPrefix   string

	// PromptTimeout is how long an unanswered form or menu stays valid
	PromptTimeout time.Duration

	// MaxPendingPrompts caps concurrent entry sessions; 0 means unbounded
	MaxPendingPrompts int

	SweepInterval       time.Duration
	NotifyRatePerSecond float64
}

// EventsConfig holds lifecycle event dispatch settings.
type EventsConfig struct {
	// AsyncTimeout bounds each journal or mirror handler run
	AsyncTimeout time.Duration
}

// DatabaseConfig holds journal database settings.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LarkConfig holds the optional Lark mirror settings.
type LarkConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// ServerConfig holds liveness server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
// The bot token must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		Tickets: TicketsConfig{
			CategoryName:        "📥 bank-tickets",
			ChannelPrefix:       "bank",
			PromptTimeout:       5 * time.Minute,
			MaxPendingPrompts:   1000,
			SweepInterval:       time.Minute,
			NotifyRatePerSecond: 5,
		},
		Events: EventsConfig{
			AsyncTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:            "data/faction-bank.db",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         10000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is required")
	}
	if c.Tickets.CategoryName == "" {
		return fmt.Errorf("tickets category name is required")
	}
	if c.Tickets.PromptTimeout <= 0 {
		return fmt.Errorf("prompt timeout must be positive")
	}
	if c.Tickets.NotifyRatePerSecond <= 0 {
		return fmt.Errorf("notify rate must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}

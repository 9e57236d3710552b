package config

import (
	"github.com/garyjia/faction-bank/internal/container"
)

// ToContainerConfig converts the loaded Config into the container's
// configuration, filling settings the file does not expose from defaults.
func (c *Config) ToContainerConfig() *container.Config {
	out := container.DefaultConfig()

	out.Discord = container.DiscordConfig{
		Token:   c.Discord.Token,
		GuildID: c.Discord.GuildID,
	}
	out.Tickets = container.TicketsConfig{
		CategoryID:          c.Tickets.CategoryID,
		CategoryName:        c.Tickets.CategoryName,
		ApproverRoleIDs:     append([]string(nil), c.Tickets.ApproverRoleIDs...),
		ApproverUserIDs:     append([]string(nil), c.Tickets.ApproverUserIDs...),
		LogChannelID:        c.Tickets.LogChannelID,
		ChannelPrefix:       c.Tickets.ChannelPrefix,
		PromptTimeout:       c.Tickets.PromptTimeout,
		MaxPendingPrompts:   c.Tickets.MaxPendingPrompts,
		SweepInterval:       c.Tickets.SweepInterval,
		NotifyRatePerSecond: c.Tickets.NotifyRatePerSecond,
	}
	out.Database = container.DatabaseConfig{
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
	out.Lark = container.LarkConfig{
		AppID:     c.Lark.AppID,
		AppSecret: c.Lark.AppSecret,
		ChatID:    c.Lark.ChatID,
	}
	out.Server = container.ServerConfig{
		Host:         c.Server.Host,
		Port:         c.Server.Port,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
	}
	return out
}

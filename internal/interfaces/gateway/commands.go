package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type commandSpec struct {
	name        string
	description string
	kind        ActionKind
}

var commandSpecs = []commandSpec{
	{"panel", "Post the bank request panel with the 'Open Bank Ticket' button.", ActionPostPanel},
	{"bankrequest", "Open a private ticket to request money from the faction bank.", ActionOpenPanel},
	{"close", "Close the current ticket (approvers only).", ActionClose},
	{"ping", "Check if the bot is alive and commands are synced.", ActionPing},
	{"sync", "Approver/admin: force-resync slash commands to this server.", ActionSync},
	{"bankledger", "Approver: export the bank ticket ledger as a spreadsheet.", ActionExportLedger},
}

// Commands returns the slash command definitions
func Commands() []*discordgo.ApplicationCommand {
	dmAllowed := false
	out := make([]*discordgo.ApplicationCommand, 0, len(commandSpecs))
	for _, c := range commandSpecs {
		out = append(out, &discordgo.ApplicationCommand{
			Name:         c.name,
			Description:  c.description,
			DMPermission: &dmAllowed,
		})
	}
	return out
}

func commandAction(name string) ActionKind {
	for _, c := range commandSpecs {
		if c.name == name {
			return c.kind
		}
	}
	return ActionUnknown
}

// CommandRegistrar overwrites the registered command set
type CommandRegistrar struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// NewCommandRegistrar creates a CommandRegistrar
func NewCommandRegistrar(session *discordgo.Session, logger *zap.Logger) *CommandRegistrar {
	return &CommandRegistrar{session: session, logger: logger}
}

// Sync registers the command set in a guild, or globally when guildID is empty
func (c *CommandRegistrar) Sync(ctx context.Context, guildID string) error {
	if c.session.State == nil || c.session.State.User == nil {
		return errors.New("gateway session is not ready")
	}
	appID := c.session.State.User.ID

	registered, err := c.session.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	scope := "global"
	if guildID != "" {
		scope = guildID
	}
	c.logger.Info("Slash commands synced", zap.String("scope", scope), zap.Int("count", len(registered)))
	return nil
}

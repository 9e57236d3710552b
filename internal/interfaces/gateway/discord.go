package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/infrastructure/external/discord"
)

// interactionTimeout bounds one interaction, including a full transcript read
const interactionTimeout = 5 * time.Minute

// NewSession creates a bot session with the intents the bank needs
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	return s, nil
}

// GatewayConfig holds gateway configuration
type GatewayConfig struct {
	// GuildID receives the command set at startup; empty registers globally
	GuildID string
}

// Gateway connects the session and feeds interactions to the router
type Gateway struct {
	cfg      GatewayConfig
	session  *discordgo.Session
	router   *Router
	commands CommandSyncer
	logger   *zap.Logger

	mu      sync.RWMutex
	started bool
	remove  func()
	baseCtx context.Context
}

// NewGateway creates a Gateway
func NewGateway(cfg GatewayConfig, session *discordgo.Session, router *Router, commands CommandSyncer, logger *zap.Logger) *Gateway {
	return &Gateway{
		cfg:      cfg,
		session:  session,
		router:   router,
		commands: commands,
		logger:   logger,
	}
}

// Name returns the worker name
func (g *Gateway) Name() string {
	return "discord-gateway"
}

// Start opens the gateway connection and registers the commands.
// Interactions keep being served until Stop.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return fmt.Errorf("gateway already started")
	}
	g.baseCtx = ctx
	g.remove = g.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		g.onInteraction(ic.Interaction)
	})
	if err := g.session.Open(); err != nil {
		g.remove()
		g.mu.Unlock()
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	g.started = true
	g.mu.Unlock()

	g.logger.Info("Discord gateway connected", zap.String("bot_id", g.botID()))

	if err := g.commands.Sync(ctx, g.cfg.GuildID); err != nil {
		g.logger.Error("Initial command sync failed", zap.Error(err))
	}
	return nil
}

// Stop closes the gateway connection
func (g *Gateway) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return nil
	}
	g.started = false
	if g.remove != nil {
		g.remove()
	}
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("failed to close gateway: %w", err)
	}
	g.logger.Info("Discord gateway disconnected")
	return nil
}

// IsRunning returns whether the gateway is connected
func (g *Gateway) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.started
}

func (g *Gateway) botID() string {
	if g.session.State == nil || g.session.State.User == nil {
		return ""
	}
	return g.session.State.User.ID
}

func (g *Gateway) onInteraction(i *discordgo.Interaction) {
	g.mu.RLock()
	base := g.baseCtx
	g.mu.RUnlock()
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, interactionTimeout)
	defer cancel()

	replier := newInteractionReplier(g.session, i)
	action, err := Translate(i)
	if err != nil {
		g.logger.Warn("Unrecognized interaction", zap.String("interaction_id", i.ID), zap.Error(err))
		if rerr := replier.Reply(ctx, Reply{Content: UserMessage(ActionUnknown, err), Private: true}); rerr != nil {
			g.logger.Warn("Failed to answer interaction", zap.Error(rerr))
		}
		return
	}
	g.router.Route(ctx, action, replier)
}

// Translate decodes a platform interaction into an Action
func Translate(i *discordgo.Interaction) (Action, error) {
	a := Action{GuildID: i.GuildID, ChannelID: i.ChannelID}
	switch {
	case i.Member != nil:
		a.Actor = discord.FromMember(i.Member)
	case i.User != nil:
		a.Actor = entity.Member{ID: i.User.ID, Username: i.User.Username, DisplayName: i.User.GlobalName}
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		a.Kind = commandAction(name)
		if a.Kind == ActionUnknown {
			return Action{}, fmt.Errorf("%w: command %q", ErrUnknownControl, name)
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		kind, sessionID, err := ParseCustomID(data.CustomID)
		if err != nil {
			return Action{}, err
		}
		a.Kind = kind
		a.SessionID = sessionID
		a.Values = data.Values
		if i.Message != nil {
			a.MessageID = i.Message.ID
			a.Summary = discord.SummaryOf(i.Message)
		}

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		kind, sessionID, err := ParseCustomID(data.CustomID)
		if err != nil {
			return Action{}, err
		}
		a.Kind = kind
		a.SessionID = sessionID
		values := modalValues(data.Components)
		a.Amount = values[AmountFieldID]
		a.Comment = values[CommentFieldID]

	default:
		return Action{}, fmt.Errorf("%w: interaction type %d", ErrUnknownControl, i.Type)
	}
	return a, nil
}

func modalValues(components []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string)
	var walk func([]discordgo.MessageComponent)
	walk = func(cs []discordgo.MessageComponent) {
		for _, c := range cs {
			switch v := c.(type) {
			case *discordgo.ActionsRow:
				walk(v.Components)
			case discordgo.ActionsRow:
				walk(v.Components)
			case *discordgo.TextInput:
				values[v.CustomID] = v.Value
			case discordgo.TextInput:
				values[v.CustomID] = v.Value
			}
		}
	}
	walk(components)
	return values
}

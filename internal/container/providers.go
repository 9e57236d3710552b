package container

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/intake"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/application/service"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/infrastructure/export"
	"github.com/garyjia/faction-bank/internal/infrastructure/external/discord"
	infraLark "github.com/garyjia/faction-bank/internal/infrastructure/external/lark"
	"github.com/garyjia/faction-bank/internal/infrastructure/persistence/repository"
	"github.com/garyjia/faction-bank/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/faction-bank/internal/interfaces/gateway"
	"github.com/garyjia/faction-bank/pkg/database"
	"github.com/garyjia/faction-bank/pkg/utils"
)

// DatabaseBundle holds the journal store.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
	Journal        port.JournalRepository
}

// DiscordBundle holds the chat platform session and its port adapter.
type DiscordBundle struct {
	Session  *discordgo.Session
	Platform port.ChatPlatform
}

// ServiceBundle groups the application services the gateway drives.
type ServiceBundle struct {
	Policy     *access.Policy
	Registry   *service.TicketRegistry
	Notifier   *service.ApproverNotifier
	Controller *service.ApprovalController
	Journal    *service.JournalService
	Mirror     *service.MirrorService
	Flow       *intake.Flow
	Panel      *intake.Panel
}

// ProvideDatabase opens the journal database and applies pending migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
		Journal:        repository.NewJournalRepository(db.DB, logger),
	}, nil
}

// ProvideDiscord creates the gateway session. The connection is opened
// later by the gateway worker.
func ProvideDiscord(cfg *DiscordConfig, logger *zap.Logger) (*DiscordBundle, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}

	session, err := gateway.NewSession(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &DiscordBundle{
		Session:  session,
		Platform: discord.NewPlatform(session, logger.Named("discord")),
	}, nil
}

// ProvideMirror returns the Lark mirror, or a no-op when Lark is not configured.
func ProvideMirror(cfg *LarkConfig, logger *zap.Logger) port.Mirror {
	larkCfg := infraLark.Config{AppID: cfg.AppID, AppSecret: cfg.AppSecret, ChatID: cfg.ChatID}
	if !larkCfg.Enabled() {
		logger.Info("Lark mirror disabled")
		return infraLark.NopMirror{}
	}
	logger.Info("Lark mirror enabled", zap.String("chat_id", cfg.ChatID))
	return infraLark.NewMirror(infraLark.NewSDKClient(larkCfg), cfg.ChatID, logger.Named("lark"))
}

// ProvideServices builds the ticket services and subscribes the journal and
// mirror to lifecycle events.
func ProvideServices(
	cfg *Config,
	platform port.ChatPlatform,
	db *DatabaseBundle,
	mirror port.Mirror,
	events dispatcher.Dispatcher,
	logger *zap.Logger,
) (*ServiceBundle, error) {
	if platform == nil || db == nil || events == nil {
		return nil, fmt.Errorf("platform, database and dispatcher are required")
	}
	log := utils.NewKVLogger(logger)
	tickets := cfg.Tickets

	policy := access.NewPolicy(tickets.ApproverRoleIDs, tickets.ApproverUserIDs)
	registry := service.NewTicketRegistry()
	categories := service.NewCategoryResolver(platform, tickets.CategoryID, tickets.CategoryName)
	notifier := service.NewApproverNotifier(platform, tickets.NotifyRatePerSecond, log)

	provisioner := service.NewProvisioner(service.ProvisionerConfig{
		ChannelPrefix:   tickets.ChannelPrefix,
		ApproverRoleIDs: policy.ApproverRoleIDs(),
		Controls:        gateway.SummaryControls(),
	}, platform, categories, registry, notifier, events, log)

	archiver := service.NewTranscriptArchiver(service.ArchiverConfig{LogChannelID: tickets.LogChannelID}, platform, log)
	controller := service.NewApprovalController(policy, platform, registry, categories, archiver, events, log)

	journal := service.NewJournalService(db.Journal, db.TransactionMgr, export.NewLedgerExporter(logger), policy, log)
	journal.Subscribe(events)

	mirrorSvc := service.NewMirrorService(mirror, log)
	mirrorSvc.Subscribe(events)

	flow := intake.NewFlow(intake.Config{
		PromptTimeout: tickets.PromptTimeout,
		MaxSessions:   tickets.MaxPendingPrompts,
	}, provisioner, log)

	return &ServiceBundle{
		Policy:     policy,
		Registry:   registry,
		Notifier:   notifier,
		Controller: controller,
		Journal:    journal,
		Mirror:     mirrorSvc,
		Flow:       flow,
		Panel:      intake.NewPanel(policy, platform, gateway.PanelButton()),
	}, nil
}

package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/infrastructure/worker"
	"github.com/garyjia/faction-bank/internal/interfaces/gateway"
	httpserver "github.com/garyjia/faction-bank/internal/interfaces/http"
	"github.com/garyjia/faction-bank/pkg/utils"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	database *DatabaseBundle
	discord  *DiscordBundle
	mirror   port.Mirror

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	gateway *gateway.Gateway
	server  *httpserver.Server
	workers *worker.WorkerManager

	// Lifecycle
	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components and connects to the gateway:
// 1. Journal database
// 2. Chat platform session and Lark mirror
// 3. Event dispatcher and ticket services
// 4. Workers: liveness server, prompt sweeper, gateway
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	database, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.database = database
	c.logger.Info("Database initialized")

	discord, err := ProvideDiscord(&c.config.Discord, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize discord: %w", err)
	}
	c.discord = discord
	c.mirror = ProvideMirror(&c.config.Lark, c.logger)

	c.dispatcher = dispatcher.NewDispatcher(
		dispatcher.WithLogger(utils.NewKVLogger(c.logger.Named("events"))),
		dispatcher.WithAsyncTimeout(c.config.Events.AsyncTimeout),
	)

	services, err := ProvideServices(c.config, c.discord.Platform, c.database, c.mirror, c.dispatcher, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.logger.Info("Application services initialized")

	if err := c.initWorkers(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully", zap.String("guild_id", c.config.Discord.GuildID))
	return nil
}

func (c *Container) initWorkers(ctx context.Context) error {
	kv := utils.NewKVLogger(c.logger.Named("gateway"))

	router := gateway.NewRouter(kv)
	registrar := gateway.NewCommandRegistrar(c.discord.Session, c.logger)
	handlers := &gateway.Handlers{
		Policy:     c.services.Policy,
		Flow:       c.services.Flow,
		Panel:      c.services.Panel,
		Controller: c.services.Controller,
		Ledger:     c.services.Journal,
		Commands:   registrar,
	}
	handlers.Register(router)

	c.gateway = gateway.NewGateway(gateway.GatewayConfig{GuildID: c.config.Discord.GuildID},
		c.discord.Session, router, registrar, c.logger)
	c.server = httpserver.NewServer(httpserver.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, c, utils.NewKVLogger(c.logger.Named("http")))

	c.workers = worker.NewWorkerManager(c.logger)
	c.workers.Register(c.server)
	c.workers.Register(worker.NewPromptSweeper(worker.SweeperConfig{
		Interval: c.config.Tickets.SweepInterval,
	}, c.services.Flow, c.logger))
	c.workers.Register(c.gateway)

	return c.workers.StartAll(ctx)
}

// Close gracefully shuts down all components in reverse order.
// It is safe to call after a failed Start.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return fmt.Errorf("container already closed")
	}
	c.ready.Store(false)
	c.logger.Info("Closing container")

	var errs []error

	// The gateway stops first, so no new interactions arrive during teardown
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	if c.services != nil {
		c.services.Notifier.Wait()
	}

	// Drains in-flight journal and mirror handlers before the database closes
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.database != nil {
		if err := c.database.DB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %v", len(errs), errs)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health reports per-component health; a nil error means healthy.
func (c *Container) Health(ctx context.Context) map[string]error {
	status := map[string]error{
		"database": errNotInitialized,
		"gateway":  errNotInitialized,
		"workers":  errNotInitialized,
	}

	if c.database != nil {
		status["database"] = c.database.DB.Health(ctx)
	}
	if c.gateway != nil {
		status["gateway"] = nil
		if !c.gateway.IsRunning() {
			status["gateway"] = fmt.Errorf("gateway disconnected")
		}
	}
	if c.workers != nil {
		status["workers"] = nil
		if !c.workers.IsRunning() {
			status["workers"] = fmt.Errorf("workers stopped (count %d)", c.workers.GetWorkerCount())
		}
	}
	if c.services != nil {
		c.logger.Debug("Health checked",
			zap.Int("open_tickets", c.services.Registry.Len()),
			zap.Int("pending_prompts", c.services.Flow.Pending()),
		)
	}

	return status
}

var errNotInitialized = fmt.Errorf("not initialized")

// Config returns the container configuration.
func (c *Container) Config() *Config {
	return c.config
}

// Services returns the application services; nil before Start.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

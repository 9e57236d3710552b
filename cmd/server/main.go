package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/config"
	"github.com/garyjia/faction-bank/internal/container"
	"github.com/garyjia/faction-bank/pkg/utils"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (optional)")
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	pflag.Parse()

	// Variables already set in the environment win over the dotenv file
	if err := gotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting faction bank bot",
		zap.String("guild_id", cfg.Discord.GuildID),
		zap.Int("approver_roles", len(cfg.Tickets.ApproverRoleIDs)),
		zap.Int("approver_users", len(cfg.Tickets.ApproverUserIDs)),
		zap.Bool("lark_mirror", cfg.MirrorEnabled()),
		zap.Int("port", cfg.Server.Port))

	app, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		logger.Error("Failed to start", zap.Error(err))
		_ = app.Close()
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutting down")

	if err := app.Close(); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

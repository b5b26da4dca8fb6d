package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/industryview/industryview/internal/api"
	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/db"
	"github.com/industryview/industryview/internal/notify"
	"github.com/industryview/industryview/internal/notify/discord"
	"github.com/industryview/industryview/internal/notify/slack"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the IndustryView API server",
		Long:  "Migrates the database, then serves the REST API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port from config")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedReasons(gormDB); err != nil {
		return err
	}

	notifier, err := newNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	if notifier != nil {
		fmt.Fprintf(out, "Notifications enabled on %s\n", cfg.Notify.Platform)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.Start(ctx, api.StartOpts{
		DB:       gormDB,
		Config:   cfg,
		Notifier: notifier,
		Out:      out,
	})
}

// newNotifier builds the chat notifier for the configured platform. It
// returns nil when notifications are disabled.
func newNotifier(cfg config.NotifyConfig) (notify.Notifier, error) {
	switch cfg.Platform {
	case "":
		return nil, nil
	case "slack":
		n, err := slack.New(slack.Opts{BotToken: cfg.BotToken, ChannelID: cfg.Channel})
		if err != nil {
			return nil, err
		}
		return n, nil
	case "discord":
		n, err := discord.New(discord.Opts{BotToken: cfg.BotToken, ChannelID: cfg.Channel})
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported notify platform %q", cfg.Platform)
	}
}

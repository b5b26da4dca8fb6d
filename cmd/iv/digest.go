package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/db"
	"github.com/industryview/industryview/internal/notify"
	"github.com/spf13/cobra"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath  string
		once        bool
		allProjects bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Post sprint progress digests to chat",
		Long: `Posts a progress digest for every active sprint to the configured Slack or
Discord channel. Runs on notify.digest_cron until interrupted, or posts a
single round with --once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, once, allProjects)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&once, "once", false, "post one round of digests and exit")
	cmd.Flags().BoolVar(&allProjects, "all-projects", false, "include active sprints of every project")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, once, allProjects bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	notifier, err := newNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	if notifier == nil {
		return fmt.Errorf("notifications are not configured: set notify.platform in %s", configPath)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	projectID := cfg.ProjectID
	if allProjects {
		projectID = 0
	}
	d, err := notify.NewDigest(notify.DigestOpts{
		DB:        gormDB,
		Notifier:  notifier,
		ProjectID: projectID,
		Cron:      cfg.Notify.DigestCron,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		sent, err := d.RunOnce(ctx)
		fmt.Fprintf(out, "Posted %d digest(s) to %s\n", sent, cfg.Notify.Platform)
		return err
	}

	fmt.Fprintf(out, "Posting digests on %q to %s (Ctrl-C to stop)\n", cfg.Notify.DigestCron, cfg.Notify.Platform)
	return d.Run(ctx)
}

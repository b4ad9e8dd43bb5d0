package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"badui/internal/config"
	"badui/internal/email"
	"badui/internal/jobs"
	"badui/internal/metrics"
	"badui/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the website and the moderator reconciler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.load())
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("migrations completed")

	yamlCfg, err := config.LoadYAMLConfig(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.ConfigFile, err)
	}

	notifier := email.NewNotifier(cfg, database)
	m := metrics.New(database)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, server.Deps{
		Notifier: notifier,
		Metrics:  m,
		About:    yamlCfg.About,
	}); err != nil {
		return err
	}

	reconciler := jobs.NewModeratorReconciler(database, cfg.ReconcileInterval,
		jobs.WithNotifier(notifier),
		jobs.WithObserver(m),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reconciler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})

	err = g.Wait()
	slog.Info("server exited")
	return err
}

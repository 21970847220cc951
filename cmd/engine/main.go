package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gator-commons/internal/app"
	"gator-commons/internal/config"
	"gator-commons/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Gator Commons engine: posts, comments, likes and the guestbook over HTTP",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = utils.NewLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes if they do not exist",
	RunE:  migrate,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute post counters from the likes and comments tables",
	Long: `Counters are kept in step with likes and comments inside one transaction, so
drift only appears after manual edits or partial restores. reconcile rewrites
every post whose stored counters disagree with the relation rows.`,
	RunE: reconcile,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd)
	// Running the binary with no subcommand serves.
	rootCmd.RunE = serve
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("db_type", cfg.Database.Type))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(cmd *cobra.Command, args []string) error {
	store, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close(cmd.Context())

	return store.InitializeTables(cmd.Context())
}

func reconcile(cmd *cobra.Command, args []string) error {
	store, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close(cmd.Context())

	fixed, err := store.RecountCounters(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("counters reconciled", zap.Int("posts_fixed", fixed))
	return nil
}

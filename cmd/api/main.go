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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"blogAPI/cmd/app"
	"blogAPI/internal/config"
	"blogAPI/internal/database"
	"blogAPI/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogapi",
		Short:         "Blog REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(cmd.Context(), serve)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL migrations to Postgres and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(cmd.Context(), migrate)
		},
	}

	root.RunE = serveCmd.RunE
	root.AddCommand(serveCmd, migrateCmd)
	return root
}

func runWithConfig(ctx context.Context, run func(context.Context, *config.Config, *logrus.Logger) error) error {
	cfg, envLoaded := config.LoadConfig()
	log := logging.New(cfg.Log)

	if !envLoaded {
		log.Debug(".env file not found, using process environment")
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		return err
	}

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("command failed")
		return err
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := application.Close(closeCtx); err != nil {
			log.WithError(err).Warn("failed to close connections")
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 15*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    server.Addr,
			"storage": cfg.StorageDriver,
		}).Info("server started")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func migrate(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	if cfg.StorageDriver != config.DriverPostgres {
		log.WithField("storage", cfg.StorageDriver).Info("nothing to migrate; indexes are created at startup")
		return nil
	}

	db, err := database.ConnectDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	return db.RunMigrations(ctx, cfg.DB.MigrationsPath)
}

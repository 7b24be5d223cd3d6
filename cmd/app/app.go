package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"blogAPI/internal/config"
	"blogAPI/internal/database"
	handlers "blogAPI/internal/handler"
	"blogAPI/internal/middleware"
	"blogAPI/internal/repository"
	"blogAPI/internal/repository/mongorepo"
	"blogAPI/internal/service"
	"blogAPI/internal/storage"
)

// App holds the wired HTTP handler and the connections it owns.
type App struct {
	Handler http.Handler
	closers []func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	a := &App{}
	checks := make(map[string]handlers.HealthChecker)

	repo, err := a.connectStore(ctx, cfg, log, checks)
	if err != nil {
		return nil, err
	}

	var images storage.Storage
	if cfg.MinIO.Enabled {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO, log)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("init minio: %w", err)
		}
		images = minioClient
		checks["minio"] = minioClient
	} else {
		log.Warn("minio disabled, image uploads are rejected")
	}

	services := service.NewService(repo, cfg, images, log)
	handler := handlers.NewHandlers(services, cfg, log, checks)
	guard := middleware.NewAuthGuard(services.Tokens, services.User, log)

	a.Handler = NewRouter(handler, guard, cfg, log)
	return a, nil
}

func (a *App) connectStore(ctx context.Context, cfg *config.Config, log *logrus.Logger, checks map[string]handlers.HealthChecker) (*repository.Repository, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		mongoDB, err := database.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, mongoDB.Close)

		if err := mongorepo.EnsureIndexes(ctx, mongoDB.DB); err != nil {
			a.Close(ctx)
			return nil, err
		}

		checks["mongodb"] = mongoDB
		return mongorepo.NewRepository(mongoDB.DB), nil

	default:
		db, err := database.ConnectDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}

		if err := a.preparePostgres(ctx, db, cfg.DB, checks); err != nil {
			a.Close(ctx)
			return nil, err
		}
		return repository.NewRepository(db.DB), nil
	}
}

// preparePostgres registers db for health checks and shutdown, then applies
// the schema unless auto-migration is turned off.
func (a *App) preparePostgres(ctx context.Context, db database.MethodsDB, cfg config.DB, checks map[string]handlers.HealthChecker) error {
	a.closers = append(a.closers, func(context.Context) error { return db.CloseDB() })
	checks["postgres"] = db

	if !cfg.AutoMigrate {
		return nil
	}
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

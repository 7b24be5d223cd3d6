package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogAPI/internal/config"
)

type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *logrus.Logger
}

func ConnectMongo(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	log.WithField("database", cfg.Mongo.Database).Info("connecting to mongodb")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info("connected to mongodb")

	return &Mongo{
		Client: client,
		DB:     client.Database(cfg.Mongo.Database),
		log:    log,
	}, nil
}

func (m *Mongo) HealthCheck(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("mongodb connection is not initialized")
	}
	return m.Client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		return err
	}
	m.log.Info("disconnected from mongodb")
	return nil
}

package app

import (
	"context"
	"errors"
	"time"

	"getjobs/internal/config"
	dbpostgres "getjobs/internal/database/postgres"
	"getjobs/internal/infrastructure/cache"
	"getjobs/internal/pkg/logging"
)

type Container struct {
	Config config.Config
	Logger *logging.Logger
	DB     *dbpostgres.Pool
	Cache  *cache.Redis
}

func NewContainer(cfg config.Config, logger *logging.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", "max_conns", cfg.Database.PoolMaxConns)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger.With("component", "cache")),
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

package util

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

// connectTimeout bounds the startup health checks against postgres and redis.
const connectTimeout = 5 * time.Second

func NewDBConnection(logger *zap.SugaredLogger) (*sql.DB, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, nil, errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("connected to postgres")

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Errorf("close postgres connection: %v", err)
		}
	}
	return db, cleanup, nil
}

// NewRedisClient dials redis and verifies it answers a ping before handing
// the client out.
func NewRedisClient(logger *zap.SugaredLogger) (*redis.Client, func(), error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, nil, errors.New("REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Infof("connected to redis at %s", addr)

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Errorf("close redis connection: %v", err)
		}
	}
	return client, cleanup, nil
}

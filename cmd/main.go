package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/api"
	"github.com/mkraev/tasklist/internal/controller"
	"github.com/mkraev/tasklist/internal/migrations"
	"github.com/mkraev/tasklist/internal/service"
	"github.com/mkraev/tasklist/internal/storage/postgres"
	redisstorage "github.com/mkraev/tasklist/internal/storage/redis"
	"github.com/mkraev/tasklist/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	store := postgres.NewStorage(db)
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	tokenService := service.NewTokenService(util.NewTokenConfig())
	authService := service.NewAuthService(tokenService, store, util.NewAuthConfig(), logger)
	taskService := service.NewTaskService(store, logger)
	limiter := redisstorage.NewLoginRateLimiter(redisClient)

	ctrl := controller.NewController(logger, authService, taskService)

	apiServer := api.NewAPI(
		ctrl,
		authService,
		limiter,
		util.NewServerConfig(),
		util.NewRateLimiterConfig(),
		logger,
		cleanupFuncs,
	)
	apiServer.Run(ctx)
}

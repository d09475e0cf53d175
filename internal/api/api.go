package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	oapimiddleware "github.com/oapi-codegen/echo-middleware"
	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/controller"
	"github.com/mkraev/tasklist/internal/service"
	"github.com/mkraev/tasklist/internal/storage/redis"
	"github.com/mkraev/tasklist/internal/util"
)

const shutdownTimeout = 5 * time.Second

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	auth            *service.AuthService
	limiter         *redis.LoginRateLimiter
	rateCfg         *util.RateLimiterConfig
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	cleanupFuncs    []func()
}

func NewAPI(
	c *controller.Controller,
	auth *service.AuthService,
	limiter *redis.LoginRateLimiter,
	sc *util.ServerConfig,
	rc *util.RateLimiterConfig,
	l *zap.SugaredLogger,
	cleanupFuncs []func(),
) *API {
	e := echo.New()

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      c,
		auth:            auth,
		limiter:         limiter,
		rateCfg:         rc,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		cleanupFuncs:    cleanupFuncs,
	}
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	swagger, err := controller.GetSwagger()
	if err != nil {
		a.log.Fatalf("Failed to load OpenAPI specification: %v", err)
	}
	swagger.Servers = nil

	a.server.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	v1 := a.server.Group("/v1")
	v1.Use(oapimiddleware.OapiRequestValidator(swagger))

	v1.POST("/users", a.controller.CreateUser)
	v1.POST("/sessions", a.controller.CreateSession, a.LoginRateLimitMiddleware())
	v1.PATCH("/sessions/:id", a.controller.RefreshSession)
	v1.DELETE("/sessions/:id", a.controller.DeleteSession)

	tasks := v1.Group("/tasks", BearerAuthMiddleware(a.auth))
	tasks.POST("", a.controller.CreateTask)
	tasks.GET("", a.controller.ListTasks)
	tasks.GET("/page/:page", a.controller.ListTasksPage)
	tasks.GET("/:id", a.controller.GetTask)
	tasks.PATCH("/:id", a.controller.UpdateTask)
	tasks.DELETE("/:id", a.controller.DeleteTask)

	a.ListenGracefulShutdown(ctx)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.log.Errorf("shutdown: %v", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	longShutdown := make(chan struct{}, 1)

	go func() {
		time.Sleep(a.gracefulTimeout)
		longShutdown <- struct{}{}
	}()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			a.log.Info("server shutdown completed")
		} else {
			a.log.Errorf("server shutdown: %v", ctx.Err())
		}
	case <-longShutdown:
		a.log.Infof("finished")
	}
}

package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/service"
)

// BearerAuthMiddleware gates every resource route: it resolves the bearer
// token to a user id and stores it on the context. Handlers downstream use
// only that id to scope their queries.
func BearerAuthMiddleware(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			userID, err := auth.Authorize(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(models.CtxUserIDKey, userID)

			return next(c)
		}
	}
}

// LoginRateLimitMiddleware throttles login attempts per client IP. Redis
// being unreachable does not take logins down with it; the attempt is
// allowed and the failure logged.
func (a *API) LoginRateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := a.limiter.Allow(
				c.Request().Context(),
				c.RealIP(),
				a.rateCfg.Limit,
				a.rateCfg.Interval,
				a.rateCfg.BlockTime,
			)
			if err != nil {
				a.log.Errorw("login rate limiter unavailable", "error", err)
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, try again later")
			}

			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogRequestID: true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/controller"
	"github.com/mkraev/tasklist/internal/service"
	"github.com/mkraev/tasklist/internal/util"
)

// ErrorHandler translates error kinds into the response envelope. All
// authentication failures map to 401; storage and other unexpected errors
// are logged server-side and surfaced as a generic 500.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)
		if status == http.StatusInternalServerError {
			log.Errorw("internal error", "error", err, "uri", c.Request().RequestURI)
			message = "internal server error"
		}

		writeErr := c.JSON(status, controller.Response{
			StatusCode: status,
			Success:    false,
			Messages:   []string{message},
		})
		if writeErr != nil {
			log.Errorw("failed to write json response", "error", writeErr)
		}
	}
}

func classify(err error) (int, string) {
	var respErr util.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status, respErr.Msg
	}

	if isUnauthorizedError(err) {
		return http.StatusUnauthorized, err.Error()
	}

	switch {
	case errors.Is(err, service.ErrAlreadyLoggedOut):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound, err.Error()
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	return http.StatusInternalServerError, err.Error()
}

func isUnauthorizedError(err error) bool {
	return errors.Is(err, service.ErrInvalidCredentials) ||
		errors.Is(err, service.ErrAccountInactive) ||
		errors.Is(err, service.ErrAccountLocked) ||
		errors.Is(err, service.ErrInvalidSession) ||
		errors.Is(err, service.ErrMissingToken) ||
		errors.Is(err, service.ErrInvalidToken) ||
		errors.Is(err, service.ErrAccessTokenExpired) ||
		errors.Is(err, service.ErrRefreshTokenExpired)
}

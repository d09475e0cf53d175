package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/controller"
	"github.com/mkraev/tasklist/internal/service"
	"github.com/mkraev/tasklist/internal/util"
)

func performWithError(t *testing.T, err error) (*httptest.ResponseRecorder, controller.Response) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop().Sugar())
	e.GET("/boom", func(echo.Context) error { return err })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope controller.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"account inactive", service.ErrAccountInactive, http.StatusUnauthorized},
		{"account locked", service.ErrAccountLocked, http.StatusUnauthorized},
		{"invalid session", service.ErrInvalidSession, http.StatusUnauthorized},
		{"missing token", service.ErrMissingToken, http.StatusUnauthorized},
		{"invalid token", service.ErrInvalidToken, http.StatusUnauthorized},
		{"access token expired", service.ErrAccessTokenExpired, http.StatusUnauthorized},
		{"refresh token expired", service.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{"already logged out", service.ErrAlreadyLoggedOut, http.StatusBadRequest},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"validation", util.NewResponseError(http.StatusBadRequest, "title must not be blank"), http.StatusBadRequest},
		{"conflict", util.NewResponseError(http.StatusConflict, "username already exists"), http.StatusConflict},
		{"echo http error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, envelope := performWithError(t, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus, envelope.StatusCode)
			assert.False(t, envelope.Success)
			require.NotEmpty(t, envelope.Messages)
		})
	}
}

func TestErrorHandler_StorageFailuresAreNotLeaked(t *testing.T) {
	rec, envelope := performWithError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, envelope.Messages, 1)
	assert.Equal(t, "internal server error", envelope.Messages[0])
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/service"
	"github.com/mkraev/tasklist/internal/storage/memory"
	"github.com/mkraev/tasklist/internal/util"
)

func newBearerTestServer(t *testing.T) (*echo.Echo, *service.AuthService) {
	t.Helper()

	store := memory.NewStorage()
	tokens := service.NewTokenService(&util.TokenConfig{
		AccessTTL:  1200 * time.Second,
		RefreshTTL: 1209600 * time.Second,
	})
	auth := service.NewAuthService(tokens, store, &util.AuthConfig{
		LoginDelay:       0,
		LockoutThreshold: util.DefaultLockoutThreshold,
	}, zap.NewNop().Sugar())

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop().Sugar())
	e.GET("/whoami", func(c echo.Context) error {
		userID, _ := c.Get(models.CtxUserIDKey).(int64)
		return c.String(http.StatusOK, strconv.FormatInt(userID, 10))
	}, BearerAuthMiddleware(auth))

	return e, auth
}

func TestBearerAuthMiddleware(t *testing.T) {
	e, auth := newBearerTestServer(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, models.RegisterRequest{
		FullName: "Alice",
		Username: "alice",
		Password: "correct-pw",
	})
	require.NoError(t, err)
	result, err := auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer token", "Bearer " + result.Session.AccessToken, http.StatusOK, strconv.FormatInt(result.User.ID, 10)},
		{"raw token without scheme", result.Session.AccessToken, http.StatusOK, strconv.FormatInt(result.User.ID, 10)},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

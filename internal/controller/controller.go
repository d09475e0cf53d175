package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/service"
	"github.com/mkraev/tasklist/internal/util"
)

type Controller struct {
	log   *zap.SugaredLogger
	auth  *service.AuthService
	tasks *service.TaskService
}

func NewController(log *zap.SugaredLogger, auth *service.AuthService, tasks *service.TaskService) *Controller {
	return &Controller{
		log:   log,
		auth:  auth,
		tasks: tasks,
	}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Messages   []string `json:"messages"`
	Data       any      `json:"data,omitempty"`
}

func sendSuccess(ctx echo.Context, status int, message string, data any) error {
	return ctx.JSON(status, Response{
		StatusCode: status,
		Success:    true,
		Messages:   []string{message},
		Data:       data,
	})
}

// (POST /v1/users).
func (c *Controller) CreateUser(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	profile, err := c.auth.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusCreated, "User created", profile)
}

// (POST /v1/sessions).
func (c *Controller) CreateSession(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	result, err := c.auth.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusCreated, "Successfully logged in", c.sessionResponse(result))
}

// (PATCH /v1/sessions/:id).
func (c *Controller) RefreshSession(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "id", "session id")
	if err != nil {
		return err
	}

	accessToken := bearerToken(ctx)
	if accessToken == "" {
		return service.ErrMissingToken
	}

	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return util.NewResponseError(http.StatusBadRequest, "refresh token not supplied")
	}

	result, err := c.auth.Refresh(ctx.Request().Context(), sessionID, accessToken, req.RefreshToken)
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusOK, "Token refreshed", c.sessionResponse(result))
}

// (DELETE /v1/sessions/:id).
func (c *Controller) DeleteSession(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "id", "session id")
	if err != nil {
		return err
	}

	accessToken := bearerToken(ctx)
	if accessToken == "" {
		return service.ErrMissingToken
	}

	if err := c.auth.Logout(ctx.Request().Context(), sessionID, accessToken); err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusOK, "Logged out", map[string]int64{"session_id": sessionID})
}

func (c *Controller) sessionResponse(result *models.LoginResult) models.SessionResponse {
	return models.SessionResponse{
		UserID:                result.User.ID,
		Username:              result.User.Username,
		FullName:              result.User.FullName,
		SessionID:             result.Session.ID,
		AccessToken:           result.Session.AccessToken,
		AccessTokenExpiresIn:  int64(c.auth.AccessTTL().Seconds()),
		RefreshToken:          result.Session.RefreshToken,
		RefreshTokenExpiresIn: int64(c.auth.RefreshTTL().Seconds()),
	}
}

// bearerToken returns the access token from the Authorization header; a
// "Bearer " prefix is accepted but not required.
func bearerToken(ctx echo.Context) string {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func pathID(ctx echo.Context, param, name string) (int64, error) {
	raw := ctx.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewResponseError(http.StatusBadRequest, "%s must be a positive integer", name)
	}
	return id, nil
}

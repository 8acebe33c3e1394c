package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_store/internal/service"
	"github.com/Skotchmaster/fashion_store/internal/transport"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id, err := h.Svc.Signup(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("signup_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrConflict):
			l.Warn("signup_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Email already exists")
		default:
			return internalError(l, "signup_error", err)
		}
	}

	l.Info("signup_success", "user_id", id)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "User created successfully"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		default:
			return internalError(l, "login_error", err)
		}
	}

	l.Info("login_successful")
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		IsAdmin:     res.IsAdmin,
	})
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_store/internal/service"
	"github.com/Skotchmaster/fashion_store/internal/transport"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

type ContactHTTP struct {
	Svc *service.ContactService
}

func (h *ContactHTTP) Contact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.send")

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("contact_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.SendMessage(ctx, req.Name, req.Email, req.Message); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("contact_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
		}
		return internalError(l, "contact_error", err)
	}
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Message sent successfully"})
}

func (h *ContactHTTP) Newsletter(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.newsletter")

	var req transport.NewsletterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("newsletter_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Subscribe(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("newsletter_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
		case errors.Is(err, service.ErrConflict):
			l.Warn("newsletter_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Email already subscribed")
		default:
			return internalError(l, "newsletter_error", err)
		}
	}
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Subscribed to newsletter"})
}

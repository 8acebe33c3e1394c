package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Skotchmaster/fashion_store/pkg/logging"
	"github.com/Skotchmaster/fashion_store/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Identity is the authenticated caller resolved from the bearer token.
type Identity struct {
	UserID uint
	Role   string
}

// AdminResolver reports the current admin flag of a user.
type AdminResolver interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
}

type BearerAuth struct {
	JWTSecret []byte
	Admins    AdminResolver
}

func NewBearerAuth(secret []byte, admins AdminResolver) *BearerAuth {
	return &BearerAuth{
		JWTSecret: secret,
		Admins:    admins,
	}
}

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.authenticate(c)
		if err != nil {
			return err
		}
		c.Set(identityKey, id)
		return next(c)
	}
}

// RequireAdmin checks the stored admin flag, not the token role, so a
// demotion takes effect on the next request.
func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.authenticate(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		isAdmin, err := m.Admins.IsAdmin(ctx, id.UserID)
		if err != nil {
			logging.FromContext(ctx).Error("admin_check_error", "user_id", id.UserID, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		}
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}

		id.Role = tokens.RoleAdmin
		c.Set(identityKey, id)
		return next(c)
	}
}

func (m *BearerAuth) authenticate(c echo.Context) (Identity, error) {
	raw := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if raw == "" {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err != nil {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	return Identity{UserID: userID, Role: claims.Role}, nil
}

// BearerToken extracts the token from an Authorization header value. A bare
// token without the "Bearer" scheme is accepted as well.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	if found {
		return ""
	}
	return header
}

func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}

package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/fashion_store/pkg/middleware/logging"
	"github.com/Skotchmaster/fashion_store/pkg/middleware/metrics"
)

// New builds the echo instance with the middleware chain every route runs
// behind. m may be nil.
func New(logger *slog.Logger, m *metrics.HTTPMetrics, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	if m != nil {
		e.Use(m.Middleware)
	}
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	return e
}

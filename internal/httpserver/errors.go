package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// internalError logs the cause and hides it from the client.
func internalError(l *slog.Logger, event string, err error) error {
	l.Error(event, "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIKeyAuth validates the X-API-Key header against the configured key.
// An empty configured key disables the check entirely: this is a
// single-user local application and the gate is a convenience, not a
// security boundary.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing API key")
			}
			if key != apiKey {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
			}

			return next(c)
		}
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is used by load balancers and monitoring to check the service
// is up.  It answers 200 with the plain text "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

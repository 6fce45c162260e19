// Package handler contains the echo handlers of the HTTP API.  Error
// bodies are always {"error": "<message>"} with German messages; internal
// error details go to the log, never to the client.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/middleware"
)

// dbTimeout bounds every storage call made while serving a request.
const dbTimeout = 5 * time.Second

const msgServerError = "Server-Fehler"

// getUserID extracts the authenticated user id set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case int64:
		if t > 0 {
			return uint64(t), nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID reads the positive integer path parameter name.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// serverError logs err with the request context and answers 500 with msg.
func serverError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg,
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	)
	return jsonError(c, http.StatusInternalServerError, msg)
}

// unauthenticated is returned when a protected handler runs without the
// identity JWTAuth provides.
func unauthenticated(c echo.Context) error {
	return jsonError(c, http.StatusUnauthorized, "Zugriff verweigert")
}

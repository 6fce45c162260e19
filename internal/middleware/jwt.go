package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/messestand-kalkulator/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the embedded identity in the request context under
// CtxUserID (uint64), CtxUsername and CtxRole.  A request without a token
// is answered with 401, one with an invalid or expired token with 403.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Zugriff verweigert"})
			}

			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Ungültiges Token"})
			}

			c.Set(CtxUserID, id.UserID)
			c.Set(CtxUsername, id.Username)
			c.Set(CtxRole, id.Role)
			return next(c)
		}
	}
}

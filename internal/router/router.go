// Package router registers the HTTP routes of the API on an echo instance.
package router

import (
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/handler"
	"github.com/iliyamo/messestand-kalkulator/internal/middleware"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// Deps carries everything the routes need.
type Deps struct {
	Auth      *handler.AuthHandler
	Projects  *handler.ProjectHandler
	Templates *handler.TemplateHandler

	JWTSecret   string
	CORSOrigins []string
	StaticDir   string
	// AuthLimiter guards /api/auth; nil means no limit.
	AuthLimiter echo.MiddlewareFunc
	Log         *zap.Logger
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("2M"))

	RegisterRoutes(e)
	RegisterAuth(e, d.Auth, d.JWTSecret, d.AuthLimiter)
	RegisterAPI(e, d.Projects, d.Templates, d.JWTSecret)
	if d.StaticDir != "" {
		if st, err := os.Stat(d.StaticDir); err == nil && st.IsDir() {
			e.Use(echomw.StaticWithConfig(echomw.StaticConfig{Root: d.StaticDir, HTML5: true}))
		}
	}
	return e
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers /api/auth.  register and login are public and sit
// behind the rate limiter; me requires a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleUser, model.RoleAdmin))
}

// RegisterAPI registers the project and template routes.  All of them
// require a valid token.
func RegisterAPI(e *echo.Echo, p *handler.ProjectHandler, t *handler.TemplateHandler, jwtSecret string) {
	api := e.Group("/api")
	api.Use(middleware.JWTAuth(jwtSecret))
	api.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	api.GET("/projects", p.List)
	api.POST("/projects", p.Create)
	api.PUT("/projects/:id", p.Update)
	api.DELETE("/projects/:id", p.Delete)
	api.GET("/projects/:id/kalkulation", p.Kalkulation)
	api.GET("/projects/:id/export.csv", p.ExportCSV)

	api.GET("/templates/:catalog", t.List)
	api.POST("/templates/:catalog", t.Create)
}

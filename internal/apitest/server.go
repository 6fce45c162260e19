// Package apitest starts the complete HTTP API on a throwaway SQLite
// database for client-side tests.
package apitest

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
	"github.com/iliyamo/messestand-kalkulator/internal/database"
	"github.com/iliyamo/messestand-kalkulator/internal/handler"
	"github.com/iliyamo/messestand-kalkulator/internal/repository"
	"github.com/iliyamo/messestand-kalkulator/internal/router"
	"github.com/iliyamo/messestand-kalkulator/internal/seed"
	"github.com/iliyamo/messestand-kalkulator/internal/service"
)

// Demo credentials seeded into every test server.
const (
	DemoUser     = seed.DemoUsername
	DemoPassword = "demo123"
)

// NewServer migrates and seeds a fresh database and serves the API on a
// local listener.  The base URL of the API is srv.URL + "/api".
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(config.DBConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log := zap.NewNop()
	require.NoError(t, database.Migrate(ctx, db, config.DriverSQLite, log))

	users := repository.NewUserRepo(db)
	templates := repository.NewTemplateRepo(db)
	opts := seed.Options{DemoUser: true, DemoPassword: DemoPassword, BcryptCost: 4}
	require.NoError(t, seed.Run(ctx, templates, users, opts, log))

	cfg := config.Config{JWTSecret: "apitest-secret", TokenTTL: time.Hour, BcryptCost: 4}
	events := service.NewEventPublisher("", log)
	e := router.New(router.Deps{
		Auth:        handler.NewAuthHandler(cfg, users, events, log),
		Projects:    handler.NewProjectHandler(repository.NewProjectRepo(db), events, log),
		Templates:   handler.NewTemplateHandler(service.NewTemplateService(templates, nil, config.CatalogCacheConfig{}, log), log),
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: []string{"*"},
		Log:         log,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

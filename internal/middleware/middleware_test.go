package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/utils"
)

const secret = "test-secret"

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"id":       c.Get(CtxUserID),
		"username": c.Get(CtxUsername),
		"role":     c.Get(CtxRole),
	})
}

func serve(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret), RequireRole(model.RoleUser, model.RoleAdmin))

	tok, err := utils.NewAccessToken(secret, utils.Identity{UserID: 42, Username: "anna", Role: model.RoleUser}, time.Hour)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken(secret, utils.Identity{UserID: 42, Username: "anna", Role: model.RoleUser}, -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other", utils.Identity{UserID: 42, Role: model.RoleUser}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + tok.Token, http.StatusOK, `{"id":42,"role":"user","username":"anna"}`},
		{"missing", "", http.StatusUnauthorized, `{"error":"Zugriff verweigert"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Zugriff verweigert"}`},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, `{"error":"Zugriff verweigert"}`},
		{"garbage", "Bearer abc.def.ghi", http.StatusForbidden, `{"error":"Ungültiges Token"}`},
		{"expired", "Bearer " + expired.Token, http.StatusForbidden, `{"error":"Ungültiges Token"}`},
		{"other secret", "Bearer " + foreign.Token, http.StatusForbidden, `{"error":"Ungültiges Token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret), RequireRole(model.RoleAdmin))

	tok, err := utils.NewAccessToken(secret, utils.Identity{UserID: 1, Username: "anna", Role: model.RoleUser}, time.Hour)
	require.NoError(t, err)
	rec := serve(e, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, err := utils.NewAccessToken(secret, utils.Identity{UserID: 2, Username: "demo", Role: model.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	rec = serve(e, "Bearer "+admin.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, nil, zap.NewNop()))

	for i := 0; i < 5; i++ {
		rec := serve(e, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /api/auth/login", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", buildRateKey(cfg, c))
	c.Set(CtxUserID, uint64(9))
	assert.Equal(t, "rl:user:9", buildRateKey(cfg, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 6, retryAfterSeconds(5001))
	assert.Equal(t, 0, retryAfterSeconds(-20))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, "/ok", entries[0].ContextMap()["route"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(500), entries[1].ContextMap()["status"])
}

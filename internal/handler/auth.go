package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/repository"
	"github.com/iliyamo/messestand-kalkulator/internal/utils"
)

// UserEvents is notified after a successful registration.
type UserEvents interface {
	UserRegistered(ctx context.Context, userID uint64, username string)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Events UserEvents
	Log    *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, ev UserEvents, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Events: ev, Log: log}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

const (
	msgInvalidCredentials = "Ungültige Anmeldedaten"
	msgPasswordTooLong    = "Passwort darf höchstens 72 Bytes lang sein"
)

// Register creates a user account.  Every account gets the user role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Ungültige Anfrage")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "Alle Felder sind erforderlich")
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		return jsonError(c, http.StatusBadRequest, msgPasswordTooLong)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return jsonError(c, http.StatusBadRequest, "Benutzername oder E-Mail bereits vergeben")
		}
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return jsonError(c, http.StatusBadRequest, msgPasswordTooLong)
		}
		return serverError(c, h.Log, "Fehler bei der Registrierung", err)
	}
	if h.Events != nil {
		h.Events.UserRegistered(ctx, uid, req.Username)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Benutzer erfolgreich erstellt", "userId": uid})
}

// Login verifies the password and issues a bearer token.  An unknown
// username and a wrong password produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Ungültige Anfrage")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "Benutzername und Passwort erforderlich")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// same bcrypt work as a wrong password
			utils.VerifyPassword(h.dummyPasswordHash(), req.Password)
			return jsonError(c, http.StatusUnauthorized, msgInvalidCredentials)
		}
		return serverError(c, h.Log, msgServerError, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return jsonError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}, h.Cfg.TokenTTL)
	if err != nil {
		return serverError(c, h.Log, msgServerError, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: tok.Token, User: u.Public()})
}

// Me returns the public record of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return jsonError(c, http.StatusNotFound, "Benutzer nicht gefunden")
		}
		return serverError(c, h.Log, msgServerError, err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// dummyPasswordHash is compared against when the username is unknown.
// It is hashed once, with the configured cost.
func (h *AuthHandler) dummyPasswordHash() string {
	h.dummyOnce.Do(func() {
		hash, err := utils.HashPassword("messestand-dummy-password", h.Cfg.BcryptCost)
		if err != nil {
			h.Log.Error("dummy hash failed", zap.Error(err))
			return
		}
		h.dummyHash = hash
	})
	return h.dummyHash
}

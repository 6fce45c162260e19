package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/pricing"
	"github.com/iliyamo/messestand-kalkulator/internal/repository"
)

// ProjectEvents is notified after successful project writes.
type ProjectEvents interface {
	ProjectSaved(ctx context.Context, p *model.Project, created bool)
	ProjectDeleted(ctx context.Context, userID, projectID uint64)
}

// ProjectHandler serves /api/projects.  Every operation is scoped to the
// authenticated user; another user's project answers 404.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
	Events   ProjectEvents
	Log      *zap.Logger
}

func NewProjectHandler(p *repository.ProjectRepo, ev ProjectEvents, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{Projects: p, Events: ev, Log: log}
}

const (
	msgProjectNotFound = "Projekt nicht gefunden"
	msgInvalidID       = "Ungültige Projekt-ID"
)

// dimension is a booth measure in metres.  The form posts it as a number,
// a numeric string, "" or null; the last two mean "not given".
type dimension struct{ v *float64 }

func (d *dimension) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		d.v = nil
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		d.v = nil
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid dimension %s", b)
	}
	d.v = &f
	return nil
}

type projectReq struct {
	Projektname string          `json:"projektname"`
	Breite      dimension       `json:"breite"`
	Tiefe       dimension       `json:"tiefe"`
	Hoehe       dimension       `json:"hoehe"`
	System      string          `json:"system"`
	Data        json.RawMessage `json:"data"`
}

// bindProject decodes and validates the request body into a project of
// userID.  On failure it returns the message for a 400 response.
func bindProject(c echo.Context, userID uint64) (*model.Project, string) {
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return nil, "Ungültige Projektdaten"
	}
	req.Projektname = strings.TrimSpace(req.Projektname)
	if req.Projektname == "" {
		return nil, "Projektname fehlt"
	}
	data, err := model.DecodePayload(req.Data)
	if err != nil {
		return nil, "Ungültige Projektdaten"
	}
	system := strings.TrimSpace(req.System)
	if system == "" {
		system = model.DefaultSystem
	}
	return &model.Project{
		UserID:      userID,
		Projektname: req.Projektname,
		Breite:      req.Breite.v,
		Tiefe:       req.Tiefe.v,
		Hoehe:       req.Hoehe.v,
		System:      system,
		Data:        data,
	}, ""
}

// List returns the caller's projects, most recently updated first.
func (h *ProjectHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Projects.ListByOwner(ctx, uid)
	if err != nil {
		return serverError(c, h.Log, "Fehler beim Laden der Projekte", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Create stores a new project for the caller.
func (h *ProjectHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	p, msg := bindProject(c, uid)
	if p == nil {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Projects.Create(ctx, p); err != nil {
		return serverError(c, h.Log, "Fehler beim Erstellen des Projekts", err)
	}
	if h.Events != nil {
		h.Events.ProjectSaved(ctx, p, true)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID, "message": "Projekt erstellt"})
}

// Update replaces all fields of one of the caller's projects.
func (h *ProjectHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, msgInvalidID)
	}
	p, msg := bindProject(c, uid)
	if p == nil {
		return jsonError(c, http.StatusBadRequest, msg)
	}
	p.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Projects.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return jsonError(c, http.StatusNotFound, msgProjectNotFound)
		}
		return serverError(c, h.Log, "Fehler beim Aktualisieren des Projekts", err)
	}
	if h.Events != nil {
		h.Events.ProjectSaved(ctx, p, false)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Projekt aktualisiert"})
}

// Delete removes one of the caller's projects.
func (h *ProjectHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, msgInvalidID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Projects.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return jsonError(c, http.StatusNotFound, msgProjectNotFound)
		}
		return serverError(c, h.Log, "Fehler beim Löschen des Projekts", err)
	}
	if h.Events != nil {
		h.Events.ProjectDeleted(ctx, uid, id)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Projekt gelöscht"})
}

// Kalkulation returns the category and grand totals of a stored project.
func (h *ProjectHandler) Kalkulation(c echo.Context) error {
	p, err := h.load(c)
	if p == nil {
		return err
	}
	return c.JSON(http.StatusOK, pricing.Calculate(p.Data))
}

// ExportCSV downloads the line items of a stored project as CSV.
func (h *ProjectHandler) ExportCSV(c echo.Context) error {
	p, err := h.load(c)
	if p == nil {
		return err
	}
	var buf bytes.Buffer
	if err := pricing.WriteCSV(&buf, p.Data); err != nil {
		return serverError(c, h.Log, msgServerError, err)
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": pricing.ExportFileName(p.Projektname)})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// load fetches the caller's project named by :id.  When it returns a nil
// project the response has already been written.
func (h *ProjectHandler) load(c echo.Context) (*model.Project, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, unauthenticated(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, jsonError(c, http.StatusBadRequest, msgInvalidID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Projects.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, jsonError(c, http.StatusNotFound, msgProjectNotFound)
		}
		return nil, serverError(c, h.Log, "Fehler beim Laden des Projekts", err)
	}
	return p, nil
}

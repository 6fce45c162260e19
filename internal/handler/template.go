package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// TemplateCatalog is implemented by service.TemplateService.
type TemplateCatalog interface {
	List(ctx context.Context, c model.Catalog, userID uint64) ([]model.Template, error)
	Create(ctx context.Context, t *model.Template) error
}

// TemplateHandler serves /api/templates/:catalog.
type TemplateHandler struct {
	Templates TemplateCatalog
	Log       *zap.Logger
}

func NewTemplateHandler(t TemplateCatalog, log *zap.Logger) *TemplateHandler {
	return &TemplateHandler{Templates: t, Log: log}
}

// flexBool accepts true/false, 0/1, "true"/"false", "1"/"0", "" and null.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(string(bytes.Trim(bytes.TrimSpace(b), `"`))) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid boolean %s", b)
	}
	return nil
}

type templateReq struct {
	Name      string       `json:"name"`
	Typ       string       `json:"typ"`
	Kategorie string       `json:"kategorie"`
	Einheit   string       `json:"einheit"`
	Preis     model.Amount `json:"preis"`
	IsGlobal  flexBool     `json:"is_global"`
}

// typeTag picks the tag field that belongs to catalog c, falling back to
// the other one.
func (r templateReq) typeTag(c model.Catalog) string {
	first, second := r.Typ, r.Kategorie
	if c == model.CatalogZusatz {
		first, second = second, first
	}
	if s := strings.TrimSpace(first); s != "" {
		return s
	}
	return strings.TrimSpace(second)
}

// templateJSON renders t the way the catalog tables name their columns.
func templateJSON(t model.Template) echo.Map {
	tag := "typ"
	if t.Catalog == model.CatalogZusatz {
		tag = "kategorie"
	}
	global := 0
	if t.IsGlobal {
		global = 1
	}
	return echo.Map{
		"id":         t.ID,
		"user_id":    t.UserID,
		"name":       t.Name,
		tag:          t.Typ,
		"einheit":    t.Einheit,
		"preis":      t.Preis,
		"is_global":  global,
		"created_at": t.CreatedAt,
	}
}

func catalogParam(c echo.Context) (model.Catalog, bool) {
	cat, err := model.ParseCatalog(c.Param("catalog"))
	return cat, err == nil
}

// List returns the global templates of the catalog plus the caller's own.
func (h *TemplateHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	cat, ok := catalogParam(c)
	if !ok {
		return jsonError(c, http.StatusNotFound, "Katalog nicht gefunden")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Templates.List(ctx, cat, uid)
	if err != nil {
		return serverError(c, h.Log, "Fehler beim Laden der Vorlagen", err)
	}
	out := make([]echo.Map, 0, len(list))
	for _, t := range list {
		out = append(out, templateJSON(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a template owned by the caller, visible to everyone when
// is_global is set.
func (h *TemplateHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	cat, ok := catalogParam(c)
	if !ok {
		return jsonError(c, http.StatusNotFound, "Katalog nicht gefunden")
	}

	var req templateReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Ungültige Vorlagendaten")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, http.StatusBadRequest, "Name ist erforderlich")
	}

	t := &model.Template{
		UserID:   &uid,
		Catalog:  cat,
		Name:     req.Name,
		Typ:      req.typeTag(cat),
		Einheit:  strings.TrimSpace(req.Einheit),
		Preis:    req.Preis.Float(),
		IsGlobal: bool(req.IsGlobal),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Templates.Create(ctx, t); err != nil {
		return serverError(c, h.Log, "Fehler beim Erstellen der Vorlage", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": t.ID, "message": "Vorlage erstellt"})
}

// Package client talks to the calculator API and keeps the editable state
// of one project in memory.  It is the engine behind cmd/kalkulator.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/pricing"
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with one of the statuses.
func IsStatus(err error, statuses ...int) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	for _, s := range statuses {
		if ae.Status == s {
			return true
		}
	}
	return false
}

// API is a typed client for the HTTP API.  Token is sent as bearer
// credential when set.
type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewAPI returns a client for the API rooted at baseURL, for example
// http://localhost:3001/api.
func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// LoginResult is the answer of a successful login.
type LoginResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// ProjectInput is the body of project create and update requests.
type ProjectInput struct {
	Projektname string        `json:"projektname"`
	Breite      *float64      `json:"breite"`
	Tiefe       *float64      `json:"tiefe"`
	Hoehe       *float64      `json:"hoehe"`
	System      string        `json:"system"`
	Data        model.Payload `json:"data"`
}

// CatalogEntry is a template as listed by the server.  Zusatz entries
// carry their tag in Kategorie, the others in Typ.
type CatalogEntry struct {
	ID        uint64  `json:"id"`
	UserID    *uint64 `json:"user_id"`
	Name      string  `json:"name"`
	Typ       string  `json:"typ"`
	Kategorie string  `json:"kategorie"`
	Einheit   string  `json:"einheit"`
	Preis     float64 `json:"preis"`
	IsGlobal  int     `json:"is_global"`
}

// Tag returns the type or category tag, whichever is set.
func (e CatalogEntry) Tag() string {
	if e.Typ != "" {
		return e.Typ
	}
	return e.Kategorie
}

// TemplateInput is the body of a template create request.
type TemplateInput struct {
	Name      string  `json:"name"`
	Typ       string  `json:"typ,omitempty"`
	Kategorie string  `json:"kategorie,omitempty"`
	Einheit   string  `json:"einheit"`
	Preis     float64 `json:"preis"`
	IsGlobal  bool    `json:"is_global"`
}

type idMessage struct {
	ID      uint64 `json:"id"`
	UserID  uint64 `json:"userId"`
	Message string `json:"message"`
}

func (a *API) Register(ctx context.Context, username, email, password string) (uint64, error) {
	var out idMessage
	err := a.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, &out)
	return out.UserID, err
}

func (a *API) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	err := a.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username, "password": password,
	}, &out)
	return out, err
}

func (a *API) Me(ctx context.Context) (model.PublicUser, error) {
	var out model.PublicUser
	err := a.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

func (a *API) Projects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := a.do(ctx, http.MethodGet, "/projects", nil, &out)
	return out, err
}

// Project finds one of the caller's projects in the project list.
func (a *API) Project(ctx context.Context, id uint64) (*model.Project, error) {
	list, err := a.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, &APIError{Status: http.StatusNotFound, Message: "Projekt nicht gefunden"}
}

func (a *API) CreateProject(ctx context.Context, in ProjectInput) (uint64, error) {
	var out idMessage
	err := a.do(ctx, http.MethodPost, "/projects", in, &out)
	return out.ID, err
}

func (a *API) UpdateProject(ctx context.Context, id uint64, in ProjectInput) error {
	return a.do(ctx, http.MethodPut, projectPath(id), in, nil)
}

func (a *API) DeleteProject(ctx context.Context, id uint64) error {
	return a.do(ctx, http.MethodDelete, projectPath(id), nil, nil)
}

func (a *API) Kalkulation(ctx context.Context, id uint64) (pricing.Summary, error) {
	var out pricing.Summary
	err := a.do(ctx, http.MethodGet, projectPath(id)+"/kalkulation", nil, &out)
	return out, err
}

// ExportCSV downloads the server-side CSV export and the suggested file
// name.
func (a *API) ExportCSV(ctx context.Context, id uint64) ([]byte, string, error) {
	res, err := a.send(ctx, http.MethodGet, projectPath(id)+"/export.csv", nil)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}
	name := "Projekt.csv"
	if _, params, err := mime.ParseMediaType(res.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return body, name, nil
}

func (a *API) Templates(ctx context.Context, c model.Catalog) ([]CatalogEntry, error) {
	var out []CatalogEntry
	err := a.do(ctx, http.MethodGet, "/templates/"+string(c), nil, &out)
	return out, err
}

func (a *API) CreateTemplate(ctx context.Context, c model.Catalog, in TemplateInput) (uint64, error) {
	var out idMessage
	err := a.do(ctx, http.MethodPost, "/templates/"+string(c), in, &out)
	return out.ID, err
}

func projectPath(id uint64) string {
	return "/projects/" + strconv.FormatUint(id, 10)
}

// do sends body as JSON and decodes a 2xx answer into out (when non-nil).
func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	res, err := a.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *APIError.
// On success the caller owns the response body.
func (a *API) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	res, err := a.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Verbindungsfehler: %w", err)
	}
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return res, nil
	}
	defer res.Body.Close()

	apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
	var eb struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&eb); err == nil && eb.Error != "" {
		apiErr.Message = eb.Error
	}
	return nil, apiErr
}

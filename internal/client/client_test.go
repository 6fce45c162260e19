package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/messestand-kalkulator/internal/apitest"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

func loggedIn(t *testing.T, srv *httptest.Server) *API {
	t.Helper()
	api := NewAPI(srv.URL + "/api/")
	res, err := api.Login(context.Background(), apitest.DemoUser, apitest.DemoPassword)
	require.NoError(t, err)
	api.Token = res.Token
	return api
}

func TestAPI_AuthFlow(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t)
	api := NewAPI(srv.URL + "/api")

	id, err := api.Register(ctx, "anna", "anna@example.com", "geheim")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = api.Register(ctx, "anna", "x@example.com", "geheim")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, "Benutzername oder E-Mail bereits vergeben", err.(*APIError).Message)

	_, err = api.Login(ctx, "anna", "falsch")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	res, err := api.Login(ctx, "anna", "geheim")
	require.NoError(t, err)
	assert.Equal(t, id, res.User.ID)

	_, err = api.Me(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	api.Token = res.Token
	me, err := api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "anna", me.Username)
	assert.Equal(t, model.RoleUser, me.Role)
}

func TestEditor_SaveLoadAndExport(t *testing.T) {
	ctx := context.Background()
	api := loggedIn(t, apitest.NewServer(t))

	alu, err := api.Templates(ctx, model.CatalogAluvision)
	require.NoError(t, err)
	zus, err := api.Templates(ctx, model.CatalogZusatz)
	require.NoError(t, err)

	ed := New(api)
	_, err = ed.Save(ctx)
	assert.ErrorIs(t, err, ErrNameMissing)

	ed.Projektname = "Messe Köln"
	for _, tpl := range alu {
		if tpl.Name == "Linearprofil" {
			ed.AddTemplate(model.CatalogAluvision, tpl)
		}
	}
	require.Len(t, ed.Data.AluvisionKomponenten, 1)
	require.NoError(t, ed.SetField(model.CatalogAluvision, 0, "menge", "2"))
	require.NoError(t, ed.SetField(model.CatalogAluvision, 0, "laenge", "3"))
	ed.AddTemplate(model.CatalogZusatz, zus[0])
	assert.Equal(t, "Möbel", ed.Data.Zusatzausstattung[0].Typ)
	ed.SetMietdauer(5)

	totals := ed.Totals()
	assert.Equal(t, 90.0, totals.Aluvision)
	assert.Equal(t, 925.0, totals.Zusatz)
	assert.Equal(t, 1015.0, totals.Gesamt)

	created, err := ed.Save(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotZero(t, ed.ID)

	server, err := api.Kalkulation(ctx, ed.ID)
	require.NoError(t, err)
	assert.Equal(t, totals, server)

	require.NoError(t, ed.Remove(model.CatalogZusatz, 0))
	created, err = ed.Save(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	p, err := api.Project(ctx, ed.ID)
	require.NoError(t, err)
	other := New(api)
	other.Load(p)
	assert.Equal(t, ed.Data, other.Data)
	assert.Equal(t, 90.0, other.Totals().Gesamt)

	dir := t.TempDir()
	path, err := other.ExportCSV(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Messe Köln.csv"), path)
	local, err := os.ReadFile(path)
	require.NoError(t, err)

	remote, name, err := api.ExportCSV(ctx, ed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Messe Köln.csv", name)
	assert.Equal(t, string(local), string(remote))
	assert.Equal(t, "Kategorie;Bezeichnung;Menge;Preis;Total\nAluvision;Linearprofil;2;15;90.00\n", string(local))

	require.NoError(t, api.DeleteProject(ctx, ed.ID))
	_, err = api.Project(ctx, ed.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestAPI_CreateTemplate(t *testing.T) {
	ctx := context.Background()
	api := loggedIn(t, apitest.NewServer(t))

	id, err := api.CreateTemplate(ctx, model.CatalogPixlip, TemplateInput{Name: "Pixlip Ecke", Typ: "Verbinder", Einheit: "Stück", Preis: 12.5})
	require.NoError(t, err)
	assert.NotZero(t, id)

	list, err := api.Templates(ctx, model.CatalogPixlip)
	require.NoError(t, err)
	last := list[len(list)-1]
	assert.Equal(t, "Pixlip Ecke", last.Name)
	assert.Equal(t, "Verbinder", last.Tag())
	assert.Equal(t, 12.5, last.Preis)
	assert.Equal(t, 0, last.IsGlobal)
}

func TestEditor_FieldErrors(t *testing.T) {
	ed := New(nil)
	ed.AddItem(model.CatalogPixlip, model.LineItem{Bezeichnung: "Rahmen", Menge: 1, Einzelpreis: 95})

	assert.ErrorIs(t, ed.SetField(model.CatalogPixlip, 3, "menge", "1"), ErrNoSuchItem)
	assert.Error(t, ed.SetField(model.CatalogPixlip, 0, "menge", "viele"))
	assert.Error(t, ed.SetField(model.CatalogPixlip, 0, "farbe", "rot"))
	require.NoError(t, ed.SetField(model.CatalogPixlip, 0, "preis", "97,5"))
	assert.Equal(t, model.Amount(97.5), ed.Data.PixlipKomponenten[0].Einzelpreis)
	assert.ErrorIs(t, ed.Remove(model.CatalogPixlip, -1), ErrNoSuchItem)

	ed.SetMietdauer(0)
	assert.Equal(t, model.Days(1), ed.Data.Mietdauer)
}

func TestParseDimension(t *testing.T) {
	v, err := ParseDimension("2,5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, *v)
	v, err = ParseDimension("-")
	require.NoError(t, err)
	assert.Nil(t, v)
	_, err = ParseDimension("breit")
	assert.Error(t, err)
}

func TestExportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "a_b.csv"), ExportPath("out", "a/b.csv"))
	assert.Equal(t, filepath.Join("out", "a_b.csv"), ExportPath("out", `a\b.csv`))
	assert.Equal(t, filepath.Join("out", "Messe Köln.csv"), ExportPath("out", "Messe Köln.csv"))
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	sess := Session{Token: "tok", User: model.PublicUser{ID: 1, Username: "demo", Email: "demo@messestand.de", Role: model.RoleAdmin}}
	require.NoError(t, store.Save(sess))
	st, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("KALKULATOR_API_URL", "http://example.test/api")
	t.Setenv("KALKULATOR_SESSION_FILE", "")
	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", c.APIURL)
	assert.Equal(t, DefaultSessionPath(), c.SessionFile)
}

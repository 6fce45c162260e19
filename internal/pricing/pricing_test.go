package pricing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

func TestItemTotal(t *testing.T) {
	tests := []struct {
		name    string
		catalog model.Catalog
		item    model.LineItem
		days    int
		want    float64
	}{
		{
			name:    "aluvision profile is priced by length",
			catalog: model.CatalogAluvision,
			item:    model.LineItem{Typ: "Profil", Menge: 2, Einzelpreis: 15, Laenge: "3"},
			days:    1,
			want:    90,
		},
		{
			name:    "linearprofil label without profile type",
			catalog: model.CatalogAluvision,
			item:    model.LineItem{Bezeichnung: "Linearprofil 2m", Typ: "Sonder", Menge: 1, Einzelpreis: 15, Laenge: "2,5"},
			days:    1,
			want:    37.5,
		},
		{
			name:    "profile without length counts one metre",
			catalog: model.CatalogAluvision,
			item:    model.LineItem{Typ: "Profil", Menge: 4, Einzelpreis: 15},
			days:    1,
			want:    60,
		},
		{
			name:    "frame ignores length",
			catalog: model.CatalogAluvision,
			item:    model.LineItem{Typ: "Rahmen", Menge: 2, Einzelpreis: 245, Laenge: "5"},
			days:    3,
			want:    490,
		},
		{
			name:    "zusatz is multiplied by rental days",
			catalog: model.CatalogZusatz,
			item:    model.LineItem{Menge: 1, Einzelpreis: 185},
			days:    5,
			want:    925,
		},
		{
			name:    "zusatz profile is not length priced",
			catalog: model.CatalogZusatz,
			item:    model.LineItem{Typ: "Profil", Menge: 1, Einzelpreis: 10, Laenge: "4"},
			days:    2,
			want:    20,
		},
		{
			name:    "pixlip has no multiplier",
			catalog: model.CatalogPixlip,
			item:    model.LineItem{Menge: 3, Einzelpreis: 145},
			days:    7,
			want:    435,
		},
		{
			name:    "missing quantity contributes nothing",
			catalog: model.CatalogPixlip,
			item:    model.LineItem{Einzelpreis: 145},
			days:    1,
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemTotal(tt.item, RulesFor(tt.catalog), tt.days)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculate(t *testing.T) {
	p := model.Payload{
		AluvisionKomponenten: []model.LineItem{
			{Bezeichnung: "Omni 55 Rahmen 992 x 2480 mm", Typ: "Rahmen", Menge: 4, Einzelpreis: 245},
			{Bezeichnung: "Linearprofil", Typ: "Profil", Menge: 2, Einzelpreis: 15, Laenge: "3"},
		},
		PixlipKomponenten: []model.LineItem{
			{Bezeichnung: "Pixlip Rahmen 1000 x 2500 mm", Typ: "Rahmen", Menge: 3, Einzelpreis: 145},
		},
		Zusatzausstattung: []model.LineItem{
			{Bezeichnung: "Theke Standard", Typ: "Möbel", Menge: 1, Einzelpreis: 185},
			{Bezeichnung: "LED-Spot", Typ: "Licht", Menge: 4, Einzelpreis: 25},
		},
		Mietdauer: 5,
	}

	s := Calculate(p)
	assert.InDelta(t, 1070, s.Aluvision, 1e-9)
	assert.InDelta(t, 435, s.Pixlip, 1e-9)
	assert.InDelta(t, 1425, s.Zusatz, 1e-9)
	assert.InDelta(t, 2930, s.Gesamt, 1e-9)
	assert.Equal(t, s.Zusatz, s.Category(model.CatalogZusatz))

	// Same input, same output.
	assert.Equal(t, s, Calculate(p))
}

func TestCalculate_LengthWithUnit(t *testing.T) {
	p := model.Payload{AluvisionKomponenten: []model.LineItem{
		{Bezeichnung: "Linearprofil", Typ: "Profil", Menge: 2, Einzelpreis: 15, Laenge: "3 m"},
		{Bezeichnung: "Querprofil", Typ: "Profil", Menge: 1, Einzelpreis: 10, Laenge: "2m"},
	}}
	assert.InDelta(t, 110, Calculate(p).Aluvision, 1e-9)
}

func TestCalculate_ZeroRentalCountsAsOneDay(t *testing.T) {
	p := model.Payload{Zusatzausstattung: []model.LineItem{{Menge: 2, Einzelpreis: 45}}}
	assert.InDelta(t, 90, Calculate(p).Zusatz, 1e-9)
}

func TestWriteCSV_AluvisionRow(t *testing.T) {
	p := model.Payload{AluvisionKomponenten: []model.LineItem{
		{Bezeichnung: "X", Menge: 2, Einzelpreis: 10, Typ: "Profil", Laenge: "2"},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, p))

	assert.Equal(t, "Kategorie;Bezeichnung;Menge;Preis;Total\nAluvision;X;2;10;40.00\n", buf.String())
}

func TestWriteCSV_AllCategories(t *testing.T) {
	p := model.Payload{
		AluvisionKomponenten: []model.LineItem{{Bezeichnung: "Linearprofil", Typ: "Profil", Menge: 1, Einzelpreis: 15, Laenge: "1.5"}},
		PixlipKomponenten:    []model.LineItem{{Bezeichnung: "Pixlip Rahmen 500 x 2500 mm", Menge: 2, Einzelpreis: 95}},
		Zusatzausstattung:    []model.LineItem{{Bezeichnung: "Monitor 55\"", Menge: 1, Einzelpreis: 280}},
		Mietdauer:            3,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, p))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Aluvision;Linearprofil;1;15;22.50", lines[1])
	assert.Equal(t, "Pixlip;Pixlip Rahmen 500 x 2500 mm;2;95;190.00", lines[2])
	assert.Equal(t, `Zusatz;"Monitor 55""";1;280;840.00`, lines[3])
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "Messe Köln.csv", ExportFileName("Messe Köln"))
	assert.Equal(t, "Projekt.csv", ExportFileName("  "))
}

package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Lenient(t *testing.T) {
	raw := `{
		"aluvisionKomponenten": [
			{"bezeichnung": "Linearprofil", "typ": "Profil", "menge": "2", "einzelpreis": 15, "laenge": "3"},
			{"bezeichnung": "T-Corner", "typ": "Verbinder", "menge": null, "einzelpreis": "18,5", "laenge": 1.5}
		],
		"pixlipKomponenten": [],
		"zusatzausstattung": [{"bezeichnung": "Theke", "typ": "Möbel", "menge": 1, "einzelpreis": "abc"}],
		"mietdauer": "4",
		"unbekannt": true
	}`

	p, err := DecodePayload([]byte(raw))
	require.NoError(t, err)

	require.Len(t, p.AluvisionKomponenten, 2)
	assert.Equal(t, Amount(2), p.AluvisionKomponenten[0].Menge)
	assert.Equal(t, Length("3"), p.AluvisionKomponenten[0].Laenge)
	assert.Equal(t, Amount(0), p.AluvisionKomponenten[1].Menge)
	assert.Equal(t, Amount(18.5), p.AluvisionKomponenten[1].Einzelpreis)
	assert.Equal(t, Length("1.5"), p.AluvisionKomponenten[1].Laenge)
	assert.Equal(t, Amount(0), p.Zusatzausstattung[0].Einzelpreis)
	assert.Equal(t, Days(4), p.Mietdauer)
}

func TestDecodePayload_EmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "null", "{}"} {
		p, err := DecodePayload([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, Days(1), p.Mietdauer)
		assert.NotNil(t, p.AluvisionKomponenten)
		assert.NotNil(t, p.PixlipKomponenten)
		assert.NotNil(t, p.Zusatzausstattung)
	}
}

func TestDecodePayload_RejectsBadStructure(t *testing.T) {
	tests := map[string]string{
		"list is a string":   `{"aluvisionKomponenten": "x"}`,
		"item is a number":   `{"pixlipKomponenten": [1]}`,
		"quantity is a bool": `{"zusatzausstattung": [{"menge": true}]}`,
		"length is object":   `{"aluvisionKomponenten": [{"laenge": {}}]}`,
		"not json":           `{"aluvisionKomponenten": [`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePayload([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPayload), "got %v", err)
		})
	}
}

func TestDecodePayload_RentalDaysRange(t *testing.T) {
	for raw, want := range map[string]Days{
		`3650`:   MaxRentalDays,
		`"2,9"`:  2,
		`-1e30`:  1,
		`0`:      1,
		`"viel"`: 1,
	} {
		p, err := DecodePayload([]byte(`{"mietdauer": ` + raw + `}`))
		require.NoError(t, err, raw)
		assert.Equal(t, want, p.Mietdauer, raw)
	}

	for _, raw := range []string{`3651`, `1e30`, `"1e30"`} {
		_, err := DecodePayload([]byte(`{"mietdauer": ` + raw + `}`))
		assert.ErrorIs(t, err, ErrInvalidPayload, raw)
	}

	p := Payload{Mietdauer: MaxRentalDays + 1}
	_, err := EncodePayload(p)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestPayload_RoundTrip(t *testing.T) {
	in := Payload{
		AluvisionKomponenten: []LineItem{{Bezeichnung: "Linearprofil", Typ: "Profil", Menge: 2, Einzelpreis: 15, Laenge: "3"}},
		PixlipKomponenten:    []LineItem{{Bezeichnung: "Pixlip Rahmen 1000 x 2500 mm", Typ: "Rahmen", Menge: 3, Einzelpreis: 145}},
		Zusatzausstattung:    []LineItem{{Bezeichnung: "LED-Spot", Typ: "Licht", Menge: 4, Einzelpreis: 25.5, Laenge: ""}},
		Mietdauer:            5,
	}

	b, err := EncodePayload(in)
	require.NoError(t, err)
	out, err := DecodePayload(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	again, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(again))
}

func TestLength_Meters(t *testing.T) {
	tests := map[Length]float64{
		"":      1,
		"3":     3,
		"2,5":   2.5,
		" 1.2 ": 1.2,
		"0":     1,
		"abc":   1,
		"NaN":   1,
		"3 m":   3,
		"2m":    2,
		"2,5 m": 2.5,
		".5":    0.5,
		"1e1m":  10,
		"m3":    1,
		"1e999": 1,
	}
	for in, want := range tests {
		assert.Equal(t, want, in.Meters(), "laenge %q", in)
	}
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog(" Zusatz ")
	require.NoError(t, err)
	assert.Equal(t, CatalogZusatz, c)
	assert.Equal(t, "Zusatz", c.Label())

	_, err = ParseCatalog("holz")
	assert.ErrorIs(t, err, ErrUnknownCatalog)
}

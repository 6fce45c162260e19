package model

import (
	"errors"
	"strings"
	"time"
)

// Catalog names one of the three part catalogs.  The string value is the
// path segment used by /api/templates/:catalog.
type Catalog string

const (
	CatalogAluvision Catalog = "aluvision"
	CatalogPixlip    Catalog = "pixlip"
	CatalogZusatz    Catalog = "zusatz"
)

// Catalogs lists every catalog in display order.
var Catalogs = []Catalog{CatalogAluvision, CatalogPixlip, CatalogZusatz}

// ErrUnknownCatalog is returned by ParseCatalog for anything but the three
// known catalog names.
var ErrUnknownCatalog = errors.New("unknown catalog")

// ParseCatalog normalises s and maps it to a Catalog.
func ParseCatalog(s string) (Catalog, error) {
	switch Catalog(strings.ToLower(strings.TrimSpace(s))) {
	case CatalogAluvision:
		return CatalogAluvision, nil
	case CatalogPixlip:
		return CatalogPixlip, nil
	case CatalogZusatz:
		return CatalogZusatz, nil
	}
	return "", ErrUnknownCatalog
}

// Label is the human readable catalog name used in exports.
func (c Catalog) Label() string {
	switch c {
	case CatalogAluvision:
		return "Aluvision"
	case CatalogPixlip:
		return "Pixlip"
	case CatalogZusatz:
		return "Zusatz"
	}
	return string(c)
}

// Template is a priced part in one of the catalogs.  Rows with a nil
// UserID are global defaults; all others belong to the user that created
// them.  Typ holds the `typ` column for Aluvision and Pixlip and the
// `kategorie` column for Zusatz.
//
// Fields:
//
//	ID        – primary key identifier (per catalog table).
//	UserID    – owning user, nil for seeded defaults.
//	Catalog   – catalog the row lives in.
//	Name      – display name, not unique.
//	Typ       – type or category tag (e.g. Rahmen, Profil, Möbel).
//	Einheit   – unit (Stück, m²).
//	Preis     – unit price in EUR.
//	IsGlobal  – visible to all users when true.
//	CreatedAt – timestamp of creation.
type Template struct {
	ID        uint64    // <catalog>_templates.id
	UserID    *uint64   // <catalog>_templates.user_id (nullable)
	Catalog   Catalog   // table selector, not a column
	Name      string    // <catalog>_templates.name
	Typ       string    // <catalog>_templates.typ | kategorie
	Einheit   string    // <catalog>_templates.einheit
	Preis     float64   // <catalog>_templates.preis
	IsGlobal  bool      // <catalog>_templates.is_global
	CreatedAt time.Time // <catalog>_templates.created_at
}

// DefaultTemplate is one seeded catalog entry.
type DefaultTemplate struct {
	Name    string
	Typ     string
	Einheit string
	Preis   float64
}

// DefaultTemplates holds the global entries every catalog starts with.
var DefaultTemplates = map[Catalog][]DefaultTemplate{
	CatalogAluvision: {
		{"Omni 55 Rahmen 496 x 2480 mm", "Rahmen", "Stück", 165},
		{"Omni 55 Rahmen 992 x 2480 mm", "Rahmen", "Stück", 245},
		{"Omni 55 Rahmen 992 x 2976 mm", "Rahmen", "Stück", 285},
		{"Omni 55 Rahmen 992 x 1984 mm", "Rahmen", "Stück", 215},
		{"Omni 55 Rahmen 992 x 992 mm", "Rahmen", "Stück", 125},
		{"Omni 55 Tür 992 x 2480 mm", "Tür", "Stück", 385},
		{"Omni 55 Lamellenrahmen 992 x 2480 mm", "Lamellenrahmen", "Stück", 295},
		{"Linearprofil", "Profil", "Stück", 15},
		{"T-Corner", "Verbinder", "Stück", 18},
		{"L-Corner", "Verbinder", "Stück", 16},
		{"X-Corner", "Verbinder", "Stück", 22},
		{"Monitorhalter", "Halterung", "Stück", 45},
		{"Kedertextil Durchlicht", "Textil", "m²", 35},
		{"Kedertextil Blockout", "Textil", "m²", 42},
	},
	CatalogPixlip: {
		{"Pixlip Rahmen 1000 x 2500 mm", "Rahmen", "Stück", 145},
		{"Pixlip Rahmen 500 x 2500 mm", "Rahmen", "Stück", 95},
		{"Kedertextil Durchlicht", "Textil", "m²", 32},
		{"Kedertextil Blockout", "Textil", "m²", 38},
	},
	CatalogZusatz: {
		{"Theke Standard", "Möbel", "Stück", 185},
		{"Stehtisch", "Möbel", "Stück", 45},
		{"Barhocker", "Möbel", "Stück", 35},
		{"LED-Spot", "Licht", "Stück", 25},
		{"Monitor 55\"", "AV", "Stück", 280},
		{"Teppich", "Boden", "m²", 12},
	},
}

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/pricing"
)

// ErrNameMissing is returned by Save for a project without name.
var ErrNameMissing = errors.New("Projektname fehlt")

// ErrNoSuchItem is returned for a line number outside the list.
var ErrNoSuchItem = errors.New("keine solche Position")

// ProjectWriter persists projects.  *API implements it.
type ProjectWriter interface {
	CreateProject(ctx context.Context, in ProjectInput) (uint64, error)
	UpdateProject(ctx context.Context, id uint64, in ProjectInput) error
}

// Editor is the in-memory state of the project being edited.  Nothing is
// sent to the server before Save.  ID is zero until the project has been
// stored once.
type Editor struct {
	ID          uint64
	Projektname string
	Breite      *float64
	Tiefe       *float64
	Hoehe       *float64
	System      string
	Data        model.Payload

	w ProjectWriter
}

// New starts an empty project.
func New(w ProjectWriter) *Editor {
	return &Editor{
		System: model.DefaultSystem,
		Data: model.Payload{
			AluvisionKomponenten: []model.LineItem{},
			PixlipKomponenten:    []model.LineItem{},
			Zusatzausstattung:    []model.LineItem{},
			Mietdauer:            1,
		},
		w: w,
	}
}

// Load replaces the editor state with a stored project.
func (e *Editor) Load(p *model.Project) {
	*e = Editor{
		ID:          p.ID,
		Projektname: p.Projektname,
		Breite:      p.Breite,
		Tiefe:       p.Tiefe,
		Hoehe:       p.Hoehe,
		System:      p.System,
		Data:        p.Data,
		w:           e.w,
	}
	_ = e.Data.Validate()
}

// AddTemplate appends one unit of a catalog entry to list c.
func (e *Editor) AddTemplate(c model.Catalog, t CatalogEntry) {
	e.AddItem(c, model.LineItem{
		Bezeichnung: t.Name,
		Typ:         t.Tag(),
		Menge:       1,
		Einzelpreis: model.Amount(t.Preis),
	})
}

// AddItem appends a free-form line item to list c.
func (e *Editor) AddItem(c model.Catalog, it model.LineItem) {
	e.Data.SetItems(c, append(e.Data.Items(c), it))
}

// SetField changes one field of item i (zero based) of list c.  Numbers
// accept a decimal comma; laenge is kept as typed.
func (e *Editor) SetField(c model.Catalog, i int, field, value string) error {
	items := e.Data.Items(c)
	if i < 0 || i >= len(items) {
		return ErrNoSuchItem
	}
	it := &items[i]
	switch strings.ToLower(field) {
	case "bezeichnung", "name":
		it.Bezeichnung = value
	case "typ":
		it.Typ = value
	case "menge":
		v, err := parseNumber(value)
		if err != nil {
			return err
		}
		it.Menge = model.Amount(v)
	case "einzelpreis", "preis":
		v, err := parseNumber(value)
		if err != nil {
			return err
		}
		it.Einzelpreis = model.Amount(v)
	case "laenge", "länge":
		it.Laenge = model.Length(strings.TrimSpace(value))
	default:
		return fmt.Errorf("unbekanntes Feld %q", field)
	}
	return nil
}

// Remove deletes item i (zero based) of list c.
func (e *Editor) Remove(c model.Catalog, i int) error {
	items := e.Data.Items(c)
	if i < 0 || i >= len(items) {
		return ErrNoSuchItem
	}
	e.Data.SetItems(c, append(items[:i:i], items[i+1:]...))
	return nil
}

// SetMietdauer sets the rental days; values below one become one.
func (e *Editor) SetMietdauer(days int) {
	if days < 1 {
		days = 1
	}
	e.Data.Mietdauer = model.Days(days)
}

// Totals prices the current state.
func (e *Editor) Totals() pricing.Summary {
	return pricing.Calculate(e.Data)
}

// Save creates the project on first call and replaces it afterwards.  It
// reports whether the project was created.
func (e *Editor) Save(ctx context.Context) (bool, error) {
	if strings.TrimSpace(e.Projektname) == "" {
		return false, ErrNameMissing
	}
	in := ProjectInput{
		Projektname: e.Projektname,
		Breite:      e.Breite,
		Tiefe:       e.Tiefe,
		Hoehe:       e.Hoehe,
		System:      e.System,
		Data:        e.Data,
	}
	if e.ID != 0 {
		return false, e.w.UpdateProject(ctx, e.ID, in)
	}
	id, err := e.w.CreateProject(ctx, in)
	if err != nil {
		return false, err
	}
	e.ID = id
	return true, nil
}

// ExportCSV writes the line items to <dir>/<Projektname>.csv and returns
// the path.
func (e *Editor) ExportCSV(dir string) (string, error) {
	var buf bytes.Buffer
	if err := pricing.WriteCSV(&buf, e.Data); err != nil {
		return "", err
	}
	path := ExportPath(dir, pricing.ExportFileName(e.Projektname))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("keine Zahl: %q", s)
	}
	return v, nil
}

// ParseDimension reads a booth measure; "" and "-" clear it.
func ParseDimension(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	v, err := parseNumber(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ExportPath joins dir and the export file name.  Path separators in name
// become underscores so a project name cannot point outside dir.
func ExportPath(dir, name string) string {
	return filepath.Join(dir, strings.NewReplacer("/", "_", `\`, "_").Replace(name))
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iliyamo/messestand-kalkulator/internal/client"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

const editHelp = `Befehle im Editor:
  templates <katalog>              Vorlagen eines Katalogs anzeigen
  add <katalog> <nr> [menge]       Vorlage Nr. als Position hinzufügen
  item <katalog> <bezeichnung>     freie Position hinzufügen
  set <katalog> <pos> <feld> <wert> Feld ändern (bezeichnung, typ, menge, preis, laenge)
  rm <katalog> <pos>               Position entfernen
  miete <tage>                     Mietdauer für Zusatzausstattung
  name <projektname>               Projektname setzen
  dims <breite> <tiefe> <hoehe>    Standmaße in Metern ("-" leert)
  system <aluvision|pixlip|both>   Systemauswahl
  list                             Projekt anzeigen
  total                            Summen anzeigen
  save                             Projekt speichern
  export [verzeichnis]             CSV lokal schreiben
  quit                             Editor verlassen
Kataloge: aluvision, pixlip, zusatz (Abkürzung erlaubt)
`

// editSession is one interactive editing run.  dirty is set by every
// change and cleared by save.
type editSession struct {
	app       *App
	ed        *client.Editor
	templates map[model.Catalog][]client.CatalogEntry
	dirty     bool
}

func (s *editSession) run(ctx context.Context) error {
	a := s.app
	a.printProject(s.ed)
	a.printf("'help' zeigt alle Befehle.\n")
	for {
		line, err := a.prompt("kalkulator")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "quit" || cmd == "exit" {
			if s.dirty {
				a.printf("Hinweis: ungespeicherte Änderungen verworfen\n")
			}
			return nil
		}
		if err := s.exec(ctx, cmd, args); err != nil {
			if client.IsStatus(err, 401, 403) {
				return err
			}
			a.printf("Fehler: %s\n", errorText(err))
		}
	}
}

func (s *editSession) exec(ctx context.Context, cmd string, args []string) error {
	a, ed := s.app, s.ed
	switch cmd {
	case "help", "?":
		a.printf("%s", editHelp)
	case "templates":
		c, err := s.catalog(args, 1)
		if err != nil {
			return err
		}
		list, err := s.catalogEntries(ctx, c)
		if err != nil {
			return err
		}
		a.printTemplates(list)
	case "add":
		c, err := s.catalog(args, 2)
		if err != nil {
			return err
		}
		list, err := s.catalogEntries(ctx, c)
		if err != nil {
			return err
		}
		n, err := position(args[1], len(list))
		if err != nil {
			return err
		}
		ed.AddTemplate(c, list[n])
		if len(args) > 2 {
			pos := len(ed.Data.Items(c)) - 1
			if err := ed.SetField(c, pos, "menge", args[2]); err != nil {
				_ = ed.Remove(c, pos)
				return err
			}
		}
		s.changed()
	case "item":
		c, err := s.catalog(args, 2)
		if err != nil {
			return err
		}
		ed.AddItem(c, model.LineItem{Bezeichnung: strings.Join(args[1:], " "), Menge: 1})
		s.changed()
	case "set":
		c, err := s.catalog(args, 4)
		if err != nil {
			return err
		}
		n, err := position(args[1], len(ed.Data.Items(c)))
		if err != nil {
			return err
		}
		if err := ed.SetField(c, n, args[2], strings.Join(args[3:], " ")); err != nil {
			return err
		}
		s.changed()
	case "rm":
		c, err := s.catalog(args, 2)
		if err != nil {
			return err
		}
		n, err := position(args[1], len(ed.Data.Items(c)))
		if err != nil {
			return err
		}
		if err := ed.Remove(c, n); err != nil {
			return err
		}
		s.changed()
	case "miete":
		if len(args) != 1 {
			return fmt.Errorf("%w: miete <tage>", ErrUsage)
		}
		days, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("keine ganze Zahl: %q", args[0])
		}
		if days > model.MaxRentalDays {
			return fmt.Errorf("höchstens %d Tage", model.MaxRentalDays)
		}
		ed.SetMietdauer(days)
		s.changed()
	case "name":
		ed.Projektname = strings.Join(args, " ")
		s.dirty = true
	case "dims":
		if len(args) != 3 {
			return fmt.Errorf("%w: dims <breite> <tiefe> <hoehe>", ErrUsage)
		}
		var dims [3]*float64
		for i, v := range args {
			d, err := client.ParseDimension(v)
			if err != nil {
				return err
			}
			dims[i] = d
		}
		ed.Breite, ed.Tiefe, ed.Hoehe = dims[0], dims[1], dims[2]
		s.dirty = true
	case "system":
		if len(args) != 1 {
			return fmt.Errorf("%w: system <aluvision|pixlip|both>", ErrUsage)
		}
		switch v := strings.ToLower(args[0]); v {
		case string(model.CatalogAluvision), string(model.CatalogPixlip), model.DefaultSystem:
			ed.System = v
		default:
			return fmt.Errorf("unbekanntes System %q", args[0])
		}
		s.dirty = true
	case "list", "ls":
		a.printProject(ed)
	case "total":
		a.printTotals(ed.Totals())
	case "save":
		created, err := ed.Save(ctx)
		if err != nil {
			return err
		}
		s.dirty = false
		if created {
			a.printf("Projekt erstellt (ID %d)\n", ed.ID)
		} else {
			a.printf("Projekt aktualisiert\n")
		}
	case "export":
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		path, err := ed.ExportCSV(dir)
		if err != nil {
			return err
		}
		a.printf("Exportiert: %s\n", path)
	default:
		return fmt.Errorf("%w: unbekannter Befehl %q, 'help' zeigt alle Befehle", ErrUsage, cmd)
	}
	return nil
}

// changed marks the project dirty and shows the new totals.
func (s *editSession) changed() {
	s.dirty = true
	s.app.printTotals(s.ed.Totals())
}

// catalog checks that args has at least n entries and resolves args[0].
func (s *editSession) catalog(args []string, n int) (model.Catalog, error) {
	if len(args) < n {
		return "", fmt.Errorf("%w: zu wenige Argumente, 'help' zeigt die Syntax", ErrUsage)
	}
	return catalogArg(args[0])
}

// catalogEntries loads a catalog once per session.
func (s *editSession) catalogEntries(ctx context.Context, c model.Catalog) ([]client.CatalogEntry, error) {
	if list, ok := s.templates[c]; ok {
		return list, nil
	}
	list, err := s.app.api.Templates(ctx, c)
	if err != nil {
		return nil, err
	}
	s.templates[c] = list
	return list, nil
}

// position converts a one based number into an index below n.
func position(arg string, n int) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil || v < 1 || v > n {
		return 0, fmt.Errorf("%w: Nummer %s", client.ErrNoSuchItem, arg)
	}
	return v - 1, nil
}

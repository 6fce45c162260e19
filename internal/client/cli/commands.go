package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/iliyamo/messestand-kalkulator/internal/client"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/pricing"
)

func (a *App) register(ctx context.Context, _ []string) error {
	username, err := a.prompt("Benutzername")
	if err != nil {
		return err
	}
	email, err := a.prompt("E-Mail")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	if _, err := a.api.Register(ctx, username, email, password); err != nil {
		return err
	}
	a.printf("Registrierung erfolgreich. Bitte mit 'login' anmelden.\n")
	return nil
}

func (a *App) login(ctx context.Context, _ []string) error {
	username, err := a.prompt("Benutzername")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	res, err := a.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(client.Session{Token: res.Token, User: res.User}); err != nil {
		return err
	}
	a.printf("Angemeldet als %s (%s)\n", res.User.Username, res.User.Role)
	return nil
}

func (a *App) logout(context.Context, []string) error {
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	a.printf("Abgemeldet\n")
	return nil
}

func (a *App) me(ctx context.Context, _ []string) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.printf("%s <%s> Rolle: %s, ID: %d\n", u.Username, u.Email, u.Role, u.ID)
	return nil
}

func (a *App) projects(ctx context.Context, _ []string) error {
	list, err := a.api.Projects(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("Keine Projekte vorhanden\n")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tProjekt\tSystem\tGesamt\tGeändert")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Projektname, p.System,
			euro(pricing.Calculate(p.Data).Gesamt), p.UpdatedAt.Local().Format("02.01.2006 15:04"))
	}
	return tw.Flush()
}

func (a *App) templates(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: Katalog fehlt", ErrUsage)
	}
	c, err := catalogArg(args[0])
	if err != nil {
		return err
	}
	list, err := a.api.Templates(ctx, c)
	if err != nil {
		return err
	}
	a.printTemplates(list)
	return nil
}

func (a *App) printTemplates(list []client.CatalogEntry) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Nr\tName\tTyp\tEinheit\tPreis\t")
	for i, t := range list {
		scope := ""
		if t.IsGlobal == 0 {
			scope = "eigene"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, t.Name, t.Tag(), t.Einheit, euro(t.Preis), scope)
	}
	_ = tw.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	p, err := a.api.Project(ctx, id)
	if err != nil {
		return err
	}
	ed := client.New(a.api)
	ed.Load(p)
	a.printProject(ed)
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}
	body, name, err := a.api.ExportCSV(ctx, id)
	if err != nil {
		return err
	}
	path := client.ExportPath(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return err
	}
	a.printf("Exportiert: %s\n", path)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.api.DeleteProject(ctx, id); err != nil {
		return err
	}
	a.printf("Projekt gelöscht\n")
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	ed := client.New(a.api)
	if len(args) > 0 {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		p, err := a.api.Project(ctx, id)
		if err != nil {
			return err
		}
		ed.Load(p)
	}
	s := &editSession{app: a, ed: ed, templates: map[model.Catalog][]client.CatalogEntry{}}
	return s.run(ctx)
}

// printProject prints the head data, every line item and the totals.
func (a *App) printProject(ed *client.Editor) {
	name := ed.Projektname
	if name == "" {
		name = "(ohne Namen)"
	}
	if ed.ID != 0 {
		a.printf("Projekt %d: %s\n", ed.ID, name)
	} else {
		a.printf("Neues Projekt: %s\n", name)
	}
	a.printf("Maße (B x T x H): %s x %s x %s m, System: %s, Mietdauer: %d Tag(e)\n",
		dim(ed.Breite), dim(ed.Tiefe), dim(ed.Hoehe), ed.System, ed.Data.RentalDays())

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range model.Catalogs {
		items := ed.Data.Items(c)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t\t\t\t\t\t\n", c.Label())
		rules := pricing.RulesFor(c)
		for i, it := range items {
			length := ""
			if rules.Length && pricing.LengthPriced(it) {
				length = fmt.Sprintf("%g m", it.Laenge.Meters())
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%g\t%s\t%s\t%s\n", i+1, it.Bezeichnung, it.Typ,
				it.Menge.Float(), euro(it.Einzelpreis.Float()), length, euro(pricing.ItemTotal(it, rules, ed.Data.RentalDays())))
		}
	}
	_ = tw.Flush()
	a.printTotals(ed.Totals())
}

func (a *App) printTotals(s pricing.Summary) {
	a.printf("Aluvision: %s  Pixlip: %s  Zusatz: %s  Gesamt: %s\n",
		euro(s.Aluvision), euro(s.Pixlip), euro(s.Zusatz), euro(s.Gesamt))
}

func euro(v float64) string {
	return fmt.Sprintf("%.2f €", v)
}

func dim(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// errorText turns API errors into the message the server sent.
func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

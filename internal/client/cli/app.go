// Package cli is the terminal front end of the calculator.  It keeps the
// login token in a session file and talks to the HTTP API through
// client.API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/iliyamo/messestand-kalkulator/internal/client"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("ungültiger Aufruf")

// App runs one command against the API.
type App struct {
	api      *client.API
	sessions *client.SessionStore
	reader   *bufio.Reader
	out      io.Writer
	user     *model.PublicUser
}

// NewApp wires an App from the client configuration.  Prompts read from in
// and all output goes to out.
func NewApp(cfg client.Config, in io.Reader, out io.Writer) *App {
	return &App{
		api:      client.NewAPI(cfg.APIURL),
		sessions: client.NewSessionStore(cfg.SessionFile),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

type command struct {
	usage string
	auth  bool
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register":  {"register", false, (*App).register},
	"login":     {"login", false, (*App).login},
	"logout":    {"logout", false, (*App).logout},
	"me":        {"me", true, (*App).me},
	"projects":  {"projects", true, (*App).projects},
	"templates": {"templates <aluvision|pixlip|zusatz>", true, (*App).templates},
	"show":      {"show <id>", true, (*App).show},
	"export":    {"export <id> [verzeichnis]", true, (*App).export},
	"delete":    {"delete <id>", true, (*App).delete},
	"edit":      {"edit [id]", true, (*App).edit},
}

var commandOrder = []string{"register", "login", "logout", "me", "projects", "templates", "show", "export", "delete", "edit"}

// Run executes args[0] with the remaining arguments.  Without arguments
// it prints the command list.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		a.usage()
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: %s", ErrUsage, args[0])
	}
	if cmd.auth {
		if err := a.restore(); err != nil {
			return err
		}
	}
	err := cmd.run(a, ctx, args[1:])
	if cmd.auth && client.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
		_ = a.sessions.Clear()
		return errors.New("Sitzung abgelaufen, bitte erneut anmelden")
	}
	return err
}

func (a *App) usage() {
	a.printf("Befehle:\n")
	for _, name := range commandOrder {
		a.printf("  %s\n", commands[name].usage)
	}
}

// restore loads the stored token into the API client.
func (a *App) restore() error {
	sess, err := a.sessions.Load()
	if errors.Is(err, client.ErrNoSession) {
		return errors.New("nicht angemeldet, bitte zuerst 'login' ausführen")
	}
	if err != nil {
		return err
	}
	a.api.Token = sess.Token
	a.user = &sess.User
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) prompt(label string) (string, error) {
	return GetSimpleText(a.reader, label, a.out)
}

// idArg parses args[0] as a project id.
func idArg(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: Projekt-ID fehlt", ErrUsage)
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: ungültige Projekt-ID %q", ErrUsage, args[0])
	}
	return id, nil
}

// catalogArg resolves a catalog name or an unambiguous prefix of one.
func catalogArg(s string) (model.Catalog, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" {
		var found []model.Catalog
		for _, c := range model.Catalogs {
			if strings.HasPrefix(string(c), s) {
				found = append(found, c)
			}
		}
		if len(found) == 1 {
			return found[0], nil
		}
	}
	return "", fmt.Errorf("%w: unbekannter Katalog %q", ErrUsage, s)
}

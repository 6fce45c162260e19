// Command kalkulator is the terminal client of the booth calculator.
//
//	kalkulator [-api URL] [-session FILE] <befehl> [argumente]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/iliyamo/messestand-kalkulator/internal/client"
	"github.com/iliyamo/messestand-kalkulator/internal/client/cli"
)

func main() {
	cfg, err := client.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.APIURL, "api", cfg.APIURL, "base URL of the API")
	flag.StringVar(&cfg.SessionFile, "session", cfg.SessionFile, "session file holding the login token")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(cfg, os.Stdin, os.Stdout)
	if err := app.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Fehler:", cliError(err))
		os.Exit(1)
	}
}

func cliError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Package seed fills a fresh database with the default catalog entries and
// the demo account.  Every step is idempotent so it runs on each startup.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

const (
	DemoUsername = "demo"
	DemoEmail    = "demo@messestand.de"
)

// TemplateStore is the part of repository.TemplateRepo seeding needs.
type TemplateStore interface {
	EnsureDefaults(ctx context.Context, c model.Catalog, defaults []model.DefaultTemplate) (int, error)
}

// UserStore is the part of repository.UserRepo seeding needs.
type UserStore interface {
	EnsureUser(ctx context.Context, username, email, password, role string, cost int) (bool, error)
}

// Options controls the demo account.
type Options struct {
	DemoUser     bool
	DemoPassword string
	BcryptCost   int
}

// Run inserts the missing default templates of every catalog and, if
// enabled, the demo admin account.
func Run(ctx context.Context, templates TemplateStore, users UserStore, opts Options, log *zap.Logger) error {
	for _, c := range model.Catalogs {
		n, err := templates.EnsureDefaults(ctx, c, model.DefaultTemplates[c])
		if err != nil {
			return fmt.Errorf("seed %s templates: %w", c, err)
		}
		if n > 0 {
			log.Info("seeded default templates", zap.String("catalog", string(c)), zap.Int("inserted", n))
		}
	}

	if !opts.DemoUser {
		return nil
	}
	created, err := users.EnsureUser(ctx, DemoUsername, DemoEmail, opts.DemoPassword, model.RoleAdmin, opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	if created {
		log.Info("created demo account", zap.String("username", DemoUsername))
	}
	return nil
}

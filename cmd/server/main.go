package main // Entry point of the HTTP API

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
	"github.com/iliyamo/messestand-kalkulator/internal/database"
	"github.com/iliyamo/messestand-kalkulator/internal/handler"
	"github.com/iliyamo/messestand-kalkulator/internal/logging"
	"github.com/iliyamo/messestand-kalkulator/internal/middleware"
	"github.com/iliyamo/messestand-kalkulator/internal/repository"
	"github.com/iliyamo/messestand-kalkulator/internal/router"
	"github.com/iliyamo/messestand-kalkulator/internal/seed"
	"github.com/iliyamo/messestand-kalkulator/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db, cfg.DB.Driver, log); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	templates := repository.NewTemplateRepo(db)

	if err := seed.Run(ctx, templates, users, seed.Options{
		DemoUser:     cfg.SeedDemoUser,
		DemoPassword: cfg.DemoPassword,
		BcryptCost:   cfg.BcryptCost,
	}, log); err != nil {
		return err
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and catalog cache disabled")
	} else {
		defer rdb.Close()
	}

	events := service.NewEventPublisher(cfg.RabbitMQURL, log)
	if !events.Enabled() {
		log.Info("RABBITMQ_URL not set, domain events disabled")
	}
	catalog := service.NewTemplateService(templates, rdb, config.LoadCatalogCacheConfig(), log)

	e := router.New(router.Deps{
		Auth:        handler.NewAuthHandler(cfg, users, events, log),
		Projects:    handler.NewProjectHandler(projects, events, log),
		Templates:   handler.NewTemplateHandler(catalog, log),
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
		AuthLimiter: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Log:         log,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DB.Driver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

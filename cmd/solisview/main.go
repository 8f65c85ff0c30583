package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "solisview/internal/api/http"
	"solisview/internal/config"
	"solisview/internal/logger"
	"solisview/internal/production"
	"solisview/internal/revalidate"
	"solisview/internal/scheduler"
	"solisview/internal/solis"
	"solisview/internal/store"
)

func main() {
	log := logger.New("main")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Shared HTTP client for outbound Solis calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := solis.NewClient(httpClient, cfg.SolisBaseURL, cfg.APIKey, cfg.APISecret)

	cache := store.NewResultCache[*production.MonthlyProduction](cfg.CacheMaxAge)
	service := production.NewService(client, cache)

	refresh := func(ctx context.Context) error {
		service.Invalidate()
		_, err := service.Refresh(ctx)
		return err
	}

	reval := revalidate.NewHandler(revalidate.Config{
		Mode:         revalidate.AuthMode(cfg.RevalidateAuthMode),
		BearerSecret: cfg.CronSecret,
		BodySecret:   cfg.RevalidateSecret,
	}, refresh)

	sched := scheduler.New(cfg.RefreshInterval, scheduler.Mode(cfg.RefreshMode), refresh, cfg.SiteURL, cfg.CronSecret)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "solisview",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "solisview",
		})
	})

	httpapi.RegisterRoutes(app, service, reval)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-stock/internal/application/auth"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/application/reports"
	"github.com/jhoicas/farmacia-stock/internal/application/seed"
	"github.com/jhoicas/farmacia-stock/internal/application/usecase"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/backend"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/metrics"
	infraredis "github.com/jhoicas/farmacia-stock/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/farmacia-stock/internal/interfaces/http"
	"github.com/jhoicas/farmacia-stock/pkg/config"
	"github.com/jhoicas/farmacia-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	be, err := backend.Open(ctx, cfg.Storage, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir backend")
	}
	defer be.Close()

	reg := metrics.Registry()
	ledgerMetrics := metrics.NewLedger(reg)
	httpMetrics := metrics.NewHTTP(reg)

	store := ledger.NewStore(be.Repos, log.Component("ledger"), ledgerMetrics)
	if err := store.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("carga inicial del libro")
	}

	source := uuid.NewString()
	opts := []ledger.Option{
		ledger.WithMetrics(ledgerMetrics),
		ledger.WithLogger(log.Component("ledger")),
		ledger.WithSource(source),
	}

	// Redis: avisos de cambio entre instancias que comparten backend.
	var remote <-chan ledger.Change
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		notifier := infraredis.NewNotifier(client, cfg.Redis.Channel, source, log.Component("redis"))
		opts = append(opts, ledger.WithNotifier(notifier))
		remote = notifier.Changes(ctx)
	}
	if remote != nil || cfg.Ledger.RefreshInterval > 0 {
		go store.Follow(ctx, remote, cfg.Ledger.RefreshInterval)
	}

	svc := ledger.NewService(store, be.Tx, opts...)
	reportsUC := reports.NewUseCase(store)
	userUC := usecase.NewUserUseCase(be.Repos.Users, svc)
	authUC := auth.NewAuthUseCase(be.Repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Storage.SeedDemo {
		err := seed.Demo(ctx, store, be.Tx, userUC, log.Component("seed"))
		switch {
		case errors.Is(err, seed.ErrNotEmpty):
			log.Info().Msg("seed omitido: el libro ya tiene datos")
		case err != nil:
			log.Fatal().Err(err).Msg("cargar datos de demostración")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.ObserveRequests(httpMetrics, log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": be.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

	var writeLimit fiber.Handler
	if cfg.RateLimit.Enabled {
		writeLimit, err = httpRouter.RateLimit(cfg.RateLimit.Rate)
		if err != nil {
			log.Fatal().Err(err).Str("rate", cfg.RateLimit.Rate).Msg("RATE_LIMIT inválido")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:     svc,
		Reports:    reportsUC,
		AuthUC:     authUC,
		UserUC:     userUC,
		JWTSecret:  cfg.JWT.Secret,
		WriteLimit: writeLimit,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

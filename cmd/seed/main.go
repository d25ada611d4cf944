// seed carga los datos de demostración (usuarios, artículos y movimientos) en el backend configurado.
//
// Uso: STORAGE_DRIVER=sqlite go run ./cmd/seed
// No hace nada si el libro ya tiene artículos o movimientos. Con el driver memory los datos
// se pierden al salir; sirve solo para comprobar el seed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/application/seed"
	"github.com/jhoicas/farmacia-stock/internal/application/usecase"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/backend"
	infraredis "github.com/jhoicas/farmacia-stock/internal/infrastructure/redis"
	"github.com/jhoicas/farmacia-stock/pkg/config"
	"github.com/jhoicas/farmacia-stock/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx := context.Background()

	be, err := backend.Open(ctx, cfg.Storage, cfg.DB)
	if err != nil {
		return err
	}
	defer be.Close()

	store := ledger.NewStore(be.Repos, log.Component("ledger"), nil)
	if err := store.Reload(ctx); err != nil {
		return fmt.Errorf("carga inicial: %w", err)
	}

	source := uuid.NewString()
	var opts []ledger.Option
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer client.Close()
		opts = append(opts, ledger.WithSource(source),
			ledger.WithNotifier(infraredis.NewNotifier(client, cfg.Redis.Channel, source, log.Component("redis"))))
	}
	svc := ledger.NewService(store, be.Tx, opts...)
	users := usecase.NewUserUseCase(be.Repos.Users, svc)

	err = seed.Demo(ctx, store, be.Tx, users, log.Component("seed"))
	if errors.Is(err, seed.ErrNotEmpty) {
		log.Info().Str("storage", be.Driver).Msg("el libro ya tiene datos, nada que hacer")
		return nil
	}
	if err != nil {
		return err
	}

	// Las instancias en marcha recargan el snapshot completo con cualquier aviso.
	return svc.UsersChanged(ctx, "seed.demo")
}

// Package backend abre el almacenamiento del libro según STORAGE_DRIVER.
package backend

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/sqlite"
	"github.com/jhoicas/farmacia-stock/pkg/config"
)

// Backend repositorios de lectura, runner transaccional y cierre del driver elegido.
type Backend struct {
	Driver string
	Repos  ledger.Repositories
	Tx     ledger.TxRunner
	close  func()
}

// Close libera conexiones; seguro de llamar varias veces.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
		b.close = nil
	}
}

// Open prepara el backend. En postgres aplica las migraciones embebidas antes de devolver.
func Open(ctx context.Context, storage config.StorageConfig, db config.DBConfig) (*Backend, error) {
	switch storage.Driver {
	case config.DriverMemory, "":
		mem := memory.New()
		return &Backend{
			Driver: config.DriverMemory,
			Repos:  memory.Repositories(mem),
			Tx:     memory.NewTxRunner(mem),
		}, nil

	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver: config.DriverSQLite,
			Repos:  st.Repositories(),
			Tx:     st.TxRunner(),
			close:  func() { _ = st.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		return &Backend{
			Driver: config.DriverPostgres,
			Repos:  postgres.Repositories(pool),
			Tx:     postgres.NewTxRunner(pool),
			close:  pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("backend: driver desconocido %q", storage.Driver)
}

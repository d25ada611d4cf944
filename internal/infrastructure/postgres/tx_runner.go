package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// ledgerLockKey clave del advisory lock que serializa las mutaciones del libro entre instancias.
const ledgerLockKey int64 = 0x6661726d61 // "farma"

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia la transacción, toma el advisory lock del libro (se libera con commit o rollback),
// ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	articleRepo repository.ArticleRepository,
	movementRepo repository.MovementRepository,
	settingsRepo repository.SettingsRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}

	if err := fn(NewArticleRepository(tx), NewMovementRepository(tx), NewSettingsRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories repos sobre el pool para las lecturas del Store.
func Repositories(pool *pgxpool.Pool) ledger.Repositories {
	return ledger.Repositories{
		Articles:  NewArticleRepository(pool),
		Movements: NewMovementRepository(pool),
		Settings:  NewSettingsRepository(pool),
		Users:     NewUserRepository(pool),
	}
}

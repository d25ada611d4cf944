package repository

import (
	"context"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del log de movimientos.
// El ID lo asigna el llamador (ledger.MovementIDGenerator) a partir del máximo de la vista.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	Replace(ctx context.Context, m *entity.Movement) error
	Delete(ctx context.Context, id int64) error
	// List ordenado por ID descendente.
	List(ctx context.Context) ([]*entity.Movement, error)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del log de movimientos sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, article_id, user_id, type, quantity, date, ref_doc, supplier_dest, subcategory, remarks`

// Create inserta el movimiento con el ID ya asignado.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ArticleID, m.UserID, string(m.Type), m.Quantity, m.Date,
		m.RefDoc, m.SupplierDest, m.Subcategory, m.Remarks,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// Replace reescribe el movimiento.
func (r *MovementRepo) Replace(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements SET article_id = $2, user_id = $3, type = $4, quantity = $5, date = $6,
			ref_doc = $7, supplier_dest = $8, subcategory = $9, remarks = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.ArticleID, m.UserID, string(m.Type), m.Quantity, m.Date,
		m.RefDoc, m.SupplierDest, m.Subcategory, m.Remarks,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un movimiento por ID.
func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

// List todo el log, más reciente primero.
func (r *MovementRepo) List(ctx context.Context) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movements ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var typ string
	if err := row.Scan(
		&m.ID, &m.ArticleID, &m.UserID, &typ, &m.Quantity, &m.Date,
		&m.RefDoc, &m.SupplierDest, &m.Subcategory, &m.Remarks,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}

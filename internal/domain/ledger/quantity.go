// Package ledger contiene la lógica pura del libro de stock: efecto firmado de cada movimiento,
// proyección de stock actual, reglas de validación y política de IDs. Sin I/O.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// SignedQuantity efecto de un movimiento sobre el stock.
//
//	Entrée, Ajustement      → +quantity
//	Sortie, Périmé / Rebut  → -quantity
//
// En Ajustement el signo vive en la cantidad misma: un ajuste de -5 resta 5.
func SignedQuantity(m entity.Movement) decimal.Decimal {
	switch m.Type {
	case entity.MovementIn, entity.MovementAdjustment:
		return m.Quantity
	default:
		return m.Quantity.Neg()
	}
}

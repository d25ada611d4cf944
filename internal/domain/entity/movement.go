package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de stock. Los valores son los que guarda la base histórica.
type MovementType string

// Tipos de movimiento.
const (
	MovementIn         MovementType = "Entrée"         // entrada (proveedor)
	MovementOut        MovementType = "Sortie"         // salida (destino)
	MovementAdjustment MovementType = "Ajustement"     // ajuste: el signo va en la cantidad
	MovementExpired    MovementType = "Périmé / Rebut" // vencido / descarte
)

// Valid indica si el tipo es uno de los cuatro reconocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementExpired:
		return true
	}
	return false
}

// IsOutgoing salida hacia un destino (Sortie o Périmé / Rebut).
func (t MovementType) IsOutgoing() bool {
	return t == MovementOut || t == MovementExpired
}

// Movement un evento del libro de stock. El stock actual es siempre la suma de sus efectos.
type Movement struct {
	ID           int64
	ArticleID    int64
	UserID       string
	Type         MovementType
	Quantity     decimal.Decimal // >= 0 salvo en Ajustement
	Date         time.Time
	RefDoc       string
	SupplierDest string // proveedor (Entrée) o destino (Sortie / Périmé)
	Subcategory  string // opcional, subcategoría de salida
	Remarks      string
}

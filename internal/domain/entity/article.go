package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceEntry una entrada del historial de precios: el precio nuevo y la fecha del cambio.
type PriceEntry struct {
	Price decimal.Decimal `json:"price"`
	Date  time.Time       `json:"date"`
}

// Article representa un artículo de la farmacia/almacén.
// El stock nunca se guarda aquí: se deriva de los movimientos (ver StockItem).
type Article struct {
	ID             int64
	Code           string // único sin distinguir mayúsculas
	Name           string
	Category       string // pertenece a Settings.Categories
	Unit           string
	Price          decimal.Decimal
	AlertThreshold decimal.Decimal // umbral de alerta de stock bajo (0 = sin alerta)
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PriceHistory   []PriceEntry // solo se agrega al final, nunca se reescribe
}

// Clone copia el artículo incluyendo el historial (evita compartir el slice entre snapshots).
func (a Article) Clone() Article {
	out := a
	if a.PriceHistory != nil {
		out.PriceHistory = make([]PriceEntry, len(a.PriceHistory))
		copy(out.PriceHistory, a.PriceHistory)
	}
	return out
}

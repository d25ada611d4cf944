package entity

import "github.com/shopspring/decimal"

// StockItem artículo más su stock actual derivado. Nunca se persiste.
type StockItem struct {
	Article
	CurrentStock decimal.Decimal
}

// IsLow stock en o por debajo del umbral de alerta (solo si hay umbral).
func (s StockItem) IsLow() bool {
	return s.AlertThreshold.IsPositive() && s.CurrentStock.LessThanOrEqual(s.AlertThreshold)
}

// IsOut sin stock.
func (s StockItem) IsOut() bool {
	return s.CurrentStock.IsZero()
}

// Value valor del stock al precio actual.
func (s StockItem) Value() decimal.Decimal {
	return s.CurrentStock.Mul(s.Price)
}

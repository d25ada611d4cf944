package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArticleRequest body para POST /api/articles y PUT /api/articles/:id.
type ArticleRequest struct {
	Code           string          `json:"code" validate:"required,max=64"`
	Name           string          `json:"name" validate:"required,max=200"`
	Category       string          `json:"category" validate:"omitempty,max=100"`
	Unit           string          `json:"unit" validate:"required,max=50"`
	Price          decimal.Decimal `json:"price"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
	Description    string          `json:"description" validate:"omitempty,max=1000"`
}

// BulkArticlesRequest body para POST /api/articles/bulk (todo o nada).
type BulkArticlesRequest struct {
	Articles []ArticleRequest `json:"articles" validate:"required,min=1,max=500,dive"`
}

// PriceEntryDTO una entrada del historial de precios.
type PriceEntryDTO struct {
	Price decimal.Decimal `json:"price"`
	Date  string          `json:"date"` // YYYY-MM-DD
}

// ArticleResponse salida de un artículo.
type ArticleResponse struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Unit           string          `json:"unit"`
	Price          decimal.Decimal `json:"price"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
	Description    string          `json:"description,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	PriceHistory   []PriceEntryDTO `json:"price_history"`
}

// StockItemResponse artículo con su stock derivado.
type StockItemResponse struct {
	ArticleResponse
	CurrentStock decimal.Decimal `json:"current_stock"`
	Value        decimal.Decimal `json:"value"`
	Low          bool            `json:"low"`
	Out          bool            `json:"out"`
}

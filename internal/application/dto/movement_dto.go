package dto

import "github.com/shopspring/decimal"

// MovementRequest body para POST /api/movements y PUT /api/movements/:id.
// Type es uno de: Entrée, Sortie, Ajustement, Périmé / Rebut.
type MovementRequest struct {
	ArticleID    int64           `json:"article_id" validate:"required,gt=0"`
	Type         string          `json:"type" validate:"required,movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	RefDoc       string          `json:"ref_doc" validate:"omitempty,max=100"`
	SupplierDest string          `json:"supplier_dest" validate:"omitempty,max=100"`
	Subcategory  string          `json:"subcategory" validate:"omitempty,max=100"`
	Remarks      string          `json:"remarks" validate:"omitempty,max=1000"`
}

// BulkMovementsRequest body para POST /api/movements/bulk (todo o nada).
type BulkMovementsRequest struct {
	Movements []MovementRequest `json:"movements" validate:"required,min=1,dive"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID           int64           `json:"id"`
	ArticleID    int64           `json:"article_id"`
	UserID       string          `json:"user_id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         string          `json:"date"` // YYYY-MM-DD
	RefDoc       string          `json:"ref_doc,omitempty"`
	SupplierDest string          `json:"supplier_dest,omitempty"`
	Subcategory  string          `json:"subcategory,omitempty"`
	Remarks      string          `json:"remarks,omitempty"`
}

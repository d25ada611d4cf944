package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummaryDTO respuesta de GET /api/reports/summary.
type StockSummaryDTO struct {
	TotalArticles int             `json:"total_articles"`
	LowStock      int             `json:"low_stock"`    // en o bajo el umbral de alerta
	OutOfStock    int             `json:"out_of_stock"` // stock en cero
	TotalValue    decimal.Decimal `json:"total_value"`  // Σ stock * precio actual
}

// PeriodReportRow una fila del informe de período (un artículo).
// Final = Initial + In - Expired - Out + Adjustment.
type PeriodReportRow struct {
	ArticleID     int64                      `json:"article_id"`
	Code          string                     `json:"code"`
	Name          string                     `json:"name"`
	Unit          string                     `json:"unit"`
	Initial       decimal.Decimal            `json:"initial"`
	In            decimal.Decimal            `json:"in"`
	Out           decimal.Decimal            `json:"out"`
	Expired       decimal.Decimal            `json:"expired"`
	Adjustment    decimal.Decimal            `json:"adjustment"`
	Final         decimal.Decimal            `json:"final"`
	ByDestination map[string]decimal.Decimal `json:"by_destination"` // salidas + vencidos por destino
}

// PeriodReportDTO respuesta de GET /api/reports/period.
type PeriodReportDTO struct {
	From         time.Time         `json:"from"`
	To           time.Time         `json:"to"`
	Destinations []string          `json:"destinations"`
	Rows         []PeriodReportRow `json:"rows"`
}

// DailyLogFilter filtros opcionales del diario de movimientos.
type DailyLogFilter struct {
	ArticleID   int64
	Type        string
	Supplier    string
	Destination string
}

// DailyLogEntry un movimiento del día con los datos del artículo ya resueltos.
type DailyLogEntry struct {
	MovementID   int64           `json:"movement_id"`
	ArticleID    int64           `json:"article_id"`
	ArticleCode  string          `json:"article_code"`
	ArticleName  string          `json:"article_name"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	RefDoc       string          `json:"ref_doc,omitempty"`
	SupplierDest string          `json:"supplier_dest,omitempty"`
	Subcategory  string          `json:"subcategory,omitempty"`
	UserID       string          `json:"user_id,omitempty"`
	UserName     string          `json:"user_name,omitempty"`
}

// TopMovedDTO artículo más consumido (Sortie + Périmé) en el rango.
type TopMovedDTO struct {
	ArticleID int64           `json:"article_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// FlowDTO cantidad total hacia/desde un proveedor o destino.
type FlowDTO struct {
	Party    string          `json:"party"`
	Quantity decimal.Decimal `json:"quantity"`
}

// FlowsReportDTO respuesta de GET /api/reports/flows.
type FlowsReportDTO struct {
	Incoming []FlowDTO `json:"incoming"` // por proveedor (Entrée)
	Outgoing []FlowDTO `json:"outgoing"` // por destino (Sortie + Périmé)
}

// StockAlertDTO artículo en alerta con la cantidad sugerida de pedido.
type StockAlertDTO struct {
	ArticleID      int64           `json:"article_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
	IdealStock     decimal.Decimal `json:"ideal_stock"`   // AlertThreshold * 1.5
	SuggestedQty   decimal.Decimal `json:"suggested_qty"` // IdealStock - CurrentStock
	Deficit        decimal.Decimal `json:"deficit"`       // AlertThreshold - CurrentStock
	EstimatedCost  decimal.Decimal `json:"estimated_cost"`
	Priority       int             `json:"priority"` // 1 = más urgente
}

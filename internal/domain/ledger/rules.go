package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// Reglas de validación: funciones sin estado sobre el snapshot actual.
// Devuelven nil si pasa o un *domain.LedgerError con el contexto para armar el mensaje.
// excludeID = 0 no excluye nada (los IDs de artículo empiezan en 1).

// CodeUnique el código no debe existir en otro artículo (sin distinguir mayúsculas).
func CodeUnique(articles []entity.Article, code string, excludeID int64) error {
	key := FoldCode(code)
	for _, a := range articles {
		if a.ID != excludeID && FoldCode(a.Code) == key {
			return domain.NewLedgerError(domain.KeyArticleCodeExists, map[string]any{"code": code})
		}
	}
	return nil
}

// NameUnitUnique el par (nombre normalizado, unidad) no debe existir en otro artículo.
func NameUnitUnique(articles []entity.Article, name, unit string, excludeID int64) error {
	key := NameUnitKey(name, unit)
	for _, a := range articles {
		if a.ID != excludeID && NameUnitKey(a.Name, a.Unit) == key {
			return domain.NewLedgerError(domain.KeyArticleNameUnitExists, map[string]any{"name": name, "unit": unit})
		}
	}
	return nil
}

// SufficientStock falla cuando CurrentStock + delta < 0.
// Los ajustes (Ajustement) no pasan por aquí: el llamador los exime.
func SufficientStock(item entity.StockItem, delta decimal.Decimal) error {
	if item.CurrentStock.Add(delta).IsNegative() {
		return domain.NewLedgerError(domain.KeyInsufficientStock, map[string]any{
			"articleName": item.Name,
			"available":   item.CurrentStock,
			"required":    delta.Abs(),
		})
	}
	return nil
}

// StockAfterRemoval falla si quitar el efecto de un movimiento deja el stock del artículo en negativo.
func StockAfterRemoval(item entity.StockItem, removedEffect decimal.Decimal) error {
	if item.CurrentStock.Sub(removedEffect).IsNegative() {
		return domain.NewLedgerError(domain.KeyInsufficientStockOnDelete, map[string]any{"articleName": item.Name})
	}
	return nil
}

// ArticleInUse falla si algún movimiento referencia el artículo.
func ArticleInUse(movements []entity.Movement, articleID int64) error {
	for _, m := range movements {
		if m.ArticleID == articleID {
			return domain.NewLedgerError(domain.KeyArticleInUse, map[string]any{"articleId": articleID})
		}
	}
	return nil
}

// ReferencedElsewhere falla si el valor de la lista sigue referenciado:
//
//	categories            ↔ Article.Category
//	suppliers             ↔ Movement.SupplierDest de tipo Entrée
//	destinations          ↔ Movement.SupplierDest de tipo Sortie o Périmé / Rebut
//	outgoingSubcategories ↔ Movement.Subcategory (cualquier tipo)
func ReferencedElsewhere(list entity.SettingsList, item string, articles []entity.Article, movements []entity.Movement) error {
	params := map[string]any{"item": item}
	switch list {
	case entity.ListCategories:
		for _, a := range articles {
			if a.Category == item {
				return domain.NewLedgerError(domain.KeyCategoryInUse, params)
			}
		}
	case entity.ListSuppliers:
		for _, m := range movements {
			if m.SupplierDest == item && m.Type == entity.MovementIn {
				return domain.NewLedgerError(domain.KeySupplierInUse, params)
			}
		}
	case entity.ListDestinations:
		for _, m := range movements {
			if m.SupplierDest == item && m.Type.IsOutgoing() {
				return domain.NewLedgerError(domain.KeyDestinationInUse, params)
			}
		}
	case entity.ListOutgoingSubcategories:
		for _, m := range movements {
			if m.Subcategory == item {
				return domain.NewLedgerError(domain.KeySubcategoryInUse, params)
			}
		}
	default:
		return domain.NewLedgerError(domain.KeyInvalidSettingsList, map[string]any{"list": string(list)})
	}
	return nil
}

// RemovedItems elementos de old que ya no están en updated, en el orden de old.
func RemovedItems(old, updated []string) []string {
	keep := make(map[string]struct{}, len(updated))
	for _, v := range updated {
		keep[v] = struct{}{}
	}
	var out []string
	for _, v := range old {
		if _, ok := keep[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// CleanList recorta espacios, descarta vacíos y duplicados conservando el orden.
func CleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Decimales admitidos; coinciden con las columnas NUMERIC del esquema Postgres.
const (
	QuantityScale = 3 // cantidades y umbral de alerta
	PriceScale    = 2
)

// fitsScale el valor no tiene más de scale decimales significativos.
func fitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// ValidateMovement forma del movimiento (no mira el stock).
// Cantidad distinta de cero, con a lo sumo QuantityScale decimales; negativa solo en Ajustement.
func ValidateMovement(m entity.Movement) error {
	switch {
	case !m.Type.Valid():
		return invalidMovement("type")
	case m.ArticleID <= 0:
		return invalidMovement("articleId")
	case m.Quantity.IsZero(), !fitsScale(m.Quantity, QuantityScale):
		return invalidMovement("quantity")
	case m.Quantity.IsNegative() && m.Type != entity.MovementAdjustment:
		return invalidMovement("quantity")
	case m.Date.IsZero():
		return invalidMovement("date")
	}
	return nil
}

// ValidateArticle campos obligatorios, montos no negativos y dentro de la escala guardada.
func ValidateArticle(a entity.Article) error {
	switch {
	case strings.TrimSpace(a.Code) == "":
		return invalidArticle("code")
	case strings.TrimSpace(a.Name) == "":
		return invalidArticle("name")
	case strings.TrimSpace(a.Unit) == "":
		return invalidArticle("unit")
	case a.Price.IsNegative(), !fitsScale(a.Price, PriceScale):
		return invalidArticle("price")
	case a.AlertThreshold.IsNegative(), !fitsScale(a.AlertThreshold, QuantityScale):
		return invalidArticle("alertThreshold")
	}
	return nil
}

func invalidMovement(field string) error {
	return domain.NewLedgerError(domain.KeyInvalidMovement, map[string]any{"field": field})
}

func invalidArticle(field string) error {
	return domain.NewLedgerError(domain.KeyInvalidArticle, map[string]any{"field": field})
}

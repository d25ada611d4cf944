package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// Balances suma los efectos firmados por artículo en una sola pasada.
// La suma es conmutativa: el orden de los movimientos no cambia el resultado.
func Balances(movements []entity.Movement) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal)
	for _, m := range movements {
		out[m.ArticleID] = out[m.ArticleID].Add(SignedQuantity(m))
	}
	return out
}

// Project convierte {artículos, movimientos} en la vista de stock actual, un ítem por artículo
// en el mismo orden que articles. Un artículo sin movimientos queda en 0.
func Project(articles []entity.Article, movements []entity.Movement) []entity.StockItem {
	balances := Balances(movements)
	items := make([]entity.StockItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, entity.StockItem{
			Article:      a.Clone(),
			CurrentStock: balances[a.ID], // valor cero de decimal si no hay movimientos
		})
	}
	return items
}

// StockOf proyección de un solo artículo. ok=false si el artículo no existe.
func StockOf(articles []entity.Article, movements []entity.Movement, articleID int64) (entity.StockItem, bool) {
	for _, a := range articles {
		if a.ID != articleID {
			continue
		}
		total := decimal.Zero
		for _, m := range movements {
			if m.ArticleID == articleID {
				total = total.Add(SignedQuantity(m))
			}
		}
		return entity.StockItem{Article: a.Clone(), CurrentStock: total}, true
	}
	return entity.StockItem{}, false
}

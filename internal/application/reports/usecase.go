package reports

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/ledger"
)

// DefaultTopLimit tamaño del ranking de artículos más consumidos.
const DefaultTopLimit = 10

// Snapshot lectura del estado actual del libro (lo implementa *ledger.Store).
type Snapshot interface {
	Articles() []entity.Article
	Movements() []entity.Movement
	Stock() []entity.StockItem
	Settings() entity.Settings
	Users() []entity.User
}

// UseCase informes de solo lectura calculados sobre el snapshot en memoria.
// No toca el almacenamiento: cada llamada trabaja con una copia coherente del estado.
type UseCase struct {
	snap Snapshot
}

// NewUseCase construye el caso de uso de informes.
func NewUseCase(snap Snapshot) *UseCase {
	return &UseCase{snap: snap}
}

// Summary totales del tablero: artículos, en alerta, agotados y valor del stock.
func (uc *UseCase) Summary() dto.StockSummaryDTO {
	out := dto.StockSummaryDTO{TotalValue: decimal.Zero}
	for _, item := range uc.snap.Stock() {
		out.TotalArticles++
		if item.IsLow() {
			out.LowStock++
		}
		if item.IsOut() {
			out.OutOfStock++
		}
		out.TotalValue = out.TotalValue.Add(item.Value())
	}
	return out
}

// Period informe de existencias entre from y to (ambos inclusive, por día).
// articleID = 0 incluye todos los artículos.
func (uc *UseCase) Period(from, to time.Time, articleID int64) dto.PeriodReportDTO {
	from, to = ledger.DateOf(from), ledger.DateOf(to)
	destinations := uc.snap.Settings().Destinations

	byArticle := make(map[int64][]entity.Movement)
	for _, m := range uc.snap.Movements() {
		byArticle[m.ArticleID] = append(byArticle[m.ArticleID], m)
	}

	rows := make([]dto.PeriodReportRow, 0)
	for _, a := range uc.snap.Articles() {
		if articleID != 0 && a.ID != articleID {
			continue
		}
		row := dto.PeriodReportRow{
			ArticleID:     a.ID,
			Code:          a.Code,
			Name:          a.Name,
			Unit:          a.Unit,
			Initial:       decimal.Zero,
			In:            decimal.Zero,
			Out:           decimal.Zero,
			Expired:       decimal.Zero,
			Adjustment:    decimal.Zero,
			ByDestination: make(map[string]decimal.Decimal, len(destinations)),
		}
		for _, dest := range destinations {
			row.ByDestination[dest] = decimal.Zero
		}

		for _, m := range byArticle[a.ID] {
			day := ledger.DateOf(m.Date)
			if day.Before(from) {
				row.Initial = row.Initial.Add(ledger.SignedQuantity(m))
				continue
			}
			if day.After(to) {
				continue
			}
			switch m.Type {
			case entity.MovementIn:
				row.In = row.In.Add(m.Quantity)
			case entity.MovementOut:
				row.Out = row.Out.Add(m.Quantity)
			case entity.MovementExpired:
				row.Expired = row.Expired.Add(m.Quantity)
			case entity.MovementAdjustment:
				row.Adjustment = row.Adjustment.Add(m.Quantity)
			}
			if m.Type.IsOutgoing() {
				if q, ok := row.ByDestination[m.SupplierDest]; ok {
					row.ByDestination[m.SupplierDest] = q.Add(m.Quantity)
				}
			}
		}
		row.Final = row.Initial.Add(row.In).Sub(row.Expired).Sub(row.Out).Add(row.Adjustment)
		rows = append(rows, row)
	}

	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		return col.CompareString(rows[i].Name, rows[j].Name) < 0
	})

	return dto.PeriodReportDTO{
		From:         from,
		To:           to,
		Destinations: append([]string(nil), destinations...),
		Rows:         rows,
	}
}

// DailyLog movimientos de un día, del más reciente al más antiguo.
// Con proveedor y destino a la vez se aceptan los dos (entradas del proveedor o salidas al destino).
func (uc *UseCase) DailyLog(date time.Time, f dto.DailyLogFilter) []dto.DailyLogEntry {
	day := ledger.DateOf(date)
	articles := articleIndex(uc.snap.Articles())
	users := make(map[string]string)
	for _, u := range uc.snap.Users() {
		users[u.ID] = u.FullName()
	}

	out := make([]dto.DailyLogEntry, 0)
	for _, m := range uc.snap.Movements() {
		if !ledger.DateOf(m.Date).Equal(day) {
			continue
		}
		if f.ArticleID != 0 && m.ArticleID != f.ArticleID {
			continue
		}
		if f.Type != "" && string(m.Type) != f.Type {
			continue
		}
		if !matchesParty(m, f.Supplier, f.Destination) {
			continue
		}
		a := articles[m.ArticleID]
		out = append(out, dto.DailyLogEntry{
			MovementID:   m.ID,
			ArticleID:    m.ArticleID,
			ArticleCode:  a.Code,
			ArticleName:  a.Name,
			Type:         string(m.Type),
			Quantity:     m.Quantity,
			RefDoc:       m.RefDoc,
			SupplierDest: m.SupplierDest,
			Subcategory:  m.Subcategory,
			UserID:       m.UserID,
			UserName:     users[m.UserID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovementID > out[j].MovementID })
	return out
}

func matchesParty(m entity.Movement, supplier, destination string) bool {
	if supplier == "" && destination == "" {
		return true
	}
	if supplier != "" && m.Type == entity.MovementIn && m.SupplierDest == supplier {
		return true
	}
	if destination != "" && m.Type.IsOutgoing() && m.SupplierDest == destination {
		return true
	}
	return false
}

// TopMoved artículos con más salidas (Sortie + Périmé / Rebut) en el rango, de mayor a menor.
// category vacío = todas; limit <= 0 usa DefaultTopLimit.
func (uc *UseCase) TopMoved(from, to time.Time, category string, limit int) []dto.TopMovedDTO {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	articles := articleIndex(uc.snap.Articles())
	totals := make(map[int64]decimal.Decimal)
	for _, m := range uc.inRange(from, to) {
		a, ok := articles[m.ArticleID]
		if !ok || !m.Type.IsOutgoing() {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		totals[m.ArticleID] = totals[m.ArticleID].Add(m.Quantity)
	}

	out := make([]dto.TopMovedDTO, 0, len(totals))
	for id, q := range totals {
		a := articles[id]
		out = append(out, dto.TopMovedDTO{ArticleID: id, Code: a.Code, Name: a.Name, Category: a.Category, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].ArticleID < out[j].ArticleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Flows entradas por proveedor y salidas por destino en el rango.
// Los movimientos sin proveedor/destino no cuentan.
func (uc *UseCase) Flows(from, to time.Time, category string, articleID int64) dto.FlowsReportDTO {
	articles := articleIndex(uc.snap.Articles())
	incoming := make(map[string]decimal.Decimal)
	outgoing := make(map[string]decimal.Decimal)
	for _, m := range uc.inRange(from, to) {
		a, ok := articles[m.ArticleID]
		if !ok {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		if articleID != 0 && m.ArticleID != articleID {
			continue
		}
		party := strings.TrimSpace(m.SupplierDest)
		if party == "" {
			continue
		}
		switch {
		case m.Type == entity.MovementIn:
			incoming[party] = incoming[party].Add(m.Quantity)
		case m.Type.IsOutgoing():
			outgoing[party] = outgoing[party].Add(m.Quantity)
		}
	}
	return dto.FlowsReportDTO{Incoming: flowList(incoming), Outgoing: flowList(outgoing)}
}

func flowList(totals map[string]decimal.Decimal) []dto.FlowDTO {
	out := make([]dto.FlowDTO, 0, len(totals))
	for party, q := range totals {
		out = append(out, dto.FlowDTO{Party: party, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].Party < out[j].Party
	})
	return out
}

// Alerts artículos en o bajo su umbral con la cantidad sugerida de pedido.
// Stock ideal = umbral * 1.5. Prioridad 1 = mayor déficit.
func (uc *UseCase) Alerts() []dto.StockAlertDTO {
	factor := decimal.NewFromFloat(1.5)
	out := make([]dto.StockAlertDTO, 0)
	for _, item := range uc.snap.Stock() {
		if !item.IsLow() {
			continue
		}
		ideal := item.AlertThreshold.Mul(factor)
		suggested := ideal.Sub(item.CurrentStock)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		out = append(out, dto.StockAlertDTO{
			ArticleID:      item.ID,
			Code:           item.Code,
			Name:           item.Name,
			Unit:           item.Unit,
			CurrentStock:   item.CurrentStock,
			AlertThreshold: item.AlertThreshold,
			IdealStock:     ideal,
			SuggestedQty:   suggested,
			Deficit:        item.AlertThreshold.Sub(item.CurrentStock),
			EstimatedCost:  suggested.Mul(item.Price),
		})
	}

	col := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out
}

// inRange movimientos con fecha entre from y to, ambos inclusive.
func (uc *UseCase) inRange(from, to time.Time) []entity.Movement {
	from, to = ledger.DateOf(from), ledger.DateOf(to)
	var out []entity.Movement
	for _, m := range uc.snap.Movements() {
		day := ledger.DateOf(m.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func articleIndex(articles []entity.Article) map[int64]entity.Article {
	idx := make(map[int64]entity.Article, len(articles))
	for _, a := range articles {
		idx[a.ID] = a
	}
	return idx
}

// newCollator orden alfabético con acentos (los nombres están en francés).
// Un Collator no es seguro entre goroutines: uno por llamada.
func newCollator() *collate.Collator {
	return collate.New(language.French, collate.IgnoreCase)
}

package http

import (
	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

func toArticleResponse(a entity.Article) dto.ArticleResponse {
	history := make([]dto.PriceEntryDTO, 0, len(a.PriceHistory))
	for _, p := range a.PriceHistory {
		history = append(history, dto.PriceEntryDTO{Price: p.Price, Date: p.Date.Format(dateLayout)})
	}
	return dto.ArticleResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Category:       a.Category,
		Unit:           a.Unit,
		Price:          a.Price,
		AlertThreshold: a.AlertThreshold,
		Description:    a.Description,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		PriceHistory:   history,
	}
}

func toArticleResponses(in []entity.Article) []dto.ArticleResponse {
	out := make([]dto.ArticleResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toArticleResponse(a))
	}
	return out
}

func toStockItemResponse(s entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		ArticleResponse: toArticleResponse(s.Article),
		CurrentStock:    s.CurrentStock,
		Value:           s.Value(),
		Low:             s.IsLow(),
		Out:             s.IsOut(),
	}
}

func toMovementResponse(m entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ArticleID:    m.ArticleID,
		UserID:       m.UserID,
		Type:         string(m.Type),
		Quantity:     m.Quantity,
		Date:         m.Date.Format(dateLayout),
		RefDoc:       m.RefDoc,
		SupplierDest: m.SupplierDest,
		Subcategory:  m.Subcategory,
		Remarks:      m.Remarks,
	}
}

func articleInput(in dto.ArticleRequest) ledger.ArticleInput {
	return ledger.ArticleInput{
		Code:           in.Code,
		Name:           in.Name,
		Category:       in.Category,
		Unit:           in.Unit,
		Price:          in.Price,
		AlertThreshold: in.AlertThreshold,
		Description:    in.Description,
	}
}

func movementInput(in dto.MovementRequest, userID string) (ledger.MovementInput, error) {
	date, err := parseDate(in.Date)
	if err != nil {
		return ledger.MovementInput{}, err
	}
	return ledger.MovementInput{
		ArticleID:    in.ArticleID,
		UserID:       userID,
		Type:         entity.MovementType(in.Type),
		Quantity:     in.Quantity,
		Date:         date,
		RefDoc:       in.RefDoc,
		SupplierDest: in.SupplierDest,
		Subcategory:  in.Subcategory,
		Remarks:      in.Remarks,
	}, nil
}

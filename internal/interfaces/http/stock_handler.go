package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
)

// StockHandler expone la proyección de stock y la configuración.
type StockHandler struct {
	svc *ledger.Service
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *ledger.Service) *StockHandler {
	return &StockHandler{svc: svc}
}

// List GET /api/stock?category=&low=true&out=true&q=
func (h *StockHandler) List(c *fiber.Ctx) error {
	category := c.Query("category")
	onlyLow := c.QueryBool("low", false)
	onlyOut := c.QueryBool("out", false)
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	out := make([]dto.StockItemResponse, 0)
	for _, item := range h.svc.Stock() {
		if category != "" && item.Category != category {
			continue
		}
		if onlyLow && !item.IsLow() {
			continue
		}
		if onlyOut && !item.IsOut() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(item.Name), q) && !strings.Contains(strings.ToLower(item.Code), q) {
			continue
		}
		out = append(out, toStockItemResponse(item))
	}
	return c.JSON(dto.NewList(out))
}

// GetByID GET /api/stock/:id
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	item, ok := h.svc.Store().StockItem(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "ARTICLE_NOT_FOUND", Message: "artículo no encontrado", Params: map[string]any{"articleId": id},
		})
	}
	return c.JSON(toStockItemResponse(item))
}

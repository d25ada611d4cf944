package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// MovementHandler maneja el libro de movimientos.
type MovementHandler struct {
	svc *ledger.Service
}

// NewMovementHandler construye el handler.
func NewMovementHandler(svc *ledger.Service) *MovementHandler {
	return &MovementHandler{svc: svc}
}

// List GET /api/movements?article_id=&type=&from=&to=
// Orden: id descendente (el más reciente primero).
func (h *MovementHandler) List(c *fiber.Ctx) error {
	articleID, err := queryInt64(c, "article_id")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "article_id inválido")
	}
	from, err := queryDate(c, "from", time.Time{})
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "from debe ser YYYY-MM-DD")
	}
	to, err := queryDate(c, "to", time.Time{})
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "to debe ser YYYY-MM-DD")
	}
	typ := c.Query("type")

	out := make([]dto.MovementResponse, 0)
	for _, m := range h.svc.Movements() {
		if articleID != 0 && m.ArticleID != articleID {
			continue
		}
		if typ != "" && string(m.Type) != typ {
			continue
		}
		if !from.IsZero() && m.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !m.Date.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(dto.NewList(out))
}

// Create POST /api/movements. El usuario del movimiento es el del token.
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mi, err := movementInput(in, GetUserID(c))
	if err != nil {
		return badRequest(c, "VALIDATION", "date debe ser YYYY-MM-DD")
	}
	m, err := h.svc.AddMovement(c.UserContext(), mi)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(*m))
}

// CreateBulk POST /api/movements/bulk. Todo o nada; las salidas se comprueban sumadas por artículo.
func (h *MovementHandler) CreateBulk(c *fiber.Ctx) error {
	var in dto.BulkMovementsRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	inputs := make([]ledger.MovementInput, 0, len(in.Movements))
	for _, req := range in.Movements {
		mi, err := movementInput(req, GetUserID(c))
		if err != nil {
			return badRequest(c, "VALIDATION", "date debe ser YYYY-MM-DD")
		}
		inputs = append(inputs, mi)
	}
	created, err := h.svc.AddMovementsBulk(c.UserContext(), inputs)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(created))
	for _, m := range created {
		out = append(out, toMovementResponse(m))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewList(out))
}

// Update PUT /api/movements/:id
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	var in dto.MovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return badRequest(c, "VALIDATION", "date debe ser YYYY-MM-DD")
	}
	m, err := h.svc.UpdateMovement(c.UserContext(), entity.Movement{
		ID:           id,
		ArticleID:    in.ArticleID,
		UserID:       GetUserID(c),
		Type:         entity.MovementType(in.Type),
		Quantity:     in.Quantity,
		Date:         date,
		RefDoc:       in.RefDoc,
		SupplierDest: in.SupplierDest,
		Subcategory:  in.Subcategory,
		Remarks:      in.Remarks,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(*m))
}

// Delete DELETE /api/movements/:id
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	if err := h.svc.DeleteMovement(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// SettingsHandler listas de referencia (categorías, proveedores, destinos, subcategorías).
type SettingsHandler struct {
	svc *ledger.Service
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(svc *ledger.Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get GET /api/settings
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.svc.Settings())
}

// UpdateList PUT /api/settings/:list
// Quitar un valor aún referenciado rechaza el cambio completo (*_IN_USE).
func (h *SettingsHandler) UpdateList(c *fiber.Ctx) error {
	var in dto.SettingsListRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	saved, err := h.svc.UpdateSettingsList(c.UserContext(), entity.SettingsList(c.Params("list")), in.Values)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(saved)
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/reports"
)

// ReportHandler informes de solo lectura.
type ReportHandler struct {
	uc  *reports.UseCase
	now func() time.Time
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc, now: time.Now}
}

// Summary GET /api/reports/summary
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	return c.JSON(h.uc.Summary())
}

// Period GET /api/reports/period?from=&to=&article_id=
// Sin fechas: el mes en curso hasta hoy.
func (h *ReportHandler) Period(c *fiber.Ctx) error {
	from, to, ok, err := h.rangeQuery(c)
	if !ok {
		return err
	}
	articleID, err := queryInt64(c, "article_id")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "article_id inválido")
	}
	return c.JSON(h.uc.Period(from, to, articleID))
}

// Daily GET /api/reports/daily?date=&article_id=&type=&supplier=&destination=
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	date, err := queryDate(c, "date", h.today())
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "date debe ser YYYY-MM-DD")
	}
	articleID, err := queryInt64(c, "article_id")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "article_id inválido")
	}
	entries := h.uc.DailyLog(date, dto.DailyLogFilter{
		ArticleID:   articleID,
		Type:        c.Query("type"),
		Supplier:    c.Query("supplier"),
		Destination: c.Query("destination"),
	})
	return c.JSON(dto.NewList(entries))
}

// TopMoved GET /api/reports/top-moved?from=&to=&category=&limit=
func (h *ReportHandler) TopMoved(c *fiber.Ctx) error {
	from, to, ok, err := h.rangeQuery(c)
	if !ok {
		return err
	}
	limit := c.QueryInt("limit", reports.DefaultTopLimit)
	return c.JSON(dto.NewList(h.uc.TopMoved(from, to, c.Query("category"), limit)))
}

// Flows GET /api/reports/flows?from=&to=&category=&article_id=
func (h *ReportHandler) Flows(c *fiber.Ctx) error {
	from, to, ok, err := h.rangeQuery(c)
	if !ok {
		return err
	}
	articleID, err := queryInt64(c, "article_id")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "article_id inválido")
	}
	return c.JSON(h.uc.Flows(from, to, c.Query("category"), articleID))
}

// Alerts GET /api/reports/alerts
func (h *ReportHandler) Alerts(c *fiber.Ctx) error {
	return c.JSON(dto.NewList(h.uc.Alerts()))
}

func (h *ReportHandler) today() time.Time {
	n := h.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// rangeQuery lee from/to; por defecto el primer día del mes hasta hoy.
func (h *ReportHandler) rangeQuery(c *fiber.Ctx) (from, to time.Time, ok bool, err error) {
	today := h.today()
	from, perr := queryDate(c, "from", today.AddDate(0, 0, 1-today.Day()))
	if perr != nil {
		return from, to, false, badRequest(c, "INVALID_QUERY", "from debe ser YYYY-MM-DD")
	}
	to, perr = queryDate(c, "to", today)
	if perr != nil {
		return from, to, false, badRequest(c, "INVALID_QUERY", "to debe ser YYYY-MM-DD")
	}
	if to.Before(from) {
		return from, to, false, badRequest(c, "INVALID_QUERY", "to anterior a from")
	}
	return from, to, true, nil
}

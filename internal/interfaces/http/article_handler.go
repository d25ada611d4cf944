package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// ArticleHandler maneja el catálogo de artículos.
type ArticleHandler struct {
	svc *ledger.Service
}

// NewArticleHandler construye el handler.
func NewArticleHandler(svc *ledger.Service) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// List GET /api/articles?category=&q=
func (h *ArticleHandler) List(c *fiber.Ctx) error {
	category := c.Query("category")
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	var out []entity.Article
	for _, a := range h.svc.Articles() {
		if category != "" && a.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) && !strings.Contains(strings.ToLower(a.Code), q) {
			continue
		}
		out = append(out, a)
	}
	return c.JSON(dto.NewList(toArticleResponses(out)))
}

// GetByID GET /api/articles/:id
func (h *ArticleHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	a, ok := h.svc.Store().Article(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "ARTICLE_NOT_FOUND", Message: "artículo no encontrado", Params: map[string]any{"articleId": id},
		})
	}
	return c.JSON(toArticleResponse(a))
}

// Similar GET /api/articles/similar?name=&unit=
// Aviso previo al alta: artículos con el mismo nombre normalizado (y unidad, si se indica).
func (h *ArticleHandler) Similar(c *fiber.Ctx) error {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		return badRequest(c, "VALIDATION", "name es requerido")
	}
	return c.JSON(dto.NewList(toArticleResponses(h.svc.SimilarArticles(name, c.Query("unit")))))
}

// Create POST /api/articles
func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	var in dto.ArticleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	a, err := h.svc.AddArticle(c.UserContext(), articleInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toArticleResponse(*a))
}

// CreateBulk POST /api/articles/bulk. Todo o nada.
func (h *ArticleHandler) CreateBulk(c *fiber.Ctx) error {
	var in dto.BulkArticlesRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	inputs := make([]ledger.ArticleInput, 0, len(in.Articles))
	for _, a := range in.Articles {
		inputs = append(inputs, articleInput(a))
	}
	created, err := h.svc.AddArticlesBulk(c.UserContext(), inputs)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewList(toArticleResponses(created)))
}

// Update PUT /api/articles/:id
func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	var in dto.ArticleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	a := entity.Article{
		ID:             id,
		Code:           in.Code,
		Name:           in.Name,
		Category:       in.Category,
		Unit:           in.Unit,
		Price:          in.Price,
		AlertThreshold: in.AlertThreshold,
		Description:    in.Description,
	}
	saved, err := h.svc.UpdateArticle(c.UserContext(), a)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toArticleResponse(*saved))
}

// Delete DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	if err := h.svc.DeleteArticle(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

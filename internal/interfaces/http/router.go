package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-stock/internal/application/auth"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/application/reports"
	"github.com/jhoicas/farmacia-stock/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *ledger.Service
	Reports   *reports.UseCase
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	JWTSecret string
	// WriteLimit se aplica a login y a toda escritura; nil = sin límite.
	WriteLimit fiber.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	limit := deps.WriteLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", limit, authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Artículos: lectura viewer+, escritura editor+
	articles := protected.Group("/articles")
	articleHandler := NewArticleHandler(deps.Ledger)
	articles.Get("/", requireViewer(), articleHandler.List)
	articles.Get("/similar", requireViewer(), articleHandler.Similar)
	articles.Get("/:id", requireViewer(), articleHandler.GetByID)
	articles.Post("/", requireEditor(), limit, articleHandler.Create)
	articles.Post("/bulk", requireEditor(), limit, articleHandler.CreateBulk)
	articles.Put("/:id", requireEditor(), limit, articleHandler.Update)
	articles.Delete("/:id", requireEditor(), limit, articleHandler.Delete)

	// Movimientos
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger)
	movements.Get("/", requireViewer(), movementHandler.List)
	movements.Post("/", requireEditor(), limit, movementHandler.Create)
	movements.Post("/bulk", requireEditor(), limit, movementHandler.CreateBulk)
	movements.Put("/:id", requireEditor(), limit, movementHandler.Update)
	movements.Delete("/:id", requireEditor(), limit, movementHandler.Delete)

	// Stock derivado
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger)
	stock.Get("/", requireViewer(), stockHandler.List)
	stock.Get("/:id", requireViewer(), stockHandler.GetByID)

	// Configuración: lectura viewer+, cambios solo admin
	settings := protected.Group("/settings")
	settingsHandler := NewSettingsHandler(deps.Ledger)
	settings.Get("/", requireViewer(), settingsHandler.Get)
	settings.Put("/:list", requireAdmin(), limit, settingsHandler.UpdateList)

	// Informes
	rep := protected.Group("/reports", requireViewer())
	reportHandler := NewReportHandler(deps.Reports)
	rep.Get("/summary", reportHandler.Summary)
	rep.Get("/period", reportHandler.Period)
	rep.Get("/daily", reportHandler.Daily)
	rep.Get("/top-moved", reportHandler.TopMoved)
	rep.Get("/flows", reportHandler.Flows)
	rep.Get("/alerts", reportHandler.Alerts)

	// Usuarios (admin)
	users := protected.Group("/users", requireAdmin())
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/", limit, userHandler.Create)
	users.Put("/:id", limit, userHandler.Update)
	users.Delete("/:id", limit, userHandler.Delete)
}

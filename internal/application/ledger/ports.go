package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del backend, pasando repositorios atados a esa tx.
// Serializa escritores: la validación lee el estado dentro de la misma sección crítica que hace commit.
// Si fn devuelve error no queda ninguna escritura parcial.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
		settingsRepo repository.SettingsRepository,
	) error) error
}

// Repositories lecturas fuera de transacción, usadas por Store.Reload.
type Repositories struct {
	Articles  repository.ArticleRepository
	Movements repository.MovementRepository
	Settings  repository.SettingsRepository
	Users     repository.UserRepository
}

// Collection colección afectada por un cambio.
type Collection string

const (
	CollectionArticles  Collection = "articles"
	CollectionMovements Collection = "movements"
	CollectionSettings  Collection = "settings"
	CollectionUsers     Collection = "users"
)

// Change aviso de reemplazo del snapshot.
type Change struct {
	Op          string       `json:"op"`
	Collections []Collection `json:"collections"`
	Source      string       `json:"source,omitempty"` // instancia que originó el cambio
}

// Touches indica si el cambio afecta la colección dada.
func (c Change) Touches(col Collection) bool {
	for _, x := range c.Collections {
		if x == col {
			return true
		}
	}
	return false
}

// ChangeNotifier publica cambios confirmados hacia otras instancias.
type ChangeNotifier interface {
	Publish(ctx context.Context, change Change) error
}

// Metrics puerto de métricas del libro. outcome es "ok" o la clave del rechazo.
type Metrics interface {
	ObserveMutation(op, outcome string, elapsed time.Duration)
	SetStockLevels(articles, low, out int)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, Change) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveMutation(string, string, time.Duration) {}
func (nopMetrics) SetStockLevels(int, int, int)                  {}

package repository

import (
	"context"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// ArticleRepository define el puerto de persistencia para Article (DIP).
// Escrituras primitivas sin reglas de negocio: las reglas viven en el servicio del libro.
type ArticleRepository interface {
	// Create asigna el ID (entero creciente, nunca reutilizado) y lo deja en article.ID.
	Create(ctx context.Context, article *entity.Article) error
	Replace(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Article, error)
}

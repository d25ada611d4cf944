package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación del puerto ArticleRepository sobre PostgreSQL (usable con pool o tx).
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

const articleColumns = `id, code, name, category, unit, price, alert_threshold, description, created_at, updated_at, price_history`

// Create inserta el artículo; el ID lo asigna la secuencia.
func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	history, err := json.Marshal(a.PriceHistory)
	if err != nil {
		return fmt.Errorf("encode price history: %w", err)
	}
	query := `
		INSERT INTO articles (code, name, category, unit, price, alert_threshold, description, created_at, updated_at, price_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err = r.q.QueryRow(ctx, query,
		a.Code, a.Name, a.Category, a.Unit, a.Price, a.AlertThreshold, a.Description,
		a.CreatedAt, a.UpdatedAt, history,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewLedgerError(domain.KeyArticleCodeExists, map[string]any{"code": a.Code})
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// Replace reescribe todos los campos del artículo.
func (r *ArticleRepo) Replace(ctx context.Context, a *entity.Article) error {
	history, err := json.Marshal(a.PriceHistory)
	if err != nil {
		return fmt.Errorf("encode price history: %w", err)
	}
	query := `
		UPDATE articles SET code = $2, name = $3, category = $4, unit = $5, price = $6, alert_threshold = $7,
			description = $8, created_at = $9, updated_at = $10, price_history = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		a.ID, a.Code, a.Name, a.Category, a.Unit, a.Price, a.AlertThreshold, a.Description,
		a.CreatedAt, a.UpdatedAt, history,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewLedgerError(domain.KeyArticleCodeExists, map[string]any{"code": a.Code})
		}
		return fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un artículo por ID.
func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// List todos los artículos en orden de creación.
func (r *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	rows, err := r.q.Query(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanArticle(row pgx.Row) (*entity.Article, error) {
	var a entity.Article
	var history []byte
	if err := row.Scan(
		&a.ID, &a.Code, &a.Name, &a.Category, &a.Unit, &a.Price, &a.AlertThreshold, &a.Description,
		&a.CreatedAt, &a.UpdatedAt, &history,
	); err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.PriceHistory); err != nil {
			return nil, fmt.Errorf("decode price history: %w", err)
		}
	}
	return &a, nil
}

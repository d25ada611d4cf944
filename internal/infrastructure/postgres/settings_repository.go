package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo registro único (id = 1) guardado como JSONB.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// Get devuelve la configuración guardada o la de fábrica si no hay fila.
func (r *SettingsRepo) Get(ctx context.Context) (*entity.Settings, error) {
	var payload []byte
	err := r.q.QueryRow(ctx, `SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s := entity.DefaultSettings()
			return &s, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	var s entity.Settings
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

// Save upsert de la fila única.
func (r *SettingsRepo) Save(ctx context.Context, s *entity.Settings) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = r.q.Exec(ctx,
		`INSERT INTO settings (id, payload) VALUES (1, $1) ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		payload)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// SettingsRepository registro único de configuración.
type SettingsRepository interface {
	// Get devuelve entity.DefaultSettings() si todavía no se guardó nada.
	Get(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, s *entity.Settings) error
}

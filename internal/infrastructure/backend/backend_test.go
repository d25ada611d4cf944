package backend_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-stock/internal/infrastructure/backend"
	"github.com/jhoicas/farmacia-stock/pkg/config"
)

func TestOpen_Memory(t *testing.T) {
	b, err := backend.Open(context.Background(), config.StorageConfig{Driver: config.DriverMemory}, config.DBConfig{})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.DriverMemory, b.Driver)
	assert.NotNil(t, b.Tx)
	assert.NotNil(t, b.Repos.Users)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libro.db")
	b, err := backend.Open(context.Background(), config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: path}, config.DBConfig{})
	require.NoError(t, err)
	b.Close()
	b.Close()

	assert.FileExists(t, path)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := backend.Open(context.Background(), config.StorageConfig{Driver: "bolt"}, config.DBConfig{})
	assert.Error(t, err)
}

package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/memory"
)

func TestTxRunner_ConfirmaSiNoHayError(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	runner := memory.NewTxRunner(db)

	err := runner.Run(ctx, func(a repository.ArticleRepository, m repository.MovementRepository, s repository.SettingsRepository) error {
		art := &entity.Article{Code: "A1", Name: "Gaze", Unit: "Paquet"}
		if err := a.Create(ctx, art); err != nil {
			return err
		}
		return m.Create(ctx, &entity.Movement{ID: 10, ArticleID: art.ID, Type: entity.MovementIn, Quantity: decimal.NewFromInt(3)})
	})
	require.NoError(t, err)

	snap := db.Export()
	require.Len(t, snap.Articles, 1)
	assert.Equal(t, int64(1), snap.Articles[0].ID)
	require.Len(t, snap.Movements, 1)
}

func TestTxRunner_ErrorDescartaTodo(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	runner := memory.NewTxRunner(db)
	boom := errors.New("boom")

	err := runner.Run(ctx, func(a repository.ArticleRepository, _ repository.MovementRepository, s repository.SettingsRepository) error {
		require.NoError(t, a.Create(ctx, &entity.Article{Code: "A1"}))
		set := entity.Settings{Categories: []string{"X"}}
		require.NoError(t, s.Save(ctx, &set))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	snap := db.Export()
	assert.Empty(t, snap.Articles)
	assert.Nil(t, snap.Settings)
	assert.Equal(t, int64(1), snap.NextArticleID)
}

func TestArticleRepo_IDsNoSeReutilizan(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewArticleRepository(memory.New())

	a := &entity.Article{Code: "A"}
	b := &entity.Article{Code: "B"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Delete(ctx, a.ID))
	require.NoError(t, repo.Create(ctx, b))
	assert.Greater(t, b.ID, a.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Code)
}

func TestMovementRepo_ListDescendente(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMovementRepository(memory.New())
	for _, id := range []int64{5, 20, 1} {
		require.NoError(t, repo.Create(ctx, &entity.Movement{ID: id}))
	}
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(20), list[0].ID)
	assert.Equal(t, int64(1), list[2].ID)

	err = repo.Replace(ctx, &entity.Movement{ID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettingsRepo_DefaultSiVacio(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSettingsRepository(memory.New())
	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSettings(), *s)
}

func TestUserRepo_UsernameUnico(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository(memory.New())
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Username: "admin"}))
	err := repo.Create(ctx, &entity.User{ID: "u2", Username: "admin"})
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)

	u, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
}

func TestCommitHook_FallaNoInstala(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	db.SetCommitHook(func(context.Context, memory.Snapshot) error { return errors.New("disco lleno") })

	err := memory.NewArticleRepository(db).Create(ctx, &entity.Article{Code: "A"})
	require.Error(t, err)
	assert.Empty(t, db.Export().Articles)
}

func TestNewFromSnapshot_ContinuaIDs(t *testing.T) {
	ctx := context.Background()
	db := memory.NewFromSnapshot(memory.Snapshot{Articles: []entity.Article{{ID: 7, Code: "X"}}})
	a := &entity.Article{Code: "Y"}
	require.NoError(t, memory.NewArticleRepository(db).Create(ctx, a))
	assert.Equal(t, int64(8), a.ID)
}

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/sqlite"
)

func openService(t *testing.T, path string) (*sqlite.Store, *ledger.Service) {
	t.Helper()
	st, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	store := ledger.NewStore(st.Repositories(), zerolog.Nop(), nil)
	require.NoError(t, store.Reload(context.Background()))
	return st, ledger.NewService(store, st.TxRunner())
}

func TestSQLite_SobreviveReapertura(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "farmacia.db")

	st, svc := openService(t, path)
	a, err := svc.AddArticle(ctx, ledger.ArticleInput{Code: "DOL1000", Name: "Doliprane 1000mg", Unit: "Boîte", Price: decimal.NewFromFloat(25.5)})
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, ledger.MovementInput{ArticleID: a.ID, Type: entity.MovementIn, Quantity: decimal.NewFromInt(50), Date: time.Now(), SupplierDest: "Fournisseur A"})
	require.NoError(t, err)
	_, err = svc.UpdateSettingsList(ctx, entity.ListDestinations, []string{"Service 1", "Périmé", "Service 2"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, svc2 := openService(t, path)
	arts := svc2.Articles()
	require.Len(t, arts, 1)
	assert.Equal(t, "DOL1000", arts[0].Code)
	assert.True(t, arts[0].Price.Equal(decimal.NewFromFloat(25.5)))
	require.Len(t, arts[0].PriceHistory, 1)

	stock := svc2.Stock()
	require.Len(t, stock, 1)
	assert.True(t, stock[0].CurrentStock.Equal(decimal.NewFromInt(50)))
	assert.Contains(t, svc2.Settings().Destinations, "Service 2")

	b, err := svc2.AddArticle(ctx, ledger.ArticleInput{Code: "SER005", Name: "Seringue 5ml", Unit: "Unité"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID, "el contador de IDs se conserva")
}

func TestSQLite_RechazoNoPersiste(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "farmacia.db")

	st, svc := openService(t, path)
	a, err := svc.AddArticle(ctx, ledger.ArticleInput{Code: "A", Name: "Alcool", Unit: "Flacon"})
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, ledger.MovementInput{ArticleID: a.ID, Type: entity.MovementOut, Quantity: decimal.NewFromInt(1), Date: time.Now()})
	require.Error(t, err)
	require.NoError(t, st.Close())

	_, svc2 := openService(t, path)
	assert.Empty(t, svc2.Movements())
}

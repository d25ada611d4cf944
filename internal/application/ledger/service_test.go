package ledger_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/memory"
)

var fixedNow = time.Date(2024, 7, 15, 10, 30, 0, 0, time.UTC)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

type harness struct {
	svc   *ledger.Service
	store *ledger.Store
	db    *memory.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := memory.New()
	store := ledger.NewStore(memory.Repositories(db), zerologNop(), nil)
	require.NoError(t, store.Reload(context.Background()))
	svc := ledger.NewService(store, memory.NewTxRunner(db), ledger.WithClock(func() time.Time { return fixedNow }))
	return &harness{svc: svc, store: store, db: db}
}

func (h *harness) addArticle(t *testing.T, code, name, unit string) entity.Article {
	t.Helper()
	a, err := h.svc.AddArticle(context.Background(), ledger.ArticleInput{
		Code: code, Name: name, Unit: unit, Category: "Médicaments", Price: d(10),
	})
	require.NoError(t, err)
	return *a
}

func (h *harness) move(articleID int64, typ entity.MovementType, q float64) (*entity.Movement, error) {
	return h.svc.AddMovement(context.Background(), ledger.MovementInput{
		ArticleID: articleID, UserID: "u1", Type: typ, Quantity: d(q), Date: fixedNow,
	})
}

func (h *harness) stock(t *testing.T, articleID int64) decimal.Decimal {
	t.Helper()
	item, ok := h.store.StockItem(articleID)
	require.True(t, ok)
	return item.CurrentStock
}

func keyOf(t *testing.T, err error) domain.ErrorKey {
	t.Helper()
	le, ok := domain.AsLedgerError(err)
	require.True(t, ok, "se esperaba un LedgerError, llegó %v", err)
	return le.Key
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestProyeccion_EsLaSumaFirmada(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	b := h.addArticle(t, "B", "Bétadine", "Flacon")

	_, err := h.move(a.ID, entity.MovementIn, 40)
	require.NoError(t, err)
	_, err = h.move(b.ID, entity.MovementIn, 12)
	require.NoError(t, err)
	_, err = h.move(a.ID, entity.MovementOut, 15)
	require.NoError(t, err)
	_, err = h.move(a.ID, entity.MovementExpired, 5)
	require.NoError(t, err)
	_, err = h.move(a.ID, entity.MovementAdjustment, -2)
	require.NoError(t, err)

	assert.True(t, h.stock(t, a.ID).Equal(d(18)))
	assert.True(t, h.stock(t, b.ID).Equal(d(12)))
}

func TestNoNegativo_SalidaInsuficienteNoCambiaNada(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	_, err := h.move(a.ID, entity.MovementIn, 10)
	require.NoError(t, err)

	before := h.db.Export()
	_, err = h.move(a.ID, entity.MovementOut, 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	le, _ := domain.AsLedgerError(err)
	assert.Equal(t, "Alcool", le.Params["articleName"])
	assert.True(t, le.Params["available"].(decimal.Decimal).Equal(d(10)))
	assert.True(t, le.Params["required"].(decimal.Decimal).Equal(d(11)))

	assert.Equal(t, before, h.db.Export(), "el backend no debe cambiar")
	assert.True(t, h.stock(t, a.ID).Equal(d(10)))

	_, err = h.move(a.ID, entity.MovementExpired, 11)
	assert.Equal(t, domain.KeyInsufficientStock, keyOf(t, err))
}

func TestAjuste_PuedeDejarStockNegativo(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	_, err := h.move(a.ID, entity.MovementIn, 3)
	require.NoError(t, err)

	_, err = h.move(a.ID, entity.MovementAdjustment, -10)
	require.NoError(t, err)
	assert.True(t, h.stock(t, a.ID).Equal(d(-7)))
}

func TestUnicidad_CodigoYNombreUnidad(t *testing.T) {
	h := newHarness(t)
	h.addArticle(t, "DOL1000", "Doliprane 1000mg", "Boîte")

	_, err := h.svc.AddArticle(context.Background(), ledger.ArticleInput{Code: "dol1000", Name: "Otro", Unit: "Boîte"})
	assert.Equal(t, domain.KeyArticleCodeExists, keyOf(t, err))

	_, err = h.svc.AddArticlesBulk(context.Background(), []ledger.ArticleInput{
		{Code: "NEW1", Name: "  doliprane  1000MG", Unit: "Boîte"},
	})
	assert.Equal(t, domain.KeyArticleNameUnitExists, keyOf(t, err))

	out, err := h.svc.AddArticlesBulk(context.Background(), []ledger.ArticleInput{
		{Code: "NEW2", Name: "Doliprane 1000mg", Unit: "Plaquette"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotZero(t, out[0].ID)
}

func TestAltaSimple_NoRechazaPorNombre(t *testing.T) {
	h := newHarness(t)
	h.addArticle(t, "A1", "Gaze", "Paquet")
	_, err := h.svc.AddArticle(context.Background(), ledger.ArticleInput{Code: "A2", Name: "gaze", Unit: "Paquet"})
	require.NoError(t, err)

	similar := h.svc.SimilarArticles(" GAZE ", "Paquet")
	assert.Len(t, similar, 2)
	assert.Empty(t, h.svc.SimilarArticles("gaze", "Boîte"))
}

func TestAltaMasiva_TodoONada(t *testing.T) {
	h := newHarness(t)
	h.addArticle(t, "EXIST", "Existente", "Unité")

	batch := []ledger.ArticleInput{
		{Code: "B1", Name: "Uno", Unit: "Unité"},
		{Code: "B2", Name: "Dos", Unit: "Unité"},
		{Code: "B3", Name: "Tres", Unit: "Unité"},
		{Code: "B4", Name: "Cuatro", Unit: "Unité"},
		{Code: "B5", Name: "Cinco", Unit: "Unité"},
		{Code: "exist", Name: "Seis", Unit: "Unité"},
	}
	_, err := h.svc.AddArticlesBulk(context.Background(), batch)
	assert.Equal(t, domain.KeyArticleCodeExists, keyOf(t, err))
	assert.Len(t, h.svc.Articles(), 1, "ningún artículo del lote debe quedar")
	assert.Len(t, h.db.Export().Articles, 1)
}

func TestAltaMasiva_DuplicadoDentroDelLote(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.AddArticlesBulk(context.Background(), []ledger.ArticleInput{
		{Code: "X1", Name: "Gaze", Unit: "Paquet"},
		{Code: "X2", Name: "gaze", Unit: "Paquet"},
	})
	assert.Equal(t, domain.KeyArticleNameUnitExists, keyOf(t, err))
	assert.Empty(t, h.svc.Articles())
}

func TestHistorialPrecio_SoloAlCambiarPrecio(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	require.Len(t, a.PriceHistory, 1)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), a.CreatedAt)

	a.Price = d(12.50)
	updated, err := h.svc.UpdateArticle(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, updated.PriceHistory, 2)
	assert.True(t, updated.PriceHistory[1].Price.Equal(d(12.50)))
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), updated.PriceHistory[1].Date)

	updated.Description = "otra descripción"
	again, err := h.svc.UpdateArticle(context.Background(), *updated)
	require.NoError(t, err)
	assert.Len(t, again.PriceHistory, 2)
	assert.Equal(t, "otra descripción", again.Description)
}

func TestActualizarArticulo_NoEncontradoYCodigo(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	h.addArticle(t, "B", "Bétadine", "Flacon")

	ghost := a
	ghost.ID = 999
	_, err := h.svc.UpdateArticle(context.Background(), ghost)
	assert.Equal(t, domain.KeyArticleNotFound, keyOf(t, err))

	a.Code = "b"
	_, err = h.svc.UpdateArticle(context.Background(), a)
	assert.Equal(t, domain.KeyArticleCodeExists, keyOf(t, err))

	a.Code = "a" // solo cambia mayúsculas del propio código
	_, err = h.svc.UpdateArticle(context.Background(), a)
	assert.NoError(t, err)
}

func TestBorrarArticulo(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	b := h.addArticle(t, "B", "Bétadine", "Flacon")
	_, err := h.move(a.ID, entity.MovementIn, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.KeyArticleInUse, keyOf(t, h.svc.DeleteArticle(context.Background(), a.ID)))
	assert.Equal(t, domain.KeyArticleNotFound, keyOf(t, h.svc.DeleteArticle(context.Background(), 999)))
	require.NoError(t, h.svc.DeleteArticle(context.Background(), b.ID))
	assert.Len(t, h.svc.Articles(), 1)
}

func TestGuardiaConfiguracion_Proveedor(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	m, err := h.svc.AddMovement(context.Background(), ledger.MovementInput{
		ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(5), Date: fixedNow, SupplierDest: "Fournisseur A",
	})
	require.NoError(t, err)

	_, err = h.svc.UpdateSettingsList(context.Background(), entity.ListSuppliers, []string{"Dépôt Central"})
	assert.Equal(t, domain.KeySupplierInUse, keyOf(t, err))
	le, _ := domain.AsLedgerError(err)
	assert.Equal(t, "Fournisseur A", le.Params["item"])
	assert.Contains(t, h.svc.Settings().Suppliers, "Fournisseur A")

	m.SupplierDest = "Dépôt Central"
	_, err = h.svc.UpdateMovement(context.Background(), *m)
	require.NoError(t, err)

	saved, err := h.svc.UpdateSettingsList(context.Background(), entity.ListSuppliers, []string{"Dépôt Central"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dépôt Central"}, saved.Suppliers)
	assert.Equal(t, []string{"Dépôt Central"}, h.svc.Settings().Suppliers)
}

func TestGuardiaConfiguracion_CategoriaYListaInvalida(t *testing.T) {
	h := newHarness(t)
	h.addArticle(t, "A", "Alcool", "Flacon") // categoría Médicaments

	_, err := h.svc.UpdateSettingsList(context.Background(), entity.ListCategories, []string{"Fournitures"})
	assert.Equal(t, domain.KeyCategoryInUse, keyOf(t, err))

	_, err = h.svc.UpdateSettingsList(context.Background(), "colores", []string{"x"})
	assert.Equal(t, domain.KeyInvalidSettingsList, keyOf(t, err))

	// agregar nunca se valida
	saved, err := h.svc.UpdateSettingsList(context.Background(), entity.ListCategories,
		[]string{"Médicaments", "Fournitures", "Consommables", "Autres", " Nouvelle ", "Nouvelle"})
	require.NoError(t, err)
	assert.Equal(t, "Nouvelle", saved.Categories[len(saved.Categories)-1])
	assert.Len(t, saved.Categories, 5)
}

func TestActualizarMovimiento_CambioDeArticuloInsuficiente(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	b := h.addArticle(t, "B", "Bétadine", "Flacon")

	_, err := h.move(a.ID, entity.MovementIn, 25)
	require.NoError(t, err)
	out, err := h.move(a.ID, entity.MovementOut, 20) // A queda en 5
	require.NoError(t, err)
	_, err = h.move(b.ID, entity.MovementIn, 10)
	require.NoError(t, err)

	moved := *out
	moved.ArticleID = b.ID
	_, err = h.svc.UpdateMovement(context.Background(), moved)
	assert.Equal(t, domain.KeyInsufficientStock, keyOf(t, err))

	assert.True(t, h.stock(t, a.ID).Equal(d(5)))
	assert.True(t, h.stock(t, b.ID).Equal(d(10)))
}

func TestActualizarMovimiento_ArticuloViejoQuedariaNegativo(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	b := h.addArticle(t, "B", "Bétadine", "Flacon")

	in, err := h.move(a.ID, entity.MovementIn, 10)
	require.NoError(t, err)
	_, err = h.move(a.ID, entity.MovementOut, 8)
	require.NoError(t, err)

	moved := *in
	moved.ArticleID = b.ID
	_, err = h.svc.UpdateMovement(context.Background(), moved)
	assert.Equal(t, domain.KeyInsufficientStockOnDelete, keyOf(t, err))
	assert.True(t, h.stock(t, a.ID).Equal(d(2)))
	assert.True(t, h.stock(t, b.ID).IsZero())
}

func TestActualizarMovimiento_MismoArticuloExcluyeOriginal(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	_, err := h.move(a.ID, entity.MovementIn, 10)
	require.NoError(t, err)
	out, err := h.move(a.ID, entity.MovementOut, 8)
	require.NoError(t, err)

	// 10 disponibles sin la salida original: 10 es válido, 11 no
	out.Quantity = d(10)
	_, err = h.svc.UpdateMovement(context.Background(), *out)
	require.NoError(t, err)
	assert.True(t, h.stock(t, a.ID).IsZero())

	out.Quantity = d(11)
	_, err = h.svc.UpdateMovement(context.Background(), *out)
	assert.Equal(t, domain.KeyInsufficientStock, keyOf(t, err))
	le, _ := domain.AsLedgerError(err)
	assert.True(t, le.Params["available"].(decimal.Decimal).Equal(d(10)))

	ghost := *out
	ghost.ID = 42
	_, err = h.svc.UpdateMovement(context.Background(), ghost)
	assert.Equal(t, domain.KeyMovementNotFound, keyOf(t, err))
}

func TestBorrarMovimiento(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	in, err := h.move(a.ID, entity.MovementIn, 10)
	require.NoError(t, err)
	out, err := h.move(a.ID, entity.MovementOut, 4)
	require.NoError(t, err)

	assert.Equal(t, domain.KeyInsufficientStockOnDelete, keyOf(t, h.svc.DeleteMovement(context.Background(), in.ID)))
	assert.Equal(t, domain.KeyMovementNotFound, keyOf(t, h.svc.DeleteMovement(context.Background(), 1)))

	require.NoError(t, h.svc.DeleteMovement(context.Background(), out.ID))
	require.NoError(t, h.svc.DeleteMovement(context.Background(), in.ID))
	assert.True(t, h.stock(t, a.ID).IsZero())
	assert.Empty(t, h.svc.Movements())
}

func TestMovimiento_ArticuloInexistenteYEntradaInvalida(t *testing.T) {
	h := newHarness(t)
	_, err := h.move(77, entity.MovementIn, 1)
	assert.Equal(t, domain.KeyArticleNotFound, keyOf(t, err))

	a := h.addArticle(t, "A", "Alcool", "Flacon")
	_, err = h.move(a.ID, entity.MovementOut, -1)
	assert.Equal(t, domain.KeyInvalidMovement, keyOf(t, err))
}

func TestEscenarioCompleto_Gaze(t *testing.T) {
	h := newHarness(t)
	g := h.addArticle(t, "GAZE", "Gauze", "Paquet")
	assert.True(t, h.stock(t, g.ID).IsZero())

	_, err := h.move(g.ID, entity.MovementIn, 100)
	require.NoError(t, err)
	assert.True(t, h.stock(t, g.ID).Equal(d(100)))

	_, err = h.move(g.ID, entity.MovementOut, 30)
	require.NoError(t, err)
	assert.True(t, h.stock(t, g.ID).Equal(d(70)))

	_, err = h.move(g.ID, entity.MovementOut, 1000)
	assert.Equal(t, domain.KeyInsufficientStock, keyOf(t, err))
	assert.True(t, h.stock(t, g.ID).Equal(d(70)))

	_, err = h.move(g.ID, entity.MovementAdjustment, -1000)
	require.NoError(t, err)
	assert.True(t, h.stock(t, g.ID).Equal(d(-930)))
}

// ──────────────────────────────────────────────────────────────────────────────
// IDs, orden, concurrencia y notificaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientos_IDsUnicosYOrdenDescendente(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	for i := 0; i < 5; i++ {
		_, err := h.move(a.ID, entity.MovementIn, 1)
		require.NoError(t, err)
	}
	movs := h.svc.Movements()
	require.Len(t, movs, 5)
	assert.Equal(t, int64(240715103000004), movs[0].ID)
	assert.Equal(t, int64(240715103000000), movs[4].ID)
}

func TestSalidasConcurrentes_NoSobregiran(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "A", "Alcool", "Flacon")
	_, err := h.move(a.ID, entity.MovementIn, 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.move(a.ID, entity.MovementOut, 1); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	assert.True(t, h.stock(t, a.ID).IsZero())
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []ledger.Change
}

func (r *recordingNotifier) Publish(_ context.Context, c ledger.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func TestNotificaciones_SoloCambiosConfirmados(t *testing.T) {
	db := memory.New()
	store := ledger.NewStore(memory.Repositories(db), zerologNop(), nil)
	require.NoError(t, store.Reload(context.Background()))
	notifier := &recordingNotifier{}
	svc := ledger.NewService(store, memory.NewTxRunner(db), ledger.WithNotifier(notifier), ledger.WithSource("inst-1"))

	var seen []string
	unsubscribe := store.Subscribe(func(c ledger.Change) { seen = append(seen, c.Op) })

	a, err := svc.AddArticle(context.Background(), ledger.ArticleInput{Code: "A", Name: "Alcool", Unit: "Flacon"})
	require.NoError(t, err)
	_, err = svc.AddMovement(context.Background(), ledger.MovementInput{ArticleID: a.ID, Type: entity.MovementOut, Quantity: d(1), Date: fixedNow})
	require.Error(t, err)

	unsubscribe()
	_, err = svc.AddMovement(context.Background(), ledger.MovementInput{ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(1), Date: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, []string{"article.add"}, seen)
	require.Len(t, notifier.changes, 2)
	assert.Equal(t, "inst-1", notifier.changes[0].Source)
	assert.True(t, notifier.changes[1].Touches(ledger.CollectionMovements))
}

func TestReload_LeeCambiosExternos(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	// escritura directa al backend, como la haría otra instancia
	require.NoError(t, memory.NewArticleRepository(h.db).Create(ctx, &entity.Article{Code: "EXT", Name: "Externo", Unit: "U"}))
	assert.Empty(t, h.svc.Articles())

	require.NoError(t, h.store.Reload(ctx))
	require.Len(t, h.svc.Articles(), 1)
	assert.Len(t, h.svc.Stock(), 1)
}

func TestFollow_RecargaAnteCambioRemoto(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := make(chan ledger.Change)
	reloaded := make(chan struct{}, 1)
	h.store.Subscribe(func(c ledger.Change) {
		if c.Op == "reload" {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	})
	go h.store.Follow(ctx, remote, 0)

	require.NoError(t, memory.NewArticleRepository(h.db).Create(ctx, &entity.Article{Code: "EXT", Name: "Externo", Unit: "U"}))
	remote <- ledger.Change{Op: "article.add", Source: "otra"}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("no hubo recarga")
	}
	assert.Len(t, h.svc.Articles(), 1)
}

func TestSuscriptor_PuedeRecargarYMutarDentroDelAviso(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var fired atomic.Bool
	done := make(chan error, 1)
	h.store.Subscribe(func(c ledger.Change) {
		if c.Op != "article.add" || !fired.CompareAndSwap(false, true) {
			return
		}
		if err := h.store.Reload(ctx); err != nil {
			done <- err
			return
		}
		if err := h.store.ReloadUsers(ctx); err != nil {
			done <- err
			return
		}
		_, err := h.svc.AddArticle(ctx, ledger.ArticleInput{
			Code: "DESDE-AVISO", Name: "Desde aviso", Unit: "U", Category: "Médicaments", Price: d(1),
		})
		done <- err
	})

	finished := make(chan error, 1)
	go func() {
		_, err := h.svc.AddArticle(ctx, ledger.ArticleInput{
			Code: "A1", Name: "Alcool", Unit: "Flacon", Category: "Médicaments", Price: d(10),
		})
		finished <- err
	}()

	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("la mutación quedó bloqueada por el suscriptor")
	}
	require.NoError(t, <-done)
	assert.Len(t, h.svc.Articles(), 2)
}

func TestIDsMovimiento_ContinuanDesdeElMaximoGuardado(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.addArticle(t, "A1", "Alcool", "Flacon")

	// ID escrito por otra instancia con el reloj adelantado
	const ajeno = int64(991231235959042)
	require.NoError(t, memory.NewMovementRepository(h.db).Create(ctx, &entity.Movement{
		ID: ajeno, ArticleID: a.ID, UserID: "u2", Type: entity.MovementIn, Quantity: d(5), Date: fixedNow,
	}))

	m, err := h.move(a.ID, entity.MovementIn, 1)
	require.NoError(t, err)
	assert.Equal(t, ajeno+1, m.ID)
	assert.True(t, d(6).Equal(h.stock(t, a.ID)))
}

func TestUsersChanged_RecargaUsuariosYPublica(t *testing.T) {
	db := memory.New()
	store := ledger.NewStore(memory.Repositories(db), zerologNop(), nil)
	ctx := context.Background()
	require.NoError(t, store.Reload(ctx))
	notifier := &recordingNotifier{}
	svc := ledger.NewService(store, memory.NewTxRunner(db), ledger.WithNotifier(notifier), ledger.WithSource("inst-1"))

	require.NoError(t, memory.NewUserRepository(db).Create(ctx, &entity.User{ID: "u-1", Username: "admin", Role: entity.RoleAdmin}))
	assert.Empty(t, svc.Users())

	require.NoError(t, svc.UsersChanged(ctx, "user.create"))

	require.Len(t, svc.Users(), 1)
	require.Len(t, notifier.changes, 1)
	assert.Equal(t, "user.create", notifier.changes[0].Op)
	assert.True(t, notifier.changes[0].Touches(ledger.CollectionUsers))
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta masiva de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func bulkOut(articleID int64, q float64, dest string) ledger.MovementInput {
	return ledger.MovementInput{ArticleID: articleID, UserID: "u1", Type: entity.MovementOut, Quantity: d(q), Date: fixedNow, SupplierDest: dest}
}

func TestAltaMasivaMovimientos_SumaSalidasPorArticulo(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "DOL", "Doliprane", "Boîte")
	_, err := h.move(a.ID, entity.MovementIn, 10)
	require.NoError(t, err)

	// cada salida cabe sola; juntas superan el stock
	_, err = h.svc.AddMovementsBulk(context.Background(), []ledger.MovementInput{
		bulkOut(a.ID, 6, "Service 1"),
		bulkOut(a.ID, 6, "Service 2"),
	})
	require.Error(t, err)
	le, ok := domain.AsLedgerError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KeyInsufficientStock, le.Key)
	assert.Equal(t, "Doliprane", le.Params["articleName"])
	assert.True(t, d(10).Equal(le.Params["available"].(decimal.Decimal)))
	assert.True(t, d(12).Equal(le.Params["required"].(decimal.Decimal)))

	assert.Len(t, h.svc.Movements(), 1)
	stored, err := memory.NewMovementRepository(h.db).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.True(t, h.stock(t, a.ID).Equal(d(10)))
}

func TestAltaMasivaMovimientos_UnArticuloCortoNoGuardaNada(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "DOL", "Doliprane", "Boîte")
	b := h.addArticle(t, "SER", "Seringue", "Unité")
	_, err := h.move(a.ID, entity.MovementIn, 20)
	require.NoError(t, err)
	_, err = h.move(b.ID, entity.MovementIn, 2)
	require.NoError(t, err)

	_, err = h.svc.AddMovementsBulk(context.Background(), []ledger.MovementInput{
		bulkOut(a.ID, 5, "Service 1"),
		bulkOut(b.ID, 3, "Service 1"),
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Len(t, h.svc.Movements(), 2)
	assert.True(t, h.stock(t, a.ID).Equal(d(20)))
	assert.True(t, h.stock(t, b.ID).Equal(d(2)))
}

func TestAltaMasivaMovimientos_IDsDistintosEnElMismoSegundo(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "DOL", "Doliprane", "Boîte")
	b := h.addArticle(t, "SER", "Seringue", "Unité")

	created, err := h.svc.AddMovementsBulk(context.Background(), []ledger.MovementInput{
		{ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(10), Date: fixedNow, SupplierDest: "Fournisseur A"},
		{ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(5), Date: fixedNow, SupplierDest: "Fournisseur B"},
		{ArticleID: b.ID, Type: entity.MovementIn, Quantity: d(7), Date: fixedNow, SupplierDest: "Fournisseur A"},
		// los ajustes no se comprueban contra el stock
		{ArticleID: b.ID, Type: entity.MovementAdjustment, Quantity: d(-9), Date: fixedNow},
	})
	require.NoError(t, err)
	require.Len(t, created, 4)

	ids := map[int64]bool{}
	for i, m := range created {
		ids[m.ID] = true
		if i > 0 {
			assert.Greater(t, m.ID, created[i-1].ID)
		}
	}
	assert.Len(t, ids, 4)
	assert.Len(t, h.svc.Movements(), 4)
	assert.True(t, h.stock(t, a.ID).Equal(d(15)))
	assert.True(t, h.stock(t, b.ID).Equal(d(-2)))
}

func TestAltaMasivaMovimientos_EntradaInvalidaOArticuloInexistente(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "DOL", "Doliprane", "Boîte")
	ctx := context.Background()

	_, err := h.svc.AddMovementsBulk(ctx, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidMovement))

	_, err = h.svc.AddMovementsBulk(ctx, []ledger.MovementInput{
		{ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(1), Date: fixedNow},
		{ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(0), Date: fixedNow},
	})
	le, ok := domain.AsLedgerError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KeyInvalidMovement, le.Key)
	assert.Equal(t, 1, le.Params["index"])

	_, err = h.svc.AddMovementsBulk(ctx, []ledger.MovementInput{
		{ArticleID: a.ID, Type: entity.MovementIn, Quantity: d(1), Date: fixedNow},
		{ArticleID: 999, Type: entity.MovementIn, Quantity: d(1), Date: fixedNow},
	})
	assert.True(t, errors.Is(err, domain.ErrArticleNotFound))
	assert.Empty(t, h.svc.Movements())
}

// ──────────────────────────────────────────────────────────────────────────────
// Escala decimal: lo aceptado es exactamente lo que guarda Postgres
// ──────────────────────────────────────────────────────────────────────────────

func TestEscalaDecimal_RechazaLoQueSeRedondearia(t *testing.T) {
	h := newHarness(t)
	a := h.addArticle(t, "DOL", "Doliprane", "Boîte")
	ctx := context.Background()

	_, err := h.svc.AddMovement(ctx, ledger.MovementInput{
		ArticleID: a.ID, Type: entity.MovementIn, Quantity: decimal.RequireFromString("0.0004"), Date: fixedNow,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidMovement))
	assert.Empty(t, h.svc.Movements())

	next := a
	next.Price = decimal.RequireFromString("12.505")
	_, err = h.svc.UpdateArticle(ctx, next)
	assert.True(t, errors.Is(err, domain.ErrInvalidArticle))

	stored, ok := h.store.Article(a.ID)
	require.True(t, ok)
	assert.True(t, stored.Price.Equal(d(10)))
	assert.Len(t, stored.PriceHistory, 1)
}

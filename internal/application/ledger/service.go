package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

// Service aplica el protocolo de mutación del libro: validar → re-proyectar → confirmar o rechazar.
// Todo ocurre dentro de un TxRunner.Run, de modo que la validación lee el estado de la misma
// transacción que confirma. Un rechazo no deja escrituras.
type Service struct {
	store    *Store
	txRunner TxRunner
	ids      *ledger.MovementIDGenerator
	notifier ChangeNotifier
	metrics  Metrics
	clock    func() time.Time
	log      zerolog.Logger
	source   string
}

// Option configura el Service.
type Option func(*Service)

// WithNotifier publica cada cambio confirmado (p. ej. Redis pub/sub).
func WithNotifier(n ChangeNotifier) Option { return func(s *Service) { s.notifier = n } }

// WithMetrics registra duración y resultado de cada mutación.
func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.clock = now } }

// WithLogger logger del servicio.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithSource identificador de esta instancia en los cambios publicados.
func WithSource(id string) Option { return func(s *Service) { s.source = id } }

// NewService construye el servicio sobre el store y el TxRunner del backend elegido.
func NewService(store *Store, txRunner TxRunner, opts ...Option) *Service {
	s := &Service{
		store:    store,
		txRunner: txRunner,
		notifier: nopNotifier{},
		metrics:  nopMetrics{},
		clock:    time.Now,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.ids = ledger.NewMovementIDGenerator(s.clock)
	return s
}

// Store acceso de lectura al snapshot.
func (s *Service) Store() *Store { return s.store }

// Lecturas delegadas al snapshot.
func (s *Service) Articles() []entity.Article   { return s.store.Articles() }
func (s *Service) Movements() []entity.Movement { return s.store.Movements() }
func (s *Service) Stock() []entity.StockItem    { return s.store.Stock() }
func (s *Service) Settings() entity.Settings    { return s.store.Settings() }
func (s *Service) Users() []entity.User         { return s.store.Users() }

// ArticleInput datos de alta de un artículo; ID, fechas e historial los asigna el servicio.
type ArticleInput struct {
	Code           string
	Name           string
	Category       string
	Unit           string
	Price          decimal.Decimal
	AlertThreshold decimal.Decimal
	Description    string
}

func (in ArticleInput) article() entity.Article {
	return entity.Article{
		Code:           in.Code,
		Name:           in.Name,
		Category:       in.Category,
		Unit:           in.Unit,
		Price:          in.Price,
		AlertThreshold: in.AlertThreshold,
		Description:    in.Description,
	}
}

// MovementInput datos de alta de un movimiento; el ID lo asigna el generador.
type MovementInput struct {
	ArticleID    int64
	UserID       string
	Type         entity.MovementType
	Quantity     decimal.Decimal
	Date         time.Time
	RefDoc       string
	SupplierDest string
	Subcategory  string
	Remarks      string
}

func (in MovementInput) movement() entity.Movement {
	return entity.Movement{
		ArticleID:    in.ArticleID,
		UserID:       in.UserID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Date:         in.Date,
		RefDoc:       in.RefDoc,
		SupplierDest: in.SupplierDest,
		Subcategory:  in.Subcategory,
		Remarks:      in.Remarks,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Artículos
// ──────────────────────────────────────────────────────────────────────────────

// AddArticle da de alta un artículo. Solo rechaza por código repetido (ARTICLE_CODE_EXISTS);
// el aviso por nombre parecido lo da SimilarArticles antes de llamar aquí.
func (s *Service) AddArticle(ctx context.Context, in ArticleInput) (*entity.Article, error) {
	a := in.article()
	if err := ledger.ValidateArticle(a); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, "article.add", []Collection{CollectionArticles}, func(v *txView) error {
		if err := ledger.CodeUnique(v.articles, a.Code, 0); err != nil {
			return err
		}
		s.stampNew(&a)
		return v.createArticle(ctx, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AddArticlesBulk alta masiva todo-o-nada. Código y nombre+unidad se comprueban contra el store
// y dentro del lote; la primera violación aborta sin escribir nada.
func (s *Service) AddArticlesBulk(ctx context.Context, inputs []ArticleInput) ([]entity.Article, error) {
	if len(inputs) == 0 {
		return []entity.Article{}, nil
	}
	batch := make([]entity.Article, len(inputs))
	for i, in := range inputs {
		batch[i] = in.article()
		if err := ledger.ValidateArticle(batch[i]); err != nil {
			return nil, err
		}
	}
	err := s.mutate(ctx, "article.bulk_add", []Collection{CollectionArticles}, func(v *txView) error {
		for i := range batch {
			a := &batch[i]
			// v.articles ya incluye los del lote creados antes: cubre también los duplicados internos.
			if err := ledger.CodeUnique(v.articles, a.Code, 0); err != nil {
				return err
			}
			if err := ledger.NameUnitUnique(v.articles, a.Name, a.Unit, 0); err != nil {
				return err
			}
			s.stampNew(a)
			if err := v.createArticle(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateArticle reemplaza los datos editables. CreatedAt e historial salen del registro guardado;
// si el precio cambia se agrega una entrada al historial. UpdatedAt = hoy siempre.
func (s *Service) UpdateArticle(ctx context.Context, a entity.Article) (*entity.Article, error) {
	if err := ledger.ValidateArticle(a); err != nil {
		return nil, err
	}
	var saved entity.Article
	err := s.mutate(ctx, "article.update", []Collection{CollectionArticles}, func(v *txView) error {
		orig, ok := v.article(a.ID)
		if !ok {
			return articleNotFound(a.ID)
		}
		if ledger.FoldCode(orig.Code) != ledger.FoldCode(a.Code) {
			if err := ledger.CodeUnique(v.articles, a.Code, a.ID); err != nil {
				return err
			}
		}
		if ledger.NameUnitKey(orig.Name, orig.Unit) != ledger.NameUnitKey(a.Name, a.Unit) {
			if err := ledger.NameUnitUnique(v.articles, a.Name, a.Unit, a.ID); err != nil {
				return err
			}
		}
		today := ledger.DateOf(s.clock())
		saved = a
		saved.CreatedAt = orig.CreatedAt
		saved.UpdatedAt = today
		saved.PriceHistory = orig.Clone().PriceHistory
		if !orig.Price.Equal(a.Price) {
			saved.PriceHistory = append(saved.PriceHistory, entity.PriceEntry{Price: a.Price, Date: today})
		}
		return v.replaceArticle(ctx, &saved)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteArticle borra un artículo sin movimientos (ARTICLE_IN_USE si tiene alguno).
func (s *Service) DeleteArticle(ctx context.Context, id int64) error {
	return s.mutate(ctx, "article.delete", []Collection{CollectionArticles}, func(v *txView) error {
		if _, ok := v.article(id); !ok {
			return articleNotFound(id)
		}
		if err := ledger.ArticleInUse(v.movements, id); err != nil {
			return err
		}
		return v.deleteArticle(ctx, id)
	})
}

// SimilarArticles artículos con el mismo nombre normalizado y unidad (unit vacío = cualquier unidad).
func (s *Service) SimilarArticles(name, unit string) []entity.Article {
	key := ledger.NormalizeName(name)
	var out []entity.Article
	for _, a := range s.store.Articles() {
		if ledger.NormalizeName(a.Name) != key {
			continue
		}
		if unit != "" && a.Unit != unit {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *Service) stampNew(a *entity.Article) {
	today := ledger.DateOf(s.clock())
	a.CreatedAt = today
	a.UpdatedAt = today
	a.PriceHistory = []entity.PriceEntry{{Price: a.Price, Date: today}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

// AddMovement registra un movimiento. Salvo Ajustement, rechaza con INSUFFICIENT_STOCK
// si el stock del artículo quedaría negativo.
func (s *Service) AddMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	m := in.movement()
	if err := ledger.ValidateMovement(m); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, "movement.add", []Collection{CollectionMovements}, func(v *txView) error {
		item, ok := v.stockOf(m.ArticleID)
		if !ok {
			return articleNotFound(m.ArticleID)
		}
		if m.Type != entity.MovementAdjustment {
			if err := ledger.SufficientStock(item, ledger.SignedQuantity(m)); err != nil {
				return err
			}
		}
		s.ids.Observe(ledger.MaxMovementID(v.movements))
		m.ID = s.ids.Next()
		return v.createMovement(ctx, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AddMovementsBulk alta de varios movimientos todo-o-nada: un artículo repartido entre varios
// proveedores o destinos, o un mismo tipo sobre varios artículos.
// Las salidas (Sortie, Périmé / Rebut) se suman por artículo y el total se compara con el stock
// actual antes de escribir nada; Entrée y Ajustement no pasan por esa comprobación.
func (s *Service) AddMovementsBulk(ctx context.Context, inputs []MovementInput) ([]entity.Movement, error) {
	if len(inputs) == 0 {
		return nil, domain.NewLedgerError(domain.KeyInvalidMovement, map[string]any{"field": "movements"})
	}
	batch := make([]entity.Movement, len(inputs))
	for i, in := range inputs {
		batch[i] = in.movement()
		if err := ledger.ValidateMovement(batch[i]); err != nil {
			if le, ok := domain.AsLedgerError(err); ok {
				le.Params["index"] = i
			}
			return nil, err
		}
	}

	err := s.mutate(ctx, "movement.bulk_add", []Collection{CollectionMovements}, func(v *txView) error {
		withdrawals := make(map[int64]decimal.Decimal)
		var order []int64
		for _, m := range batch {
			if _, ok := v.article(m.ArticleID); !ok {
				return articleNotFound(m.ArticleID)
			}
			if !m.Type.IsOutgoing() {
				continue
			}
			if _, seen := withdrawals[m.ArticleID]; !seen {
				order = append(order, m.ArticleID)
			}
			withdrawals[m.ArticleID] = withdrawals[m.ArticleID].Add(m.Quantity)
		}
		for _, id := range order {
			item, _ := v.stockOf(id)
			if err := ledger.SufficientStock(item, withdrawals[id].Neg()); err != nil {
				return err
			}
		}

		s.ids.Observe(ledger.MaxMovementID(v.movements))
		for i := range batch {
			batch[i].ID = s.ids.Next()
			if err := v.createMovement(ctx, &batch[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateMovement reemplaza un movimiento existente.
//
// Mismo artículo: se valida sobre el stock sin el efecto del original.
// Otro artículo: el nuevo debe soportar el efecto nuevo (INSUFFICIENT_STOCK) y el viejo debe
// quedar no negativo sin el original (INSUFFICIENT_STOCK_ON_DELETE).
func (s *Service) UpdateMovement(ctx context.Context, m entity.Movement) (*entity.Movement, error) {
	if err := ledger.ValidateMovement(m); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, "movement.update", []Collection{CollectionMovements}, func(v *txView) error {
		orig, ok := v.movement(m.ID)
		if !ok {
			return movementNotFound(m.ID)
		}
		origEffect := ledger.SignedQuantity(orig)
		newEffect := ledger.SignedQuantity(m)

		item, ok := v.stockOf(m.ArticleID)
		if !ok {
			return articleNotFound(m.ArticleID)
		}
		if orig.ArticleID == m.ArticleID {
			if m.Type != entity.MovementAdjustment {
				without := item
				without.CurrentStock = item.CurrentStock.Sub(origEffect)
				if err := ledger.SufficientStock(without, newEffect); err != nil {
					return err
				}
			}
		} else {
			if m.Type != entity.MovementAdjustment {
				if err := ledger.SufficientStock(item, newEffect); err != nil {
					return err
				}
			}
			if old, ok := v.stockOf(orig.ArticleID); ok {
				if err := ledger.StockAfterRemoval(old, origEffect); err != nil {
					return err
				}
			}
		}
		return v.replaceMovement(ctx, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMovement borra un movimiento si el stock del artículo no queda negativo sin él.
func (s *Service) DeleteMovement(ctx context.Context, id int64) error {
	return s.mutate(ctx, "movement.delete", []Collection{CollectionMovements}, func(v *txView) error {
		m, ok := v.movement(id)
		if !ok {
			return movementNotFound(id)
		}
		if item, ok := v.stockOf(m.ArticleID); ok {
			if err := ledger.StockAfterRemoval(item, ledger.SignedQuantity(m)); err != nil {
				return err
			}
		}
		return v.deleteMovement(ctx, id)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Configuración
// ──────────────────────────────────────────────────────────────────────────────

// UpdateSettingsList reemplaza una lista. Cada valor quitado que siga referenciado rechaza
// el cambio completo con la clave *_IN_USE correspondiente.
func (s *Service) UpdateSettingsList(ctx context.Context, name entity.SettingsList, values []string) (*entity.Settings, error) {
	if !name.Valid() {
		return nil, domain.NewLedgerError(domain.KeyInvalidSettingsList, map[string]any{"list": string(name)})
	}
	values = ledger.CleanList(values)
	var saved entity.Settings
	err := s.mutate(ctx, "settings.update", []Collection{CollectionSettings}, func(v *txView) error {
		for _, item := range ledger.RemovedItems(v.settings.List(name), values) {
			if err := ledger.ReferencedElsewhere(name, item, v.articles, v.movements); err != nil {
				return err
			}
		}
		saved = v.settings.WithList(name, values)
		return v.saveSettings(ctx, &saved)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Protocolo
// ──────────────────────────────────────────────────────────────────────────────

// mutate corre fn dentro de la transacción con una vista fresca del estado.
// Si confirma, instala el nuevo snapshot, registra métricas, avisa a los suscriptores y
// publica el cambio; los avisos salen ya liberado el lock de escritura.
func (s *Service) mutate(ctx context.Context, op string, cols []Collection, fn func(v *txView) error) error {
	start := time.Now()
	change := Change{Op: op, Collections: cols, Source: s.source}
	if err := s.commit(ctx, change, fn); err != nil {
		outcome := "error"
		if le, ok := domain.AsLedgerError(err); ok {
			outcome = string(le.Key)
			s.log.Warn().Str("op", op).Str("key", outcome).Interface("params", le.Params).Msg("mutación rechazada")
		} else {
			s.log.Error().Err(err).Str("op", op).Msg("error en mutación")
		}
		s.metrics.ObserveMutation(op, outcome, time.Since(start))
		return err
	}

	s.store.notify(change)
	s.metrics.ObserveMutation(op, "ok", time.Since(start))
	s.log.Info().Str("op", op).Dur("elapsed", time.Since(start)).Msg("mutación confirmada")

	if err := s.notifier.Publish(ctx, change); err != nil {
		s.log.Warn().Err(err).Str("op", op).Msg("no se pudo publicar el cambio")
	}
	return nil
}

// commit serializa la transacción y la instalación del snapshot bajo writeMu.
func (s *Service) commit(ctx context.Context, change Change, fn func(v *txView) error) error {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()

	var next state
	err := s.txRunner.Run(ctx, func(
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
		settingsRepo repository.SettingsRepository,
	) error {
		v, err := loadView(ctx, articleRepo, movementRepo, settingsRepo)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		next = v.state()
		return nil
	})
	if err != nil {
		return err
	}
	next.users = s.store.snapshot().users
	s.store.install(next, change)
	return nil
}

// UsersChanged recarga los usuarios después de un cambio hecho por la gestión de usuarios
// y avisa a las demás instancias.
func (s *Service) UsersChanged(ctx context.Context, op string) error {
	if err := s.store.ReloadUsers(ctx); err != nil {
		return err
	}
	change := Change{Op: op, Collections: []Collection{CollectionUsers}, Source: s.source}
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.log.Warn().Err(err).Str("op", op).Msg("no se pudo publicar el cambio")
	}
	return nil
}

func articleNotFound(id int64) error {
	return domain.NewLedgerError(domain.KeyArticleNotFound, map[string]any{"articleId": id})
}

func movementNotFound(id int64) error {
	return domain.NewLedgerError(domain.KeyMovementNotFound, map[string]any{"movementId": id})
}

// txView estado leído dentro de la transacción más los repositorios de esa tx.
// Cada escritura actualiza el repositorio y la vista, así las validaciones siguientes
// del mismo lote ven lo ya escrito.
type txView struct {
	articles  []entity.Article
	movements []entity.Movement
	settings  entity.Settings

	articleRepo  repository.ArticleRepository
	movementRepo repository.MovementRepository
	settingsRepo repository.SettingsRepository
}

func loadView(
	ctx context.Context,
	articleRepo repository.ArticleRepository,
	movementRepo repository.MovementRepository,
	settingsRepo repository.SettingsRepository,
) (*txView, error) {
	arts, err := articleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar artículos: %w", err)
	}
	movs, err := movementRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	set, err := settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer configuración: %w", err)
	}
	v := &txView{
		articles:     derefArticles(arts),
		movements:    derefMovements(movs),
		settings:     set.Clone(),
		articleRepo:  articleRepo,
		movementRepo: movementRepo,
		settingsRepo: settingsRepo,
	}
	ledger.SortMovements(v.movements)
	return v, nil
}

func (v *txView) state() state {
	return state{articles: v.articles, movements: v.movements, settings: v.settings}
}

func (v *txView) article(id int64) (entity.Article, bool) {
	for _, a := range v.articles {
		if a.ID == id {
			return a, true
		}
	}
	return entity.Article{}, false
}

func (v *txView) movement(id int64) (entity.Movement, bool) {
	for _, m := range v.movements {
		if m.ID == id {
			return m, true
		}
	}
	return entity.Movement{}, false
}

func (v *txView) stockOf(articleID int64) (entity.StockItem, bool) {
	return ledger.StockOf(v.articles, v.movements, articleID)
}

func (v *txView) createArticle(ctx context.Context, a *entity.Article) error {
	if err := v.articleRepo.Create(ctx, a); err != nil {
		return fmt.Errorf("crear artículo: %w", err)
	}
	v.articles = append(v.articles, a.Clone())
	return nil
}

func (v *txView) replaceArticle(ctx context.Context, a *entity.Article) error {
	if err := v.articleRepo.Replace(ctx, a); err != nil {
		return fmt.Errorf("actualizar artículo: %w", err)
	}
	next := make([]entity.Article, len(v.articles))
	for i, x := range v.articles {
		if x.ID == a.ID {
			x = a.Clone()
		}
		next[i] = x
	}
	v.articles = next
	return nil
}

func (v *txView) deleteArticle(ctx context.Context, id int64) error {
	if err := v.articleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("borrar artículo: %w", err)
	}
	next := make([]entity.Article, 0, len(v.articles))
	for _, x := range v.articles {
		if x.ID != id {
			next = append(next, x)
		}
	}
	v.articles = next
	return nil
}

func (v *txView) createMovement(ctx context.Context, m *entity.Movement) error {
	if err := v.movementRepo.Create(ctx, m); err != nil {
		return fmt.Errorf("crear movimiento: %w", err)
	}
	next := make([]entity.Movement, 0, len(v.movements)+1)
	next = append(next, v.movements...)
	next = append(next, *m)
	ledger.SortMovements(next)
	v.movements = next
	return nil
}

func (v *txView) replaceMovement(ctx context.Context, m *entity.Movement) error {
	if err := v.movementRepo.Replace(ctx, m); err != nil {
		return fmt.Errorf("actualizar movimiento: %w", err)
	}
	next := make([]entity.Movement, len(v.movements))
	for i, x := range v.movements {
		if x.ID == m.ID {
			x = *m
		}
		next[i] = x
	}
	v.movements = next
	return nil
}

func (v *txView) deleteMovement(ctx context.Context, id int64) error {
	if err := v.movementRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("borrar movimiento: %w", err)
	}
	next := make([]entity.Movement, 0, len(v.movements))
	for _, x := range v.movements {
		if x.ID != id {
			next = append(next, x)
		}
	}
	v.movements = next
	return nil
}

func (v *txView) saveSettings(ctx context.Context, set *entity.Settings) error {
	if err := v.settingsRepo.Save(ctx, set); err != nil {
		return fmt.Errorf("guardar configuración: %w", err)
	}
	v.settings = set.Clone()
	return nil
}

package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/ledger"
)

var allCollections = []Collection{CollectionArticles, CollectionMovements, CollectionSettings, CollectionUsers}

// state snapshot completo del libro.
type state struct {
	articles  []entity.Article
	movements []entity.Movement // ID descendente
	settings  entity.Settings
	users     []entity.User
}

// Store mantiene el snapshot actual y la proyección de stock cacheada.
// Los lectores reciben copias; cada reemplazo del snapshot notifica a los suscriptores.
type Store struct {
	repos   Repositories
	log     zerolog.Logger
	metrics Metrics

	// writeMu ordena commits locales y recargas para que el snapshot nunca retroceda.
	writeMu sync.Mutex

	mu    sync.RWMutex
	cur   state
	stock []entity.StockItem

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// NewStore construye el store vacío; llamar Reload antes de servir.
func NewStore(repos Repositories, log zerolog.Logger, metrics Metrics) *Store {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Store{
		repos:   repos,
		log:     log,
		metrics: metrics,
		cur:     state{settings: entity.DefaultSettings()},
		subs:    make(map[int]func(Change)),
	}
}

// Reload relee todas las colecciones desde los repositorios y reemplaza el snapshot.
func (s *Store) Reload(ctx context.Context) error {
	change := Change{Op: "reload", Collections: allCollections}
	err := s.locked(func() error {
		next, err := s.read(ctx)
		if err != nil {
			return err
		}
		s.install(next, change)
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(change)
	return nil
}

// ReloadUsers relee solo los usuarios (tras un cambio en la gestión de usuarios).
func (s *Store) ReloadUsers(ctx context.Context) error {
	if s.repos.Users == nil {
		return nil
	}
	change := Change{Op: "users.reload", Collections: []Collection{CollectionUsers}}
	err := s.locked(func() error {
		users, err := s.listUsers(ctx)
		if err != nil {
			return err
		}
		next := s.snapshot()
		next.users = users
		s.install(next, change)
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(change)
	return nil
}

func (s *Store) locked(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return fn()
}

func (s *Store) read(ctx context.Context) (state, error) {
	var next state
	arts, err := s.repos.Articles.List(ctx)
	if err != nil {
		return next, fmt.Errorf("listar artículos: %w", err)
	}
	movs, err := s.repos.Movements.List(ctx)
	if err != nil {
		return next, fmt.Errorf("listar movimientos: %w", err)
	}
	set, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return next, fmt.Errorf("leer configuración: %w", err)
	}
	next.articles = derefArticles(arts)
	next.movements = derefMovements(movs)
	ledger.SortMovements(next.movements)
	next.settings = set.Clone()
	if s.repos.Users != nil {
		if next.users, err = s.listUsers(ctx); err != nil {
			return next, err
		}
	}
	return next, nil
}

func (s *Store) listUsers(ctx context.Context) ([]entity.User, error) {
	us, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}
	out := make([]entity.User, 0, len(us))
	for _, u := range us {
		out = append(out, *u)
	}
	return out, nil
}

// install instala el snapshot y recalcula la proyección si cambiaron artículos o movimientos.
// Se llama con writeMu tomado.
func (s *Store) install(next state, change Change) {
	s.mu.Lock()
	s.cur = next
	if change.Touches(CollectionArticles) || change.Touches(CollectionMovements) || s.stock == nil {
		s.stock = ledger.Project(next.articles, next.movements)
		s.updateGauges()
	}
	s.mu.Unlock()
}

// notify avisa a los suscriptores. Se llama sin writeMu ni mu tomados.
func (s *Store) notify(change Change) {
	s.subMu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(change)
	}
}

func (s *Store) updateGauges() {
	var low, out int
	for _, it := range s.stock {
		if it.IsLow() {
			low++
		}
		if it.IsOut() {
			out++
		}
	}
	s.metrics.SetStockLevels(len(s.stock), low, out)
}

// Follow recarga el snapshot ante cada cambio llegado de otra instancia y, si interval > 0,
// también periódicamente. Bloquea hasta que ctx termina.
func (s *Store) Follow(ctx context.Context, remote <-chan Change, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}
	for {
		var reason string
		select {
		case <-ctx.Done():
			return
		case c, ok := <-remote:
			if !ok {
				remote = nil
				continue
			}
			reason = c.Op
		case <-tick:
			reason = "refresh"
		}
		if err := s.Reload(ctx); err != nil {
			s.log.Error().Err(err).Str("reason", reason).Msg("no se pudo recargar el snapshot")
			continue
		}
		s.log.Debug().Str("reason", reason).Msg("snapshot recargado")
	}
}

// Subscribe registra fn para cada reemplazo del snapshot. Devuelve la función para desuscribirse.
// fn corre en la goroutine que hizo el cambio, ya liberado el lock de escritura: puede leer el
// store, recargarlo o lanzar otra mutación. Dos avisos pueden llegar en desorden si hay
// escrituras concurrentes; el snapshot leído dentro de fn es siempre el más reciente.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// snapshot copia superficial del estado actual (los slices no se mutan nunca en sitio).
func (s *Store) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Articles copia de los artículos en orden de creación.
func (s *Store) Articles() []entity.Article {
	cur := s.snapshot()
	out := make([]entity.Article, len(cur.articles))
	for i, a := range cur.articles {
		out[i] = a.Clone()
	}
	return out
}

// Article artículo por ID.
func (s *Store) Article(id int64) (entity.Article, bool) {
	for _, a := range s.snapshot().articles {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return entity.Article{}, false
}

// Movements copia del log, más reciente primero.
func (s *Store) Movements() []entity.Movement {
	return append([]entity.Movement(nil), s.snapshot().movements...)
}

// Movement movimiento por ID.
func (s *Store) Movement(id int64) (entity.Movement, bool) {
	for _, m := range s.snapshot().movements {
		if m.ID == id {
			return m, true
		}
	}
	return entity.Movement{}, false
}

// Settings copia de las listas de referencia.
func (s *Store) Settings() entity.Settings {
	return s.snapshot().settings.Clone()
}

// Users copia de los usuarios.
func (s *Store) Users() []entity.User {
	return append([]entity.User(nil), s.snapshot().users...)
}

// Stock proyección cacheada, un ítem por artículo.
func (s *Store) Stock() []entity.StockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockItem, len(s.stock))
	for i, it := range s.stock {
		out[i] = entity.StockItem{Article: it.Article.Clone(), CurrentStock: it.CurrentStock}
	}
	return out
}

// StockItem stock de un artículo.
func (s *Store) StockItem(articleID int64) (entity.StockItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.stock {
		if it.ID == articleID {
			return entity.StockItem{Article: it.Article.Clone(), CurrentStock: it.CurrentStock}, true
		}
	}
	return entity.StockItem{}, false
}

func derefArticles(in []*entity.Article) []entity.Article {
	out := make([]entity.Article, 0, len(in))
	for _, a := range in {
		out = append(out, a.Clone())
	}
	return out
}

func derefMovements(in []*entity.Movement) []entity.Movement {
	out := make([]entity.Movement, 0, len(in))
	for _, m := range in {
		out = append(out, *m)
	}
	return out
}

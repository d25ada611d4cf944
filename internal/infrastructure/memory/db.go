// Package memory backend en memoria del libro de stock. Cada transacción trabaja sobre una copia
// del estado y la instala completa al confirmar; un error descarta la copia.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// Snapshot estado exportable (lo usa el backend SQLite para persistir).
type Snapshot struct {
	Articles      []entity.Article  `json:"articles"`
	Movements     []entity.Movement `json:"movements"`
	Settings      *entity.Settings  `json:"settings,omitempty"`
	Users         []entity.User     `json:"users"`
	NextArticleID int64             `json:"nextArticleId"`
}

// CommitHook se llama con el estado nuevo antes de instalarlo; si falla, la transacción se descarta.
type CommitHook func(ctx context.Context, snap Snapshot) error

// DB almacén en memoria compartido por los repositorios y el TxRunner.
type DB struct {
	mu       sync.RWMutex
	st       *state
	onCommit CommitHook
}

type state struct {
	articles      map[int64]entity.Article
	nextArticleID int64
	movements     map[int64]entity.Movement
	settings      *entity.Settings
	users         map[string]entity.User
}

// New crea una base vacía.
func New() *DB {
	return &DB{st: newState()}
}

// NewFromSnapshot crea una base con el estado dado.
func NewFromSnapshot(snap Snapshot) *DB {
	db := New()
	db.st = stateFrom(snap)
	return db
}

// SetCommitHook instala el hook de persistencia.
func (db *DB) SetCommitHook(fn CommitHook) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.onCommit = fn
}

// Export copia del estado actual.
func (db *DB) Export() Snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.st.export()
}

func newState() *state {
	return &state{
		articles:      make(map[int64]entity.Article),
		nextArticleID: 1,
		movements:     make(map[int64]entity.Movement),
		users:         make(map[string]entity.User),
	}
}

func stateFrom(snap Snapshot) *state {
	st := newState()
	for _, a := range snap.Articles {
		st.articles[a.ID] = a.Clone()
		if a.ID >= st.nextArticleID {
			st.nextArticleID = a.ID + 1
		}
	}
	if snap.NextArticleID > st.nextArticleID {
		st.nextArticleID = snap.NextArticleID
	}
	for _, m := range snap.Movements {
		st.movements[m.ID] = m
	}
	if snap.Settings != nil {
		s := snap.Settings.Clone()
		st.settings = &s
	}
	for _, u := range snap.Users {
		st.users[u.ID] = u
	}
	return st
}

func (st *state) clone() *state {
	out := &state{
		articles:      make(map[int64]entity.Article, len(st.articles)),
		nextArticleID: st.nextArticleID,
		movements:     make(map[int64]entity.Movement, len(st.movements)),
		users:         make(map[string]entity.User, len(st.users)),
	}
	for k, v := range st.articles {
		out.articles[k] = v.Clone()
	}
	for k, v := range st.movements {
		out.movements[k] = v
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	if st.settings != nil {
		s := st.settings.Clone()
		out.settings = &s
	}
	return out
}

func (st *state) export() Snapshot {
	snap := Snapshot{NextArticleID: st.nextArticleID}
	for _, a := range st.articles {
		snap.Articles = append(snap.Articles, a.Clone())
	}
	sort.Slice(snap.Articles, func(i, j int) bool { return snap.Articles[i].ID < snap.Articles[j].ID })
	for _, m := range st.movements {
		snap.Movements = append(snap.Movements, m)
	}
	sort.Slice(snap.Movements, func(i, j int) bool { return snap.Movements[i].ID > snap.Movements[j].ID })
	for _, u := range st.users {
		snap.Users = append(snap.Users, u)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].Username < snap.Users[j].Username })
	if st.settings != nil {
		s := st.settings.Clone()
		snap.Settings = &s
	}
	return snap
}

// view lectura bajo RLock.
func (db *DB) view(fn func(st *state) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.st)
}

// update escritura todo-o-nada: fn trabaja sobre una copia que se instala solo si no hay error.
func (db *DB) update(ctx context.Context, fn func(st *state) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next := db.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	if db.onCommit != nil {
		if err := db.onCommit(ctx, next.export()); err != nil {
			return fmt.Errorf("persistir snapshot: %w", err)
		}
	}
	db.st = next
	return nil
}

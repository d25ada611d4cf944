package memory

import (
	"context"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

var (
	_ ledger.TxRunner               = (*TxRunner)(nil)
	_ repository.ArticleRepository  = (*ArticleRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.SettingsRepository = (*SettingsRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// TxRunner ejecuta callbacks sobre una copia del estado con un solo escritor a la vez.
type TxRunner struct {
	db *DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run ejecuta fn con repos atados a la copia; confirma si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	articleRepo repository.ArticleRepository,
	movementRepo repository.MovementRepository,
	settingsRepo repository.SettingsRepository,
) error) error {
	return r.db.update(ctx, func(st *state) error {
		return fn(articleTx{st}, movementTx{st}, settingsTx{st})
	})
}

// Repositories fuera de transacción: cada escritura es su propia transacción.

// ArticleRepo repositorio de artículos.
type ArticleRepo struct{ db *DB }

func NewArticleRepository(db *DB) *ArticleRepo { return &ArticleRepo{db: db} }

func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	return r.db.update(ctx, func(st *state) error { return articleTx{st}.Create(ctx, a) })
}

func (r *ArticleRepo) Replace(ctx context.Context, a *entity.Article) error {
	return r.db.update(ctx, func(st *state) error { return articleTx{st}.Replace(ctx, a) })
}

func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	return r.db.update(ctx, func(st *state) error { return articleTx{st}.Delete(ctx, id) })
}

func (r *ArticleRepo) List(ctx context.Context) (out []*entity.Article, err error) {
	err = r.db.view(func(st *state) error { out, err = articleTx{st}.List(ctx); return err })
	return out, err
}

// MovementRepo repositorio de movimientos.
type MovementRepo struct{ db *DB }

func NewMovementRepository(db *DB) *MovementRepo { return &MovementRepo{db: db} }

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.db.update(ctx, func(st *state) error { return movementTx{st}.Create(ctx, m) })
}

func (r *MovementRepo) Replace(ctx context.Context, m *entity.Movement) error {
	return r.db.update(ctx, func(st *state) error { return movementTx{st}.Replace(ctx, m) })
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	return r.db.update(ctx, func(st *state) error { return movementTx{st}.Delete(ctx, id) })
}

func (r *MovementRepo) List(ctx context.Context) (out []*entity.Movement, err error) {
	err = r.db.view(func(st *state) error { out, err = movementTx{st}.List(ctx); return err })
	return out, err
}

// SettingsRepo repositorio del registro de configuración.
type SettingsRepo struct{ db *DB }

func NewSettingsRepository(db *DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context) (out *entity.Settings, err error) {
	err = r.db.view(func(st *state) error { out, err = settingsTx{st}.Get(ctx); return err })
	return out, err
}

func (r *SettingsRepo) Save(ctx context.Context, s *entity.Settings) error {
	return r.db.update(ctx, func(st *state) error { return settingsTx{st}.Save(ctx, s) })
}

// UserRepo repositorio de usuarios.
type UserRepo struct{ db *DB }

func NewUserRepository(db *DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.db.update(ctx, func(st *state) error { return userTx{st}.Create(ctx, u) })
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (out *entity.User, err error) {
	err = r.db.view(func(st *state) error { out, err = userTx{st}.GetByID(ctx, id); return err })
	return out, err
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (out *entity.User, err error) {
	err = r.db.view(func(st *state) error { out, err = userTx{st}.FindByUsername(ctx, username); return err })
	return out, err
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.db.update(ctx, func(st *state) error { return userTx{st}.Update(ctx, u) })
}

func (r *UserRepo) List(ctx context.Context) (out []*entity.User, err error) {
	err = r.db.view(func(st *state) error { out, err = userTx{st}.List(ctx); return err })
	return out, err
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(ctx, func(st *state) error { return userTx{st}.Delete(ctx, id) })
}

// Repositories conjunto de repositorios sin transacción para ledger.Store.
func Repositories(db *DB) ledger.Repositories {
	return ledger.Repositories{
		Articles:  NewArticleRepository(db),
		Movements: NewMovementRepository(db),
		Settings:  NewSettingsRepository(db),
		Users:     NewUserRepository(db),
	}
}

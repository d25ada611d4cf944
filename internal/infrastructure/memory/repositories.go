package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

var (
	_ repository.ArticleRepository  = (*articleTx)(nil)
	_ repository.MovementRepository = (*movementTx)(nil)
	_ repository.SettingsRepository = (*settingsTx)(nil)
	_ repository.UserRepository     = (*userTx)(nil)
)

// Implementaciones atadas a un *state (el de una transacción o el actual bajo lock).

type articleTx struct{ st *state }

func (r articleTx) Create(_ context.Context, a *entity.Article) error {
	a.ID = r.st.nextArticleID
	r.st.nextArticleID++
	r.st.articles[a.ID] = a.Clone()
	return nil
}

func (r articleTx) Replace(_ context.Context, a *entity.Article) error {
	if _, ok := r.st.articles[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.articles[a.ID] = a.Clone()
	return nil
}

func (r articleTx) Delete(_ context.Context, id int64) error {
	delete(r.st.articles, id)
	return nil
}

func (r articleTx) List(_ context.Context) ([]*entity.Article, error) {
	out := make([]*entity.Article, 0, len(r.st.articles))
	for _, a := range r.st.articles {
		c := a.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type movementTx struct{ st *state }

func (r movementTx) Create(_ context.Context, m *entity.Movement) error {
	if _, dup := r.st.movements[m.ID]; dup {
		return domain.ErrInvalidInput
	}
	r.st.movements[m.ID] = *m
	return nil
}

func (r movementTx) Replace(_ context.Context, m *entity.Movement) error {
	if _, ok := r.st.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.movements[m.ID] = *m
	return nil
}

func (r movementTx) Delete(_ context.Context, id int64) error {
	delete(r.st.movements, id)
	return nil
}

func (r movementTx) List(_ context.Context) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0, len(r.st.movements))
	for _, m := range r.st.movements {
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type settingsTx struct{ st *state }

func (r settingsTx) Get(_ context.Context) (*entity.Settings, error) {
	if r.st.settings == nil {
		s := entity.DefaultSettings()
		return &s, nil
	}
	s := r.st.settings.Clone()
	return &s, nil
}

func (r settingsTx) Save(_ context.Context, s *entity.Settings) error {
	c := s.Clone()
	r.st.settings = &c
	return nil
}

type userTx struct{ st *state }

func (r userTx) Create(_ context.Context, u *entity.User) error {
	for _, x := range r.st.users {
		if x.Username == u.Username {
			return domain.ErrUsernameAlreadyExists
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r userTx) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userTx) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.st.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userTx) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.st.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, x := range r.st.users {
		if id != u.ID && x.Username == u.Username {
			return domain.ErrUsernameAlreadyExists
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r userTx) List(_ context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r userTx) Delete(_ context.Context, id string) error {
	delete(r.st.users, id)
	return nil
}

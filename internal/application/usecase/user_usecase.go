package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/farmacia-stock/internal/application/auth"
	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/domain"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
	"github.com/jhoicas/farmacia-stock/internal/domain/repository"
)

// UsersRefresher recibe el aviso de que la tabla de usuarios cambió (lo implementa ledger.Service).
type UsersRefresher interface {
	UsersChanged(ctx context.Context, op string) error
}

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo    repository.UserRepository
	refresh UsersRefresher
	cost    int
	now     func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
// refresh puede ser nil (tests sin snapshot).
func NewUserUseCase(repo repository.UserRepository, refresh UsersRefresher) *UserUseCase {
	return &UserUseCase{repo: repo, refresh: refresh, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithBcryptCost cambia el costo del hash (los tests usan bcrypt.MinCost).
func (uc *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	uc.cost = cost
	return uc
}

// List devuelve todos los usuarios ordenados por username.
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, auth.ToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

// Create da de alta un usuario activo. Devuelve ErrUsernameAlreadyExists si el username está tomado.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Role:         in.Role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.changed(ctx, "user.create"); err != nil {
		return nil, err
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

// Update modifica un usuario. Sin password nuevo conserva el hash actual.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	if username != user.Username {
		other, err := uc.repo.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrUsernameAlreadyExists
		}
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.Username = username
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Role = in.Role
	if in.Status != "" {
		user.Status = in.Status
	}
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.changed(ctx, "user.update"); err != nil {
		return nil, err
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

// Delete elimina un usuario. actorID es quien hace la petición: nadie puede borrarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrCannotDeleteSelf
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	return uc.changed(ctx, "user.delete")
}

func (uc *UserUseCase) changed(ctx context.Context, op string) error {
	if uc.refresh == nil {
		return nil
	}
	return uc.refresh.UsersChanged(ctx, op)
}

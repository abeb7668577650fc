package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"birthday-reminders/internal/ports/auth"
	"birthday-reminders/internal/ports/storage"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// SignUp registra el perfil local para claims ya verificados.
func (s *Service) SignUp(ctx context.Context, claims auth.Claims) (User, error) {
	uid := strings.TrimSpace(claims.UserID)
	if uid == "" {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByID(ctx, uid); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return User{}, err
	}

	u := User{
		ID:        uid,
		Email:     strings.TrimSpace(claims.Email),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}
	return u, nil
}

// SignIn exige que el perfil exista (se crea en SignUp).
func (s *Service) SignIn(ctx context.Context, claims auth.Claims) (User, error) {
	return s.Get(ctx, claims.UserID)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

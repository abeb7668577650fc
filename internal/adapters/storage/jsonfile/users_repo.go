package jsonfile

import (
	"context"
	"errors"
	"strings"

	"birthday-reminders/internal/domain/users"
	"birthday-reminders/internal/ports/storage"
)

type fileUser struct {
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Create(ctx context.Context, u users.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := map[string]fileUser{}
	if err := r.store.load(UsersFile, &doc); err != nil {
		return err
	}
	if _, exists := doc[u.ID]; exists {
		return storage.ErrAlreadyExists
	}

	doc[u.ID] = fileUser{
		Email:     u.Email,
		CreatedAt: formatTimestamp(u.CreatedAt),
	}
	return r.store.save(UsersFile, doc)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := map[string]fileUser{}
	if err := r.store.load(UsersFile, &doc); err != nil {
		return users.User{}, err
	}

	fu, ok := doc[id]
	if !ok {
		return users.User{}, storage.ErrNotFound
	}
	return users.User{
		ID:        id,
		Email:     fu.Email,
		CreatedAt: parseTimestamp(fu.CreatedAt),
	}, nil
}

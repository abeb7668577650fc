package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"birthday-reminders/internal/domain/birthdays"
	"birthday-reminders/internal/ports/storage"
)

var (
	ErrNotFound = storage.ErrNotFound
)

type birthdayRepo struct {
	mu   sync.RWMutex
	byID map[string]birthdays.Birthday
}

func NewBirthdayRepo() birthdays.Repository {
	return &birthdayRepo{
		byID: make(map[string]birthdays.Birthday),
	}
}

func (r *birthdayRepo) Create(ctx context.Context, b birthdays.Birthday) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("birthday id required")
	}
	if _, exists := r.byID[b.ID]; exists {
		return storage.ErrAlreadyExists
	}
	r.byID[b.ID] = b
	return nil
}

func (r *birthdayRepo) Update(ctx context.Context, b birthdays.Birthday) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("birthday id required")
	}
	if _, exists := r.byID[b.ID]; !exists {
		return ErrNotFound
	}
	r.byID[b.ID] = b
	return nil
}

func (r *birthdayRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *birthdayRepo) GetByID(ctx context.Context, id string) (birthdays.Birthday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return birthdays.Birthday{}, ErrNotFound
	}
	return b, nil
}

func (r *birthdayRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]birthdays.Birthday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]birthdays.Birthday, 0)
	for _, b := range r.byID {
		if b.OwnerUserID == ownerUserID {
			out = append(out, b)
		}
	}

	// Orden estable por created_at asc; el ranking depende del orden de entrada en empates.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

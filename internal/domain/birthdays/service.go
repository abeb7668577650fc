package birthdays

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"birthday-reminders/internal/metrics"
	"birthday-reminders/internal/ports/images"
	"birthday-reminders/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrImageUpload  = errors.New("failed to upload image")
)

type Service struct {
	repo   Repository
	images images.Uploader
	now    func() time.Time
}

// NewService: uploader puede ser nil; en ese caso cualquier imagen falla con ErrImageUpload.
func NewService(repo Repository, uploader images.Uploader) *Service {
	return &Service{
		repo:   repo,
		images: uploader,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name         string
	Relationship string
	BirthDate    string
	Image        string // base64 o data URL, opcional
	Memo         string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Birthday, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name := strings.TrimSpace(in.Name)
	bdate := strings.TrimSpace(in.BirthDate)

	if ownerUserID == "" || name == "" || bdate == "" {
		return Birthday{}, ErrInvalidInput
	}
	if _, err := ParseBirthDate(bdate); err != nil {
		return Birthday{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var imageURL string
	if strings.TrimSpace(in.Image) != "" {
		u, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return Birthday{}, err
		}
		imageURL = u
	}

	now := s.now()
	b := Birthday{
		ID:           uuid.NewString(),
		OwnerUserID:  ownerUserID,
		Name:         name,
		Relationship: strings.TrimSpace(in.Relationship),
		BirthDate:    bdate,
		ImageURL:     imageURL,
		Memo:         strings.TrimSpace(in.Memo),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return Birthday{}, err
	}
	metrics.BirthdayMutations.WithLabelValues("create").Inc()
	return b, nil
}

// Get devuelve el registro si pertenece a ownerUserID.
func (s *Service) Get(ctx context.Context, ownerUserID, id string) (Birthday, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(ownerUserID) == "" {
		return Birthday{}, ErrInvalidInput
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Birthday{}, ErrNotFound
		}
		return Birthday{}, err
	}
	if b.OwnerUserID != ownerUserID {
		return Birthday{}, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Birthday, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// ListUpcoming devuelve los cumpleaños del usuario ordenados por proximidad.
func (s *Service) ListUpcoming(ctx context.Context, ownerUserID string) ([]Upcoming, error) {
	items, err := s.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	out := RankUpcoming(items, s.now())
	for _, u := range out {
		if u.Age == nil {
			metrics.InvalidBirthDates.Inc()
		}
	}
	return out, nil
}

// ListToday devuelve los cumpleaños del usuario que caen hoy.
func (s *Service) ListToday(ctx context.Context, ownerUserID string) ([]Upcoming, error) {
	items, err := s.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	return FilterToday(items, s.now()), nil
}

// UpdateInput usa punteros: nil = no tocar.
type UpdateInput struct {
	Name         *string
	Relationship *string
	BirthDate    *string
	Image        *string // vacío = no tocar (la imagen no se puede borrar)
	Memo         *string
}

func (s *Service) Update(ctx context.Context, ownerUserID, id string, in UpdateInput) (Birthday, error) {
	b, err := s.Get(ctx, ownerUserID, id)
	if err != nil {
		return Birthday{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Birthday{}, ErrInvalidInput
		}
		b.Name = name
	}
	if in.Relationship != nil {
		b.Relationship = strings.TrimSpace(*in.Relationship)
	}
	if in.BirthDate != nil {
		bdate := strings.TrimSpace(*in.BirthDate)
		if _, err := ParseBirthDate(bdate); err != nil {
			return Birthday{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		b.BirthDate = bdate
	}
	if in.Memo != nil {
		b.Memo = strings.TrimSpace(*in.Memo)
	}
	if in.Image != nil && strings.TrimSpace(*in.Image) != "" {
		u, err := s.uploadImage(ctx, *in.Image)
		if err != nil {
			return Birthday{}, err
		}
		b.ImageURL = u
	}

	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Birthday{}, ErrNotFound
		}
		return Birthday{}, err
	}
	metrics.BirthdayMutations.WithLabelValues("update").Inc()
	return b, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	if _, err := s.Get(ctx, ownerUserID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	metrics.BirthdayMutations.WithLabelValues("delete").Inc()
	return nil
}

func (s *Service) uploadImage(ctx context.Context, payload string) (string, error) {
	if s.images == nil {
		metrics.ImageUploads.WithLabelValues(metrics.ResultFailure).Inc()
		return "", fmt.Errorf("%w: %v", ErrImageUpload, images.ErrNotConfigured)
	}

	u, err := s.images.Upload(ctx, payload)
	if err != nil {
		if errors.Is(err, images.ErrInvalidImage) {
			metrics.ImageUploads.WithLabelValues(metrics.ResultInvalid).Inc()
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		metrics.ImageUploads.WithLabelValues(metrics.ResultFailure).Inc()
		return "", fmt.Errorf("%w: %v", ErrImageUpload, err)
	}

	metrics.ImageUploads.WithLabelValues(metrics.ResultSuccess).Inc()
	return u, nil
}

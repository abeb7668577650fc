package jsonfile

import (
	"context"
	"errors"
	"strings"

	"birthday-reminders/internal/domain/birthdays"
	"birthday-reminders/internal/ports/storage"
)

type fileBirthday struct {
	ID           flexID `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	BirthDate    string `json:"bdate"`
	Image        string `json:"image,omitempty"`
	Memo         string `json:"memo"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

type birthdaysDoc map[string][]fileBirthday

type BirthdayRepo struct {
	store *Store
}

func NewBirthdayRepo(store *Store) *BirthdayRepo {
	return &BirthdayRepo{store: store}
}

func (r *BirthdayRepo) Create(ctx context.Context, b birthdays.Birthday) error {
	if strings.TrimSpace(b.ID) == "" || strings.TrimSpace(b.OwnerUserID) == "" {
		return errors.New("birthday id and owner required")
	}

	return r.mutate(func(doc birthdaysDoc) error {
		if _, _, ok := find(doc, b.ID); ok {
			return storage.ErrAlreadyExists
		}
		doc[b.OwnerUserID] = append(doc[b.OwnerUserID], toFile(b))
		return nil
	})
}

func (r *BirthdayRepo) Update(ctx context.Context, b birthdays.Birthday) error {
	return r.mutate(func(doc birthdaysDoc) error {
		owner, idx, ok := find(doc, b.ID)
		if !ok {
			return storage.ErrNotFound
		}
		if owner != b.OwnerUserID {
			// el owner no cambia por update
			return storage.ErrNotFound
		}
		fb := toFile(b)
		fb.ID = doc[owner][idx].ID
		doc[owner][idx] = fb
		return nil
	})
}

func (r *BirthdayRepo) Delete(ctx context.Context, id string) error {
	return r.mutate(func(doc birthdaysDoc) error {
		owner, idx, ok := find(doc, id)
		if !ok {
			return storage.ErrNotFound
		}
		items := doc[owner]
		doc[owner] = append(items[:idx], items[idx+1:]...)
		return nil
	})
}

func (r *BirthdayRepo) GetByID(ctx context.Context, id string) (birthdays.Birthday, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := birthdaysDoc{}
	if err := r.store.load(BirthdaysFile, &doc); err != nil {
		return birthdays.Birthday{}, err
	}

	owner, idx, ok := find(doc, id)
	if !ok {
		return birthdays.Birthday{}, storage.ErrNotFound
	}
	return fromFile(owner, doc[owner][idx]), nil
}

// ListByOwner respeta el orden del archivo (orden de inserción).
func (r *BirthdayRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]birthdays.Birthday, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := birthdaysDoc{}
	if err := r.store.load(BirthdaysFile, &doc); err != nil {
		return nil, err
	}

	items := doc[ownerUserID]
	out := make([]birthdays.Birthday, 0, len(items))
	for _, fb := range items {
		out = append(out, fromFile(ownerUserID, fb))
	}
	return out, nil
}

func (r *BirthdayRepo) mutate(fn func(doc birthdaysDoc) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := birthdaysDoc{}
	if err := r.store.load(BirthdaysFile, &doc); err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.store.save(BirthdaysFile, doc)
}

func find(doc birthdaysDoc, id string) (string, int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", 0, false
	}
	for owner, items := range doc {
		for i, fb := range items {
			if recordID(owner, fb) == id {
				return owner, i, true
			}
		}
	}
	return "", 0, false
}

// recordID es el id expuesto. Los archivos antiguos numeraban por usuario
// (1, 2, ...) y el mismo número se repite entre owners, así que esos ids
// salen calificados con el owner: "alice-1". En el archivo quedan tal cual.
func recordID(owner string, fb fileBirthday) string {
	id := string(fb.ID)
	if isLegacyID(id) {
		return owner + "-" + id
	}
	return id
}

func isLegacyID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func toFile(b birthdays.Birthday) fileBirthday {
	return fileBirthday{
		ID:           flexID(b.ID),
		Name:         b.Name,
		Relationship: b.Relationship,
		BirthDate:    b.BirthDate,
		Image:        b.ImageURL,
		Memo:         b.Memo,
		CreatedAt:    formatTimestamp(b.CreatedAt),
		UpdatedAt:    formatTimestamp(b.UpdatedAt),
	}
}

func fromFile(owner string, fb fileBirthday) birthdays.Birthday {
	created := parseTimestamp(fb.CreatedAt)
	updated := parseTimestamp(fb.UpdatedAt)
	if updated.IsZero() {
		updated = created
	}
	return birthdays.Birthday{
		ID:           recordID(owner, fb),
		OwnerUserID:  owner,
		Name:         fb.Name,
		Relationship: fb.Relationship,
		BirthDate:    fb.BirthDate,
		ImageURL:     fb.Image,
		Memo:         fb.Memo,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

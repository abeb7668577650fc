package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"birthday-reminders/internal/domain/birthdays"
	"birthday-reminders/internal/domain/users"
	"birthday-reminders/internal/ports/storage"

	"github.com/spf13/afero"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	s, err := Open(fs, "data")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return s, fs
}

func TestOpen_InitializesEmptyFiles(t *testing.T) {
	_, fs := newTestStore(t)

	for _, name := range []string{"data/birthdays.json", "data/users.json"} {
		raw, err := afero.ReadFile(fs, name)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if string(raw) != "{}" {
			t.Fatalf("expected %s to be {}, got %q", name, string(raw))
		}
	}
}

func TestBirthdayRepo_CRUD(t *testing.T) {
	s, fs := newTestStore(t)
	repo := NewBirthdayRepo(s)
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	a := birthdays.Birthday{ID: "a", OwnerUserID: "owner-1", Name: "Ana", BirthDate: "1990-06-16", CreatedAt: created, UpdatedAt: created}
	b := birthdays.Birthday{ID: "b", OwnerUserID: "owner-1", Name: "Bruno", BirthDate: "1985-01-01", ImageURL: "https://i.example/b.png", CreatedAt: created, UpdatedAt: created}
	c := birthdays.Birthday{ID: "c", OwnerUserID: "owner-2", Name: "Carla", BirthDate: "1970-03-03", CreatedAt: created, UpdatedAt: created}

	for _, item := range []birthdays.Birthday{a, b, c} {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Create %s: %v", item.ID, err)
		}
	}
	if err := repo.Create(ctx, a); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	list, err := repo.ListByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("expected [a b] in insertion order, got %#v", list)
	}
	if list[1].ImageURL != b.ImageURL || !list[1].CreatedAt.Equal(created) {
		t.Fatalf("fields not round-tripped: %#v", list[1])
	}

	a.Memo = "tea"
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	got, err := repo.GetByID(ctx, "a")
	if err != nil || got.Memo != "tea" || got.OwnerUserID != "owner-1" {
		t.Fatalf("expected updated memo, got %#v err=%v", got, err)
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.GetByID(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}

	// el archivo queda con el layout {owner: [...]}
	raw, _ := afero.ReadFile(fs, "data/birthdays.json")
	var doc map[string][]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("file is not valid json: %v", err)
	}
	if len(doc["owner-1"]) != 1 || len(doc["owner-2"]) != 1 {
		t.Fatalf("unexpected file layout: %s", string(raw))
	}
	if exists, _ := afero.Exists(fs, "data/birthdays.json.tmp"); exists {
		t.Fatalf("temp file left behind")
	}
}

func TestBirthdayRepo_ReadsLegacyFile(t *testing.T) {
	s, fs := newTestStore(t)
	legacy := `{
  "alice": [
    {"id": 1, "name": "Bob", "relationship": "friend", "bdate": "1990-06-16", "image": null, "memo": "", "created_at": "2024-05-01T12:30:45.123456"},
    {"id": 2, "name": "Broken", "relationship": "", "bdate": "31/12/1990", "image": "https://i.ibb.co/x.png", "memo": "", "created_at": "2024-05-02T08:00:00"}
  ]
}`
	if err := afero.WriteFile(fs, "data/birthdays.json", []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	repo := NewBirthdayRepo(s)
	list, err := repo.ListByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "alice-1" || list[1].ID != "alice-2" {
		t.Fatalf("unexpected legacy records: %#v", list)
	}
	if list[0].CreatedAt.IsZero() || list[0].CreatedAt.Year() != 2024 {
		t.Fatalf("expected legacy timestamp parsed, got %v", list[0].CreatedAt)
	}
	if list[1].ImageURL != "https://i.ibb.co/x.png" {
		t.Fatalf("expected image url, got %q", list[1].ImageURL)
	}

	// el registro con fecha rota no rompe el ranking
	ranked := birthdays.RankUpcoming(list, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	if ranked[0].ID != "alice-1" || ranked[1].DaysUntil != birthdays.SentinelDaysUntil {
		t.Fatalf("unexpected ranking: %#v", ranked)
	}
}

func TestBirthdayRepo_LegacyIDsAreScopedByOwner(t *testing.T) {
	legacy := `{
  "alice": [{"id": 1, "name": "Ana's friend", "relationship": "", "bdate": "1990-06-16", "image": null, "memo": "", "created_at": "2024-05-01T12:30:45"}],
  "bob":   [{"id": 1, "name": "Bob's friend", "relationship": "", "bdate": "1985-01-01", "image": null, "memo": "", "created_at": "2024-05-01T12:30:45"}]
}`
	ctx := context.Background()

	// el orden de iteración de mapas es aleatorio: repetir para cubrirlo
	for i := 0; i < 30; i++ {
		s, fs := newTestStore(t)
		if err := afero.WriteFile(fs, "data/birthdays.json", []byte(legacy), 0o644); err != nil {
			t.Fatalf("write legacy: %v", err)
		}
		svc := birthdays.NewService(NewBirthdayRepo(s), nil)

		list, err := svc.ListByOwner(ctx, "alice")
		if err != nil || len(list) != 1 || list[0].ID != "alice-1" {
			t.Fatalf("unexpected alice list %#v err=%v", list, err)
		}

		if _, err := svc.Get(ctx, "alice", "alice-1"); err != nil {
			t.Fatalf("run %d: Get own record: %v", i, err)
		}
		if _, err := svc.Get(ctx, "bob", "alice-1"); !errors.Is(err, birthdays.ErrForbidden) {
			t.Fatalf("run %d: expected ErrForbidden for bob, got %v", i, err)
		}
		if _, err := svc.Get(ctx, "alice", "1"); !errors.Is(err, birthdays.ErrNotFound) {
			t.Fatalf("run %d: expected bare legacy id to be unknown, got %v", i, err)
		}

		memo := "tea"
		if _, err := svc.Update(ctx, "alice", "alice-1", birthdays.UpdateInput{Memo: &memo}); err != nil {
			t.Fatalf("run %d: Update own record: %v", i, err)
		}
		if err := svc.Delete(ctx, "alice", "alice-1"); err != nil {
			t.Fatalf("run %d: Delete own record: %v", i, err)
		}

		if left, _ := svc.ListByOwner(ctx, "alice"); len(left) != 0 {
			t.Fatalf("run %d: alice's record survived: %#v", i, left)
		}
		bobs, _ := svc.ListByOwner(ctx, "bob")
		if len(bobs) != 1 || bobs[0].ID != "bob-1" || bobs[0].Memo != "" {
			t.Fatalf("run %d: bob's record was touched: %#v", i, bobs)
		}
	}
}

func TestBirthdayRepo_UpdateKeepsStoredLegacyID(t *testing.T) {
	s, fs := newTestStore(t)
	legacy := `{"alice": [{"id": 7, "name": "Bob", "relationship": "", "bdate": "1990-06-16", "memo": ""}]}`
	if err := afero.WriteFile(fs, "data/birthdays.json", []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}
	repo := NewBirthdayRepo(s)
	ctx := context.Background()

	b, err := repo.GetByID(ctx, "alice-7")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	b.Memo = "tea"
	if err := repo.Update(ctx, b); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	raw, _ := afero.ReadFile(fs, "data/birthdays.json")
	var doc map[string][]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("file is not valid json: %v", err)
	}
	if doc["alice"][0]["id"] != "7" || doc["alice"][0]["memo"] != "tea" {
		t.Fatalf("expected stored id 7 kept, got %s", string(raw))
	}
}

func TestUserRepo(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewUserRepo(s)
	ctx := context.Background()

	u := users.User{ID: "uid-1", Email: "ana@example.com", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, u); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, "uid-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != u.Email || !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("unexpected user: %#v", got)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

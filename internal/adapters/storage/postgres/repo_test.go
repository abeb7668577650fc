package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"birthday-reminders/internal/domain/birthdays"
	"birthday-reminders/internal/domain/users"
	"birthday-reminders/internal/ports/storage"

	pkgerrors "github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Necesita Docker: se activa con BIRTHDAYS_TEST_POSTGRES=true.
func TestRepos_Postgres(t *testing.T) {
	if os.Getenv("BIRTHDAYS_TEST_POSTGRES") != "true" {
		t.Skip("set BIRTHDAYS_TEST_POSTGRES=true to run postgres integration tests")
		return
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "docker.io/library/postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "birthdays",
			"POSTGRES_PASSWORD": "birthdays",
			"POSTGRES_DB":       "birthdays",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("%+v", pkgerrors.WithStack(err))
	}

	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("%+v", pkgerrors.WithStack(err))
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%+v", pkgerrors.WithStack(err))
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("%+v", pkgerrors.WithStack(err))
	}

	dsn := fmt.Sprintf("postgres://birthdays:birthdays@%s:%s/birthdays?sslmode=disable", host, port.Port())

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("%+v", err)
	}
	// idempotente
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("%+v", err)
	}

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	brepo := NewBirthdaysRepo(db)
	a := birthdays.Birthday{ID: "a", OwnerUserID: "owner-1", Name: "Ana", BirthDate: "1990-06-16", CreatedAt: now, UpdatedAt: now}
	b := birthdays.Birthday{ID: "b", OwnerUserID: "owner-1", Name: "Bruno", BirthDate: "1985-01-01", CreatedAt: now.Add(time.Minute), UpdatedAt: now}
	for _, item := range []birthdays.Birthday{a, b} {
		if err := brepo.Create(ctx, item); err != nil {
			t.Fatalf("Create %s: %v", item.ID, err)
		}
	}

	list, err := brepo.ListByOwner(ctx, "owner-1")
	if err != nil || len(list) != 2 || list[0].ID != "a" {
		t.Fatalf("unexpected list %#v err=%v", list, err)
	}

	a.Memo = "tea"
	if err := brepo.Update(ctx, a); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	got, err := brepo.GetByID(ctx, "a")
	if err != nil || got.Memo != "tea" {
		t.Fatalf("unexpected get %#v err=%v", got, err)
	}

	if err := brepo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := brepo.GetByID(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	urepo := NewUsersRepo(db)
	u := users.User{ID: "uid-1", Email: "ana@example.com", CreatedAt: now}
	if err := urepo.Create(ctx, u); err != nil {
		t.Fatalf("Create user error: %v", err)
	}
	if err := urepo.Create(ctx, u); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if gotU, err := urepo.GetByID(ctx, "uid-1"); err != nil || gotU.Email != u.Email {
		t.Fatalf("unexpected user %#v err=%v", gotU, err)
	}
}

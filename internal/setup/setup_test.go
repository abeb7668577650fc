package setup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"birthday-reminders/internal/adapters/auth/cached"
	"birthday-reminders/internal/config"
)

func TestNewVerifierFromConfig(t *testing.T) {
	ctx := context.Background()

	conf := &config.Config{}
	if v := NewVerifierFromConfig(ctx, conf); v != nil {
		t.Fatalf("expected nil verifier in dev mode, got %T", v)
	}

	conf.Identity.JWTSecret = "s3cr3t"
	conf.Identity.CacheSize = 16
	conf.Identity.CacheTTL = time.Minute
	if _, ok := NewVerifierFromConfig(ctx, conf).(*cached.Verifier); !ok {
		t.Fatalf("expected cached verifier")
	}
}

func TestNewHTTPServerFromConfig_Memory(t *testing.T) {
	conf := &config.Config{}
	conf.HTTP.Address = ":0"
	conf.Storage.Driver = config.StorageMemory
	conf.Session.MaxAge = 3600

	server, closeFn, err := NewHTTPServerFromConfig(context.Background(), conf, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer func() { _ = closeFn() }()

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on /health, got %d", rec.Code)
	}
}

func TestNewReposFromConfig_File(t *testing.T) {
	conf := &config.Config{}
	conf.Storage.Driver = config.StorageFile
	conf.Storage.FileDir = t.TempDir()

	repos, err := NewReposFromConfig(context.Background(), conf)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer func() { _ = repos.Close() }()

	if _, err := repos.Birthdays.ListByOwner(context.Background(), "nobody"); err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
}

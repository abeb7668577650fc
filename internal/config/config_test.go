package config

import (
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	conf, err := Parse()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if conf.HTTP.Address != ":8080" {
		t.Fatalf("unexpected address %q", conf.HTTP.Address)
	}
	if conf.Storage.Driver != StorageFile || conf.Storage.FileDir != "data" {
		t.Fatalf("unexpected storage %#v", conf.Storage)
	}
	if conf.RateLimit.Interval != time.Second || conf.RateLimit.Burst != 10 {
		t.Fatalf("unexpected rate limit %#v", conf.RateLimit)
	}
	if !conf.DevMode() {
		t.Fatalf("expected dev mode without identity settings")
	}
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("BIRTHDAYS_HTTP_ADDRESS", "127.0.0.1:8080")
	t.Setenv("BIRTHDAYS_HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("BIRTHDAYS_STORAGE_DRIVER", "memory")
	t.Setenv("BIRTHDAYS_IDENTITY_JWT_SECRET", "s3cr3t")
	t.Setenv("BIRTHDAYS_SESSION_KEYS", "k1,k2")

	conf, err := Parse()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if conf.HTTP.Address != "127.0.0.1:5000" {
		t.Fatalf("expected PORT override, got %q", conf.HTTP.Address)
	}
	if len(conf.HTTP.AllowedOrigins) != 2 || conf.HTTP.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %#v", conf.HTTP.AllowedOrigins)
	}
	if len(conf.Session.Keys) != 2 {
		t.Fatalf("unexpected session keys %#v", conf.Session.Keys)
	}
	if conf.DevMode() {
		t.Fatalf("expected dev mode off with jwt secret")
	}
}

func TestParse_InvalidStorage(t *testing.T) {
	t.Setenv("PORT", "")

	t.Setenv("BIRTHDAYS_STORAGE_DRIVER", "postgres")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for postgres without dsn")
	}

	t.Setenv("BIRTHDAYS_STORAGE_DRIVER", "mongo")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

package jwtlocal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifier_SignAndVerify(t *testing.T) {
	v := NewVerifier("s3cret", "birthdays")

	token, err := v.Sign("uid-1", "ana@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "uid-1" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("s3cret", "birthdays")
	ctx := context.Background()

	expired, _ := v.Sign("uid-1", "", -time.Minute)
	if _, err := v.Verify(ctx, expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	other, _ := NewVerifier("other", "birthdays").Sign("uid-1", "", time.Hour)
	if _, err := v.Verify(ctx, other); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	wrongIssuer, _ := NewVerifier("s3cret", "someone-else").Sign("uid-1", "", time.Hour)
	if _, err := v.Verify(ctx, wrongIssuer); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}

	noSub, _ := v.Sign("", "", time.Hour)
	if _, err := v.Verify(ctx, noSub); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without sub, got %v", err)
	}

	if _, err := v.Verify(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	if _, err := NewVerifier("", "").Verify(ctx, "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

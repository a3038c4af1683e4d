package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository/memory"
)

func TestAuth_RegisterLoginParse(t *testing.T) {
	store := memory.NewStore()
	auth := NewAuthService(store.Users, "secret", time.Hour)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Ana", " Ana@Example.com ", "secret123", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ana@example.com" || user.PasswordHash != "" {
		t.Errorf("unexpected user: %+v", user)
	}
	if _, err := auth.Register(ctx, "Ana 2", "ANA@example.com", "secret123", domain.RoleStudent); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate email: got %v, want ErrUserAlreadyExists", err)
	}
	if _, err := auth.Register(ctx, "X", "x@example.com", "123", domain.RoleStudent); !IsValidation(err) {
		t.Errorf("short password: got %v, want validation error", err)
	}

	token, logged, err := auth.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as %s, want %s", logged.ID.Hex(), user.ID.Hex())
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID.Hex() || claims.Role != domain.RoleStudent {
		t.Errorf("claims = %+v", claims)
	}

	if _, _, err := auth.Login(ctx, "ana@example.com", "wrong-pass"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password: got %v, want ErrAuthenticationFailed", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown email: got %v, want ErrAuthenticationFailed", err)
	}
	if _, err := auth.ParseToken(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token: got %v, want ErrInvalidToken", err)
	}
	other := NewAuthService(store.Users, "another-secret", time.Hour)
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: got %v, want ErrInvalidToken", err)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	store := memory.NewStore()
	svc := NewAuthService(store.Users, "secret", time.Minute).(*authService)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "secret123", domain.RoleAdmin); err != nil {
		t.Fatalf("Register: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestAuth_EnsureAdmin(t *testing.T) {
	store := memory.NewStore()
	auth := NewAuthService(store.Users, "secret", time.Hour)
	ctx := context.Background()

	created, err := auth.EnsureAdmin(ctx, "", "", "")
	if err != nil || created {
		t.Errorf("without credentials: created=%v err=%v", created, err)
	}
	created, err = auth.EnsureAdmin(ctx, "", "coach@example.com", "secret123")
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = auth.EnsureAdmin(ctx, "", "other@example.com", "secret123")
	if err != nil || created {
		t.Errorf("second seed: created=%v err=%v, want no-op", created, err)
	}
	_, user, err := auth.Login(ctx, "coach@example.com", "secret123")
	if err != nil || !user.IsAdmin() || user.Name != "Admin" {
		t.Errorf("seeded admin login: %+v, %v", user, err)
	}
}

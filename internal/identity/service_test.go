package identity

import (
	"context"
	"errors"
	"testing"
)

func TestServiceCreateAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateInput{Username: "alice", Email: "alice@example.com", Password: "hunter2"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
	if string(user.PasswordHash) == "hunter2" {
		t.Fatal("password stored in plaintext")
	}

	authed, err := svc.Authenticate(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestServiceCreateDuplicates(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Email: "alice@example.com", Password: "hunter2"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Email: "other@example.com", Password: "hunter2"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "bob", Email: "alice@example.com", Password: "hunter2"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "al", Email: "a@b.c", Password: "hunter2"}); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser for short username, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Email: "a@b.c", Password: "abc"}); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser for short password, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Email: "a@b.c", Password: "hunter2", Role: "owner"}); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser for bad role, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	admin, created, err := svc.EnsureAdmin(ctx, "admin", "changeme", "admin@example.com")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if !created {
		t.Fatal("expected admin to be created")
	}
	if !admin.IsAdmin() {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}

	again, created, err := svc.EnsureAdmin(ctx, "admin", "changeme", "admin@example.com")
	if err != nil {
		t.Fatalf("ensure admin second call: %v", err)
	}
	if created {
		t.Fatal("expected existing admin to be reused")
	}
	if again.ID != admin.ID {
		t.Fatalf("expected same admin, got %s and %s", admin.ID, again.ID)
	}
}

package users

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoLifecycle(t *testing.T) {
	repo := NewMemoryRepo()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time { return current }
	ctx := context.Background()

	if _, err := repo.GetBySubject(ctx, "sub-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before create, got %v", err)
	}

	created, err := repo.Create(ctx, User{Subject: "sub-1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.CreatedAt.Equal(current) || !created.LastLoginAt.Equal(current) {
		t.Fatalf("create must stamp both timestamps: %+v", created)
	}

	current = current.Add(time.Hour)
	if err := repo.TouchLogin(ctx, "sub-1"); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, err := repo.GetBySubject(ctx, "sub-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt must not move: %+v", got)
	}
	if !got.LastLoginAt.Equal(current) {
		t.Fatalf("lastLoginAt must advance: %+v", got)
	}

	if err := repo.TouchLogin(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown subject, got %v", err)
	}
}

func TestMemoryRepoHonorsContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.GetBySubject(ctx, "sub-1"); err == nil {
		t.Fatalf("expected context error")
	}
	if _, err := repo.Create(ctx, User{Subject: "sub-1"}); err == nil {
		t.Fatalf("expected context error")
	}
}

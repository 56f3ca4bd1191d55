package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used by tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *MemoryRepo) GetBySubject(ctx context.Context, subject string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[subject]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) Create(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	user.CreatedAt = now
	user.LastLoginAt = now
	r.users[user.Subject] = user
	return user, nil
}

func (r *MemoryRepo) TouchLogin(ctx context.Context, subject string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[subject]
	if !ok {
		return ErrNotFound
	}
	user.LastLoginAt = r.now()
	r.users[subject] = user
	return nil
}

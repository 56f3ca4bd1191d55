package auth

import (
	"context"
	"errors"
	"strings"

	"receipt-backend/internal/users"
)

// ErrStoreDisabled is returned when no record store was configured at
// startup. Handlers map it to a configuration error instead of
// dereferencing an absent handle.
var ErrStoreDisabled = errors.New("user record store is not configured")

// Service verifies identity tokens and keeps user records current.
type Service struct {
	Verifier Verifier
	Users    users.Repo
}

func NewService(verifier Verifier, repo users.Repo) *Service {
	return &Service{Verifier: verifier, Users: repo}
}

// Login verifies the token and upserts the matching user record. The
// returned bool is true for a first login.
func (s *Service) Login(ctx context.Context, token string) (users.User, bool, error) {
	if s == nil || s.Users == nil {
		return users.User{}, false, ErrStoreDisabled
	}

	claims, err := s.Verifier.Verify(ctx, token)
	if err != nil {
		return users.User{}, false, err
	}

	return s.Upsert(ctx, claims)
}

// Upsert looks the record up by subject and either creates it (first login,
// createdAt == lastLoginAt) or advances lastLoginAt only, returning the
// pre-update record. The lookup-then-branch is the idempotency boundary:
// repeating it for the same subject takes the update path. Two concurrent
// first logins can both create; last writer wins, matching upstream design.
func (s *Service) Upsert(ctx context.Context, claims Claims) (users.User, bool, error) {
	if s == nil || s.Users == nil {
		return users.User{}, false, ErrStoreDisabled
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return users.User{}, false, errors.New("subject is required")
	}

	record, err := s.Users.GetBySubject(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			return users.User{}, false, err
		}
		created, err := s.Users.Create(ctx, users.User{
			Subject:     claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
		})
		if err != nil {
			return users.User{}, false, err
		}
		return created, true, nil
	}

	if err := s.Users.TouchLogin(ctx, claims.Subject); err != nil {
		return users.User{}, false, err
	}
	return record, false, nil
}

// Get fetches a stored user record by subject.
func (s *Service) Get(ctx context.Context, subject string) (users.User, error) {
	if s == nil || s.Users == nil {
		return users.User{}, ErrStoreDisabled
	}
	return s.Users.GetBySubject(ctx, subject)
}

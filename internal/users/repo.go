package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// Repo is the record-store boundary for user records.
type Repo interface {
	GetBySubject(ctx context.Context, subject string) (User, error)
	// Create persists a new record with store-assigned createdAt and
	// lastLoginAt and returns it.
	Create(ctx context.Context, user User) (User, error)
	// TouchLogin advances lastLoginAt to the current store time, leaving
	// every other field untouched.
	TouchLogin(ctx context.Context, subject string) error
}

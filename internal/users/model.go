package users

import "time"

// User is the persisted record for one verified identity, keyed by subject.
// CreatedAt is set once at first login; LastLoginAt advances on every
// successful login. Both are assigned by the store, never by the caller.
type User struct {
	Subject     string    `json:"subject"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo stores user records in Postgres. Timestamps are assigned with
// now() so clients never supply login times.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) GetBySubject(ctx context.Context, subject string) (User, error) {
	const query = `
SELECT subject, email, display_name, created_at, last_login_at
FROM users
WHERE subject = $1
LIMIT 1`
	var user User
	var email sql.NullString
	var displayName sql.NullString
	err := r.DB.QueryRowContext(ctx, query, subject).Scan(
		&user.Subject,
		&email,
		&displayName,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	if displayName.Valid {
		user.DisplayName = displayName.String
	}
	return user, nil
}

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (subject, email, display_name, created_at, last_login_at)
VALUES ($1, $2, $3, now(), now())
RETURNING created_at, last_login_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.Subject,
		nullableString(user.Email),
		nullableString(user.DisplayName),
	).Scan(&user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) TouchLogin(ctx context.Context, subject string) error {
	const query = `
UPDATE users SET last_login_at = now() WHERE subject = $1`
	res, err := r.DB.ExecContext(ctx, query, subject)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

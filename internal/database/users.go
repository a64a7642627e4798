package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserStore handles database operations for dashboard users
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByEmail returns sql.ErrNoRows when no user has that email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, email, password_hash, full_name FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user. PasswordHash must already be hashed.
func (s *UserStore) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.FullName)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/solver492/manu-pro/internal/database"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the subset of the user store the authenticator needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	Create(ctx context.Context, user *database.User) error
}

// Authenticator checks submitted credentials against stored hashes.
type Authenticator struct {
	users UserStore
	// dummyHash is verified when the email is unknown so both failure
	// paths cost one argon2 derivation.
	dummyHash string
}

func NewAuthenticator(users UserStore) *Authenticator {
	dummy, _ := HashPassword("manu-pro-unknown-user")
	return &Authenticator{users: users, dummyHash: dummy}
}

// Login returns the sanitized profile of the user, or ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*database.Profile, error) {
	user, err := a.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		VerifyPassword(password, a.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	profile := user.Profile()
	return &profile, nil
}

// EnsureUser creates the user when the email is not registered yet.
// It reports whether a user was created.
func (a *Authenticator) EnsureUser(ctx context.Context, email, password, fullName string) (bool, error) {
	email = normalizeEmail(email)
	_, err := a.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	user := &database.User{Email: email, PasswordHash: hash, FullName: fullName}
	if err := a.users.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

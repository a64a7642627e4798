package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solver492/manu-pro/internal/database"
)

func TestHashPassword(t *testing.T) {
	a, err := HashPassword("password")
	require.NoError(t, err)
	b, err := HashPassword("password")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "$argon2id$v=19$m=65536,t=1,p=4$"))
	assert.NotEqual(t, a, b, "each hash gets its own salt")
	assert.True(t, VerifyPassword("password", a))
	assert.True(t, VerifyPassword("password", b))
	assert.False(t, VerifyPassword("Password", a))
	assert.False(t, VerifyPassword("", a))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	valid, err := HashPassword("secret")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	cases := map[string]string{
		"Plaintext":      "secret",
		"Empty":          "",
		"WrongAlgorithm": strings.Replace(valid, "argon2id", "argon2i", 1),
		"WrongVersion":   strings.Replace(valid, "v=19", "v=16", 1),
		"BadParams":      strings.Join([]string{"", parts[1], parts[2], "m=1,t=1", parts[4], parts[5]}, "$"),
		"ZeroThreads":    strings.Join([]string{"", parts[1], parts[2], "m=65536,t=1,p=0", parts[4], parts[5]}, "$"),
		"BadSalt":        strings.Join([]string{"", parts[1], parts[2], parts[3], "!!", parts[5]}, "$"),
		"EmptyHash":      strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], ""}, "$"),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, VerifyPassword("secret", encoded))
		})
	}
}

type memoryUsers struct {
	users map[string]database.User
	err   error
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*database.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *memoryUsers) Create(_ context.Context, user *database.User) error {
	user.ID = "user-" + user.Email
	m.users[user.Email] = *user
	return nil
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	users := &memoryUsers{users: map[string]database.User{}}
	a := NewAuthenticator(users)

	created, err := a.EnsureUser(ctx, " Admin@Example.com ", "password", "Administrateur")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = a.EnsureUser(ctx, "admin@example.com", "other", "Someone")
	require.NoError(t, err)
	assert.False(t, created, "existing users are left untouched")

	stored := users.users["admin@example.com"]
	assert.NotEqual(t, "password", stored.PasswordHash)

	t.Run("Success", func(t *testing.T) {
		profile, err := a.Login(ctx, "admin@example.com", "password")
		require.NoError(t, err)
		assert.Equal(t, database.Profile{ID: stored.ID, Email: "admin@example.com", FullName: "Administrateur"}, *profile)
	})

	t.Run("WrongPasswordAndUnknownEmailLookAlike", func(t *testing.T) {
		_, wrongPassword := a.Login(ctx, "admin@example.com", "nope")
		_, unknownEmail := a.Login(ctx, "ghost@example.com", "password")
		assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("StoreFailure", func(t *testing.T) {
		broken := NewAuthenticator(&memoryUsers{err: errors.New("database is locked")})
		_, err := broken.Login(ctx, "admin@example.com", "password")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

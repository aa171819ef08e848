package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/db/repository"
)

type mockAdminStore struct {
	mock.Mock
}

func (m *mockAdminStore) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(repository.User), args.Error(1)
}

func (m *mockAdminStore) Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.User), args.Error(1)
}

func (m *mockAdminStore) Update(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (repository.User, error) {
	args := m.Called(ctx, id, params)
	return args.Get(0).(repository.User), args.Error(1)
}

func (m *mockAdminStore) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func TestEnsureAdminCreates(t *testing.T) {
	store := new(mockAdminStore)
	store.On("GetByEmail", mock.Anything, "root@example.com").Return(repository.User{}, repository.ErrNotFound)
	store.On("Create", mock.Anything, mock.MatchedBy(func(p repository.CreateUserParams) bool {
		return p.IsAdmin && p.Name == "Root" && p.PasswordHash != nil &&
			auth.VerifyPassword(p.PasswordHash, "s3cret!") == nil
	})).Return(repository.User{ID: uuid.New(), Name: "Root", Email: "root@example.com", IsAdmin: true}, nil)

	u, created, err := ensureAdmin(context.Background(), store, " Root ", "Root@Example.com", "s3cret!")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin)
	store.AssertExpectations(t)
}

func TestEnsureAdminPromotesExisting(t *testing.T) {
	store := new(mockAdminStore)
	id := uuid.New()
	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(repository.User{ID: id, Name: "Ada", Email: "ada@example.com"}, nil)
	store.On("Update", mock.Anything, id, repository.UpdateUserParams{Name: "Ada L", Email: "ada@example.com", IsAdmin: true}).
		Return(repository.User{ID: id, Name: "Ada L", Email: "ada@example.com", IsAdmin: true}, nil)
	store.On("SetPassword", mock.Anything, id, mock.AnythingOfType("string")).Return(nil)

	u, created, err := ensureAdmin(context.Background(), store, "Ada L", "ada@example.com", "another-pass")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ada L", u.Name)
	store.AssertExpectations(t)
}

func TestEnsureAdminValidates(t *testing.T) {
	store := new(mockAdminStore)

	_, _, err := ensureAdmin(context.Background(), store, "R", "root@example.com", "s3cret!")
	assert.Error(t, err)
	_, _, err = ensureAdmin(context.Background(), store, "Root", "nope", "s3cret!")
	assert.Error(t, err)
	_, _, err = ensureAdmin(context.Background(), store, "Root", "root@example.com", "123")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	store.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("  Grace Hopper \nlast"))

	got, err := prompt(in, &out, "Name: ")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", got)
	assert.Equal(t, "Name: ", out.String())

	got, err = prompt(in, &out, "Email: ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["create-admin"])
	assert.True(t, names["seed"])
}

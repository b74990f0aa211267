package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/centralelevate/elevate/internal/auth"
)

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users []auth.User
}

func (m *memUserRepo) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	m.users = append(m.users, *u)
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUserRepo) FindByPrefix(_ context.Context, prefix string) ([]auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []auth.User
	for _, u := range m.users {
		if u.ApiKeyPrefix == prefix && u.RevokedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) List(_ context.Context) ([]auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]auth.User(nil), m.users...), nil
}

func (m *memUserRepo) Revoke(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			if m.users[i].RevokedAt != nil {
				return auth.ErrUserRevoked
			}
			now := time.Now().UTC()
			m.users[i].RevokedAt = &now
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func (m *memUserRepo) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func TestGenerateKey(t *testing.T) {
	svc := auth.NewService(&memUserRepo{}, bcrypt.MinCost)

	rawKey, prefix, hash, err := svc.GenerateKey()

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rawKey, "elv_"))
	assert.Equal(t, rawKey[:8], prefix)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey)))
}

func TestAuthenticate(t *testing.T) {
	repo := &memUserRepo{}
	svc := auth.NewService(repo, bcrypt.MinCost)
	ctx := context.Background()

	u, rawKey, err := svc.CreateUser(ctx, "ops", auth.ViewerRole)
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, rawKey)
	require.NoError(t, err)
	assert.Equal(t, u.ID, identity.UserID)
	assert.Equal(t, "ops", identity.UserName)
	assert.Equal(t, auth.ViewerRole, identity.Role)
	assert.False(t, identity.IsElevated())

	_, err = svc.Authenticate(ctx, rawKey+"x")
	assert.ErrorIs(t, err, auth.ErrInvalidKey)

	_, err = svc.Authenticate(ctx, "short")
	assert.ErrorIs(t, err, auth.ErrInvalidKey)

	require.NoError(t, repo.Revoke(ctx, u.ID))
	_, err = svc.Authenticate(ctx, rawKey)
	assert.ErrorIs(t, err, auth.ErrInvalidKey)
}

func TestBootstrapAdmin(t *testing.T) {
	repo := &memUserRepo{}
	svc := auth.NewService(repo, bcrypt.MinCost)
	ctx := context.Background()

	rawKey, err := svc.BootstrapAdmin(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rawKey)

	identity, err := svc.Authenticate(ctx, rawKey)
	require.NoError(t, err)
	assert.True(t, identity.IsElevated())

	again, err := svc.BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "bootstrap runs only on an empty table")
}

func TestIdentity_IsElevated(t *testing.T) {
	var nilIdentity *auth.Identity
	assert.False(t, nilIdentity.IsElevated())
	assert.True(t, (&auth.Identity{Role: auth.ElevatedRole}).IsElevated())
	assert.False(t, (&auth.Identity{Role: "SUPER_ADMIN"}).IsElevated())
}

func TestValidRole(t *testing.T) {
	assert.True(t, auth.ValidRole(auth.ElevatedRole))
	assert.True(t, auth.ValidRole(auth.ViewerRole))
	assert.False(t, auth.ValidRole("owner"))
}

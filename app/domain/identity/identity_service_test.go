package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

type fakeRepo struct {
	byHash map[string]*Identity
	err    error
}

func (f *fakeRepo) Create(ctx context.Context, i *Identity) error { return f.err }

func (f *fakeRepo) Save(ctx context.Context, i *Identity) error { return f.err }

func (f *fakeRepo) FindByKeyHash(ctx context.Context, keyHash string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byHash[keyHash], nil
}

func (f *fakeRepo) FindByPublicID(ctx context.Context, publicID string) (*Identity, error) {
	return nil, nil
}

func (f *fakeRepo) FindExpiringBefore(ctx context.Context, t time.Time) ([]*Identity, error) {
	return nil, f.err
}

func newTestService(repo IdentityRepository) *Service {
	return NewService(repo, &cache.NoOpCacheService{}, nil)
}

func TestGenerateKeyAndHash(t *testing.T) {
	environment_variables.EnvironmentVariables.APIKEY_SECRET = "test-secret"
	s := newTestService(&fakeRepo{})

	key, hash, err := s.GenerateKeyAndHash(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, KeyPrefix+"_"))
	assert.Equal(t, s.HashKey(context.Background(), key), hash)

	key2, _, err := s.GenerateKeyAndHash(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)
}

func TestHashKeyIsDeterministic(t *testing.T) {
	environment_variables.EnvironmentVariables.APIKEY_SECRET = "test-secret"
	s := newTestService(&fakeRepo{})

	a := s.HashKey(context.Background(), "adk_abc")
	b := s.HashKey(context.Background(), "adk_abc")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, s.HashKey(context.Background(), "adk_abd"))
}

func TestResolveBearerUnknownKey(t *testing.T) {
	s := newTestService(&fakeRepo{byHash: map[string]*Identity{}})

	_, err := s.ResolveBearer(context.Background(), "adk_unknown")
	require.Error(t, err)
	assert.Equal(t, common.KindUnauthenticated, common.AsError(err).Kind)
}

func TestResolveBearerStoreFault(t *testing.T) {
	s := newTestService(&fakeRepo{err: errors.New("connection refused")})

	_, err := s.ResolveBearer(context.Background(), "adk_any")
	require.Error(t, err)
	assert.Equal(t, common.KindInternal, common.AsError(err).Kind)
}

func TestResolveBearerValidCredential(t *testing.T) {
	environment_variables.EnvironmentVariables.APIKEY_SECRET = "test-secret"
	repo := &fakeRepo{byHash: map[string]*Identity{}}
	s := newTestService(repo)

	ident := &Identity{
		PublicID:       "idn_a",
		AccessToken:    "tok",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}
	repo.byHash[s.HashKey(context.Background(), "adk_valid")] = ident

	resolved, err := s.ResolveBearer(context.Background(), "adk_valid")
	require.NoError(t, err)
	assert.Equal(t, "idn_a", resolved.PublicID)
}

func TestCredentialExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Identity{}).CredentialExpired(now), "zero expiry never expires")
	assert.False(t, (&Identity{TokenExpiresAt: now.Add(time.Minute)}).CredentialExpired(now))
	assert.True(t, (&Identity{TokenExpiresAt: now.Add(-time.Minute)}).CredentialExpired(now))
}

func TestFirstAdAccountID(t *testing.T) {
	_, ok := (&Identity{}).FirstAdAccountID()
	assert.False(t, ok)

	id, ok := (&Identity{AdAccountIDs: []string{"act_1", "act_2"}}).FirstAdAccountID()
	assert.True(t, ok)
	assert.Equal(t, "act_1", id)
}

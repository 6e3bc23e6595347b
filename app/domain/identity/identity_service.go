package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/upstream"
	"admetric.ai/ads-api-gateway/app/utils/functional"
	"admetric.ai/ads-api-gateway/app/utils/logger"
	"admetric.ai/ads-api-gateway/app/utils/stringutils"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

type IdentityRepository interface {
	Create(ctx context.Context, i *Identity) error
	Save(ctx context.Context, i *Identity) error
	FindByKeyHash(ctx context.Context, keyHash string) (*Identity, error)
	FindByPublicID(ctx context.Context, publicID string) (*Identity, error)
	FindExpiringBefore(ctx context.Context, t time.Time) ([]*Identity, error)
}

const KeyPrefix = "adk"

// Fallback lifetime for long-lived tokens when the upstream omits expires_in.
const defaultTokenLifetime = 60 * 24 * time.Hour

type Service struct {
	repo           IdentityRepository
	cacheService   cache.CacheService
	upstreamClient *upstream.Client
}

func NewService(
	repo IdentityRepository,
	cacheService cache.CacheService,
	upstreamClient *upstream.Client,
) *Service {
	return &Service{
		repo,
		cacheService,
		upstreamClient,
	}
}

// GenerateKeyAndHash mints a gateway bearer credential. The plaintext is
// returned exactly once; only the hash is persisted.
func (s *Service) GenerateKeyAndHash(ctx context.Context) (string, string, error) {
	random, err := stringutils.RandomString(24)
	if err != nil {
		return "", "", err
	}
	key := fmt.Sprintf("%s_%s", KeyPrefix, random)
	return key, s.HashKey(ctx, key), nil
}

func (s *Service) HashKey(ctx context.Context, key string) string {
	h := hmac.New(sha256.New, []byte(environment_variables.EnvironmentVariables.APIKEY_SECRET))
	h.Write([]byte(key))

	return hex.EncodeToString(h.Sum(nil))
}

// ResolveBearer looks up the identity owning the bearer credential and
// refreshes the upstream token when it has expired.
func (s *Service) ResolveBearer(ctx context.Context, bearerToken string) (*Identity, error) {
	ident, err := s.repo.FindByKeyHash(ctx, s.HashKey(ctx, bearerToken))
	if err != nil {
		return nil, common.NewError(
			common.KindInternal,
			"3d8f2a6c-91e4-4b5a-8c7d-0e1f2a3b4c5e",
			"credential store unavailable",
		)
	}
	if ident == nil {
		return nil, common.NewError(
			common.KindUnauthenticated,
			"e90f27c3-6b84-4a1d-9f5e-0c2ab7d431f6",
			"unknown bearer credential",
		)
	}
	if ident.CredentialExpired(time.Now()) {
		return s.refreshCredential(ctx, ident)
	}
	return ident, nil
}

// ResolveDirectToken validates an upstream access token supplied directly by
// the caller, with no local persistence. Validity is established by the
// upstream identity endpoint.
func (s *Service) ResolveDirectToken(ctx context.Context, accessToken string) (*Identity, error) {
	me, err := s.upstreamClient.Me(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	accounts, err := s.upstreamClient.AdAccounts(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &Identity{
		PublicID:       "direct:" + me.ID,
		UpstreamUserID: me.ID,
		AccessToken:    accessToken,
		AdAccountIDs: functional.Map(accounts, func(a upstream.AdAccount) string {
			return a.ID
		}),
	}, nil
}

// CreateFromOAuth completes the connect flow: exchanges the authorization
// code, resolves the upstream user and accessible accounts, and persists a
// new identity. Returns the identity and the plaintext gateway key.
func (s *Service) CreateFromOAuth(ctx context.Context, code string) (*Identity, string, error) {
	token, err := s.upstreamClient.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", err
	}
	// Trade up to a long-lived token so the refresh sweep rarely races the
	// expiry.
	longLived, err := s.upstreamClient.ExchangeLongLivedToken(ctx, token.AccessToken)
	if err == nil {
		token = longLived
	}

	me, err := s.upstreamClient.Me(ctx, token.AccessToken)
	if err != nil {
		return nil, "", err
	}
	accounts, err := s.upstreamClient.AdAccounts(ctx, token.AccessToken)
	if err != nil {
		return nil, "", err
	}

	key, hash, err := s.GenerateKeyAndHash(ctx)
	if err != nil {
		return nil, "", err
	}
	publicID, err := stringutils.RandomString(16)
	if err != nil {
		return nil, "", err
	}

	ident := &Identity{
		PublicID:       "idn_" + publicID,
		KeyHash:        hash,
		UpstreamUserID: me.ID,
		AccessToken:    token.AccessToken,
		TokenExpiresAt: tokenExpiry(token),
		AdAccountIDs: functional.Map(accounts, func(a upstream.AdAccount) string {
			return a.ID
		}),
	}
	if err := s.repo.Create(ctx, ident); err != nil {
		return nil, "", common.NewError(
			common.KindInternal,
			"7b1e9d4f-2c3a-45b6-8d7e-9f0a1b2c3d4f",
			"failed to persist identity",
		)
	}
	return ident, key, nil
}

// SweepExpiring refreshes credentials expiring within the next 24 hours so
// interactive calls rarely pay the refresh latency.
func (s *Service) SweepExpiring(ctx context.Context) {
	idents, err := s.repo.FindExpiringBefore(ctx, time.Now().Add(24*time.Hour))
	if err != nil {
		logger.GetLogger().Warnf("credential sweep: listing failed: %v", err)
		return
	}
	for _, ident := range idents {
		if _, err := s.refreshCredential(ctx, ident); err != nil {
			logger.GetLogger().
				WithField("identity", ident.PublicID).
				Warnf("credential sweep: refresh failed: %v", err)
		}
	}
}

// refreshCredential re-exchanges an expired or expiring upstream token and
// rewrites the persisted record. Refresh is a non-idempotent side effect, so
// it runs single-writer under a distributed lock when the cache backend
// supports one.
func (s *Service) refreshCredential(ctx context.Context, ident *Identity) (*Identity, error) {
	mutex := s.cacheService.NewMutex(
		fmt.Sprintf(cache.IdentityRefreshLockKeyPattern, ident.PublicID),
		redsync.WithExpiry(30*time.Second),
	)
	if mutex != nil {
		if err := mutex.LockContext(ctx); err != nil {
			logger.GetLogger().Warnf("credential refresh: lock unavailable, proceeding: %v", err)
		} else {
			defer func() {
				if _, err := mutex.UnlockContext(ctx); err != nil {
					logger.GetLogger().Warnf("credential refresh: unlock failed: %v", err)
				}
			}()
			// Another replica may have refreshed while we waited.
			current, err := s.repo.FindByKeyHash(ctx, ident.KeyHash)
			if err == nil && current != nil && !current.CredentialExpired(time.Now()) {
				return current, nil
			}
		}
	}

	token, err := s.upstreamClient.ExchangeLongLivedToken(ctx, ident.AccessToken)
	if err != nil {
		return nil, common.NewError(
			common.KindCredentialExpired,
			"f19270bb-c173-4e11-8b36-63feada74e41",
			"upstream credential expired and could not be renewed, reconnect your ad account",
		)
	}

	ident.AccessToken = token.AccessToken
	ident.TokenExpiresAt = tokenExpiry(token)
	if err := s.repo.Save(ctx, ident); err != nil {
		return nil, common.NewError(
			common.KindInternal,
			"c2a4e6f8-0b1d-4c3e-9a5b-7d8e9f0a1b2d",
			"failed to persist refreshed credential",
		)
	}
	return ident, nil
}

func tokenExpiry(token *upstream.TokenResponse) time.Time {
	if token.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return time.Now().Add(defaultTokenLifetime)
}

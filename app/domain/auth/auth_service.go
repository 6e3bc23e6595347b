package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/interfaces/http/responses"
	"admetric.ai/ads-api-gateway/app/utils/contextkeys"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

type AuthService struct {
	identityService *identity.Service
}

func NewAuthService(identityService *identity.Service) *AuthService {
	return &AuthService{
		identityService,
	}
}

type IdentityContextKey string

const (
	IdentityContextKeyEntity IdentityContextKey = "IdentityContextKeyEntity"
)

// BearerAuthMiddleware resolves the Authorization header into an identity.
// Gateway keys (adk_ prefix) resolve through the credential store; anything
// else is treated as a platform access token and validated upstream.
func (s *AuthService) BearerAuthMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		token, ok := bearerToken(reqCtx)
		if !ok {
			responses.AbortWithError(reqCtx, common.NewError(
				common.KindUnauthenticated,
				"a1b9c3d5-e7f0-4a2b-8c4d-6e8f0a1b3c5d",
				"missing bearer credential",
			))
			return
		}
		ident, err := s.resolve(reqCtx.Request.Context(), token)
		if err != nil {
			responses.AbortWithError(reqCtx, err)
			return
		}
		SetIdentityToContext(reqCtx, ident)
		reqCtx.Next()
	}
}

// QueryTokenAuthMiddleware authenticates embedded-agent transports that
// cannot set headers. Failures answer in JSON-RPC form so protocol clients
// can parse them.
func (s *AuthService) QueryTokenAuthMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		token := reqCtx.Query("token")
		if token == "" {
			if token, _ = bearerToken(reqCtx); token == "" {
				abortJSONRPC(reqCtx, "missing credential")
				return
			}
		}
		ident, err := s.resolve(reqCtx.Request.Context(), token)
		if err != nil {
			abortJSONRPC(reqCtx, common.AsError(err).Message)
			return
		}
		SetIdentityToContext(reqCtx, ident)
		reqCtx.Next()
	}
}

// AdminKeyMiddleware guards operational endpoints behind the static admin key.
func (s *AuthService) AdminKeyMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		adminKey := environment_variables.EnvironmentVariables.ADMIN_API_KEY
		if adminKey == "" || reqCtx.GetHeader("X-Admin-Key") != adminKey {
			responses.AbortWithError(reqCtx, common.NewError(
				common.KindUnauthenticated,
				"b2c4d6e8-f0a1-4b3c-9d5e-7f8a9b0c1d2e",
				"invalid admin credential",
			))
			return
		}
		reqCtx.Next()
	}
}

func (s *AuthService) resolve(ctx context.Context, token string) (*identity.Identity, error) {
	if strings.HasPrefix(token, identity.KeyPrefix+"_") {
		return s.identityService.ResolveBearer(ctx, token)
	}
	return s.identityService.ResolveDirectToken(ctx, token)
}

// SignConnectState mints the short-lived anti-forgery token carried through
// the OAuth redirect round trip.
func (s *AuthService) SignConnectState() (string, error) {
	claims := jwt.MapClaims{
		"purpose": "connect",
		"exp":     time.Now().Add(10 * time.Minute).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(environment_variables.EnvironmentVariables.JWT_SECRET))
}

func (s *AuthService) VerifyConnectState(state string) bool {
	token, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(environment_variables.EnvironmentVariables.JWT_SECRET), nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return ok && claims["purpose"] == "connect"
}

func bearerToken(reqCtx *gin.Context) (string, bool) {
	header := reqCtx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func abortJSONRPC(reqCtx *gin.Context, message string) {
	reqCtx.AbortWithStatusJSON(http.StatusOK, gin.H{
		"jsonrpc": "2.0",
		"id":      nil,
		"error": gin.H{
			"code":    -32000,
			"message": message,
			"data": gin.H{
				"hint":    "pass the gateway key via ?token= or an Authorization: Bearer header",
				"example": "/api/v1/mcp?token=adk_...",
			},
		},
	})
}

// GetIdentityFromContext reads the identity placed by an auth middleware.
func GetIdentityFromContext(reqCtx *gin.Context) (*identity.Identity, bool) {
	value, ok := reqCtx.Get(string(IdentityContextKeyEntity))
	if !ok {
		return nil, false
	}
	ident, ok := value.(*identity.Identity)
	return ident, ok
}

// SetIdentityToContext stores the identity on the gin context and the request
// context, so both gin handlers and wrapped protocol handlers can read it.
func SetIdentityToContext(reqCtx *gin.Context, ident *identity.Identity) {
	reqCtx.Set(string(IdentityContextKeyEntity), ident)
	ctx := context.WithValue(reqCtx.Request.Context(), contextkeys.IdentityKey{}, ident)
	reqCtx.Request = reqCtx.Request.WithContext(ctx)
}

// IdentityFromStdContext reads the identity from a plain request context.
func IdentityFromStdContext(ctx context.Context) (*identity.Identity, bool) {
	ident, ok := ctx.Value(contextkeys.IdentityKey{}).(*identity.Identity)
	return ident, ok
}

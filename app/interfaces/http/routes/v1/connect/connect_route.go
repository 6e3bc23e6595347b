package connect

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/upstream"
	"admetric.ai/ads-api-gateway/app/interfaces/http/responses"
)

// ConnectRoute drives the OAuth account-connection flow: redirect out to the
// platform consent dialog, then mint a gateway key on the way back.
type ConnectRoute struct {
	authService     *auth.AuthService
	identityService *identity.Service
	upstreamClient  *upstream.Client
}

func NewConnectRoute(
	authService *auth.AuthService,
	identityService *identity.Service,
	upstreamClient *upstream.Client,
) *ConnectRoute {
	return &ConnectRoute{
		authService,
		identityService,
		upstreamClient,
	}
}

func (connectRoute *ConnectRoute) RegisterRouter(router gin.IRouter) {
	connectRouter := router.Group("/connect")
	connectRouter.GET("", connectRoute.Start)
	connectRouter.GET("/callback", connectRoute.Callback)
}

type ConnectCallbackResponse struct {
	Object       string   `json:"object"`
	IdentityID   string   `json:"identity_id"`
	GatewayKey   string   `json:"gateway_key"`
	AdAccountIDs []string `json:"ad_account_ids"`
}

// @Summary Start account connection
// @Description Redirects the caller to the advertising platform consent dialog.
// @Tags Connect
// @Success 307
// @Router /api/v1/connect [get]
func (connectRoute *ConnectRoute) Start(reqCtx *gin.Context) {
	state, err := connectRoute.authService.SignConnectState()
	if err != nil {
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindInternal,
			"5e7f9a1b-3c4d-4e6f-8a0b-2c4d6e8f0a1c",
			"could not create connect state",
		))
		return
	}
	reqCtx.Redirect(http.StatusTemporaryRedirect, connectRoute.upstreamClient.OAuthDialogURL(state))
}

// @Summary Complete account connection
// @Description Exchanges the OAuth code and returns the gateway key. The key is shown exactly once.
// @Tags Connect
// @Produce json
// @Success 200 {object} ConnectCallbackResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/v1/connect/callback [get]
func (connectRoute *ConnectRoute) Callback(reqCtx *gin.Context) {
	if !connectRoute.authService.VerifyConnectState(reqCtx.Query("state")) {
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindUnauthenticated,
			"6f8a0b2c-4d5e-4f7a-9b1c-3d5e7f9a1b2d",
			"invalid or expired connect state",
		))
		return
	}
	code := reqCtx.Query("code")
	if code == "" {
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindValidation,
			"7a9b1c3d-5e6f-4a8b-0c2d-4e6f8a0b2c3e",
			"missing authorization code",
		))
		return
	}

	ident, key, err := connectRoute.identityService.CreateFromOAuth(reqCtx.Request.Context(), code)
	if err != nil {
		responses.AbortWithError(reqCtx, err)
		return
	}
	reqCtx.JSON(http.StatusOK, ConnectCallbackResponse{
		Object:       "gateway.key",
		IdentityID:   ident.PublicID,
		GatewayKey:   key,
		AdAccountIDs: ident.AdAccountIDs,
	})
}

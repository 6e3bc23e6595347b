package domain

import (
	"github.com/google/wire"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/domain/ratelimit"
	"admetric.ai/ads-api-gateway/app/domain/tool"
	"admetric.ai/ads-api-gateway/app/infrastructure/upstream"
)

var ServiceProvider = wire.NewSet(
	upstream.NewReservoir,
	upstream.NewClient,
	wire.Bind(new(tool.UpstreamCaller), new(*upstream.Client)),
	identity.NewService,
	auth.NewAuthService,
	ratelimit.NewService,
	tool.NewRegistry,
	tool.NewDispatcher,
)

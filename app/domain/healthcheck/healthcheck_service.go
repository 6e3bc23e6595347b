package healthcheck

import (
	"context"

	"github.com/mileusna/crontab"

	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/upstream"
	"admetric.ai/ads-api-gateway/app/utils/logger"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

// MaintenanceCrontabService runs the periodic background work: topping up the
// outbound reservoir and refreshing credentials before they lapse.
type MaintenanceCrontabService struct {
	upstreamClient  *upstream.Client
	identityService *identity.Service
}

func NewService(upstreamClient *upstream.Client, identityService *identity.Service) *MaintenanceCrontabService {
	return &MaintenanceCrontabService{
		upstreamClient:  upstreamClient,
		identityService: identityService,
	}
}

func (ms *MaintenanceCrontabService) Start(ctx context.Context, ctab *crontab.Crontab) {
	ctab.AddJob("0 * * * *", func() {
		ms.upstreamClient.Reservoir().Refill()
		logger.GetLogger().Info("outbound reservoir refilled")
	})
	ctab.AddJob("*/10 * * * *", func() {
		ms.identityService.SweepExpiring(ctx)
	})
	ctab.AddJob("* * * * *", func() {
		environment_variables.EnvironmentVariables.LoadFromEnv()
	})
}

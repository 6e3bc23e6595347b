//go:build wireinject

package main

import (
	"github.com/google/wire"

	"admetric.ai/ads-api-gateway/app/domain"
	"admetric.ai/ads-api-gateway/app/domain/healthcheck"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/database"
	"admetric.ai/ads-api-gateway/app/infrastructure/database/repository"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
	"admetric.ai/ads-api-gateway/app/interfaces/http"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		database.NewDB,
		cache.NewCacheService,
		metrics.New,
		repository.RepositoryProvider,
		domain.ServiceProvider,
		healthcheck.NewService,
		routes.RouteProvider,
		http.NewHttpServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}

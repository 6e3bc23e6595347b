package repository

import (
	"github.com/google/wire"

	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/database/repository/identityrepo"
)

var RepositoryProvider = wire.NewSet(
	identityrepo.NewIdentityGormRepository,
	wire.Bind(new(identity.IdentityRepository), new(*identityrepo.IdentityGormRepository)),
)

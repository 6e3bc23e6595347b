package identity

import (
	"gorm.io/gen"

	"admetric.ai/ads-api-gateway/app/infrastructure/database/dbschema"
)

// Raw SQL
type Querier interface {
}

func RegisterIdentity(g *gen.Generator) {
	g.ApplyBasic(dbschema.Identity{})
	g.ApplyInterface(func(Querier) {}, dbschema.Identity{})
}

package dbschema

import (
	"encoding/json"
	"time"

	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Identity{})
}

func NewSchemaIdentity(i *identity.Identity) *Identity {
	accounts, _ := json.Marshal(i.AdAccountIDs)
	return &Identity{
		BaseModel: BaseModel{
			ID: i.ID,
		},
		PublicID:       i.PublicID,
		KeyHash:        i.KeyHash,
		UpstreamUserID: i.UpstreamUserID,
		AccessToken:    i.AccessToken,
		TokenExpiresAt: i.TokenExpiresAt,
		AdAccountIDs:   string(accounts),
	}
}

type Identity struct {
	BaseModel
	PublicID       string    `gorm:"uniqueIndex;size:64;not null"`
	KeyHash        string    `gorm:"uniqueIndex;size:64;not null"`
	UpstreamUserID string    `gorm:"index;size:64"`
	AccessToken    string    `gorm:"not null"`
	TokenExpiresAt time.Time `gorm:"index"`
	// AdAccountIDs is the JSON-encoded list of accessible ad account ids.
	AdAccountIDs string
}

func (i *Identity) EtoD() *identity.Identity {
	var accounts []string
	if i.AdAccountIDs != "" {
		_ = json.Unmarshal([]byte(i.AdAccountIDs), &accounts)
	}
	return &identity.Identity{
		ID:             i.ID,
		PublicID:       i.PublicID,
		KeyHash:        i.KeyHash,
		UpstreamUserID: i.UpstreamUserID,
		AccessToken:    i.AccessToken,
		TokenExpiresAt: i.TokenExpiresAt,
		AdAccountIDs:   accounts,
		CreatedAt:      i.CreatedAt,
	}
}

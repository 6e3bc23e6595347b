package identityrepo

import (
	"context"
	"time"

	domain "admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/database/dbschema"
	"admetric.ai/ads-api-gateway/app/utils/functional"

	"gorm.io/gorm"
)

type IdentityGormRepository struct {
	db *gorm.DB
}

func NewIdentityGormRepository(db *gorm.DB) *IdentityGormRepository {
	return &IdentityGormRepository{db: db}
}

// Create implements identity.IdentityRepository.
func (repo *IdentityGormRepository) Create(ctx context.Context, i *domain.Identity) error {
	model := dbschema.NewSchemaIdentity(i)
	if err := repo.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	i.ID = model.ID
	return nil
}

// Save implements identity.IdentityRepository.
func (repo *IdentityGormRepository) Save(ctx context.Context, i *domain.Identity) error {
	model := dbschema.NewSchemaIdentity(i)
	return repo.db.WithContext(ctx).Save(model).Error
}

// FindByKeyHash implements identity.IdentityRepository.
func (repo *IdentityGormRepository) FindByKeyHash(ctx context.Context, keyHash string) (*domain.Identity, error) {
	var model dbschema.Identity
	err := repo.db.WithContext(ctx).Where("key_hash = ?", keyHash).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return model.EtoD(), nil
}

// FindByPublicID implements identity.IdentityRepository.
func (repo *IdentityGormRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Identity, error) {
	var model dbschema.Identity
	err := repo.db.WithContext(ctx).Where("public_id = ?", publicID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return model.EtoD(), nil
}

// FindExpiringBefore implements identity.IdentityRepository.
func (repo *IdentityGormRepository) FindExpiringBefore(ctx context.Context, t time.Time) ([]*domain.Identity, error) {
	var models []dbschema.Identity
	err := repo.db.WithContext(ctx).
		Where("token_expires_at < ?", t).
		Order("token_expires_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return functional.Map(models, func(m dbschema.Identity) *domain.Identity {
		return m.EtoD()
	}), nil
}

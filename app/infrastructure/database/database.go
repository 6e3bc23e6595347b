package database

import (
	"admetric.ai/ads-api-gateway/app/utils/logger"
	"admetric.ai/ads-api-gateway/config/environment_variables"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

var DB *gorm.DB

func NewDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(environment_variables.EnvironmentVariables.DB_POSTGRESQL_WRITE_DSN), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "df6cd4af-4011-4e75-ba2d-cfedf8853900").
			Fatalf("unable to connect to database: %v", err)
		return nil, err
	}
	if readDSN := environment_variables.EnvironmentVariables.DB_POSTGRESQL_READ1_DSN; readDSN != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(readDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			logger.GetLogger().
				WithField("error_code", "a6348f27-3722-4e97-88a0-0708728f76cc").
				Fatalf("unable to connect to setup replica: %v", err)
			return nil, err
		}
	}
	for _, model := range SchemaRegistry {
		err = db.AutoMigrate(model)
		if err != nil {
			logger.GetLogger().
				WithField("error_code", "8f5a4bab-9de8-4f93-8f4e-528ade4f99c7").
				Fatalf("failed to auto migrate schema: %T, error: %v", model, err)
			return nil, err
		}
	}

	DB = db
	return DB, nil
}

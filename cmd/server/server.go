package main

import (
	"context"

	"github.com/mileusna/crontab"

	"admetric.ai/ads-api-gateway/app/domain/healthcheck"
	"admetric.ai/ads-api-gateway/app/interfaces/http"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

type Application struct {
	HttpServer         *http.HttpServer
	MaintenanceService *healthcheck.MaintenanceCrontabService
}

func (application *Application) Start() {
	cron := crontab.New()
	application.MaintenanceService.Start(context.Background(), cron)
	if err := application.HttpServer.Run(); err != nil {
		panic(err)
	}
}

func init() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
}

func main() {
	application, err := CreateApplication()
	if err != nil {
		panic(err)
	}
	application.Start()
}

package http

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/grafana/pyroscope-go/godeltaprof/http/pprof"

	"admetric.ai/ads-api-gateway/app/domain/ratelimit"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
	"admetric.ai/ads-api-gateway/app/interfaces/http/middleware"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/admin"
	v1 "admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1"
	"admetric.ai/ads-api-gateway/app/utils/logger"
	"admetric.ai/ads-api-gateway/config"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

type HttpServer struct {
	engine     *gin.Engine
	v1Route    *v1.V1Route
	cacheRoute *admin.CacheRoute
}

func NewHttpServer(
	v1Route *v1.V1Route,
	cacheRoute *admin.CacheRoute,
	limiter *ratelimit.Service,
	cacheService cache.CacheService,
	m *metrics.Metrics,
) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	server := HttpServer{
		engine:     gin.New(),
		v1Route:    v1Route,
		cacheRoute: cacheRoute,
	}
	server.engine.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(logger.GetLogger()),
		middleware.CORS(),
	)

	// Health, metrics and profiling register before the IP limiter so probes
	// and scrapes are never throttled.
	server.engine.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   config.Version,
		}
		if err := cacheService.HealthCheck(c.Request.Context()); err != nil {
			status["cache"] = "degraded"
		}
		c.JSON(http.StatusOK, status)
	})
	server.engine.GET("/metrics", gin.WrapH(m.Handler()))

	// Delta profiles register themselves on the default mux.
	server.engine.Any("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))

	server.engine.Use(middleware.IPRateLimitMiddleware(limiter))
	return &server
}

func (httpServer *HttpServer) Run() error {
	port := environment_variables.EnvironmentVariables.API_PORT
	if port == 0 {
		port = 8080
	}
	httpServer.v1Route.RegisterRouter(httpServer.engine)
	httpServer.cacheRoute.RegisterRouter(httpServer.engine)
	if err := httpServer.engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		return err
	}
	return nil
}

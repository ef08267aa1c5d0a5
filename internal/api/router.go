package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/api/handlers"
	"github.com/stitts-dev/h2h-sim/internal/api/middleware"
	"github.com/stitts-dev/h2h-sim/internal/config"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/websocket"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
)

// Dependencies are the services the router wires into handlers. Cache and
// Hub are optional.
type Dependencies struct {
	League providers.League
	Cache  *cache.ResultCacheService
	Hub    *websocket.Hub
	Config *config.Config
	Logger *logrus.Logger
}

// NewRouter builds the HTTP API
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.Config.CorsOrigins))
	router.Use(middleware.RequestLogger(deps.Logger))

	simulationHandler := handlers.NewSimulationHandler(deps.League, deps.Cache, deps.Config, deps.Logger)
	optimizationHandler := handlers.NewOptimizationHandler(deps.League, deps.Cache, deps.Hub, deps.Config, deps.Logger)
	tradeHandler := handlers.NewTradeHandler(deps.League, deps.Cache, deps.Config, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.League, deps.Cache, deps.Hub, deps.Logger)

	apiV1 := router.Group("/api/v1")
	if deps.Config.RateLimitEnabled() {
		apiV1.Use(middleware.RateLimit(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst))
	}
	{
		apiV1.POST("/simulate", simulationHandler.RunSimulation)
		apiV1.POST("/optimize", optimizationHandler.OptimizeLineup)
		apiV1.POST("/trade", tradeHandler.EvaluateTrade)
		apiV1.GET("/cache-status", healthHandler.GetCacheStatus)
	}

	if deps.Hub != nil {
		router.GET("/ws/optimization-progress/:run_id", deps.Hub.HandleWebSocket)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

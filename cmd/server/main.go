package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/api"
	"github.com/stitts-dev/h2h-sim/internal/config"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/websocket"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
	"github.com/stitts-dev/h2h-sim/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("h2h-sim")
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
		"fixture":     cfg.LeagueFixturePath,
	}).Info("Starting head-to-head simulation service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	league, err := providers.NewReloadingLeague(cfg.LeagueFixturePath, structuredLogger)
	if err != nil {
		log.Fatalf("Failed to load league: %v", err)
	}
	if cfg.LeagueReloadSchedule != "" {
		if err := league.ScheduleReload(cfg.LeagueReloadSchedule); err != nil {
			log.Fatalf("Failed to schedule league reload: %v", err)
		}
	}

	// Redis is optional, without it every request is computed
	var resultCache *cache.ResultCacheService
	if cfg.CacheEnabled() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, result caching disabled")
		} else {
			resultCache = cache.NewResultCacheService(redisClient, structuredLogger, cfg.CacheTTL)
		}
	}

	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	router := api.NewRouter(api.Dependencies{
		League: league,
		Cache:  resultCache,
		Hub:    wsHub,
		Config: cfg,
		Logger: structuredLogger,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down service...")
	league.Stop()
	wsHub.Close()

	// The server has 30 seconds to finish in-flight optimizations
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Service forced to shutdown: %v", err)
	}

	log.Info("Service exited")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/config"
	"github.com/AgustinBertolini/e-commerce-daw/database"
	"github.com/AgustinBertolini/e-commerce-daw/logger"
	"github.com/AgustinBertolini/e-commerce-daw/routes"
	"github.com/AgustinBertolini/e-commerce-daw/session"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Session and lockout markers go to redis when configured, the
	// process heap otherwise.
	var markers auth.MarkerStore
	if cfg.RedisURL != "" {
		markers = database.NewRedisMarkerStore(database.NewRedisClient(cfg.RedisURL))
	} else {
		logger.Log.Warn("REDIS_URL not set, session markers will not survive restarts")
		markers = auth.NewMemoryMarkerStore(nil)
	}

	clientCfg := clients.Config{
		BaseURL:        cfg.BackendURL,
		RefreshTimeout: cfg.RefreshTimeout,
		HTTPClient:     &http.Client{Timeout: cfg.RequestTimeout},
	}
	manager := session.NewManager(clientCfg, markers, cfg.SessionTTL, logger.Log)
	defer manager.Close()
	throttle := auth.NewThrottle(cfg.LockoutThreshold, cfg.LockoutDuration, nil, markers, logger.Log)
	defer throttle.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	routes.Register(router, manager, throttle, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Storefront service is running",
			zap.String("port", cfg.Port),
			zap.String("backend", cfg.BackendURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Log.Info("Server shutdown complete")
}

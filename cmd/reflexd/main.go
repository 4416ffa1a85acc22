package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"antigravity/internal/backtest"
	"antigravity/internal/bridge"
	"antigravity/internal/bus"
	"antigravity/internal/config"
	cronrunner "antigravity/internal/cron"
	"antigravity/internal/db"
	"antigravity/internal/engine"
	"antigravity/internal/handler"
	"antigravity/internal/logger"
	gormrepository "antigravity/internal/repository/gorm"
	"antigravity/internal/risk"
)

func main() {
	cfgPath := os.Getenv("AGV_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("AGV_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	eventBus := bus.New(cfg.Monitor.SubscriberBuffer, logger)
	governor := risk.NewGovernor(cfg.Risk)
	dispatcher := bridge.New(cfg.Bridge, logger)
	reflex := engine.New(cfg, governor, dispatcher, eventBus, store, logger)
	replayer := backtest.NewRunner(cfg, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.CORS())
	router.Use(handler.APIKeyAuth(cfg.Server.APIKey))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	tickHandler := &handler.TickHandler{Engine: reflex}
	tickHandler.Register(router)
	strategyHandler := &handler.StrategyHandler{Engine: reflex}
	strategyHandler.Register(router)
	positionHandler := &handler.PositionHandler{Engine: reflex}
	positionHandler.Register(router)
	riskHandler := &handler.RiskHandler{Engine: reflex, Limits: cfg.Risk}
	riskHandler.Register(router)
	monitorHandler := &handler.MonitorHandler{Engine: reflex, Repo: store, Bus: eventBus, Logger: logger}
	monitorHandler.Register(router)
	backtestHandler := &handler.BacktestHandler{Runner: replayer}
	backtestHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	statsSpec := cfg.Engine.StatsInterval
	if statsSpec == "" {
		statsSpec = "@every 1s"
	}
	_, err = cronRunner.Add(statsSpec, func(ctx context.Context) {
		s := reflex.Stats()
		eventBus.Publish(bus.ServerStats(bus.Stats{
			TickCount:     s.TickCount,
			TradeCount:    s.TradeCount,
			Subscribers:   eventBus.Subscribers(),
			EventsDropped: eventBus.Dropped(),
			State:         string(s.State),
			UptimeSecs:    s.UptimeSecs,
			Symbol:        s.Symbol,
		}))
	})
	if err != nil {
		logger.Warn("cron register server stats failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"citypulse/internal/config"
	cronrunner "citypulse/internal/cron"
	"citypulse/internal/db"
	"citypulse/internal/handler"
	"citypulse/internal/logger"
	"citypulse/internal/platform"
	gormrepository "citypulse/internal/repository/gorm"
	"citypulse/internal/service"
	"citypulse/internal/stream"

	_ "citypulse/docs"
)

func main() {
	cfgPath := os.Getenv("CP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CP_ENV_ONLY"); envOnlyRaw != "" {
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

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	crypto := service.NewCredentialCipherFromEnv()
	settingsSvc := service.NewSettingsService(store, crypto, logger)

	platformHTTP := &http.Client{Timeout: cfg.Publish.Timeout}
	adapters := platform.NewRegistry(
		platform.NewTelegramAdapter(platformHTTP, cfg.Platforms.Telegram.BaseURL),
		platform.NewVKAdapter(platformHTTP, cfg.Platforms.VK.BaseURL, cfg.Platforms.VK.APIVersion),
		platform.NewInstagramAdapter(platformHTTP, cfg.Platforms.Instagram.BaseURL),
		platform.NewFacebookAdapter(platformHTTP, cfg.Platforms.Facebook.BaseURL),
	)

	hub := stream.NewHub(logger)

	testerSvc := &service.TesterService{
		Settings: settingsSvc,
		Adapters: adapters,
		Logger:   logger,
		Timeout:  cfg.Publish.Timeout,
	}
	dispatcherSvc := service.NewDispatcherService(store, settingsSvc, adapters, logger)
	dispatcherSvc.Timeout = cfg.Publish.Timeout
	dispatcherSvc.Disabled = cfg.Publish.Disabled
	dispatcherSvc.Notifier = hub
	historySvc := &service.HistoryService{
		Repo:            store,
		Logger:          logger,
		DefaultPageSize: cfg.History.DefaultPageSize,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	settingsHandler := &handler.SettingsHandler{
		Settings: settingsSvc,
		Tester:   testerSvc,
		Logger:   logger,
	}
	settingsHandler.Register(engine)
	publishHandler := &handler.PublishHandler{
		Dispatcher: dispatcherSvc,
		Logger:     logger,
	}
	publishHandler.Register(engine)
	historyHandler := &handler.HistoryHandler{
		History: historySvc,
		Hub:     hub,
		Logger:  logger,
	}
	historyHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	sweepSpec := "@every " + cfg.Publish.SweepInterval.String()
	_, err = cronRunner.Add(sweepSpec, func(ctx context.Context) {
		// Budget is the publish timeout plus slack so in-flight calls are
		// never swept out from under a live dispatch.
		if err := historySvc.SweepStalePending(ctx, cfg.Publish.Timeout+cfg.Publish.SweepInterval); err != nil {
			logger.Warn("pending sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("cron register pending sweep failed", zap.Error(err))
	}
	if cfg.History.RetentionDays > 0 {
		_, err = cronRunner.Add(cfg.History.RetentionSweep, func(ctx context.Context) {
			if err := historySvc.SweepRetention(ctx, cfg.History.RetentionDays); err != nil {
				logger.Warn("history retention sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register retention sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("history stream hub stopped", zap.Error(err))
		}
	}()

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

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-connect-api/api/swagger"
	"github.com/noah-isme/campus-connect-api/internal/handler"
	"github.com/noah-isme/campus-connect-api/internal/middleware"
	"github.com/noah-isme/campus-connect-api/internal/repository"
	"github.com/noah-isme/campus-connect-api/internal/service"
	"github.com/noah-isme/campus-connect-api/pkg/cache"
	"github.com/noah-isme/campus-connect-api/pkg/config"
	"github.com/noah-isme/campus-connect-api/pkg/database"
	"github.com/noah-isme/campus-connect-api/pkg/gemini"
	"github.com/noah-isme/campus-connect-api/pkg/jobs"
	"github.com/noah-isme/campus-connect-api/pkg/logger"
	"github.com/noah-isme/campus-connect-api/pkg/osrm"
	"github.com/noah-isme/campus-connect-api/pkg/storage"
	"github.com/noah-isme/campus-connect-api/pkg/tts"
)

// @title CampusConnect+ API
// @version 1.0.0
// @description Campus assistant for MMMUT: departments, StudyHub materials, walking directions and voice answers.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}
	logr.Info("database schema ready", zap.Strings("migrations", applied))

	metrics := service.NewMetricsService()

	var (
		redisRepo *repository.CacheRepository
		cacheRepo service.CacheRepository
	)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisRepo = repository.NewCacheRepository(redisClient, logr.Named("cache"))
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	campus, err := config.LoadCampusInfo(cfg.Assistant.CampusInfoFile)
	if err != nil {
		logr.Fatal("failed to load campus info", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	mux := jobs.NewMux()
	queue := jobs.NewQueue("campus", mux.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: time.Second,
		Logger:     logr.Named("jobs"),
	})

	validate := service.NewValidator()
	recorder := service.NewSearchRecorder(departmentRepo, queue, logr)
	mux.Handle(service.JobIncrementSearchCount, recorder.Handle)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	departmentSvc := service.NewDepartmentService(departmentRepo, recorder, cacheSvc, 10*time.Minute, validate, logr)
	studyHubSvc := service.NewStudyHubService(resourceRepo, validate, logr)
	moderationSvc := service.NewModerationService(resourceRepo, logr)

	deps := service.AssistantDeps{
		Departments:    departmentRepo,
		Materials:      resourceRepo,
		Recorder:       recorder,
		Campus:         campus,
		MaterialsLimit: cfg.Assistant.MaterialsLimit,
		Cache:          cacheSvc,
		AnswerTTL:      cfg.Assistant.AnswerTTL,
	}
	if cfg.Routing.BaseURL != "" {
		deps.Routes = osrm.NewClient(cfg.Routing.BaseURL, cfg.Routing.Timeout, nil)
	}
	if cfg.Gemini.APIKey != "" {
		deps.Generator = gemini.NewClient(gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: cfg.Gemini.Timeout,
		}, nil)
	} else {
		logr.Warn("GEMINI_API_KEY not set, general questions get the fallback answer")
	}

	var (
		assistantHandler *handler.AssistantHandler
		voiceDir         string
	)
	if cfg.Voice.Enabled {
		store, err := storage.NewLocalStorage(cfg.Voice.Dir)
		if err != nil {
			logr.Fatal("failed to prepare voice directory", zap.Error(err))
		}
		voiceDir = store.Dir()
		voiceSvc := service.NewVoiceService(tts.NewClient(cfg.Voice.TTSBaseURL, cfg.Voice.TTSTimeout, nil), store, queue, metrics, service.VoiceConfig{
			BaseURL:  cfg.Voice.BaseURL,
			CacheTTL: cfg.Voice.CacheTTL,
			MaxFiles: cfg.Voice.MaxFiles,
		}, logr.Named("voice"))
		if err := voiceSvc.Rebuild(ctx); err != nil {
			logr.Warn("voice cache rebuild failed", zap.Error(err))
		}
		mux.Handle(service.JobPruneVoices, voiceSvc.HandlePrune)
		assistantHandler = handler.NewAssistantHandler(service.NewAssistantService(deps, voiceSvc, metrics, logr), voiceSvc)
	} else {
		assistantHandler = handler.NewAssistantHandler(service.NewAssistantService(deps, nil, metrics, logr), nil)
	}

	queue.Start(ctx)
	defer queue.Stop()

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisRepo != nil {
		checks["redis"] = redisRepo.Ping
	}

	guards := handler.Guards{
		Tokens:  authSvc,
		Auditor: middleware.NewAuditor(userRepo, logr.Named("audit")),
	}
	if cfg.RateLimit.Enabled {
		guards.API = middleware.NewRateLimiter("api", cfg.RateLimit.API, middleware.RateLimitAPIMessage, metrics)
		guards.AI = middleware.NewRateLimiter("ai", cfg.RateLimit.AI, middleware.RateLimitAIMessage, metrics)
		guards.Auth = middleware.NewRateLimiter("auth", cfg.RateLimit.Auth, middleware.RateLimitAuthMessage, metrics)
		for _, l := range []*middleware.RateLimiter{guards.API, guards.AI, guards.Auth} {
			go l.Run(ctx, sweepInterval)
		}
	}

	r := handler.NewRouter(handler.RouterConfig{
		APIPrefix:    cfg.APIPrefix,
		CORSOrigins:  cfg.CORS.AllowedOrigins,
		VoiceDir:     voiceDir,
		VoiceBaseURL: cfg.Voice.BaseURL,
		Logger:       logr,
		Metrics:      metrics,
	}, handler.Handlers{
		Assistant:   assistantHandler,
		Departments: handler.NewDepartmentHandler(departmentSvc),
		StudyHub:    handler.NewStudyHubHandler(studyHubSvc),
		Auth:        handler.NewAuthHandler(authSvc),
		Admin:       handler.NewAdminHandler(moderationSvc),
		System:      handler.NewMetricsHandler(metrics, cfg.Env, checks, logr),
	}, guards)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/fadilmartias/hireprep/internal/domain/fiber/handler"
	"github.com/fadilmartias/hireprep/internal/metrics"
	"github.com/fadilmartias/hireprep/internal/middleware"
	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/ratelimit"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/fadilmartias/hireprep/internal/service"
	"github.com/fadilmartias/hireprep/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}
	ctx := context.Background()

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		BodyLimit:    int(appConfig.MaxUploadSizeBytes()) + 1024*1024,
		ErrorHandler: handler.ErrorHandler,
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	db := ConnectDB()
	m := metrics.New()

	// repositories
	sessionRepo := repository.NewSessionRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	interviewerRepo := repository.NewInterviewerRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	jobPostingRepo := repository.NewJobPostingRepository(db)
	promptRepo := repository.NewPromptTemplateRepository(db)

	// AI providers
	var providers []service.AIProvider
	if gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig()); err != nil {
		log.Printf("Gemini disabled: %v", err)
	} else {
		providers = append(providers, gemini)
	}
	if orCfg := config.LoadOpenRouterConfig(); orCfg.APIKey != "" {
		providers = append(providers, service.NewOpenRouterService(orCfg))
	} else {
		log.Println("OpenRouter disabled: OPENROUTER_API_KEY not set")
	}
	aiConfig := config.LoadAIConfig()
	aiManager, err := service.NewAIManager(aiConfig.Provider, providers, aiConfig.RequestsPerSecond, m)
	if err != nil {
		log.Fatal(err)
	}

	storageConfig := config.LoadStorageConfig()
	storage, err := service.NewStorageService(ctx, storageConfig)
	if err != nil {
		log.Fatalf("Could not init storage: %v", err)
	}

	var events usecase.SessionEventPublisher
	publisher, err := service.NewEventPublisher(config.LoadRabbitMQConfig())
	if err != nil {
		log.Printf("RabbitMQ disabled: %v", err)
	} else if publisher != nil {
		events = publisher
		defer publisher.Close()
	}

	// rate limiting
	var stats ratelimit.StatsStore = ratelimit.NewMemoryStatsStore()
	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisURL := config.LoadRedisConfig().URL; redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		stats = ratelimit.NewRedisStatsStore(rdb, "", 0)
		healthChecks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	limiter := ratelimit.NewLimiter(appConfig.RateLimitPerMinute)
	trustedProxies, err := ratelimit.ParseTrustedProxies(appConfig.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	// usecases
	promptUC := usecase.NewPromptUsecase(promptRepo)
	if err := promptUC.EnsureDefaults(ctx); err != nil {
		log.Fatalf("Could not seed prompt templates: %v", err)
	}
	flowUC := usecase.NewFlowUsecase(usecase.FlowDeps{
		Sessions:         sessionRepo,
		Candidates:       candidateRepo,
		Interviewers:     interviewerRepo,
		Analyses:         analysisRepo,
		JobPostings:      jobPostingRepo,
		Builder:          usecase.NewAnalysisBuilder(promptRepo, appConfig.DefaultLanguage),
		AI:               aiManager,
		Files:            storage,
		Events:           events,
		Metrics:          m,
		App:              appConfig,
		CVBucket:         storageConfig.CVBucket,
		JobPostingBucket: storageConfig.JobPostingBucket,
	})
	authUC := usecase.NewAuthUsecase(config.LoadAdminConfig())

	handler.Routes{
		Candidate:   handler.NewCandidateHandler(flowUC, appConfig.MaxUploadSizeBytes()),
		Interviewer: handler.NewInterviewerHandler(flowUC, appConfig.MaxUploadSizeBytes()),
		Admin:       handler.NewAdminHandler(authUC, promptUC),
		Health:      handler.NewHealthHandler(appConfig.Name, healthChecks),
		RateLimit: middleware.RateLimiter(middleware.RateLimiterConfig{
			Limiter: limiter,
			Stats:   stats,
			Metrics: m,
			Proxy:   ratelimit.ProxyPolicy{Trust: appConfig.TrustProxy, Proxies: trustedProxies},
		}),
		AdminAuth: middleware.AdminAuth(authUC),
		Metrics:   m.Handler(),
	}.Register(app)

	// Monitor goroutine count and limiter size
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d, rate-limited clients tracked: %d", runtime.NumGoroutine(), limiter.Tracked())
		}
	}()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	for _, ext := range []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`, `CREATE EXTENSION IF NOT EXISTS vector`} {
		if err := db.Exec(ext).Error; err != nil {
			log.Fatalf("enable extension: %v", err)
		}
	}

	err = db.AutoMigrate(
		&model.Candidate{},
		&model.Interviewer{},
		&model.Session{},
		&model.JobPosting{},
		&model.Analysis{},
		&model.PromptTemplate{},
	)
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}

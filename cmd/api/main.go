package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/config"
	"alfredoptarigan/resalign/internal/handlers"
	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/repositories"
	"alfredoptarigan/resalign/internal/services"
)

func main() {
	cfg, envFile := config.Load()

	log, err := logger.New(cfg.Server.LogJSON, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !envFile {
		log.Info("no .env file found, using environment only")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	resumeRepo := repositories.NewResumeRepository(db)
	jdRepo := repositories.NewJobDescriptionRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	store, err := newDocumentStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize document storage", zap.Error(err))
	}
	log.Info("document storage initialized", zap.String("backend", cfg.Storage.Backend))

	locker := newRunLocker(ctx, cfg, log)
	rationale, recommendations, resources := newGenerators(ctx, cfg, log)

	analysisService := services.NewAnalysisService(services.AnalysisDependencies{
		Analyses:        analysisRepo,
		Resumes:         resumeRepo,
		JobDescriptions: jdRepo,
		Rationale:       rationale,
		Recommendations: recommendations,
		Resources:       resources,
		Documents:       store,
		Converter:       services.NewPDFConverter(),
		Locker:          locker,
		Logger:          log.Named("analysis"),
	}, services.AnalysisOptions{
		EnrichmentTimeout: cfg.Analysis.EnrichmentTimeout,
		StoreTimeout:      cfg.Analysis.StoreTimeout,
	})

	worker := services.NewWorker(analysisRepo, analysisService, services.WorkerOptions{
		Concurrency:   cfg.Worker.Concurrency,
		StaleAfter:    cfg.Worker.StaleAfter,
		SweepInterval: cfg.Worker.SweepInterval,
	}, log)
	// In-flight analyses finish during shutdown; Stop waits for them.
	worker.Start(context.WithoutCancel(ctx))

	uploadHandler := handlers.NewUploadHandler(resumeRepo, jdRepo, store, cfg.Storage.MaxFileSize, log)
	analysisHandler := handlers.NewAnalysisHandler(worker, log)
	resultHandler := handlers.NewResultHandler(analysisRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Alignment API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	authed := api.Group("", handlers.RequireAuth(cfg.Auth.JWTSecret))
	authed.Post("/resumes", uploadHandler.HandleCreateResume)
	authed.Post("/job-descriptions", uploadHandler.HandleCreateJobDescription)
	authed.Post("/analyze", analysisHandler.HandleAnalyze)
	authed.Get("/analyses/:id", resultHandler.HandleGetAnalysis)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Alignment API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes",
				"POST /api/v1/job-descriptions",
				"POST /api/v1/analyze",
				"GET /api/v1/analyses/:id",
			},
		})
	})

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		worker.Stop()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}

	<-stopped
	log.Info("server stopped")
}

func newDocumentStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.DocumentStore, error) {
	if cfg.Storage.Backend == "minio" {
		return services.NewMinIODocumentStore(ctx, cfg.Storage.MinIO, log)
	}
	return services.NewLocalDocumentStore(cfg.Storage.UploadPath)
}

// newRunLocker uses Redis when configured so concurrent replicas share the
// per-analysis lock. Without Redis the lock is process-local.
func newRunLocker(ctx context.Context, cfg *config.Config, log *zap.Logger) services.RunLocker {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set, using in-process analysis lock")
		return services.NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process analysis lock", zap.Error(err))
		_ = client.Close()
		return services.NewLocalLocker()
	}

	log.Info("redis analysis lock enabled", zap.String("addr", cfg.Redis.Addr))
	return services.NewRedisLocker(client, cfg.Redis.LockTTL, log)
}

// newGenerators wires the model-backed enrichment steps. Without a Gemini key
// they are left nil and reports carry empty enrichment fields.
func newGenerators(ctx context.Context, cfg *config.Config, log *zap.Logger) (
	services.RationaleGenerator,
	services.RecommendationGenerator,
	services.LearningResourceGenerator,
) {
	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:       cfg.Gemini.APIKey,
		Model:        cfg.Gemini.Model,
		EmbedModel:   cfg.Gemini.EmbedModel,
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
	}, log.Named("gemini"))
	if err != nil {
		log.Warn("gemini unavailable, enrichment disabled", zap.Error(err))
		return nil, nil, nil
	}

	catalog, err := services.NewQdrantCatalog(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log.Named("qdrant"))
	if err == nil {
		err = catalog.InitCollection(ctx)
	}
	if err != nil {
		log.Warn("learning resource catalog unavailable", zap.Error(err))
		catalog = nil
	}

	rationale := services.NewRationaleGenerator(gemini)
	recommendations := services.NewRecommendationGenerator(gemini)
	resources := services.NewLearningResourceGenerator(gemini, catalog, log)

	if cfg.Analysis.Fallbacks {
		log.Info("enrichment fallbacks enabled")
		rationale = services.WithRationaleFallback(rationale, log)
		recommendations = services.WithRecommendationFallback(recommendations, log)
		resources = services.WithResourceFallback(resources, log)
	}

	return rationale, recommendations, resources
}

func customErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}

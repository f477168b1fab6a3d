package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catmatch/internal/classifier"
	"catmatch/internal/config"
	"catmatch/internal/db"
	"catmatch/internal/domain"
	apihttp "catmatch/internal/http"
	"catmatch/internal/repository"
	"catmatch/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	breedRepo, closeRepo := newBreedRepository(ctx, cfg, logger)
	defer closeRepo()

	catalogSvc := service.NewCatalogService(breedRepo, logger)
	imageResolver := service.NewImageResolver(cfg.AssetsDir)
	recommendSvc := service.NewRecommendationService(catalogSvc, imageResolver, cfg.RecommendTopK, logger)

	var (
		predictionCache service.PredictionCache
		uploadLimiter   = service.NewMemoryUploadLimiter(cfg.ClassifyRateWindow, cfg.ClassifyRateLimit)
		redisClient     *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			predictionCache = service.NewRedisPredictionCache(redisClient, cfg.PredictionCacheTTL)
			if limiter := service.NewRedisUploadLimiter(redisClient, cfg.ClassifyRateWindow, cfg.ClassifyRateLimit); limiter != nil {
				uploadLimiter = limiter
			}
		}
		cancel()
	}

	var modelLoader classifier.Loader
	if cfg.ModelBaseURL != "" {
		modelLoader = classifier.NewHTTPLoader(cfg.ModelBaseURL, cfg.ModelName, cfg.ModelHTTPTimeout(), logger)
	} else {
		logger.Warn("classifier model not configured")
	}
	classifierSvc := service.NewClassifierService(modelLoader, logger, service.ClassifierOptions{
		Cache:          predictionCache,
		LoadTimeout:    cfg.ModelLoadTimeout,
		PredictTimeout: cfg.ModelPredictTimeout,
		MaxImageBytes:  cfg.MaxUploadBytes,
		MaxImagePixels: cfg.MaxImagePixels,
	})

	recommendHandler := apihttp.NewRecommendationHandler(logger, recommendSvc)
	classifyHandler := apihttp.NewClassifyHandler(logger, classifierSvc).WithRateLimiter(uploadLimiter)
	catalogHandler := apihttp.NewCatalogHandler(logger, catalogSvc)
	router := apihttp.NewRouter(logger, recommendHandler, classifyHandler, catalogHandler, cfg.AssetsDir)

	// Precarga del catalogo; un error queda como diagnostico y no detiene el servidor.
	if err := catalogSvc.Diagnostic(ctx); err != nil {
		logger.Warn("starting with empty catalog", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("catalog_source", cfg.CatalogSource),
		zap.Int("flags", domain.NumFlags),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newBreedRepository elige la fuente del catalogo. Si Postgres no responde,
// el repositorio devuelve el error de conexion para que el catalogo quede
// vacio con diagnostico en lugar de abortar el proceso.
func newBreedRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.BreedRepository, func()) {
	if cfg.CatalogSource != config.CatalogSourcePostgres {
		return repository.NewFileBreedRepository(cfg.CatalogTraitsPath, cfg.CatalogBreedsPath), func() {}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err == nil {
		ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.Ping(ctxPing, pool)
		cancel()
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		logger.Error("db connect", zap.Error(err))
		connErr := fmt.Errorf("connect catalog database: %w", err)
		return repository.BreedRepositoryFunc(func(context.Context) ([]domain.BreedRecord, error) {
			return nil, connErr
		}), func() {}
	}
	return repository.NewPgBreedRepository(pool), pool.Close
}

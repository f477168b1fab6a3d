package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort            string        `env:"HTTP_PORT" envDefault:"8080"`
	CatalogSource       string        `env:"CATALOG_SOURCE" envDefault:"file"`
	CatalogTraitsPath   string        `env:"CATALOG_TRAITS_PATH" envDefault:"data/cat_traits.xlsx"`
	CatalogBreedsPath   string        `env:"CATALOG_BREEDS_PATH" envDefault:"data/cats.xlsx"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	AssetsDir           string        `env:"ASSETS_DIR" envDefault:"assets"`
	RecommendTopK       int           `env:"RECOMMEND_TOP_K" envDefault:"3"`
	ModelBaseURL        string        `env:"MODEL_BASE_URL"`
	ModelName           string        `env:"MODEL_NAME" envDefault:"12cat"`
	ModelLoadTimeout    time.Duration `env:"MODEL_LOAD_TIMEOUT" envDefault:"60s"`
	ModelPredictTimeout time.Duration `env:"MODEL_PREDICT_TIMEOUT" envDefault:"30s"`
	MaxUploadBytes      int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxImagePixels      int64         `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`
	RedisAddr           string        `env:"REDIS_ADDR"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`
	PredictionCacheTTL  time.Duration `env:"PREDICTION_CACHE_TTL" envDefault:"24h"`
	ClassifyRateLimit   int           `env:"CLASSIFY_RATE_LIMIT" envDefault:"30"`
	ClassifyRateWindow  time.Duration `env:"CLASSIFY_RATE_WINDOW" envDefault:"1m"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ModelHTTPTimeout es el tope del cliente HTTP del modelo: debe cubrir tanto
// la carga de metadata como cada prediccion.
func (c *Config) ModelHTTPTimeout() time.Duration {
	return max(c.ModelLoadTimeout, c.ModelPredictTimeout)
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	switch c.CatalogSource {
	case CatalogSourceFile:
		if c.CatalogTraitsPath == "" {
			return fmt.Errorf("CATALOG_TRAITS_PATH is required for file catalog")
		}
	case CatalogSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres catalog")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.RecommendTopK <= 0 {
		return fmt.Errorf("RECOMMEND_TOP_K must be positive")
	}
	if c.ClassifyRateLimit < 0 {
		return fmt.Errorf("CLASSIFY_RATE_LIMIT must not be negative")
	}
	return nil
}

package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "CATALOG_SOURCE", "CATALOG_TRAITS_PATH", "RECOMMEND_TOP_K", "MODEL_LOAD_TIMEOUT", "MODEL_PREDICT_TIMEOUT", "MAX_IMAGE_PIXELS", "PREDICTION_CACHE_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.RecommendTopK != 3 || cfg.CatalogSource != CatalogSourceFile {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxImagePixels != 40_000_000 {
		t.Fatalf("unexpected pixel limit default: %d", cfg.MaxImagePixels)
	}
	if cfg.ModelLoadTimeout != time.Minute || cfg.PredictionCacheTTL != 24*time.Hour {
		t.Fatalf("unexpected duration defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://cats@localhost/cats")
	t.Setenv("RECOMMEND_TOP_K", "5")
	t.Setenv("MODEL_PREDICT_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RecommendTopK != 5 || cfg.ModelPredictTimeout != 5*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"postgres sin url", Config{CatalogSource: CatalogSourcePostgres, RecommendTopK: 3}},
		{"fuente desconocida", Config{CatalogSource: "s3", RecommendTopK: 3}},
		{"archivo sin ruta", Config{CatalogSource: CatalogSourceFile, RecommendTopK: 3}},
		{"k invalido", Config{CatalogSource: CatalogSourceFile, CatalogTraitsPath: "t.csv"}},
		{"limite negativo", Config{CatalogSource: CatalogSourceFile, CatalogTraitsPath: "t.csv", RecommendTopK: 3, ClassifyRateLimit: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestModelHTTPTimeout(t *testing.T) {
	cfg := Config{ModelLoadTimeout: time.Minute, ModelPredictTimeout: 30 * time.Second}
	if got := cfg.ModelHTTPTimeout(); got != time.Minute {
		t.Fatalf("expected load timeout to bound the client, got %s", got)
	}
	cfg.ModelPredictTimeout = 2 * time.Minute
	if got := cfg.ModelHTTPTimeout(); got != 2*time.Minute {
		t.Fatalf("expected predict timeout to bound the client, got %s", got)
	}
}

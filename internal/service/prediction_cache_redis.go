package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"catmatch/internal/domain"
)

// PredictionCache guarda predicciones por contenido de imagen.
type PredictionCache interface {
	Get(ctx context.Context, key string) (domain.Prediction, bool, error)
	Set(ctx context.Context, key string, pred domain.Prediction) error
}

// PredictionCacheKey identifica una imagen por su hash BLAKE2b-256.
func PredictionCacheKey(image []byte) string {
	sum := blake2b.Sum256(image)
	return hex.EncodeToString(sum[:])
}

type redisPredictionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPredictionCache(client *redis.Client, ttl time.Duration) PredictionCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisPredictionCache{
		client: client,
		prefix: "classify:pred:",
		ttl:    ttl,
	}
}

func (c *redisPredictionCache) Get(ctx context.Context, key string) (domain.Prediction, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Prediction{}, false, nil
	}
	if err != nil {
		return domain.Prediction{}, false, err
	}
	var pred domain.Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return domain.Prediction{}, false, err
	}
	return pred, true, nil
}

func (c *redisPredictionCache) Set(ctx context.Context, key string, pred domain.Prediction) error {
	data, err := json.Marshal(pred)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}

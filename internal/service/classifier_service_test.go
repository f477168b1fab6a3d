package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"catmatch/internal/classifier"
	"catmatch/internal/domain"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// hugePNGHeader declara un PNG gris de w x h con solo firma e IHDR.
func hugePNGHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := append([]byte("IHDR"), make([]byte, 13)...)
	binary.BigEndian.PutUint32(chunk[4:], w)
	binary.BigEndian.PutUint32(chunk[8:], h)
	chunk[12] = 8
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

type countingLoader struct {
	model classifier.Model
	err   error
	calls int
}

func (l *countingLoader) Load(context.Context) (classifier.Model, error) {
	l.calls++
	return l.model, l.err
}

type memoryPredictionCache struct {
	items map[string]domain.Prediction
	sets  int
}

func (c *memoryPredictionCache) Get(_ context.Context, key string) (domain.Prediction, bool, error) {
	p, ok := c.items[key]
	return p, ok, nil
}

func (c *memoryPredictionCache) Set(_ context.Context, key string, pred domain.Prediction) error {
	c.items[key] = pred
	c.sets++
	return nil
}

func TestClassifierService_LazyLoadOnce(t *testing.T) {
	model := &classifier.MockModel{Prediction: domain.Prediction{Label: "Ragdoll", Probabilities: map[string]float64{"Ragdoll": 0.9}}}
	loader := &countingLoader{model: model}
	svc := NewClassifierService(loader, zap.NewNop(), ClassifierOptions{})

	if loader.calls != 0 {
		t.Fatalf("expected no load before first use")
	}
	for i := 0; i < 3; i++ {
		pred, err := svc.Classify(context.Background(), tinyPNG(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pred.Label != "Ragdoll" {
			t.Fatalf("unexpected label: %s", pred.Label)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected model to be loaded once, got %d", loader.calls)
	}
	if model.Calls != 3 {
		t.Fatalf("expected 3 predictions, got %d", model.Calls)
	}
}

func TestClassifierService_LoadFailureIsMemoized(t *testing.T) {
	loader := &countingLoader{err: errors.New("open 12cat_model.pkl: no such file")}
	svc := NewClassifierService(loader, zap.NewNop(), ClassifierOptions{})

	for i := 0; i < 2; i++ {
		if _, err := svc.Classify(context.Background(), tinyPNG(t)); !errors.Is(err, ErrClassifierUnavailable) {
			t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected a single load attempt, got %d", loader.calls)
	}
}

func TestClassifierService_InvalidImages(t *testing.T) {
	loader := &countingLoader{model: &classifier.MockModel{}}
	svc := NewClassifierService(loader, zap.NewNop(), ClassifierOptions{MaxImageBytes: 64})

	if _, err := svc.Classify(context.Background(), nil); !errors.Is(err, classifier.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for empty upload, got %v", err)
	}
	if _, err := svc.Classify(context.Background(), []byte("definitely not an image")); !errors.Is(err, classifier.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for garbage, got %v", err)
	}
	if _, err := svc.Classify(context.Background(), bytes.Repeat([]byte{0xff}, 65)); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if loader.calls != 0 {
		t.Fatalf("invalid uploads must not trigger a model load")
	}
}

func TestClassifierService_RejectsOversizedDimensions(t *testing.T) {
	t.Run("8000x8000 comprimida", func(t *testing.T) {
		model := &classifier.MockModel{Prediction: domain.Prediction{Label: "Bengal"}}
		loader := &countingLoader{model: model}
		raw := hugePNGHeader(8000, 8000)
		cache := &memoryPredictionCache{items: map[string]domain.Prediction{
			PredictionCacheKey(raw): {Label: "Bengal"},
		}}
		svc := NewClassifierService(loader, zap.NewNop(), ClassifierOptions{Cache: cache})

		if len(raw) > 100 {
			t.Fatalf("expected a tiny upload, got %d bytes", len(raw))
		}
		if _, err := svc.Classify(context.Background(), raw); !errors.Is(err, classifier.ErrInvalidImage) {
			t.Fatalf("expected ErrInvalidImage, got %v", err)
		}
		if loader.calls != 0 || model.Calls != 0 {
			t.Fatalf("oversized image must not reach the model, loads=%d predicts=%d", loader.calls, model.Calls)
		}
	})

	t.Run("limite configurado", func(t *testing.T) {
		loader := &countingLoader{model: &classifier.MockModel{}}
		svc := NewClassifierService(loader, zap.NewNop(), ClassifierOptions{MaxImagePixels: 10})
		if _, err := svc.Classify(context.Background(), tinyPNG(t)); !errors.Is(err, classifier.ErrInvalidImage) {
			t.Fatalf("expected 4x4 image over a 10 pixel limit to be rejected, got %v", err)
		}
		if loader.calls != 0 {
			t.Fatalf("expected no model load")
		}
	})
}

func TestClassifierService_ModelErrors(t *testing.T) {
	t.Run("modelo no disponible", func(t *testing.T) {
		model := &classifier.MockModel{Err: classifier.ErrModelUnavailable}
		svc := NewClassifierService(&countingLoader{model: model}, zap.NewNop(), ClassifierOptions{})
		if _, err := svc.Classify(context.Background(), tinyPNG(t)); !errors.Is(err, ErrClassifierUnavailable) {
			t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
		}
	})

	t.Run("sin loader", func(t *testing.T) {
		svc := NewClassifierService(nil, zap.NewNop(), ClassifierOptions{})
		if _, err := svc.Classify(context.Background(), tinyPNG(t)); !errors.Is(err, ErrClassifierUnavailable) {
			t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
		}
	})
}

func TestClassifierService_UsesCache(t *testing.T) {
	model := &classifier.MockModel{Prediction: domain.Prediction{Label: "Bengal"}}
	loader := &countingLoader{model: model}
	cache := &memoryPredictionCache{items: map[string]domain.Prediction{}}
	svc := NewClassifierService(loader, zap.NewNop(), ClassifierOptions{Cache: cache})

	img := tinyPNG(t)
	if _, err := svc.Classify(context.Background(), img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred, err := svc.Classify(context.Background(), img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Label != "Bengal" || model.Calls != 1 || cache.sets != 1 {
		t.Fatalf("expected second call served from cache, model calls=%d sets=%d", model.Calls, cache.sets)
	}
	if _, ok := cache.items[PredictionCacheKey(img)]; !ok {
		t.Fatalf("expected prediction stored under content key")
	}
}

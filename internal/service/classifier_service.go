package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"catmatch/internal/classifier"
	"catmatch/internal/domain"
	"catmatch/internal/metrics"
)

var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrImageTooLarge         = errors.New("image too large")
)

// DefaultMaxUploadBytes limita el tamano de las imagenes aceptadas.
const DefaultMaxUploadBytes int64 = 10 << 20

// ClassifierService carga el modelo en el primer uso y lo reutiliza durante
// todo el proceso. Si la carga falla, la clasificacion queda deshabilitada
// hasta reiniciar; las recomendaciones no se ven afectadas.
type ClassifierService struct {
	loader         classifier.Loader
	cache          PredictionCache
	logger         *zap.Logger
	loadTimeout    time.Duration
	predictTimeout time.Duration
	maxBytes       int64
	maxPixels      int64

	mu      sync.Mutex
	loaded  bool
	model   classifier.Model
	loadErr error
}

type ClassifierOptions struct {
	Cache          PredictionCache
	LoadTimeout    time.Duration
	PredictTimeout time.Duration
	MaxImageBytes  int64
	MaxImagePixels int64
}

func NewClassifierService(loader classifier.Loader, logger *zap.Logger, opts ClassifierOptions) *ClassifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = time.Minute
	}
	if opts.PredictTimeout <= 0 {
		opts.PredictTimeout = 30 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxUploadBytes
	}
	if opts.MaxImagePixels <= 0 {
		opts.MaxImagePixels = classifier.DefaultMaxImagePixels
	}
	return &ClassifierService{
		loader:         loader,
		cache:          opts.Cache,
		logger:         logger,
		loadTimeout:    opts.LoadTimeout,
		predictTimeout: opts.PredictTimeout,
		maxBytes:       opts.MaxImageBytes,
		maxPixels:      opts.MaxImagePixels,
	}
}

// MaxImageBytes expone el limite para que la capa HTTP lo aplique al leer.
func (s *ClassifierService) MaxImageBytes() int64 {
	return s.maxBytes
}

// Model devuelve el modelo, cargandolo si es el primer uso.
func (s *ClassifierService) Model(ctx context.Context) (classifier.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.model, s.loadErr
	}
	s.loaded = true

	if s.loader == nil {
		s.loadErr = fmt.Errorf("%w: no model configured", ErrClassifierUnavailable)
		metrics.ModelLoads.WithLabelValues("error").Inc()
		return nil, s.loadErr
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	defer cancel()

	start := time.Now()
	model, err := s.loader.Load(loadCtx)
	if err != nil {
		s.loadErr = fmt.Errorf("%w: load model: %v", ErrClassifierUnavailable, err)
		metrics.ModelLoads.WithLabelValues("error").Inc()
		s.logger.Error("classifier model load failed", zap.Error(err))
		return nil, s.loadErr
	}
	s.model = model
	metrics.ModelLoads.WithLabelValues("ok").Inc()
	s.logger.Info("classifier model ready", zap.Duration("elapsed", time.Since(start)))
	return s.model, nil
}

// Classify valida la imagen, consulta la cache y, si hace falta, carga el
// modelo y predice.
func (s *ClassifierService) Classify(ctx context.Context, image []byte) (domain.Prediction, error) {
	start := time.Now()
	defer func() { metrics.ClassificationDuration.Observe(time.Since(start).Seconds()) }()

	if len(image) == 0 {
		metrics.Classifications.WithLabelValues("invalid_image").Inc()
		return domain.Prediction{}, fmt.Errorf("%w: empty upload", classifier.ErrInvalidImage)
	}
	if int64(len(image)) > s.maxBytes {
		metrics.Classifications.WithLabelValues("invalid_image").Inc()
		return domain.Prediction{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(image), s.maxBytes)
	}
	cfg, _, err := classifier.DecodeConfig(image)
	if err != nil {
		metrics.Classifications.WithLabelValues("invalid_image").Inc()
		return domain.Prediction{}, err
	}
	// Las dimensiones se validan antes de cualquier decodificacion completa.
	if err := classifier.CheckDimensions(cfg, s.maxPixels); err != nil {
		metrics.Classifications.WithLabelValues("invalid_image").Inc()
		return domain.Prediction{}, err
	}

	key := PredictionCacheKey(image)
	if s.cache != nil {
		pred, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("prediction cache get failed", zap.Error(err))
		} else if ok {
			metrics.Classifications.WithLabelValues("cached").Inc()
			return pred, nil
		}
	}

	model, err := s.Model(ctx)
	if err != nil {
		metrics.Classifications.WithLabelValues("unavailable").Inc()
		return domain.Prediction{}, err
	}

	predictCtx, cancel := context.WithTimeout(ctx, s.predictTimeout)
	defer cancel()
	pred, err := model.Predict(predictCtx, image)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, classifier.ErrInvalidImage):
			outcome = "invalid_image"
		case errors.Is(err, classifier.ErrModelUnavailable):
			outcome = "unavailable"
			err = fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
		}
		metrics.Classifications.WithLabelValues(outcome).Inc()
		s.logger.Warn("classification failed", zap.Error(err))
		return domain.Prediction{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, pred); err != nil {
			s.logger.Warn("prediction cache set failed", zap.Error(err))
		}
	}
	metrics.Classifications.WithLabelValues("ok").Inc()
	s.logger.Info("image classified", zap.String("label", pred.Label))
	return pred, nil
}

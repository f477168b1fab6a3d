package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"catmatch/internal/domain"
	"catmatch/internal/metrics"
	"catmatch/internal/repository"
)

// CatalogProvider entrega el catalogo cacheado del proceso.
type CatalogProvider interface {
	Breeds(ctx context.Context) []domain.BreedRecord
	Diagnostic(ctx context.Context) error
}

// CatalogService carga el catalogo una sola vez, en el primer acceso, y lo
// mantiene en memoria como solo lectura. Si la carga falla el catalogo queda
// vacio y el error se expone como diagnostico.
type CatalogService struct {
	repo        repository.BreedRepository
	logger      *zap.Logger
	loadTimeout time.Duration

	mu     sync.Mutex
	loaded bool
	breeds []domain.BreedRecord
	diag   error
}

func NewCatalogService(repo repository.BreedRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:        repo,
		logger:      logger,
		loadTimeout: 30 * time.Second,
	}
}

// Breeds devuelve el catalogo. El slice es compartido y no debe modificarse.
func (s *CatalogService) Breeds(ctx context.Context) []domain.BreedRecord {
	s.ensureLoaded(ctx)
	return s.breeds
}

// Diagnostic devuelve el error de la carga, o nil si fue exitosa.
func (s *CatalogService) Diagnostic(ctx context.Context) error {
	s.ensureLoaded(ctx)
	return s.diag
}

func (s *CatalogService) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true

	// La carga queda memoizada para todo el proceso: no debe depender de la
	// cancelacion del request que la disparo.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	defer cancel()

	start := time.Now()
	breeds, err := s.repo.ListBreeds(loadCtx)
	if err != nil {
		s.diag = err
		s.breeds = []domain.BreedRecord{}
		metrics.CatalogLoadFailures.Inc()
		metrics.CatalogBreeds.Set(0)
		s.logger.Error("catalog load failed", zap.Error(err))
		return
	}
	if breeds == nil {
		breeds = []domain.BreedRecord{}
	}
	s.breeds = breeds
	metrics.CatalogBreeds.Set(float64(len(breeds)))
	s.logger.Info("catalog loaded",
		zap.Int("breeds", len(breeds)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

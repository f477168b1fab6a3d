package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"catmatch/internal/domain"
	"catmatch/internal/metrics"
)

// DefaultTopK es la cantidad de razas recomendadas si no se indica otra.
const DefaultTopK = 3

// ScoredBreed es una raza con su puntaje contra un perfil.
type ScoredBreed struct {
	Breed domain.BreedRecord
	Score int
}

// RankBreeds puntua cada raza por producto punto con el perfil, ordena de
// mayor a menor (los empates conservan el orden del catalogo) y devuelve las
// primeras k. No modifica el catalogo.
func RankBreeds(profile domain.UserProfile, catalog []domain.BreedRecord, k int) []ScoredBreed {
	if k <= 0 {
		k = DefaultTopK
	}
	scored := make([]ScoredBreed, len(catalog))
	for i, b := range catalog {
		scored[i] = ScoredBreed{Breed: b, Score: b.MatchScore(profile)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// RecommendationResult agrupa las recomendaciones y el diagnostico del catalogo.
type RecommendationResult struct {
	Recommendations []domain.Recommendation
	Diagnostic      string
}

// RecommendationService arma recomendaciones a partir del catalogo cacheado.
type RecommendationService struct {
	catalog CatalogProvider
	images  ImageLocator
	topK    int
	logger  *zap.Logger
}

func NewRecommendationService(catalog CatalogProvider, images ImageLocator, topK int, logger *zap.Logger) *RecommendationService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{
		catalog: catalog,
		images:  images,
		topK:    topK,
		logger:  logger,
	}
}

// Recommend ranquea el catalogo dado y resuelve la imagen de cada resultado.
// Una imagen faltante solo deja ImagePath en nil.
func (s *RecommendationService) Recommend(ctx context.Context, profile domain.UserProfile, catalog []domain.BreedRecord, k int) []domain.Recommendation {
	if k <= 0 {
		k = s.topK
	}
	ranked := RankBreeds(profile, catalog, k)

	out := make([]domain.Recommendation, 0, len(ranked))
	for _, r := range ranked {
		rec := domain.Recommendation{
			BreedName:   r.Breed.Name,
			Description: r.Breed.Description,
			MatchScore:  r.Score,
		}
		if s.images != nil {
			rec.ImagePath = s.images.Locate(r.Breed.Name)
		}
		if rec.ImagePath == nil {
			metrics.RecommendationImagesMissing.Inc()
			s.logger.Debug("breed image not found", zap.String("breed", r.Breed.Name))
		}
		out = append(out, rec)
	}
	return out
}

// RecommendForProfile usa el catalogo del proceso. Un catalogo vacio no es
// error: devuelve cero recomendaciones y, si la carga fallo, el diagnostico.
func (s *RecommendationService) RecommendForProfile(ctx context.Context, profile domain.UserProfile, k int) RecommendationResult {
	var result RecommendationResult
	if s.catalog == nil {
		result.Recommendations = []domain.Recommendation{}
		result.Diagnostic = "catalog not configured"
		metrics.RecommendationsServed.WithLabelValues("no_catalog").Inc()
		return result
	}

	if err := s.catalog.Diagnostic(ctx); err != nil {
		result.Diagnostic = "catalog unavailable: " + err.Error()
	}
	result.Recommendations = s.Recommend(ctx, profile, s.catalog.Breeds(ctx), k)

	outcome := "ok"
	if len(result.Recommendations) == 0 {
		outcome = "empty"
	}
	metrics.RecommendationsServed.WithLabelValues(outcome).Inc()
	s.logger.Info("recommendations computed",
		zap.Strings("selections", profile.Flags.Keys()),
		zap.Int("results", len(result.Recommendations)),
	)
	return result
}

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catmatch/internal/domain"
	"catmatch/internal/service"
)

const (
	imagesRoute = "/images"
	maxTopK     = 20
)

// RecommendationHandler expone el cuestionario y las recomendaciones.
type RecommendationHandler struct {
	logger      *zap.Logger
	recommender *service.RecommendationService
}

func NewRecommendationHandler(logger *zap.Logger, recommender *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		logger:      logger,
		recommender: recommender,
	}
}

type questionOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type question struct {
	Category string           `json:"category"`
	Label    string           `json:"label"`
	Options  []questionOption `json:"options"`
}

// GetQuestionnaire maneja GET /questionnaire.
func (h *RecommendationHandler) GetQuestionnaire(c *gin.Context) {
	questions := make([]question, 0, domain.NumCategories)
	for _, cat := range domain.AllCategories() {
		q := question{Category: cat.Key(), Label: cat.Label()}
		for _, f := range cat.Flags() {
			q.Options = append(q.Options, questionOption{Key: f.Key(), Label: f.Label()})
		}
		questions = append(questions, q)
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type recommendationItem struct {
	Breed       string  `json:"breed"`
	Description string  `json:"description"`
	MatchScore  int     `json:"match_score"`
	ImageURL    *string `json:"image_url"`
}

// PostRecommendations maneja POST /recommendations.
func (h *RecommendationHandler) PostRecommendations(c *gin.Context) {
	var req struct {
		Selections map[string]string `json:"selections" binding:"required"`
		K          int               `json:"k"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid recommendation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.K < 0 || req.K > maxTopK {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("k must be between 0 and %d (0 uses the default)", maxTopK)})
		return
	}

	selections, err := domain.ParseSelections(req.Selections)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := domain.NewUserProfile(selections)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.recommender.RecommendForProfile(c.Request.Context(), profile, req.K)

	items := make([]recommendationItem, 0, len(result.Recommendations))
	for _, r := range result.Recommendations {
		items = append(items, recommendationItem{
			Breed:       r.BreedName,
			Description: r.Description,
			MatchScore:  r.MatchScore,
			ImageURL:    imageURL(r.ImagePath),
		})
	}

	resp := gin.H{"recommendations": items}
	if result.Diagnostic != "" {
		resp["diagnostic"] = result.Diagnostic
	}
	c.JSON(http.StatusOK, resp)
}

func imageURL(path *string) *string {
	if path == nil {
		return nil
	}
	u := imagesRoute + "/" + url.PathEscape(filepath.Base(*path))
	return &u
}

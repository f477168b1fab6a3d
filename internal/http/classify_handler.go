package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catmatch/internal/classifier"
	"catmatch/internal/metrics"
	"catmatch/internal/service"
)

// ClassifyHandler recibe imagenes y devuelve la raza identificada.
type ClassifyHandler struct {
	logger     *zap.Logger
	classifier *service.ClassifierService
	limiter    service.UploadRateLimiter
}

func NewClassifyHandler(logger *zap.Logger, classifier *service.ClassifierService) *ClassifyHandler {
	return &ClassifyHandler{
		logger:     logger,
		classifier: classifier,
	}
}

// WithRateLimiter limita las subidas por IP de cliente; nil desactiva el limite.
func (h *ClassifyHandler) WithRateLimiter(limiter service.UploadRateLimiter) *ClassifyHandler {
	h.limiter = limiter
	return h
}

// Classify maneja POST /classify (multipart, campo "image").
func (h *ClassifyHandler) Classify(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		metrics.Classifications.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many uploads, try again later"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if file.Size > h.classifier.MaxImageBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.logger.Warn("open upload failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, h.classifier.MaxImageBytes()+1))
	if err != nil {
		h.logger.Warn("read upload failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}

	pred, err := h.classifier.Classify(c.Request.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		case errors.Is(err, classifier.ErrInvalidImage):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid image", "diagnostic": err.Error()})
		case errors.Is(err, service.ErrClassifierUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier unavailable", "diagnostic": err.Error()})
		default:
			h.logger.Error("classification failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "classification failed", "diagnostic": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"label":         pred.Label,
		"probabilities": pred.Probabilities,
		"labels":        pred.Labels,
	})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catmatch_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationImagesMissing = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catmatch_recommendation_images_missing_total",
			Help: "Recommended breeds without an image asset",
		},
	)

	CatalogBreeds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catmatch_catalog_breeds",
			Help: "Number of breeds in the loaded catalog",
		},
	)

	CatalogLoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catmatch_catalog_load_failures_total",
			Help: "Catalog loads that ended with an empty catalog",
		},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catmatch_classifications_total",
			Help: "Total number of classification requests by outcome",
		},
		[]string{"outcome"},
	)

	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catmatch_classification_duration_seconds",
			Help:    "Duration of classification requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catmatch_model_loads_total",
			Help: "Classifier model load attempts by outcome",
		},
		[]string{"outcome"},
	)
)

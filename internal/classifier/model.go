package classifier

import (
	"context"
	"errors"
	"math"

	"catmatch/internal/domain"
)

var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrModelUnavailable = errors.New("model unavailable")
)

// Model clasifica una imagen y devuelve la etiqueta mas probable.
type Model interface {
	Predict(ctx context.Context, image []byte) (domain.Prediction, error)
}

// Loader carga el modelo. Es costoso y puede fallar; el llamador decide cuando.
type Loader interface {
	Load(ctx context.Context) (Model, error)
}

// LoaderFunc adapta una funcion a Loader.
type LoaderFunc func(ctx context.Context) (Model, error)

func (f LoaderFunc) Load(ctx context.Context) (Model, error) { return f(ctx) }

// BuildPrediction arma la prediccion a partir de probabilidades alineadas con labels.
// La etiqueta ganadora es la primera con probabilidad maxima.
func BuildPrediction(labels []string, probs []float64) (domain.Prediction, error) {
	if len(labels) == 0 {
		return domain.Prediction{}, errors.New("model has no labels")
	}
	if len(probs) != len(labels) {
		return domain.Prediction{}, errors.New("probabilities do not match labels")
	}

	pred := domain.Prediction{
		Probabilities: make(map[string]float64, len(labels)),
		Labels:        append([]string(nil), labels...),
	}
	best := -1.0
	for i, label := range labels {
		p := probs[i]
		switch {
		case math.IsNaN(p) || p < 0:
			p = 0
		case p > 1:
			p = 1
		}
		pred.Probabilities[label] = p
		if p > best {
			best = p
			pred.Label = label
		}
	}
	return pred, nil
}

package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"catmatch/internal/domain"
)

// HTTPLoader carga un modelo servido por un servidor de inferencia HTTP.
type HTTPLoader struct {
	baseURL string
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// NewHTTPLoader construye el loader; no hace llamadas de red.
func NewHTTPLoader(baseURL, name string, timeout time.Duration, logger *zap.Logger) *HTTPLoader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
		client:  &http.Client{Timeout: timeout},
		breaker: NewCircuitBreaker("classifier:"+name, 5, 30*time.Second, logger),
		logger:  logger,
	}
}

type modelMetadata struct {
	Name      string   `json:"name"`
	Labels    []string `json:"labels"`
	InputSize int      `json:"input_size"`
	Ready     bool     `json:"ready"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// Load consulta la metadata del modelo y verifica que este listo.
func (l *HTTPLoader) Load(ctx context.Context) (Model, error) {
	if l.baseURL == "" {
		return nil, fmt.Errorf("%w: model base url not configured", ErrModelUnavailable)
	}

	body, err := l.do(ctx, http.MethodGet, l.modelURL(""), nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetch model metadata: %w", err)
	}

	var meta modelMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal model metadata: %w", err)
	}
	if !meta.Ready {
		return nil, fmt.Errorf("%w: model %s not ready", ErrModelUnavailable, l.name)
	}
	if len(meta.Labels) == 0 {
		return nil, fmt.Errorf("%w: model %s has no labels", ErrModelUnavailable, l.name)
	}

	l.logger.Info("classifier model loaded",
		zap.String("model", l.name),
		zap.Int("labels", len(meta.Labels)),
		zap.Int("input_size", meta.InputSize),
	)

	return &HTTPModel{loader: l, labels: meta.Labels, inputSize: meta.InputSize}, nil
}

func (l *HTTPLoader) modelURL(suffix string) string {
	return l.baseURL + "/v1/models/" + url.PathEscape(l.name) + suffix
}

// do ejecuta la llamada protegida por el circuit breaker. Los 4xx no cuentan
// como fallas del servidor.
func (l *HTTPLoader) do(ctx context.Context, method, target string, payload []byte, contentType string) ([]byte, error) {
	var clientErr error
	body, err := l.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 500 {
			l.logger.Warn("classifier server error", zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(respBody, 256)))
			return nil, fmt.Errorf("inference http error: status=%d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			clientErr = fmt.Errorf("inference http error: status=%d", resp.StatusCode)
			if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest {
				clientErr = fmt.Errorf("%w: rejected by model server (status=%d)", ErrInvalidImage, resp.StatusCode)
			}
			return nil, nil
		}
		return respBody, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return body, nil
}

// HTTPModel es un modelo ya cargado; conserva el vocabulario de etiquetas.
type HTTPModel struct {
	loader    *HTTPLoader
	labels    []string
	inputSize int
}

func (m *HTTPModel) Labels() []string {
	return append([]string(nil), m.labels...)
}

func (m *HTTPModel) Predict(ctx context.Context, image []byte) (domain.Prediction, error) {
	input, err := Preprocess(image, m.inputSize)
	if err != nil {
		return domain.Prediction{}, err
	}

	body, err := m.loader.do(ctx, http.MethodPost, m.loader.modelURL(":predict"), input, "image/png")
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict: %w", err)
	}

	var pr predictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return domain.Prediction{}, fmt.Errorf("unmarshal prediction: %w", err)
	}
	if pr.Error != "" {
		return domain.Prediction{}, fmt.Errorf("inference api error: %s", pr.Error)
	}
	return BuildPrediction(m.labels, pr.Probabilities)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

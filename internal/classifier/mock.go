package classifier

import (
	"context"

	"catmatch/internal/domain"
)

// MockModel permite tests sin servidor de inferencia.
type MockModel struct {
	Prediction domain.Prediction
	Err        error
	Calls      int
}

func (m *MockModel) Predict(ctx context.Context, image []byte) (domain.Prediction, error) {
	m.Calls++
	return m.Prediction, m.Err
}

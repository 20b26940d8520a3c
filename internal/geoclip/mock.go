package geoclip

import (
	"context"

	"github.com/geolens/geolens/internal/domain"
)

// MockClient is a configurable retrieval client for testing.
type MockClient struct {
	Guesses []domain.GeoGuess
	Err     error

	// Call tracking for assertions
	Calls int
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) EmbedAndRetrieve(ctx context.Context, image []byte, topK int) ([]domain.GeoGuess, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if topK > 0 && len(m.Guesses) > topK {
		return m.Guesses[:topK], nil
	}
	return m.Guesses, nil
}

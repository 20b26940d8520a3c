package vlm

import (
	"context"

	"github.com/geolens/geolens/internal/domain"
)

// MockClient is a configurable vision client for testing.
type MockClient struct {
	Response *domain.PerceptionResult
	Err      error

	// Call tracking for assertions
	Calls int
}

func NewMockClient() *MockClient {
	return &MockClient{
		Response: &domain.PerceptionResult{},
	}
}

func (m *MockClient) AnalyzeImage(ctx context.Context, image []byte, instructions string) (*domain.PerceptionResult, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

package llm

import (
	"context"

	"github.com/geolens/geolens/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	HypothesizeResponse []domain.Hypothesis
	HypothesizeErr      error
	ReasonResponse      string
	ReasonErr           error

	// Call tracking for assertions
	HypothesizeCalls []domain.HypothesisRequest
	ReasonCalls      []domain.ReasonRequest
}

func NewMockClient() *MockClient {
	return &MockClient{
		ReasonResponse: "Mock reasoning",
	}
}

func (m *MockClient) Hypothesize(ctx context.Context, req domain.HypothesisRequest) ([]domain.Hypothesis, error) {
	m.HypothesizeCalls = append(m.HypothesizeCalls, req)
	if m.HypothesizeErr != nil {
		return nil, m.HypothesizeErr
	}
	return m.HypothesizeResponse, nil
}

func (m *MockClient) HolisticReason(ctx context.Context, req domain.ReasonRequest) (string, error) {
	m.ReasonCalls = append(m.ReasonCalls, req)
	if m.ReasonErr != nil {
		return "", m.ReasonErr
	}
	return m.ReasonResponse, nil
}

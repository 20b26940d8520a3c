// Package geoclip talks to a GeoCLIP-style inference service that embeds an
// image and compares it against a precomputed geographic grid, returning
// ranked coordinate/score pairs.
package geoclip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/geolens/geolens/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client is the remote inference-service client. The service owns both the
// image encoder and the geographic index; one call does embed + retrieve.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

func NewClient(baseURL string, cache *Cache) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      cache,
	}
}

type predictRequest struct {
	Image string `json:"image"`
	TopK  int    `json:"top_k"`
}

type predictResponse struct {
	Predictions []domain.GeoGuess `json:"predictions"`
	Error       string            `json:"error,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// EmbedAndRetrieve returns the top-K grid cells for the image, best first.
// Results are cached by image content hash; identical input is deterministic.
func (c *Client) EmbedAndRetrieve(ctx context.Context, image []byte, topK int) ([]domain.GeoGuess, error) {
	if topK <= 0 {
		topK = 5
	}

	if c.cache != nil {
		if guesses, ok := c.cache.GetGuesses(image, topK); ok {
			return guesses, nil
		}
	}

	var result predictResponse
	if err := c.post(ctx, "/v1/predict", predictRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		TopK:  topK,
	}, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%w: geoclip service error: %s", domain.ErrCollaboratorUnavailable, result.Error)
	}

	for i, g := range result.Predictions {
		if g.Lat < -90 || g.Lat > 90 || g.Lon < -180 || g.Lon > 180 {
			return nil, fmt.Errorf("%w: prediction %d has invalid coordinates (%f, %f)",
				domain.ErrValidation, i, g.Lat, g.Lon)
		}
	}

	if c.cache != nil {
		c.cache.SetGuesses(image, topK, result.Predictions)
	}
	return result.Predictions, nil
}

// Embed returns the raw image embedding, used by the local pgvector
// retrieval path.
func (c *Client) Embed(ctx context.Context, image []byte) ([]float32, error) {
	if c.cache != nil {
		if vec, ok := c.cache.GetEmbedding(image); ok {
			return vec, nil
		}
	}

	var result embedResponse
	if err := c.post(ctx, "/v1/embed", predictRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	}, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%w: geoclip service error: %s", domain.ErrCollaboratorUnavailable, result.Error)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: geoclip service returned empty embedding", domain.ErrParse)
	}

	if c.cache != nil {
		c.cache.SetEmbedding(image, result.Embedding)
	}
	return result.Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal geoclip request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create geoclip request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", domain.ErrCollaboratorTimeout, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read geoclip response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: geoclip service returned status %d: %s",
			domain.ErrCollaboratorUnavailable, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: unmarshal geoclip response: %v", domain.ErrParse, err)
	}
	return nil
}

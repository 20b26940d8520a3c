package geoclip

import (
	"context"
	"fmt"

	"github.com/geolens/geolens/internal/domain"
)

// Provider constants
const (
	ProviderRemote = "remote"
	ProviderIndex  = "index"
	ProviderMock   = "mock"
)

// Embedder produces an image embedding. The remote Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// CellSearcher finds the nearest grid cells for an embedding. The pgvector
// cell index satisfies it.
type CellSearcher interface {
	NearestCells(ctx context.Context, embedding []float32, granularity string, topK int) ([]domain.GeoGuess, error)
}

// IndexRetriever is the local retrieval path: embed remotely, then search
// the shared read-only pgvector grid.
type IndexRetriever struct {
	embedder    Embedder
	index       CellSearcher
	granularity string
}

func NewIndexRetriever(embedder Embedder, index CellSearcher, granularity string) *IndexRetriever {
	return &IndexRetriever{
		embedder:    embedder,
		index:       index,
		granularity: granularity,
	}
}

func (r *IndexRetriever) EmbedAndRetrieve(ctx context.Context, image []byte, topK int) ([]domain.GeoGuess, error) {
	embedding, err := r.embedder.Embed(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("index retrieval: %w", err)
	}
	return r.index.NearestCells(ctx, embedding, r.granularity, topK)
}

// NewRetrievalClient creates a retrieval client based on the provider name.
// The index provider additionally needs a cell searcher; pass nil to force
// the remote path.
func NewRetrievalClient(provider, baseURL string, cache *Cache, index CellSearcher) (domain.RetrievalClient, error) {
	switch provider {
	case ProviderRemote:
		if baseURL == "" {
			return nil, fmt.Errorf("GEOCLIP_URL is required for remote retrieval provider")
		}
		return NewClient(baseURL, cache), nil

	case ProviderIndex:
		if baseURL == "" {
			return nil, fmt.Errorf("GEOCLIP_URL is required for index retrieval provider (embedding service)")
		}
		if index == nil {
			return nil, fmt.Errorf("DATABASE_URL is required for index retrieval provider (cell index)")
		}
		return NewIndexRetriever(NewClient(baseURL, cache), index, ""), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown retrieval provider: %s (valid options: remote, index, mock)", provider)
	}
}

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/geolens/geolens/internal/domain"
)

// Granularity levels of the geographic grid. The fine grid hedges for
// street-level answers; coarser levels hedge against a wrong fine-grained
// hypothesis.
const (
	GranularityCell    = "cell"
	GranularityCity    = "city"
	GranularityCountry = "country"
)

// CellIndex is the precomputed geographic grid: one row per cell with the
// centroid coordinates and a reference embedding. The index is read-only at
// runtime and safely shared across runs.
type CellIndex struct {
	db *pgxpool.Pool
}

func NewCellIndex(db *pgxpool.Pool) *CellIndex {
	return &CellIndex{db: db}
}

// NearestCells returns the top-K cells by cosine similarity to the image
// embedding at the given granularity.
func (s *CellIndex) NearestCells(ctx context.Context, embedding []float32, granularity string, topK int) ([]domain.GeoGuess, error) {
	if topK <= 0 {
		topK = 5
	}
	if granularity == "" {
		granularity = GranularityCell
	}

	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT lat, lon, 1 - (embedding <=> $1) AS score
		 FROM geo_cells
		 WHERE granularity = $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, granularity, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest cells query: %w", err)
	}
	defer rows.Close()

	var guesses []domain.GeoGuess
	for rows.Next() {
		var g domain.GeoGuess
		if err := rows.Scan(&g.Lat, &g.Lon, &g.Score); err != nil {
			return nil, fmt.Errorf("scan cell row: %w", err)
		}
		guesses = append(guesses, g)
	}
	return guesses, rows.Err()
}

// CountCells reports how many cells exist at a granularity, used by the
// health endpoint to confirm the index is loaded.
func (s *CellIndex) CountCells(ctx context.Context, granularity string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM geo_cells WHERE granularity = $1`, granularity,
	).Scan(&n)
	return n, err
}

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geolens/geolens/internal/domain"
)

// RunStore persists one result document per run.
type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Save(ctx context.Context, state *domain.RunState) error {
	doc, err := state.MarshalDocument()
	if err != nil {
		return err
	}

	var confidence float32
	if state.Prediction != nil {
		confidence = state.Prediction.Confidence
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO runs (id, image_ref, confidence, document, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET confidence = $3, document = $4`,
		state.ID, state.ImageRef, confidence, doc, state.CreatedAt,
	)
	return err
}

func (s *RunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RunState, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT document FROM runs WHERE id = $1`, id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return domain.UnmarshalDocument(doc)
}

// ListRecent returns the most recent run documents, newest first.
func (s *RunStore) ListRecent(ctx context.Context, limit int) ([]*domain.RunState, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx,
		`SELECT document FROM runs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RunState
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		state, err := domain.UnmarshalDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, rows.Err()
}

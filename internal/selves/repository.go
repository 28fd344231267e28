package selves

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, in *NewAlternateSelf) (*AlternateSelf, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, in *NewAlternateSelf) (*AlternateSelf, error) {
	query := `
		INSERT INTO alternate_selves (user_id, axis, divergence_summary, backstory, shared_traits, different_traits)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, axis, divergence_summary, backstory, shared_traits, different_traits, created_at`

	row := &AlternateSelf{}
	err := r.pool.QueryRow(ctx, query,
		in.UserID, in.Axis, in.DivergenceSummary, in.Backstory,
		in.SharedTraits, in.DifferentTraits,
	).Scan(
		&row.ID, &row.UserID, &row.Axis, &row.DivergenceSummary, &row.Backstory,
		&row.SharedTraits, &row.DifferentTraits, &row.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting alternate self: %w", err)
	}
	return row, nil
}

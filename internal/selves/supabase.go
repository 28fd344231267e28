package selves

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"github.com/lokah-app/lokah/internal/config"
)

const table = "alternate_selves"

// supabaseRepository writes through PostgREST with the service-role key, for
// deployments that only expose the Supabase API.
type supabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(cfg config.SupabaseConfig) (Repository, error) {
	if cfg.URL == "" || cfg.ServiceRoleKey == "" {
		return nil, errors.New("supabase URL and service role key are required")
	}
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &supabaseRepository{client: client}, nil
}

func (r *supabaseRepository) Create(_ context.Context, in *NewAlternateSelf) (*AlternateSelf, error) {
	var rows []AlternateSelf
	// supabase-go's query builder takes no context; the HTTP server's write
	// timeout bounds this call instead.
	_, err := r.client.From(table).
		Insert(in, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("inserting alternate self: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("inserting alternate self: no row returned")
	}
	return &rows[0], nil
}

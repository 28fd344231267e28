package selves

import (
	"time"

	"github.com/google/uuid"

	"github.com/lokah-app/lokah/internal/prompt"
)

// AlternateSelf is a persisted alternate_selves row.
type AlternateSelf struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Axis              string    `json:"axis"`
	DivergenceSummary string    `json:"divergence_summary"`
	Backstory         string    `json:"backstory"`
	SharedTraits      []string  `json:"shared_traits"`
	DifferentTraits   []string  `json:"different_traits"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewAlternateSelf is the insert payload; id and created_at are assigned by
// the database.
type NewAlternateSelf struct {
	UserID            uuid.UUID `json:"user_id"`
	Axis              string    `json:"axis"`
	DivergenceSummary string    `json:"divergence_summary"`
	Backstory         string    `json:"backstory"`
	SharedTraits      []string  `json:"shared_traits"`
	DifferentTraits   []string  `json:"different_traits"`
}

type GenerateRequest struct {
	UserID   string         `json:"userId" validate:"required,uuid"`
	Axis     string         `json:"axis" validate:"required,max=100"`
	UserData prompt.Profile `json:"userData"`
}

// generated is the object the model is asked to produce.
type generated struct {
	DivergenceSummary string   `json:"divergence_summary"`
	Backstory         string   `json:"backstory"`
	SharedTraits      []string `json:"shared_traits"`
	DifferentTraits   []string `json:"different_traits"`
}

package selves

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	inats "github.com/lokah-app/lokah/internal/nats"
	"github.com/lokah-app/lokah/internal/pipeline"
	"github.com/lokah-app/lokah/internal/prompt"
)

var (
	// ErrUserMismatch is returned when an authenticated caller asks for a
	// persona on someone else's behalf.
	ErrUserMismatch = errors.New("userId does not match the authenticated user")
	ErrEmptyPersona = errors.New("model returned no usable alternate self")
)

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

type EventPublisher interface {
	PublishAlternateSelfCreated(ctx context.Context, event inats.AlternateSelfCreated) error
}

type Service struct {
	runner Runner
	repo   Repository
	events EventPublisher
}

func NewService(runner Runner, repo Repository, events EventPublisher) *Service {
	return &Service{runner: runner, repo: repo, events: events}
}

// Generate asks the model for an alternate life along req.Axis and persists
// it. authUserID is empty when auth is disabled.
func (s *Service) Generate(ctx context.Context, authUserID string, req *GenerateRequest) (*AlternateSelf, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("parsing user id: %w", err)
	}
	if authUserID != "" && authUserID != userID.String() {
		return nil, ErrUserMismatch
	}

	out, err := s.runner.Run(ctx, pipeline.Request{
		Task:     prompt.TaskGeneratePersona,
		Messages: prompt.PersonaMessages(req.Axis, req.UserData),
	})
	if err != nil {
		return nil, fmt.Errorf("generating alternate self: %w", err)
	}

	var g generated
	if err := json.Unmarshal(out.Value, &g); err != nil {
		return nil, fmt.Errorf("decoding alternate self: %w", err)
	}
	if strings.TrimSpace(g.Backstory) == "" {
		return nil, ErrEmptyPersona
	}
	if !out.Parsed {
		slog.Warn("alternate self stored from unstructured output", "user_id", userID, "axis", req.Axis)
	}

	row, err := s.repo.Create(ctx, &NewAlternateSelf{
		UserID:            userID,
		Axis:              req.Axis,
		DivergenceSummary: orDefault(g.DivergenceSummary, fmt.Sprintf("A life where the %s path went differently.", req.Axis)),
		Backstory:         g.Backstory,
		SharedTraits:      nonNil(g.SharedTraits),
		DifferentTraits:   nonNil(g.DifferentTraits),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created alternate self", "id", row.ID, "user_id", userID, "axis", req.Axis)
	s.publish(ctx, row, out.Parsed)
	return row, nil
}

func (s *Service) publish(ctx context.Context, row *AlternateSelf, structured bool) {
	if s.events == nil {
		return
	}
	err := s.events.PublishAlternateSelfCreated(ctx, inats.AlternateSelfCreated{
		AlternateSelfID: row.ID.String(),
		UserID:          row.UserID.String(),
		Axis:            row.Axis,
		Structured:      structured,
		Timestamp:       time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing alternate self event", "id", row.ID, "error", err)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

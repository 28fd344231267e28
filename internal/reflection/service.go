package reflection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	inats "github.com/lokah-app/lokah/internal/nats"
	"github.com/lokah-app/lokah/internal/pipeline"
	"github.com/lokah-app/lokah/internal/prompt"
	"github.com/lokah-app/lokah/internal/reply"
)

const defaultTone = "reflective"

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

type EventPublisher interface {
	PublishReflectionGenerated(ctx context.Context, event inats.ReflectionGenerated) error
}

type Service struct {
	runner Runner
	events EventPublisher
}

// NewService accepts a nil publisher when NATS is not configured.
func NewService(runner Runner, events EventPublisher) *Service {
	return &Service{runner: runner, events: events}
}

func (s *Service) Generate(ctx context.Context, userID string, req *Request) (*Reflection, error) {
	data := req.AlternateSelfData
	c := prompt.Assemble(prompt.Input{
		RequesterID: userID,
		Persona: prompt.Persona{
			Axis:              data.Axis,
			DivergenceSummary: data.DivergenceSummary,
			Backstory:         data.Backstory,
		},
		History: req.Messages,
		Task:    prompt.TaskGenerateReflection,
	})

	out, err := s.runner.Run(ctx, pipeline.Request{
		Task:     prompt.TaskGenerateReflection,
		Messages: prompt.ReflectionMessages(c),
	})
	if err != nil {
		return nil, fmt.Errorf("generating reflection: %w", err)
	}

	var refl Reflection
	if err := json.Unmarshal(out.Value, &refl); err != nil {
		return nil, fmt.Errorf("decoding reflection: %w", err)
	}
	if refl.Title == "" {
		refl.Title = reply.DefaultReflectionTitle
	}
	if refl.Insights == nil {
		refl.Insights = []string{}
	}
	if refl.EmotionalTone == "" {
		refl.EmotionalTone = defaultTone
	}

	s.publish(ctx, userID, data.Axis, &refl, out.Parsed)
	return &refl, nil
}

func (s *Service) publish(ctx context.Context, userID, axis string, refl *Reflection, structured bool) {
	if s.events == nil {
		return
	}
	err := s.events.PublishReflectionGenerated(ctx, inats.ReflectionGenerated{
		UserID:        userID,
		Axis:          axis,
		EmotionalTone: refl.EmotionalTone,
		InsightCount:  len(refl.Insights),
		Structured:    structured,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing reflection event", "error", err)
	}
}

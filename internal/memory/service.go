package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/lokah-app/lokah/internal/pipeline"
	"github.com/lokah-app/lokah/internal/prompt"
)

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// Service extracts memories. Extraction is optional for the chat flow, so
// every failure degrades to "no memory" instead of an error.
type Service struct {
	runner Runner
}

func NewService(runner Runner) *Service {
	return &Service{runner: runner}
}

func (s *Service) Extract(ctx context.Context, messageContent string) *Memory {
	if strings.TrimSpace(messageContent) == "" {
		return nil
	}

	out, err := s.runner.Run(ctx, pipeline.Request{
		Task:     prompt.TaskExtractMemory,
		Messages: prompt.MemoryMessages(messageContent),
	})
	if err != nil {
		slog.Warn("memory extraction failed", "error", err)
		return nil
	}
	if !out.Parsed {
		return nil
	}

	var e extracted
	if err := json.Unmarshal(out.Value, &e); err != nil {
		slog.Warn("decoding extracted memory", "error", err)
		return nil
	}
	if e.Content == nil || strings.TrimSpace(*e.Content) == "" {
		return nil
	}

	m := &Memory{Content: *e.Content}
	if e.EmotionalTone != nil && *e.EmotionalTone != "" {
		m.EmotionalTone = e.EmotionalTone
	}
	return m
}

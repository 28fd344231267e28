package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lokah-app/lokah/internal/pipeline"
	"github.com/lokah-app/lokah/internal/prompt"
)

// Runner is the part of the pipeline the feature services need.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

type Service struct {
	runner Runner
}

func NewService(runner Runner) *Service {
	return &Service{runner: runner}
}

// Reply produces the next turn of the parallel self. userID overrides the
// conversation id as the blob's user id when the caller is authenticated.
func (s *Service) Reply(ctx context.Context, userID string, req *Request) (*Response, error) {
	requester := req.ConversationID
	if userID != "" {
		requester = userID
	}

	c := prompt.Assemble(prompt.Input{
		RequesterID:   requester,
		RequesterName: req.UserName,
		Persona:       req.AlternateSelf.persona(),
		History:       req.Messages,
		Task:          prompt.TaskChatTurn,
		Mode:          req.Mode,
	})

	out, err := s.runner.Run(ctx, pipeline.Request{
		Task:     prompt.TaskChatTurn,
		Mode:     c.Mode,
		Messages: prompt.ChatMessages(c),
	})
	if err != nil {
		return nil, fmt.Errorf("chat turn: %w", err)
	}

	slog.Debug("generated reply",
		"conversation_id", req.ConversationID,
		"mode", c.Mode,
		"attempts", out.Attempts,
		"parsed", out.Parsed,
	)
	return &Response{Reply: out.Text, Structured: out.Value}, nil
}

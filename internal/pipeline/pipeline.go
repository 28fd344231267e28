package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/lokah-app/lokah/internal/gateway"
	"github.com/lokah-app/lokah/internal/metrics"
	"github.com/lokah-app/lokah/internal/prompt"
	"github.com/lokah-app/lokah/internal/reply"
)

// RepairInstruction is appended to the system prompt of the repair call.
const RepairInstruction = "\nAlways output a valid JSON object following the required schema."

// Gateway is the single outbound call the pipeline depends on.
type Gateway interface {
	Complete(ctx context.Context, req gateway.Request) (string, error)
}

type Request struct {
	Task     prompt.TaskKind
	Mode     prompt.Mode
	Messages []gateway.Message
}

type Outcome struct {
	Text     string
	Value    json.RawMessage
	Parsed   bool
	Repaired bool
	Attempts int
}

type Pipeline struct {
	gateway    Gateway
	normalizer *reply.Normalizer
}

func New(gw Gateway, normalizer *reply.Normalizer) *Pipeline {
	return &Pipeline{gateway: gw, normalizer: normalizer}
}

// Run invokes the gateway once and normalizes the output. Tasks with a repair
// path get at most one more call when the first output does not validate.
// Only the first call's error is returned; a failed repair call falls back to
// the first output.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	gwReq := gateway.Request{
		Task:     string(req.Task),
		Messages: req.Messages,
		Params:   ParamsFor(req.Task, req.Mode),
	}

	raw, err := p.gateway.Complete(ctx, gwReq)
	if err != nil {
		return Outcome{Attempts: 1}, err
	}

	res, parseErr := p.normalizer.Parse(req.Task, raw)
	if parseErr == nil {
		return p.finish(req.Task, res, false, 1), nil
	}

	if !HasRepairPath(req.Task) {
		slog.Warn("model output rejected, using fallback", "task", req.Task, "error", parseErr)
		return p.finish(req.Task, p.normalizer.Fallback(req.Task, raw), false, 1), nil
	}

	slog.Warn("model output rejected, issuing repair call", "task", req.Task, "error", parseErr)
	gwReq.Messages = withRepairInstruction(req.Messages)

	retryRaw, err := p.gateway.Complete(ctx, gwReq)
	if err != nil {
		slog.Warn("repair call failed, using fallback", "task", req.Task, "error", err)
		return p.finish(req.Task, p.normalizer.Fallback(req.Task, raw), false, 2), nil
	}

	res, parseErr = p.normalizer.Parse(req.Task, retryRaw)
	if parseErr == nil {
		return p.finish(req.Task, res, true, 2), nil
	}

	slog.Warn("repair output rejected, using fallback", "task", req.Task, "error", parseErr)
	if strings.TrimSpace(retryRaw) == "" {
		retryRaw = raw
	}
	return p.finish(req.Task, p.normalizer.Fallback(req.Task, retryRaw), false, 2), nil
}

func (p *Pipeline) finish(task prompt.TaskKind, res reply.Result, repaired bool, attempts int) Outcome {
	result := "parsed"
	switch {
	case repaired:
		result = "repaired"
	case !res.Parsed:
		result = "fallback"
	}
	metrics.RepliesNormalizedTotal.WithLabelValues(string(task), result).Inc()

	return Outcome{
		Text:     res.Text,
		Value:    res.Value,
		Parsed:   res.Parsed,
		Repaired: repaired,
		Attempts: attempts,
	}
}

// withRepairInstruction returns a copy of msgs whose first system message
// carries RepairInstruction.
func withRepairInstruction(msgs []gateway.Message) []gateway.Message {
	out := make([]gateway.Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	for i := range out {
		if out[i].Role == gateway.RoleSystem {
			out[i].Content += RepairInstruction
			return out
		}
	}
	return append([]gateway.Message{{Role: gateway.RoleSystem, Content: strings.TrimPrefix(RepairInstruction, "\n")}}, out...)
}

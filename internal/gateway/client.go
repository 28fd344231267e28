package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/lokah-app/lokah/internal/config"
	"github.com/lokah-app/lokah/internal/metrics"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Params are the sampling parameters of one call. Zero TopP and penalties are
// left to the provider default.
type Params struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	JSONMode         bool
}

type Request struct {
	Task     string
	Messages []Message
	Params   Params
}

// Client issues chat-completion calls against an OpenAI-compatible gateway.
// It never retries on its own; the pipeline owns the single repair call.
type Client struct {
	api   openai.Client
	model shared.ChatModel
}

func New(cfg config.GatewayConfig, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		api:   openai.NewClient(append(base, opts...)...),
		model: shared.ChatModel(cfg.Model),
	}
}

// Complete performs exactly one request and returns the first choice's text.
// Failures are returned as *Error.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, c.buildParams(req))
	metrics.GatewayCallDuration.WithLabelValues(req.Task).Observe(time.Since(start).Seconds())

	if err != nil {
		gwErr := classify(err)
		metrics.GatewayCallsTotal.WithLabelValues(req.Task, string(gwErr.Category)).Inc()
		slog.Error("gateway call failed",
			"task", req.Task,
			"category", gwErr.Category,
			"status", gwErr.HTTPStatus,
			"error", err,
		)
		return "", gwErr
	}

	metrics.GatewayCallsTotal.WithLabelValues(req.Task, "ok").Inc()
	if len(resp.Choices) == 0 {
		slog.Warn("gateway returned no choices", "task", req.Task)
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) buildParams(req Request) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	p := req.Params
	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    msgs,
		Temperature: openai.Float(ClampTemperature(p.Temperature)),
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.MaxTokens))
	}
	if p.TopP > 0 {
		params.TopP = openai.Float(p.TopP)
	}
	if p.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(p.PresencePenalty)
	}
	if p.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(p.FrequencyPenalty)
	}
	if p.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

// ClampTemperature keeps t inside [0, 1].
func ClampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func classify(err error) *Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return newStatusError(apiErr.StatusCode, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newNetworkError(err)
	}
	return newUpstreamError(err)
}

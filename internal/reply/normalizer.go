package reply

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/lokah-app/lokah/internal/prompt"
)

// ErrInvalidOutput wraps every reason Parse rejects a model output.
var ErrInvalidOutput = errors.New("invalid model output")

var fencePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```"),
	regexp.MustCompile("(?s)```\\s*(.*?)\\s*```"),
}

type taskSpec struct {
	schema       string
	textPaths    []string
	unwrapFences bool
	fallback     func(raw string) (text string, value any)
}

var specs = map[prompt.TaskKind]taskSpec{
	prompt.TaskChatTurn: {
		schema:    chatSchema,
		textPaths: []string{"reply_text", "replyText"},
		fallback:  chatFallback,
	},
	prompt.TaskExtractMemory: {
		schema:    memorySchema,
		textPaths: []string{"content"},
		fallback:  memoryFallback,
	},
	prompt.TaskGenerateReflection: {
		schema:    reflectionSchema,
		textPaths: []string{"title"},
		fallback:  reflectionFallback,
	},
	prompt.TaskGeneratePersona: {
		schema:       personaSchema,
		textPaths:    []string{"backstory"},
		unwrapFences: true,
		fallback:     personaFallback,
	},
}

// Normalizer turns raw model text into a structured value for a task. It is
// safe for concurrent use.
type Normalizer struct {
	schemas map[prompt.TaskKind]*gojsonschema.Schema
}

func NewNormalizer() (*Normalizer, error) {
	n := &Normalizer{schemas: make(map[prompt.TaskKind]*gojsonschema.Schema, len(specs))}
	for kind, spec := range specs {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(spec.schema))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", kind, err)
		}
		n.schemas[kind] = schema
	}
	return n, nil
}

// Parse accepts raw only if it is a JSON object satisfying the task schema.
func (n *Normalizer) Parse(kind prompt.TaskKind, raw string) (Result, error) {
	spec, ok := specs[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown task %q", ErrInvalidOutput, kind)
	}

	body := strings.TrimSpace(raw)
	if spec.unwrapFences {
		body = unwrapFences(body)
	}
	if !gjson.Valid(body) {
		return Result{}, fmt.Errorf("%w: not JSON", ErrInvalidOutput)
	}
	if !gjson.Parse(body).IsObject() {
		return Result{}, fmt.Errorf("%w: not a JSON object", ErrInvalidOutput)
	}

	res, err := n.schemas[kind].Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidOutput, strings.Join(msgs, "; "))
	}

	return Result{
		Text:   primaryText(body, spec.textPaths),
		Value:  json.RawMessage(body),
		Parsed: true,
	}, nil
}

// Fallback builds the deterministic minimal object for kind from raw text.
func (n *Normalizer) Fallback(kind prompt.TaskKind, raw string) Result {
	spec, ok := specs[kind]
	if !ok {
		spec = specs[prompt.TaskChatTurn]
	}
	text, value := spec.fallback(strings.TrimSpace(raw))
	// Fallback values are plain structs and maps of strings.
	b, _ := json.Marshal(value)
	return Result{Text: text, Value: b}
}

// Normalize never fails: it returns Parse's result or the Fallback.
func (n *Normalizer) Normalize(kind prompt.TaskKind, raw string) Result {
	if res, err := n.Parse(kind, raw); err == nil {
		return res
	}
	return n.Fallback(kind, raw)
}

// primaryText returns the first non-blank string found at paths.
func primaryText(body string, paths []string) string {
	for _, p := range paths {
		if v := gjson.Get(body, p); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return v.Str
		}
	}
	return ""
}

func unwrapFences(s string) string {
	for _, re := range fencePatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return s
}

func chatFallback(raw string) (string, any) {
	text := raw
	if text == "" {
		text = DefaultReplyText
	}
	return text, StructuredReply{
		ReplyText:         text,
		ToneTags:          []string{"friendly"},
		ActionSuggestions: []string{},
		MemoryCandidates:  []string{},
		Safety:            Safety{Status: SafetyOK},
	}
}

// A memory that did not come back structured is not worth saving.
func memoryFallback(string) (string, any) {
	return "", map[string]any{"content": nil, "emotional_tone": nil}
}

func reflectionFallback(raw string) (string, any) {
	insights := []string{}
	if raw != "" {
		insights = append(insights, raw)
	}
	return DefaultReflectionTitle, map[string]any{
		"title":          DefaultReflectionTitle,
		"insights":       insights,
		"emotional_tone": "reflective",
	}
}

func personaFallback(raw string) (string, any) {
	backstory := unwrapFences(raw)
	return backstory, map[string]any{
		"divergence_summary": "",
		"backstory":          backstory,
		"shared_traits":      []string{},
		"different_traits":   []string{},
	}
}

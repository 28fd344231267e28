package prompt

import (
	"encoding/json"
	"strings"
	"time"
)

// MaxTurns bounds how many conversation turns reach the model.
const MaxTurns = 10

// ReplayTurns is how many of the windowed turns are replayed as chat messages
// after the context blob.
const ReplayTurns = 5

type TaskKind string

const (
	TaskChatTurn           TaskKind = "chat_turn"
	TaskExtractMemory      TaskKind = "extract_memory"
	TaskGenerateReflection TaskKind = "generate_reflection"
	TaskGeneratePersona    TaskKind = "generate_persona"
)

// blobTask is the task vocabulary used inside the system prompt.
func (k TaskKind) blobTask() string {
	switch k {
	case TaskExtractMemory:
		return "extract_memories"
	case TaskGenerateReflection:
		return "reflection_summary"
	case TaskGeneratePersona:
		return "generate_parallel_self"
	default:
		return string(TaskChatTurn)
	}
}

type Mode string

const (
	ModeExploratory Mode = "exploratory"
	ModeTherapy     Mode = "therapy"
	ModeConcise     Mode = "concise"
)

// ParseMode maps caller input to a Mode. Anything unrecognised is exploratory.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTherapy:
		return ModeTherapy
	case ModeConcise:
		return ModeConcise
	default:
		return ModeExploratory
	}
}

// InboundMessage is a history entry as sent by the web client.
type InboundMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Turn is a windowed history entry. Timestamp is nil when the client sent none
// or sent something unparseable.
type Turn struct {
	Role      string     `json:"role"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp"`
}

// Persona is the alternate self the model roleplays.
type Persona struct {
	ID                string   `json:"id"`
	Axis              string   `json:"axis"`
	DivergenceSummary string   `json:"divergence_summary"`
	Backstory         string   `json:"backstory"`
	CoreTraits        []string `json:"core_traits"`
}

type Input struct {
	RequesterID   string
	RequesterName string
	Persona       Persona
	History       []InboundMessage
	Task          TaskKind
	Mode          string
}

// ConversationContext is the bounded view of a request handed to the model.
type ConversationContext struct {
	RequesterID   string
	RequesterName string
	Persona       Persona
	RecentTurns   []Turn
	Task          TaskKind
	Mode          Mode
}

// Assemble never fails. Turns with roles other than user and assistant are
// dropped before the window is applied.
func Assemble(in Input) ConversationContext {
	turns := make([]Turn, 0, len(in.History))
	for _, m := range in.History {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		turns = append(turns, Turn{
			Role:      role,
			Text:      m.Content,
			Timestamp: parseTimestamp(m.Timestamp),
		})
	}
	if len(turns) > MaxTurns {
		turns = append([]Turn(nil), turns[len(turns)-MaxTurns:]...)
	}

	persona := in.Persona
	if persona.CoreTraits == nil {
		persona.CoreTraits = []string{}
	}

	task := in.Task
	if task == "" {
		task = TaskChatTurn
	}

	return ConversationContext{
		RequesterID:   in.RequesterID,
		RequesterName: in.RequesterName,
		Persona:       persona,
		RecentTurns:   turns,
		Task:          task,
		Mode:          ParseMode(in.Mode),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	time.DateTime,
}

func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

type blobUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type blobAxes struct {
	Career        *string `json:"career"`
	Location      *string `json:"location"`
	Relationships *string `json:"relationships"`
	Education     *string `json:"education"`
	Values        *string `json:"values"`
	Axis          *string `json:"axis"`
}

type blobParallelSelf struct {
	ID                string   `json:"id"`
	DivergenceAxes    blobAxes `json:"divergence_axes"`
	DivergenceSummary string   `json:"divergence_summary,omitempty"`
	Backstory         string   `json:"backstory"`
	CoreTraits        []string `json:"core_traits"`
	MemorySnippets    []string `json:"memory_snippets"`
	EmotionProfile    []string `json:"emotion_profile"`
}

type blobSafety struct {
	ContentSensitivity string `json:"content_sensitivity"`
	AllowDataUsage     bool   `json:"allow_data_usage"`
}

type blob struct {
	User                blobUser         `json:"user"`
	Profile             map[string]any   `json:"profile"`
	ParallelSelf        blobParallelSelf `json:"parallel_self"`
	ConversationHistory []Turn           `json:"conversation_history"`
	Task                string           `json:"task"`
	SafetyFlags         blobSafety       `json:"safety_flags"`
}

// Blob renders the context object the system prompt tells the model to expect.
func (c ConversationContext) Blob() string {
	var axis *string
	if c.Persona.Axis != "" {
		axis = &c.Persona.Axis
	}
	history := c.RecentTurns
	if history == nil {
		history = []Turn{}
	}
	traits := c.Persona.CoreTraits
	if traits == nil {
		traits = []string{}
	}

	b := blob{
		User: blobUser{
			ID:   orDefault(c.RequesterID, "unknown"),
			Name: orDefault(c.RequesterName, "Friend"),
		},
		Profile: map[string]any{},
		ParallelSelf: blobParallelSelf{
			ID:                orDefault(c.Persona.ID, "alt"),
			DivergenceAxes:    blobAxes{Axis: axis},
			DivergenceSummary: c.Persona.DivergenceSummary,
			Backstory:         c.Persona.Backstory,
			CoreTraits:        traits,
			MemorySnippets:    []string{},
			EmotionProfile:    []string{},
		},
		ConversationHistory: history,
		Task:                c.Task.blobTask(),
		SafetyFlags:         blobSafety{ContentSensitivity: "direct", AllowDataUsage: true},
	}

	// Only plain structs, strings and times: marshalling cannot fail.
	out, _ := json.MarshalIndent(b, "", "  ")
	return string(out)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

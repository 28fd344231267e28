package chat

import (
	"encoding/json"

	"github.com/lokah-app/lokah/internal/prompt"
)

// AlternateSelf is the persona record the web client sends with each turn.
type AlternateSelf struct {
	ID                string   `json:"id"`
	Axis              string   `json:"axis"`
	DivergenceSummary string   `json:"divergence_summary"`
	Backstory         string   `json:"backstory"`
	SharedTraits      []string `json:"shared_traits"`
	DifferentTraits   []string `json:"different_traits"`
}

func (a *AlternateSelf) persona() prompt.Persona {
	if a == nil {
		return prompt.Persona{}
	}
	traits := make([]string, 0, len(a.SharedTraits)+len(a.DifferentTraits))
	traits = append(traits, a.SharedTraits...)
	traits = append(traits, a.DifferentTraits...)
	return prompt.Persona{
		ID:                a.ID,
		Axis:              a.Axis,
		DivergenceSummary: a.DivergenceSummary,
		Backstory:         a.Backstory,
		CoreTraits:        traits,
	}
}

type Request struct {
	ConversationID string                  `json:"conversationId" validate:"max=128"`
	Messages       []prompt.InboundMessage `json:"messages" validate:"required,min=1"`
	AlternateSelf  *AlternateSelf          `json:"alternateSelf"`
	UserName       string                  `json:"userName" validate:"max=200"`
	Mode           string                  `json:"mode"`
}

// Response carries the reply text and the full structured object it came
// from.
type Response struct {
	Reply      string          `json:"reply"`
	Structured json.RawMessage `json:"structured"`
}

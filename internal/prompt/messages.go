package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lokah-app/lokah/internal/gateway"
)

const memoryPrompt = `You extract memories. Read the message and decide whether it holds a meaningful quote or emotional moment worth keeping.

If it does, return:
- content: the exact memorable line, one to three sentences
- emotional_tone: one word such as nostalgic, hopeful, melancholic, curious or profound

If the message is mundane, return null for both fields.

Respond with JSON only:
{"content": "string or null", "emotional_tone": "string or null"}`

const reflectionPromptTmpl = `You write reflections on a conversation between someone and their alternate self from a parallel reality.

About the alternate self:
- Divergence axis: %s
- Different life path: %s
- Backstory: %s

Produce:
1. A poetic title of five to eight words
2. Three insights, each about what the conversation reveals of the user's real life, values or unchosen paths
3. One word for the emotional tone (reflective, hopeful, nostalgic, curious...)

Respond with JSON only:
{"title": "string", "insights": ["string", "string", "string"], "emotional_tone": "string"}`

const personaWriterPrompt = "You write alternate reality life stories. Respond with valid JSON only."

const personaPromptTmpl = `Create an alternate version of %s from another timeline. Think, talk and feel like a real human version of them, not a narrator.

Keep it conversational and introspective, like catching up with an old friend. Use contractions and real emotion. Two to six sentences of backstory, no dramatic monologues, no essay phrasing.

What we know about the real person:
- Core values: %s
- Major choices: %s
- Unchosen path: %s

Imagine their life if one major decision had gone differently on the %s axis. Write in the first person as that alternate self and cover:
1. How the divergence happened
2. Their career, home and relationships now
3. One real success and one honest regret
4. How they see the world today

Respond with JSON only:
{
  "divergence_summary": "...",
  "backstory": "...",
  "shared_traits": ["...", "...", "..."],
  "different_traits": ["...", "...", "..."]
}`

// Profile is what the onboarding flow collected about the real user.
type Profile struct {
	Name         string   `json:"name"`
	Values       []string `json:"values"`
	MajorChoices []string `json:"major_choices"`
	UnchosenPath string   `json:"unchosen_path"`
}

// ChatMessages builds the chat_turn conversation: persona prompt, context blob,
// then the last ReplayTurns turns verbatim.
func ChatMessages(c ConversationContext) []gateway.Message {
	msgs := []gateway.Message{
		{Role: gateway.RoleSystem, Content: SystemPrompt},
		{Role: gateway.RoleUser, Content: "Context:\n" + c.Blob()},
	}

	replay := c.RecentTurns
	if len(replay) > ReplayTurns {
		replay = replay[len(replay)-ReplayTurns:]
	}
	for _, t := range replay {
		msgs = append(msgs, gateway.Message{Role: gateway.Role(t.Role), Content: t.Text})
	}
	return msgs
}

func MemoryMessages(messageContent string) []gateway.Message {
	return []gateway.Message{
		{Role: gateway.RoleSystem, Content: SystemPrompt},
		{Role: gateway.RoleSystem, Content: memoryPrompt},
		{Role: gateway.RoleUser, Content: "Extract memory from: " + messageContent},
	}
}

func ReflectionMessages(c ConversationContext) []gateway.Message {
	p := c.Persona
	return []gateway.Message{
		{Role: gateway.RoleSystem, Content: SystemPrompt},
		{Role: gateway.RoleSystem, Content: fmt.Sprintf(reflectionPromptTmpl, p.Axis, p.DivergenceSummary, p.Backstory)},
		{Role: gateway.RoleUser, Content: "Context:\n" + c.Blob() + "\n\nAnalyze this conversation and generate a reflection JSON."},
	}
}

func PersonaMessages(axis string, profile Profile) []gateway.Message {
	task, _ := json.Marshal(struct {
		Task string  `json:"task"`
		Axis string  `json:"axis"`
		User Profile `json:"user"`
	}{TaskGeneratePersona.blobTask(), axis, profile})

	name := orDefault(profile.Name, "the user")
	return []gateway.Message{
		{Role: gateway.RoleSystem, Content: SystemPrompt},
		{Role: gateway.RoleSystem, Content: personaWriterPrompt},
		{Role: gateway.RoleUser, Content: string(task)},
		{Role: gateway.RoleUser, Content: fmt.Sprintf(personaPromptTmpl,
			name,
			joinOrNone(profile.Values),
			joinOrNone(profile.MajorChoices),
			orDefault(profile.UnchosenPath, "not specified"),
			axis,
		)},
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "not specified"
	}
	return strings.Join(items, ", ")
}

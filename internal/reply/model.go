package reply

import "encoding/json"

// DefaultReplyText stands in for an empty model reply.
const DefaultReplyText = "I'm here with you. Tell me a little more about what's on your mind?"

// DefaultReflectionTitle titles a reflection the model failed to structure.
const DefaultReflectionTitle = "A conversation across timelines"

type SafetyStatus string

const (
	SafetyOK        SafetyStatus = "ok"
	SafetySensitive SafetyStatus = "sensitive"
	SafetyRefuse    SafetyStatus = "refuse"
)

type Safety struct {
	Status SafetyStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

// StructuredReply is the chat_turn object. Only the fallback path builds one
// in Go; parsed model output is passed through as-is.
type StructuredReply struct {
	ReplyText         string   `json:"reply_text"`
	ToneTags          []string `json:"tone_tags"`
	ActionSuggestions []string `json:"action_suggestions"`
	MemoryCandidates  []string `json:"memory_candidates"`
	Safety            Safety   `json:"safety"`
}

// Result is what the normalizer hands back for every model output.
type Result struct {
	// Text is the primary human-readable field (reply_text for chat).
	Text string
	// Value is the structured object, byte-for-byte what the model sent when
	// Parsed is true.
	Value json.RawMessage
	// Parsed is false when Value was built by Fallback.
	Parsed bool
}

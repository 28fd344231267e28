package nats

import "time"

// StreamEvents holds every domain event; consumers filter by subject.
const StreamEvents = "LOKAH_EVENTS"

const (
	SubjectAlternateSelfCreated = "lokah.events.alternate_self.created"
	SubjectReflectionGenerated  = "lokah.events.reflection.generated"
)

// AlternateSelfCreated is published after a generated persona is persisted.
type AlternateSelfCreated struct {
	AlternateSelfID string    `json:"alternate_self_id"`
	UserID          string    `json:"user_id"`
	Axis            string    `json:"axis"`
	Structured      bool      `json:"structured"`
	Timestamp       time.Time `json:"timestamp"`
}

// ReflectionGenerated carries no reflection text; the client owns persistence.
type ReflectionGenerated struct {
	UserID        string    `json:"user_id,omitempty"`
	Axis          string    `json:"axis"`
	EmotionalTone string    `json:"emotional_tone"`
	InsightCount  int       `json:"insight_count"`
	Structured    bool      `json:"structured"`
	Timestamp     time.Time `json:"timestamp"`
}

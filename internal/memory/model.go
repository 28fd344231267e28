package memory

type Request struct {
	MessageContent string `json:"messageContent"`
}

// Memory is a quote or moment worth keeping from a single message.
type Memory struct {
	Content       string  `json:"content"`
	EmotionalTone *string `json:"emotional_tone"`
}

// Response always carries the memory key; null means nothing to keep.
type Response struct {
	Memory *Memory `json:"memory"`
}

type extracted struct {
	Content       *string `json:"content"`
	EmotionalTone *string `json:"emotional_tone"`
}

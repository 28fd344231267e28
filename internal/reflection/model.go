package reflection

import "github.com/lokah-app/lokah/internal/prompt"

type AlternateSelfData struct {
	Axis              string `json:"axis" validate:"required,max=100"`
	DivergenceSummary string `json:"divergence_summary"`
	Backstory         string `json:"backstory"`
}

type Request struct {
	Messages          []prompt.InboundMessage `json:"messages" validate:"required"`
	AlternateSelfData *AlternateSelfData      `json:"alternateSelfData" validate:"required"`
}

type Reflection struct {
	Title         string   `json:"title"`
	Insights      []string `json:"insights"`
	EmotionalTone string   `json:"emotional_tone"`
}

type Response struct {
	Reflection Reflection `json:"reflection"`
}

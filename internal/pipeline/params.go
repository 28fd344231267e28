package pipeline

import (
	"github.com/lokah-app/lokah/internal/gateway"
	"github.com/lokah-app/lokah/internal/prompt"
)

type taskConfig struct {
	params gateway.Params
	// repair enables the single JSON repair call after an unparseable reply.
	repair bool
}

var tasks = map[prompt.TaskKind]taskConfig{
	prompt.TaskChatTurn: {
		params: gateway.Params{
			Temperature:      0.7,
			MaxTokens:        800,
			TopP:             1,
			PresencePenalty:  0.3,
			FrequencyPenalty: 0.3,
		},
		repair: true,
	},
	prompt.TaskExtractMemory: {
		params: gateway.Params{Temperature: 0.35, MaxTokens: 250, JSONMode: true},
	},
	prompt.TaskGenerateReflection: {
		params: gateway.Params{Temperature: 0.4, MaxTokens: 300, JSONMode: true},
	},
	prompt.TaskGeneratePersona: {
		params: gateway.Params{Temperature: 0.6, MaxTokens: 900},
	},
}

var chatTemperature = map[prompt.Mode]float64{
	prompt.ModeExploratory: 0.7,
	prompt.ModeTherapy:     0.4,
	prompt.ModeConcise:     0.3,
}

// ParamsFor returns the fixed sampling parameters of a task. Mode only
// affects chat_turn temperature.
func ParamsFor(task prompt.TaskKind, mode prompt.Mode) gateway.Params {
	cfg, ok := tasks[task]
	if !ok {
		cfg = tasks[prompt.TaskChatTurn]
	}
	p := cfg.params
	if task == prompt.TaskChatTurn {
		if t, ok := chatTemperature[mode]; ok {
			p.Temperature = t
		}
	}
	return p
}

// HasRepairPath reports whether task gets a second call when its first reply
// fails to parse.
func HasRepairPath(task prompt.TaskKind) bool {
	return tasks[task].repair
}

package reply

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokah-app/lokah/internal/prompt"
)

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer()
	require.NoError(t, err)
	return n
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestParse_ValidChatObjectPassesThroughUnchanged(t *testing.T) {
	n := newNormalizer(t)
	raw := `{"reply_text":"hey!","tone_tags":["friendly"]}`

	res, err := n.Parse(prompt.TaskChatTurn, raw)
	require.NoError(t, err)
	assert.True(t, res.Parsed)
	assert.Equal(t, "hey!", res.Text)
	assert.JSONEq(t, raw, string(res.Value))
}

func TestParse_CamelCaseReplyText(t *testing.T) {
	n := newNormalizer(t)
	res, err := n.Parse(prompt.TaskChatTurn, `{"replyText":"hello there"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello there", res.Text)
}

func TestParse_KeepsUnknownFields(t *testing.T) {
	n := newNormalizer(t)
	raw := `{"reply_text":"hi","meta":[{"used_profile_fields":"career"}]}`
	res, err := n.Parse(prompt.TaskChatTurn, raw)
	require.NoError(t, err)
	assert.Contains(t, decode(t, res.Value), "meta")
}

func TestParse_Rejections(t *testing.T) {
	n := newNormalizer(t)
	tests := []struct {
		name string
		raw  string
	}{
		{"plain text", "just a plain sentence"},
		{"empty", ""},
		{"array", `["reply_text"]`},
		{"string", `"hey"`},
		{"missing reply_text", `{"tone_tags":["warm"]}`},
		{"empty reply_text", `{"reply_text":""}`},
		{"reply_text wrong type", `{"reply_text":42}`},
		{"too many suggestions", `{"reply_text":"hi","action_suggestions":["a","b","c","d"]}`},
		{"unknown safety status", `{"reply_text":"hi","safety":{"status":"maybe"}}`},
		{"memory candidate too long", `{"reply_text":"hi","memory_candidates":["` + strings.Repeat("word ", 21) + `"]}`},
		{"truncated", `{"reply_text":"hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Parse(prompt.TaskChatTurn, tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOutput))
		})
	}
}

func TestParse_MemoryCandidateAtLimit(t *testing.T) {
	n := newNormalizer(t)
	twenty := strings.TrimSpace(strings.Repeat("word ", 20))
	_, err := n.Parse(prompt.TaskChatTurn, `{"reply_text":"hi","memory_candidates":["`+twenty+`"]}`)
	assert.NoError(t, err)
}

func TestNormalize_PlainTextFallsBack(t *testing.T) {
	n := newNormalizer(t)
	res := n.Normalize(prompt.TaskChatTurn, "just a plain sentence")

	assert.False(t, res.Parsed)
	assert.Equal(t, "just a plain sentence", res.Text)

	v := decode(t, res.Value)
	assert.Equal(t, "just a plain sentence", v["reply_text"])
	assert.Equal(t, []any{"friendly"}, v["tone_tags"])
	assert.Equal(t, []any{}, v["action_suggestions"])
	assert.Equal(t, []any{}, v["memory_candidates"])
	assert.Equal(t, map[string]any{"status": "ok"}, v["safety"])
}

func TestNormalize_EmptyRawGetsDefaultReply(t *testing.T) {
	n := newNormalizer(t)
	for _, raw := range []string{"", "   \n"} {
		res := n.Normalize(prompt.TaskChatTurn, raw)
		assert.Equal(t, DefaultReplyText, res.Text)
		assert.Equal(t, DefaultReplyText, decode(t, res.Value)["reply_text"])
	}
}

func TestNormalize_ReplyTextNeverEmpty(t *testing.T) {
	n := newNormalizer(t)
	inputs := []string{"", "{}", "null", "[]", `{"reply_text":""}`, `{"reply_text":"   "}`, `{"replyText":"\n\t"}`, "ok", `{"reply_text":"x"}`}
	for _, raw := range inputs {
		res := n.Normalize(prompt.TaskChatTurn, raw)
		assert.NotEmpty(t, strings.TrimSpace(res.Text), "raw=%q", raw)
	}
}

func TestParse_BlankReplyTextRejected(t *testing.T) {
	n := newNormalizer(t)

	for _, raw := range []string{`{"reply_text":"   "}`, `{"replyText":"\n\t"}`} {
		_, err := n.Parse(prompt.TaskChatTurn, raw)
		assert.ErrorIs(t, err, ErrInvalidOutput, "raw=%q", raw)
	}

	res, err := n.Parse(prompt.TaskChatTurn, `{"reply_text":"  ","replyText":"still here"}`)
	require.NoError(t, err)
	assert.Equal(t, "still here", res.Text)
}

func TestNormalize_Memory(t *testing.T) {
	n := newNormalizer(t)

	res := n.Normalize(prompt.TaskExtractMemory, `{"content":"I still hum that song","emotional_tone":"nostalgic"}`)
	assert.True(t, res.Parsed)
	assert.Equal(t, "I still hum that song", res.Text)

	res = n.Normalize(prompt.TaskExtractMemory, `{"content":null,"emotional_tone":null}`)
	assert.True(t, res.Parsed)
	assert.Empty(t, res.Text)

	res = n.Normalize(prompt.TaskExtractMemory, "nothing memorable here")
	assert.False(t, res.Parsed)
	assert.Empty(t, res.Text)
	v := decode(t, res.Value)
	assert.Nil(t, v["content"])
	assert.Nil(t, v["emotional_tone"])
}

func TestNormalize_Reflection(t *testing.T) {
	n := newNormalizer(t)

	raw := `{"title":"Roads that fork in quiet rain","insights":["a","b","c"],"emotional_tone":"hopeful"}`
	res := n.Normalize(prompt.TaskGenerateReflection, raw)
	assert.True(t, res.Parsed)
	assert.Equal(t, "Roads that fork in quiet rain", res.Text)

	res = n.Normalize(prompt.TaskGenerateReflection, "You value stability.")
	assert.False(t, res.Parsed)
	v := decode(t, res.Value)
	assert.Equal(t, DefaultReflectionTitle, v["title"])
	assert.Equal(t, []any{"You value stability."}, v["insights"])
	assert.Equal(t, "reflective", v["emotional_tone"])
}

func TestParse_PersonaUnwrapsFences(t *testing.T) {
	n := newNormalizer(t)
	raw := "Here you go:\n```json\n{\"divergence_summary\":\"became a pilot\",\"backstory\":\"I fly.\",\"shared_traits\":[\"kind\"],\"different_traits\":[\"bold\"]}\n```"

	res, err := n.Parse(prompt.TaskGeneratePersona, raw)
	require.NoError(t, err)
	assert.Equal(t, "I fly.", res.Text)
	assert.Equal(t, "became a pilot", decode(t, res.Value)["divergence_summary"])

	res, err = n.Parse(prompt.TaskGeneratePersona, "```\n{\"backstory\":\"plain fence\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "plain fence", res.Text)
}

func TestParse_ChatDoesNotUnwrapFences(t *testing.T) {
	n := newNormalizer(t)
	_, err := n.Parse(prompt.TaskChatTurn, "```json\n{\"reply_text\":\"hi\"}\n```")
	assert.Error(t, err)
}

func TestNormalize_PersonaFallback(t *testing.T) {
	n := newNormalizer(t)
	res := n.Normalize(prompt.TaskGeneratePersona, "I ended up in Oslo teaching kids to ski.")
	assert.False(t, res.Parsed)
	v := decode(t, res.Value)
	assert.Equal(t, "I ended up in Oslo teaching kids to ski.", v["backstory"])
	assert.Equal(t, []any{}, v["shared_traits"])
}

func TestParse_UnknownTask(t *testing.T) {
	n := newNormalizer(t)
	_, err := n.Parse(prompt.TaskKind("poem"), `{"reply_text":"x"}`)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

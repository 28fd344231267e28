package reply

const chatSchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["reply_text"], "properties": {"reply_text": {"type": "string", "pattern": "\\S"}}},
    {"required": ["replyText"], "properties": {"replyText": {"type": "string", "pattern": "\\S"}}}
  ],
  "properties": {
    "tone_tags": {"type": "array", "items": {"type": "string"}},
    "action_suggestions": {"type": "array", "maxItems": 3, "items": {"type": "string"}},
    "memory_candidates": {
      "type": "array",
      "maxItems": 3,
      "items": {"type": "string", "pattern": "^\\s*(\\S+\\s+){0,19}\\S*\\s*$"}
    },
    "safety": {
      "type": "object",
      "required": ["status"],
      "properties": {
        "status": {"enum": ["ok", "sensitive", "refuse"]},
        "reason": {"type": "string"}
      }
    }
  }
}`

const memorySchema = `{
  "type": "object",
  "properties": {
    "content": {"type": ["string", "null"]},
    "emotional_tone": {"type": ["string", "null"]}
  }
}`

const reflectionSchema = `{
  "type": "object",
  "required": ["title", "insights"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "insights": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "emotional_tone": {"type": "string"}
  }
}`

const personaSchema = `{
  "type": "object",
  "required": ["backstory"],
  "properties": {
    "divergence_summary": {"type": "string"},
    "backstory": {"type": "string", "minLength": 1},
    "shared_traits": {"type": "array", "items": {"type": "string"}},
    "different_traits": {"type": "array", "items": {"type": "string"}}
  }
}`

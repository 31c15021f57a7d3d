package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject pulls the outermost {...} span out of free text and
// returns it if it decodes as a JSON object. A second attempt replaces raw
// newlines and tabs with spaces, which models often leave inside strings.
func ExtractJSONObject(text string) ([]byte, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	span := text[start : end+1]
	if isObject(span) {
		return []byte(span), true
	}
	flat := strings.NewReplacer("\n", " ", "\t", " ").Replace(span)
	if isObject(flat) {
		return []byte(flat), true
	}
	return nil, false
}

func isObject(s string) bool {
	var m map[string]any
	return json.Unmarshal([]byte(s), &m) == nil
}

// StripCodeFence removes a surrounding ```json ... ``` fence.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

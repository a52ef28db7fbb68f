package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONArray finds the first substring of text that parses as a JSON
// array of objects. Models are not guaranteed to emit pure JSON; the array is
// routinely wrapped in prose or markdown fences, so the parse is scoped to
// each balanced [...] candidate rather than the whole reply.
func ExtractJSONArray(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		idx := strings.IndexByte(text[start:], '[')
		if idx < 0 {
			return "", false
		}
		start += idx

		end, ok := matchBracket(text, start)
		if !ok {
			continue
		}

		candidate := text[start : end+1]
		var objs []map[string]any
		if json.Unmarshal([]byte(candidate), &objs) == nil {
			return candidate, true
		}
	}
	return "", false
}

// matchBracket returns the index of the ] closing the [ at start, skipping
// bracket characters inside JSON strings.
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

package tutoring

import "encoding/json"

// ExtractJSONArray pulls a JSON array of objects out of raw model output.
// The generator is instructed to emit pure JSON but does not always comply:
// replies arrive wrapped in prose, code fences, or commentary, and are
// sometimes truncated. Strategy: try the whole text as an array first, then
// scan for the first balanced [...] substring and parse that. Any failure
// yields nil; this function never returns an error, because "nothing
// generated" is a normal outcome for callers.
func ExtractJSONArray(raw string) []json.RawMessage {
	if items := decodeArray(raw); items != nil {
		return items
	}

	candidate, ok := firstBalancedArray(raw)
	if !ok {
		return nil
	}
	return decodeArray(candidate)
}

func decodeArray(s string) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	return items
}

// firstBalancedArray finds the substring from the first '[' to its matching
// ']' by depth counting. The walk is string-aware so brackets inside JSON
// string values (including escaped quotes) do not disturb the depth.
// A depth-counting scan is used instead of a regex: regexes cannot match
// nested bracket structures.
func firstBalancedArray(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '[':
			if start < 0 {
				start = i
			}
			depth++
		case ']':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	// no '[' found, or the array was truncated before closing
	return "", false
}

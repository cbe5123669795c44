package comick

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The site renders no useful markup; every page embeds its state as a
// JSON object inside a script tag. These helpers locate and slice that
// object out of the raw page.

// extractObject finds the first balanced JSON object in body that
// contains every marker. Scanning outermost-first means the enclosing
// payload wins over any nested object that also carries the markers.
func extractObject(body string, markers ...string) ([]byte, error) {
	for i := 0; i < len(body)-1; i++ {
		if body[i] != '{' || body[i+1] != '"' {
			continue
		}
		obj, end, ok := balancedSlice(body, i, '{', '}')
		if !ok {
			continue
		}
		if !containsAll(obj, markers) {
			continue
		}
		if !json.Valid([]byte(obj)) {
			// Keep scanning past this candidate
			i = end
			continue
		}
		return []byte(obj), nil
	}
	return nil, fmt.Errorf("no script payload matching %v", markers)
}

// extractArray finds the JSON array value of the given key, e.g.
// `"images":[...]`.
func extractArray(body, key string) ([]byte, error) {
	marker := fmt.Sprintf("%q:", key)
	idx := strings.Index(body, marker)
	if idx < 0 {
		return nil, fmt.Errorf("no %q array in page", key)
	}

	start := idx + len(marker)
	for start < len(body) && (body[start] == ' ' || body[start] == '\n') {
		start++
	}
	if start >= len(body) || body[start] != '[' {
		return nil, fmt.Errorf("%q is not an array", key)
	}

	arr, _, ok := balancedSlice(body, start, '[', ']')
	if !ok || !json.Valid([]byte(arr)) {
		return nil, fmt.Errorf("unbalanced %q array", key)
	}
	return []byte(arr), nil
}

// balancedSlice returns body[start:end] covering one balanced
// open/close pair, tracking string literals and escapes so braces
// inside values do not miscount.
func balancedSlice(body string, start int, open, close byte) (string, int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return body[start : i+1], i, true
			}
		}
	}
	return "", 0, false
}

func containsAll(s string, markers []string) bool {
	for _, m := range markers {
		if !strings.Contains(s, m) {
			return false
		}
	}
	return true
}
